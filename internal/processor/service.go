package processor

import (
	"context"

	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/pool-sniper/internal/adapters/blockchain"
	"github.com/hxuan190/pool-sniper/internal/config"
	"github.com/hxuan190/pool-sniper/internal/services"
	"github.com/hxuan190/pool-sniper/internal/services/builder"
	"github.com/hxuan190/pool-sniper/internal/services/market"
	"github.com/hxuan190/pool-sniper/internal/services/priority"
	"github.com/hxuan190/pool-sniper/internal/services/quote"
)

const SNIPER_SERVICE = "sniper-service"

// Service runs the EventProcessor inside the DI container.
type Service struct {
	container.BaseDIInstance
	logger    *services.ServiceLogger
	processor *EventProcessor

	cancel context.CancelFunc
	done   chan struct{}
}

func (svc *Service) ID() string {
	return SNIPER_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	cfg := c.GetConfig(config.SNIPER_CONFIG_KEY).(*config.SniperConfig)
	solanaSvc := c.Instance(blockchain.SOLANA_CLIENT_SERVICE).(*blockchain.SolanaService)
	blockhashSvc := c.Instance(blockchain.BLOCKHASH_CACHE_SERVICE).(*blockchain.BlockhashCacheService)

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	svc.processor, err = New(solanaSvc, solanaSvc, market.NewRegistry(), opts, svc.logger.Zerolog(),
		WithBlockhashSource(blockhashSvc),
		WithSimulator(builder.NewSimulator(solanaSvc.RPC(), solanaSvc.Commitment())),
		WithFeeEstimator(priority.NewFeeCalculator(solanaSvc.RPC(), svc.logger.Zerolog())),
	)
	return err
}

// OptionsFromConfig maps the environment configuration onto processor options.
func OptionsFromConfig(cfg *config.SniperConfig) (Options, error) {
	urgency, err := priority.ParseUrgency(cfg.PriorityUrgency)
	if err != nil {
		return Options{}, err
	}
	return Options{
		WatchAddress:       cfg.WatchAddress,
		TargetMint:         cfg.TargetMint,
		BuyAmount:          cfg.BuyAmount,
		ExactOut:           cfg.BuyExactOut,
		SlippageBps:        cfg.SlippageBps,
		Fees:               quote.Fees{Numerator: cfg.FeeNumerator, Denominator: cfg.FeeDenominator},
		SimulateOnly:       cfg.SimulateOnly,
		Owner:              cfg.Owner,
		Urgency:            urgency,
		ComputeUnitLimit:   cfg.ComputeUnitLimit,
		SignatureCacheSize: cfg.SignatureCacheSize,
	}, nil
}

func (svc *Service) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	svc.cancel = cancel
	svc.done = make(chan struct{})

	go func() {
		defer close(svc.done)
		if err := svc.processor.Run(ctx); err != nil {
			svc.logger.Error().Err(err).Msg("Event processor stopped")
			return
		}
		svc.logger.Info().Msg("Event processor stopped")
	}()
	return nil
}

func (svc *Service) Stop() error {
	if svc.cancel == nil {
		return nil
	}
	svc.cancel()
	svc.processor.Close()
	<-svc.done
	return nil
}

func (svc *Service) Processor() *EventProcessor {
	return svc.processor
}
