package blockchain

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/pool-sniper/internal/config"
	"github.com/hxuan190/pool-sniper/internal/domain"
	"github.com/hxuan190/pool-sniper/internal/services"
)

const SOLANA_CLIENT_SERVICE = "solana-client-svc"

var maxSupportedTransactionVersion uint64 = 0

// SolanaService is the chain collaborator of the sniper: JSON-RPC reads and websocket log streams.
type SolanaService struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	rpcClient  *rpc.Client
	wsURL      string
	commitment rpc.CommitmentType

	mu       sync.Mutex
	wsClient *ws.Client
}

// NewSolanaService builds the service outside the container, for one-shot commands.
func NewSolanaService(cfg *config.RPCConfig) *SolanaService {
	svc := &SolanaService{}
	svc.init(cfg)
	return svc
}

func (svc *SolanaService) ID() string {
	return SOLANA_CLIENT_SERVICE
}

func (svc *SolanaService) Configure(c container.IContainer) error {
	svc.init(c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig))
	return nil
}

func (svc *SolanaService) init(cfg *config.RPCConfig) {
	svc.logger = services.NewServiceLogger(svc)
	if cfg.RPCApiKey != "" {
		svc.rpcClient = rpc.NewWithHeaders(cfg.RPCUrl, map[string]string{"x-api-key": cfg.RPCApiKey})
	} else {
		svc.rpcClient = rpc.New(cfg.RPCUrl)
	}
	svc.wsURL = cfg.WSUrl
	svc.commitment = cfg.Commitment
	if svc.commitment == "" {
		svc.commitment = rpc.CommitmentProcessed
	}
}

func (svc *SolanaService) Start() error {
	svc.logger.Info().Str("commitment", string(svc.commitment)).Msg("Solana client ready")
	return nil
}

func (svc *SolanaService) Stop() error {
	svc.mu.Lock()
	if svc.wsClient != nil {
		svc.wsClient.Close()
		svc.wsClient = nil
	}
	svc.mu.Unlock()
	return svc.rpcClient.Close()
}

// RPC exposes the JSON-RPC client for simulation and fee lookups.
func (svc *SolanaService) RPC() *rpc.Client {
	return svc.rpcClient
}

func (svc *SolanaService) Commitment() rpc.CommitmentType {
	return svc.commitment
}

// GetTransaction fetches a jsonParsed transaction. Node errors are returned as is.
func (svc *SolanaService) GetTransaction(ctx context.Context, sig solana.Signature) (*domain.Transaction, error) {
	commitment := svc.commitment
	// getTransaction rejects processed.
	if commitment == rpc.CommitmentProcessed {
		commitment = rpc.CommitmentConfirmed
	}
	res, err := svc.rpcClient.GetParsedTransaction(ctx, sig, &rpc.GetParsedTransactionOpts{
		Commitment:                     commitment,
		MaxSupportedTransactionVersion: &maxSupportedTransactionVersion,
	})
	if err != nil {
		return nil, err
	}
	return convertParsedTransaction(sig, res), nil
}

func (svc *SolanaService) GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	res, err := svc.rpcClient.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: svc.commitment,
	})
	if err != nil {
		return nil, err
	}
	return res.Value.Data.GetBinary(), nil
}

func (svc *SolanaService) GetTokenBalance(ctx context.Context, account solana.PublicKey) (*domain.TokenAmount, error) {
	res, err := svc.rpcClient.GetTokenAccountBalance(ctx, account, svc.commitment)
	if err != nil {
		return nil, err
	}
	if res.Value == nil {
		return nil, rpc.ErrNotFound
	}
	return &domain.TokenAmount{
		Amount:         res.Value.Amount,
		Decimals:       res.Value.Decimals,
		UiAmountString: res.Value.UiAmountString,
	}, nil
}

// SubscribeLogs streams logs of transactions mentioning addr until Unsubscribe or ctx ends.
func (svc *SolanaService) SubscribeLogs(ctx context.Context, addr solana.PublicKey) (domain.LogSubscription, error) {
	client, err := svc.ws(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := client.LogsSubscribeMentions(addr, svc.commitment)
	if err != nil {
		return nil, fmt.Errorf("logsSubscribe %s: %w", addr, err)
	}
	svc.logger.Debug().Str("address", addr.String()).Msg("Subscribed to logs")
	return NewLogStream(ctx, sub), nil
}

// ws lazily dials one websocket connection shared by all subscriptions.
func (svc *SolanaService) ws(ctx context.Context) (*ws.Client, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.wsClient != nil {
		return svc.wsClient, nil
	}
	client, err := ws.Connect(ctx, svc.wsURL)
	if err != nil {
		return nil, err
	}
	svc.wsClient = client
	return client, nil
}
