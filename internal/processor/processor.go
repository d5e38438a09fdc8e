// Package processor drives the detect, decode, derive and quote sequence for new pools.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hxuan190/pool-sniper/internal/common"
	"github.com/hxuan190/pool-sniper/internal/domain"
	"github.com/hxuan190/pool-sniper/internal/layout"
	"github.com/hxuan190/pool-sniper/internal/metrics"
	"github.com/hxuan190/pool-sniper/internal/services/builder"
	"github.com/hxuan190/pool-sniper/internal/services/detector"
	"github.com/hxuan190/pool-sniper/internal/services/market"
	"github.com/hxuan190/pool-sniper/internal/services/priority"
	"github.com/hxuan190/pool-sniper/internal/services/quote"
)

type Options struct {
	WatchAddress solana.PublicKey
	// TargetMint limits buys to pools holding it. Zero accepts any pool.
	TargetMint solana.PublicKey
	// BuyAmount is the WSOL input, or the output amount with ExactOut.
	// Zero only registers and watches new pools.
	BuyAmount    uint64
	ExactOut     bool
	SlippageBps  uint64
	Fees         quote.Fees
	SimulateOnly bool
	// Owner is the payer and token owner. Zero stops the plan at the quote.
	Owner              solana.PublicKey
	Urgency            priority.Urgency
	ComputeUnitLimit   uint32
	SignatureCacheSize int
}

type Option func(*EventProcessor)

func WithBlockhashSource(src BlockhashSource) Option {
	return func(p *EventProcessor) { p.blockhash = src }
}

func WithSimulator(sim TransactionSimulator) Option {
	return func(p *EventProcessor) { p.simulator = sim }
}

func WithFeeEstimator(fees FeeEstimator) Option {
	return func(p *EventProcessor) { p.feeEstimator = fees }
}

// EventProcessor reacts to pool-creation logs and keeps the registry of discovered pools.
type EventProcessor struct {
	chain    ChainClient
	logs     LogSubscriber
	detector *detector.Detector
	registry *market.Registry

	ammAuthority solana.PublicKey
	ammNonce     uint8

	seen     *market.SignatureCache
	opts     Options
	logger   zerolog.Logger

	blockhash    BlockhashSource
	simulator    TransactionSimulator
	feeEstimator FeeEstimator

	state atomic.Uint32

	mu     sync.Mutex
	watch  domain.LogSubscription
	closed bool
	wg     sync.WaitGroup
}

func New(chain ChainClient, logs LogSubscriber, registry *market.Registry, opts Options, logger zerolog.Logger, options ...Option) (*EventProcessor, error) {
	seen, err := market.NewSignatureCache(opts.SignatureCacheSize)
	if err != nil {
		return nil, err
	}
	if opts.WatchAddress.IsZero() {
		opts.WatchAddress = common.RaydiumAmmV4ProgramID
	}
	if opts.Fees.Denominator == 0 {
		opts.Fees = quote.DefaultFees()
	}
	if registry == nil {
		registry = market.NewRegistry()
	}
	authority, nonce, err := builder.FindAmmAuthority(common.RaydiumAmmV4ProgramID)
	if err != nil {
		return nil, err
	}

	p := &EventProcessor{
		chain:    chain,
		logs:     logs,
		detector: detector.New(common.RaydiumAmmV4ProgramID),
		registry: registry,
		seen:     seen,
		opts:     opts,
		logger:   logger,

		ammAuthority: authority,
		ammNonce:     nonce,
	}
	for _, o := range options {
		o(p)
	}
	return p, nil
}

func (p *EventProcessor) State() State {
	return State(p.state.Load())
}

func (p *EventProcessor) Registry() *market.Registry {
	return p.registry
}

func (p *EventProcessor) setState(s State) {
	p.state.Store(uint32(s))
	metrics.StateTransitions.WithLabelValues(s.String()).Inc()
}

// reset drops back to waiting for the next event.
func (p *EventProcessor) reset() {
	p.mu.Lock()
	watching := p.watch != nil
	p.mu.Unlock()
	if watching {
		p.setState(StateSubscribed)
		return
	}
	p.setState(StateIdle)
}

// Run watches the configured address and handles every creation log in delivery order.
// It returns when ctx is done, the stream ends or Close is called.
func (p *EventProcessor) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("event processor closed")
	}
	if p.watch != nil {
		p.mu.Unlock()
		return fmt.Errorf("event processor already running")
	}
	p.mu.Unlock()

	sub, err := p.logs.SubscribeLogs(ctx, p.opts.WatchAddress)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		sub.Unsubscribe()
		return fmt.Errorf("event processor closed")
	}
	p.watch = sub
	p.mu.Unlock()
	p.setState(StateSubscribed)
	p.logger.Info().Str("address", p.opts.WatchAddress.String()).Msg("Watching for new pools")

	defer func() {
		p.mu.Lock()
		if p.watch == sub {
			p.watch = nil
		}
		p.mu.Unlock()
		sub.Unsubscribe()
		p.setState(StateIdle)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-sub.Notifications():
			if !ok {
				return sub.Err()
			}
			p.handleNotification(ctx, n)
		}
	}
}

func (p *EventProcessor) handleNotification(ctx context.Context, n domain.LogNotification) {
	metrics.LogNotifications.WithLabelValues("watch").Inc()
	if n.Err != nil || !detector.HasPoolCreationLog(n.Logs) {
		return
	}
	if p.seen.Seen(n.Signature) {
		metrics.DuplicateSignatures.Inc()
		p.logger.Debug().Str("signature", n.Signature.String()).Msg("Repeat creation log dropped")
		return
	}
	p.HandleCreation(ctx, n.Signature)
}

// HandleCreation processes one creation event. Failures are logged and end only this event.
func (p *EventProcessor) HandleCreation(ctx context.Context, sig solana.Signature) {
	start := time.Now()
	log := p.logger.With().Str("signature", sig.String()).Logger()

	var err error
	if p.opts.BuyAmount > 0 {
		var plan *domain.BuyPlan
		if plan, err = p.BuyNewPool(ctx, sig); err == nil {
			log.Info().
				Str("pool", plan.Pool.Address().String()).
				Str("output_mint", plan.OutputMint.String()).
				Uint64("amount_in", plan.Quote.AmountIn).
				Uint64("amount_out", plan.Quote.AmountOut).
				Uint64("threshold", plan.Quote.OtherAmountThreshold).
				Bool("simulated", plan.Simulation != nil).
				Msg("Buy plan ready")
		}
	} else {
		var (
			pool     *domain.Pool
			inserted bool
		)
		if pool, inserted, err = p.registerPool(ctx, sig); err == nil && !inserted {
			err = fmt.Errorf("%w: %s", common.ErrPoolAlreadyRegistered, pool.Address())
		}
		if err == nil {
			log.Info().Str("pool", pool.Address().String()).Msg("Pool registered")
		}
	}

	switch {
	case errors.Is(err, common.ErrPoolAlreadyRegistered):
		metrics.PoolCreationEvents.WithLabelValues("duplicate").Inc()
		log.Debug().Err(err).Msg("Repeat creation event ignored")
		return
	case err != nil:
		metrics.PoolCreationEvents.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("state", p.State().String()).Msg("Creation event dropped")
		return
	}
	metrics.PoolCreationEvents.WithLabelValues("ok").Inc()
	metrics.PoolDetectionDuration.Observe(time.Since(start).Seconds())
}

// GetPoolFromCreateTransaction fetches the creation transaction and the opening vault balances.
func (p *EventProcessor) GetPoolFromCreateTransaction(ctx context.Context, sig solana.Signature) (*domain.Pool, error) {
	tx, err := p.chain.GetTransaction(ctx, sig)
	if err != nil {
		p.reset()
		return nil, err
	}
	keys, err := p.detector.Detect(tx)
	if err != nil {
		p.reset()
		return nil, err
	}
	if !keys.Authority.Equals(p.ammAuthority) {
		p.reset()
		return nil, fmt.Errorf("%w: pool authority %s, want %s", common.ErrMalformedTransaction, keys.Authority, p.ammAuthority)
	}
	keys.Nonce = p.ammNonce

	var coin, pc *domain.TokenAmount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		coin, err = p.chain.GetTokenBalance(gctx, keys.CoinVault)
		return err
	})
	g.Go(func() error {
		var err error
		pc, err = p.chain.GetTokenBalance(gctx, keys.PcVault)
		return err
	})
	if err := g.Wait(); err != nil {
		p.reset()
		return nil, err
	}

	coinBalance, err := coin.Raw()
	if err != nil {
		p.reset()
		return nil, err
	}
	pcBalance, err := pc.Raw()
	if err != nil {
		p.reset()
		return nil, err
	}

	pool := &domain.Pool{
		Amm:                *keys,
		InitialCoinBalance: coinBalance,
		InitialPcBalance:   pcBalance,
		CreationSignature:  sig,
		DetectedAt:         time.Now(),
	}
	p.setState(StatePoolDetected)
	return pool, nil
}

// GetMarketKeys decodes the pool's order-book market and derives its vault signer.
func (p *EventProcessor) GetMarketKeys(ctx context.Context, pool *domain.Pool) (*domain.MarketKeys, error) {
	data, err := p.chain.GetAccountData(ctx, pool.Amm.Market)
	if err != nil {
		p.reset()
		return nil, err
	}
	state, err := layout.ParseMarketState(data)
	if err != nil {
		p.reset()
		return nil, fmt.Errorf("market %s: %w", pool.Amm.Market, err)
	}
	signer, err := builder.VaultSignerAddress(pool.Amm.Market, state.VaultSignerNonce, pool.Amm.MarketProgram)
	if err != nil {
		p.reset()
		return nil, fmt.Errorf("market %s: %w", pool.Amm.Market, err)
	}

	keys := &domain.MarketKeys{
		EventQueue:  state.EventQueue,
		Bids:        state.Bids,
		Asks:        state.Asks,
		CoinVault:   state.CoinVault,
		PcVault:     state.PcVault,
		VaultSigner: signer,
	}
	p.setState(StateMarketKeysResolved)
	return keys, nil
}

// ProcessNewPool registers the pool created by sig and starts watching its swaps.
// A pool that is already registered is returned as is.
func (p *EventProcessor) ProcessNewPool(ctx context.Context, sig solana.Signature) (*domain.Pool, error) {
	pool, _, err := p.registerPool(ctx, sig)
	return pool, err
}

// registerPool is ProcessNewPool that also reports whether this call inserted the pool.
func (p *EventProcessor) registerPool(ctx context.Context, sig solana.Signature) (*domain.Pool, bool, error) {
	pool, err := p.GetPoolFromCreateTransaction(ctx, sig)
	if err != nil {
		return nil, false, err
	}
	if !p.registry.AddPool(pool) {
		existing, _ := p.registry.Pool(pool.Address())
		p.reset()
		return existing, false, nil
	}
	metrics.PoolCount.Set(float64(p.registry.Len()))

	if err := p.SubscribeToPool(ctx, pool.Address()); err != nil {
		p.logger.Warn().Err(err).Str("pool", pool.Address().String()).Msg("Pool registered without swap watch")
	}
	return pool, true, nil
}

// SubscribeToPool keeps one log subscription per pool and counts the swaps it reports.
func (p *EventProcessor) SubscribeToPool(ctx context.Context, addr solana.PublicKey) error {
	if p.registry.HasSubscription(addr) {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("event processor closed")
	}
	p.wg.Add(1)
	p.mu.Unlock()

	sub, err := p.logs.SubscribeLogs(ctx, addr)
	if err != nil {
		p.wg.Done()
		return err
	}
	if !p.registry.AttachSubscription(addr, sub) {
		p.wg.Done()
		sub.Unsubscribe()
		return nil
	}

	// Close may have drained the registry while SubscribeLogs was in flight.
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		if cur, ok := p.registry.DetachSubscription(addr); ok && cur != sub {
			p.registry.AttachSubscription(addr, cur)
		}
		sub.Unsubscribe()
		p.wg.Done()
		return fmt.Errorf("event processor closed")
	}
	metrics.SubscriptionCount.Set(float64(p.registry.SubscriptionCount()))

	go p.watchPool(ctx, addr, sub)
	return nil
}

func (p *EventProcessor) watchPool(ctx context.Context, addr solana.PublicKey, sub domain.LogSubscription) {
	defer p.wg.Done()
	log := p.logger.With().Str("pool", addr.String()).Logger()

	for {
		select {
		case <-ctx.Done():
			p.dropSubscription(addr, sub)
			return
		case n, ok := <-sub.Notifications():
			if !ok {
				if err := sub.Err(); err != nil {
					log.Warn().Err(err).Msg("Pool log stream ended")
				}
				p.dropSubscription(addr, sub)
				return
			}
			metrics.LogNotifications.WithLabelValues("pool").Inc()
			for _, line := range n.Logs {
				kind, ok := detector.ClassifySwapLog(line)
				if !ok {
					continue
				}
				p.registry.RecordSwap(addr, kind)
				metrics.PoolSwaps.WithLabelValues(kind.String()).Inc()
				log.Debug().Str("kind", kind.String()).Str("signature", n.Signature.String()).Uint64("slot", n.Slot).Msg("Swap")
			}
		}
	}
}

// dropSubscription releases sub unless it was already detached by someone else.
func (p *EventProcessor) dropSubscription(addr solana.PublicKey, sub domain.LogSubscription) {
	if cur, ok := p.registry.DetachSubscription(addr); ok && cur != sub {
		// A newer subscription replaced ours; put it back.
		p.registry.AttachSubscription(addr, cur)
	}
	sub.Unsubscribe()
	metrics.SubscriptionCount.Set(float64(p.registry.SubscriptionCount()))
}

// UnsubscribePool stops watching a pool's swaps. The pool stays registered.
func (p *EventProcessor) UnsubscribePool(addr solana.PublicKey) bool {
	sub, ok := p.registry.DetachSubscription(addr)
	if !ok {
		return false
	}
	sub.Unsubscribe()
	metrics.SubscriptionCount.Set(float64(p.registry.SubscriptionCount()))
	return true
}

// BuyNewPool registers the pool created by sig and prepares a buy when it holds the target mint.
// A pool that was already registered gets no second buy: ErrPoolAlreadyRegistered.
func (p *EventProcessor) BuyNewPool(ctx context.Context, sig solana.Signature) (*domain.BuyPlan, error) {
	pool, inserted, err := p.registerPool(ctx, sig)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, fmt.Errorf("%w: %s", common.ErrPoolAlreadyRegistered, pool.Address())
	}
	if !p.opts.TargetMint.IsZero() && !pool.Amm.HasMint(p.opts.TargetMint) {
		p.reset()
		return nil, fmt.Errorf("%w: %s not in pool %s", common.ErrTargetNotInPool, p.opts.TargetMint, pool.Address())
	}
	return p.Buy(ctx, pool)
}

// Buy quotes a WSOL-in swap on pool, exact in or exact out, and prepares its instruction and, with an owner, the transaction.
func (p *EventProcessor) Buy(ctx context.Context, pool *domain.Pool) (*domain.BuyPlan, error) {
	plan, err := p.buy(ctx, pool)
	if err != nil {
		metrics.BuyPlans.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.BuyPlans.WithLabelValues("ok").Inc()
	return plan, nil
}

func (p *EventProcessor) buy(ctx context.Context, pool *domain.Pool) (*domain.BuyPlan, error) {
	var (
		direction domain.SwapDirection
		output    solana.PublicKey
	)
	switch {
	case pool.Amm.CoinMint.Equals(common.WSOLMint):
		direction, output = domain.Coin2PC, pool.Amm.PcMint
	case pool.Amm.PcMint.Equals(common.WSOLMint):
		direction, output = domain.PC2Coin, pool.Amm.CoinMint
	default:
		p.reset()
		return nil, fmt.Errorf("%w: WSOL not in pool %s", common.ErrTargetNotInPool, pool.Address())
	}

	marketKeys, err := p.GetMarketKeys(ctx, pool)
	if err != nil {
		return nil, err
	}

	swapMode := "ExactIn"
	if p.opts.ExactOut {
		swapMode = "ExactOut"
	}
	q, err := quote.Quote(pool.InitialCoinBalance, pool.InitialPcBalance, p.opts.Fees, direction, p.opts.BuyAmount, !p.opts.ExactOut, p.opts.SlippageBps)
	if err != nil {
		p.reset()
		metrics.QuoteRequests.WithLabelValues(swapMode, "error").Inc()
		return nil, err
	}
	metrics.QuoteRequests.WithLabelValues(swapMode, "ok").Inc()
	metrics.PriceImpact.Observe(float64(q.PriceImpactBps))
	p.setState(StateQuoteReady)

	plan := &domain.BuyPlan{
		Pool:       pool,
		MarketKeys: marketKeys,
		InputMint:  common.WSOLMint,
		OutputMint: output,
		Quote:      q,
	}
	if p.opts.Owner.IsZero() {
		return plan, nil
	}

	owner := p.opts.Owner
	source, err := builder.GetATAAddress(owner, common.WSOLMint)
	if err != nil {
		return nil, err
	}
	destination, err := builder.GetATAAddress(owner, output)
	if err != nil {
		return nil, err
	}
	accounts := builder.SwapAccounts{
		Amm:             pool.Amm,
		Market:          *marketKeys,
		UserSource:      source,
		UserDestination: destination,
		Owner:           owner,
	}
	var swapIx *solana.GenericInstruction
	if p.opts.ExactOut {
		swapIx, err = builder.SwapBaseOutInstruction(accounts, q.OtherAmountThreshold, q.AmountOut)
	} else {
		swapIx, err = builder.SwapBaseInInstruction(accounts, q.AmountIn, q.OtherAmountThreshold)
	}
	if err != nil {
		return nil, err
	}
	plan.Instruction = swapIx

	if p.blockhash == nil {
		return plan, nil
	}
	if err := p.assemble(ctx, plan, destination); err != nil {
		return nil, err
	}
	return plan, nil
}

// assemble builds the unsigned buy transaction and simulates it when asked to.
func (p *EventProcessor) assemble(ctx context.Context, plan *domain.BuyPlan, destination solana.PublicKey) error {
	owner := p.opts.Owner
	hash, _, err := p.blockhash.GetBlockhash(ctx)
	if err != nil {
		return err
	}
	createIx, err := builder.CreateATAIdempotentInstruction(owner, owner, plan.OutputMint)
	if err != nil {
		return err
	}

	var microLamports uint64
	if p.feeEstimator != nil {
		fee := p.feeEstimator.GetOptimalFee(ctx, p.opts.Urgency, []solana.PublicKey{plan.Pool.Address(), destination})
		microLamports = fee.FeePerCU
	}

	tx, err := builder.BuildSwapTransaction([]solana.Instruction{createIx, plan.Instruction}, builder.TransactionOptions{
		Payer:              owner,
		RecentBlockhash:    hash,
		ComputeUnitLimit:   p.opts.ComputeUnitLimit,
		MicroLamportsPerCU: microLamports,
	})
	if err != nil {
		return err
	}
	if plan.Transaction, err = tx.ToBase64(); err != nil {
		return err
	}

	if !p.opts.SimulateOnly || p.simulator == nil {
		return nil
	}
	sim, err := p.simulator.Simulate(ctx, tx)
	if err != nil {
		return err
	}
	plan.Simulation = sim
	if sim.Success {
		metrics.ComputeUnits.Observe(float64(sim.ComputeUnitsConsumed))
	} else {
		metrics.SimulationFailures.WithLabelValues(simulationFailureReason(sim)).Inc()
	}
	return nil
}

func simulationFailureReason(sim *domain.SimulationResult) string {
	switch {
	case sim.InsufficientFunds:
		return "insufficient_funds"
	case sim.SlippageExceeded:
		return "slippage"
	default:
		return "other"
	}
}

// Close stops the watch stream and releases every pool subscription exactly once.
func (p *EventProcessor) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	watch := p.watch
	p.watch = nil
	p.mu.Unlock()

	if watch != nil {
		watch.Unsubscribe()
	}
	for _, sub := range p.registry.DrainSubscriptions() {
		sub.Unsubscribe()
	}
	p.wg.Wait()
	metrics.SubscriptionCount.Set(0)
	p.setState(StateIdle)
}

// Fees is the AMM fee fraction used for quotes.
func (p *EventProcessor) Fees() quote.Fees {
	return p.opts.Fees
}
