package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/pool-sniper/internal/adapters/blockchain"
	"github.com/hxuan190/pool-sniper/internal/common"
	"github.com/hxuan190/pool-sniper/internal/config"
	"github.com/hxuan190/pool-sniper/internal/http"
	"github.com/hxuan190/pool-sniper/internal/processor"
)

var (
	rpcURL string
	wsURL  string

	targetPubkey string
	buyAmount    uint64
	buyExactOut  bool
	simulateOnly bool

	signature  string
	quoteInput uint64
)

var rootCmd = &cobra.Command{
	Use:   "pool-sniper",
	Short: "Raydium AMM v4 new pool detector",
	Long: `pool-sniper subscribes to the Raydium AMM v4 program logs, decodes every
initialize2 transaction into a pool, resolves its OpenBook market and quotes
a WSOL buy against the opening reserves.`,
	Version: "1.0.0-beta",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; the environment wins
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}
		if err := setEnvFromFlag(cmd, "rpc-url", "RPC_URL", rpcURL); err != nil {
			return err
		}
		if err := setEnvFromFlag(cmd, "ws-url", "WS_URL", wsURL); err != nil {
			return err
		}

		general := &config.GeneralConfig{}
		if err := general.Load(); err != nil {
			return err
		}
		common.SetupLogger(general.LogLevel, general.Env)
		return nil
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch for new pools and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContainer()
	},
}

var buyOnCreationCmd = &cobra.Command{
	Use:   "buy-on-creation",
	Short: "Prepare a WSOL buy for the first new pool holding the target mint",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := solana.PublicKeyFromBase58(targetPubkey); err != nil {
			return fmt.Errorf("invalid --target-pubkey: %w", err)
		}
		if buyAmount == 0 {
			return fmt.Errorf("--amount must be positive")
		}
		os.Setenv("TARGET_MINT", targetPubkey)
		os.Setenv("BUY_AMOUNT", strconv.FormatUint(buyAmount, 10))
		if cmd.Flags().Changed("exact-out") {
			os.Setenv("BUY_EXACT_OUT", strconv.FormatBool(buyExactOut))
		}
		if cmd.Flags().Changed("simulate-only") {
			os.Setenv("SIMULATE_ONLY", strconv.FormatBool(simulateOnly))
		}
		return runContainer()
	},
}

var testQuoteCmd = &cobra.Command{
	Use:   "test-quote",
	Short: "Resolve the pool created by a transaction and print a buy quote",
	RunE: func(cmd *cobra.Command, args []string) error {
		sig, err := solana.SignatureFromBase58(signature)
		if err != nil {
			return fmt.Errorf("invalid --signature: %w", err)
		}
		return testQuote(cmd.Context(), sig)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "solana JSON-RPC endpoint, overrides RPC_URL")

	buyOnCreationCmd.Flags().StringVar(&wsURL, "ws-url", "", "solana websocket endpoint, overrides WS_URL")
	buyOnCreationCmd.Flags().StringVar(&targetPubkey, "target-pubkey", "", "mint the new pool must hold")
	buyOnCreationCmd.Flags().Uint64Var(&buyAmount, "amount", 0, "WSOL to spend in lamports, or tokens to receive with --exact-out")
	buyOnCreationCmd.Flags().BoolVar(&buyExactOut, "exact-out", false, "buy a fixed token amount with a maximum WSOL input")
	buyOnCreationCmd.Flags().BoolVar(&simulateOnly, "simulate-only", true, "simulate the buy instead of returning it for sending")
	_ = buyOnCreationCmd.MarkFlagRequired("target-pubkey")
	_ = buyOnCreationCmd.MarkFlagRequired("amount")

	testQuoteCmd.Flags().StringVar(&signature, "signature", "", "initialize2 transaction signature")
	testQuoteCmd.Flags().Uint64Var(&quoteInput, "amount", 1_000_000_000, "WSOL input to quote, in lamports")
	_ = testQuoteCmd.MarkFlagRequired("signature")

	rootCmd.AddCommand(runCmd, buyOnCreationCmd, testQuoteCmd)
}

func setEnvFromFlag(cmd *cobra.Command, flag, key, value string) error {
	f := cmd.Flags().Lookup(flag)
	if f == nil || !f.Changed {
		return nil
	}
	return os.Setenv(key, value)
}

func runContainer() error {
	// Initialize HFT runtime optimizations (GOGC, GOMAXPROCS, GOMEMLIMIT)
	common.InitRuntimeForHFT()

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.RPCConfig{},
		&config.SniperConfig{},
	)

	// di container
	dic, err := container.New(
		// config
		conf,

		// services
		&blockchain.SolanaService{},
		&blockchain.BlockhashCacheService{},
		&processor.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		return fmt.Errorf("create di container: %w", err)
	}

	// Run blocks until SIGINT/SIGTERM
	if err := dic.Run(); err != nil {
		return fmt.Errorf("run di container: %w", err)
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
	return nil
}

func testQuote(ctx context.Context, sig solana.Signature) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rpcCfg := &config.RPCConfig{}
	if err := rpcCfg.Load(); err != nil {
		return err
	}
	sniperCfg := &config.SniperConfig{}
	if err := sniperCfg.Load(); err != nil {
		return err
	}
	opts, err := processor.OptionsFromConfig(sniperCfg)
	if err != nil {
		return err
	}
	opts.BuyAmount = quoteInput
	opts.ExactOut = false
	opts.Owner = solana.PublicKey{}

	chain := blockchain.NewSolanaService(rpcCfg)
	defer chain.Stop()

	p, err := processor.New(chain, chain, nil, opts, log.Logger)
	if err != nil {
		return err
	}
	pool, err := p.GetPoolFromCreateTransaction(ctx, sig)
	if err != nil {
		return fmt.Errorf("resolve pool: %w", err)
	}
	plan, err := p.Buy(ctx, pool)
	if err != nil {
		return fmt.Errorf("quote pool %s: %w", pool.Address(), err)
	}

	out, err := sonic.Marshal(plan)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
