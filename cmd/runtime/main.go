package main

import (
	"fmt"
	"os"
)

// @title Pool Sniper API
// @version 1.0-beta
// @description Watches the Raydium AMM v4 program for new pools and quotes swaps against them.
// @description
// @description ## - Features
// @description - **Pool Detection**: initialize2 transactions are decoded as soon as their logs arrive
// @description - **Market Resolution**: OpenBook market accounts and the vault signer are derived per pool
// @description - **Swap Quotes**: constant-product quotes with fee, slippage bound and price impact
// @description - **Swap Tracking**: every detected pool gets its own log subscription
// @description
// @description ## - Usage Tips
// @description - Amounts are in smallest token units (lamports for SOL)
// @description - Quotes use the vault balances seen when the pool was created
// @description - Default slippage is 1000 bps (10%)
// @description - Rate Limit: 10 requests/second (burst: 20)
// @BasePath /
// @schemes http
// @tag.name pools
// @tag.description Detected pools and their swap activity
// @tag.name quote
// @tag.description Quote swaps on detected pools
// @tag.name admin
// @tag.description Manage live pool subscriptions

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
