package config

import (
	"errors"
	"slices"

	"github.com/andrew-solarstorm/go-packages/common"
	"github.com/gagliardetto/solana-go/rpc"
)

type RPCConfig struct {
	RPCUrl     string
	WSUrl      string
	RPCApiKey  string
	Commitment rpc.CommitmentType
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	r.RPCUrl = common.GetEnvOrDefault("RPC_URL", rpc.MainNetBeta_RPC)
	r.WSUrl = common.GetEnvOrDefault("WS_URL", rpc.MainNetBeta_WS)
	r.RPCApiKey = common.GetEnvOrDefault("RPC_KEY", "")
	r.Commitment = rpc.CommitmentType(common.GetEnvOrDefault("COMMITMENT", string(rpc.CommitmentProcessed)))
	return r.Validate()
}

func (r *RPCConfig) Validate() error {
	if slices.Contains([]string{r.WSUrl, r.RPCUrl}, "") {
		return errors.New("invalid rpc config")
	}
	switch r.Commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return errors.New("invalid rpc commitment: " + string(r.Commitment))
	}
	return nil
}
