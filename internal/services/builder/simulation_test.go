package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSimClient struct {
	resp *rpc.SimulateTransactionResponse
	err  error
	opts *rpc.SimulateTransactionOpts
}

func (f *fakeSimClient) SimulateTransactionWithOpts(_ context.Context, _ *solana.Transaction, opts *rpc.SimulateTransactionOpts) (*rpc.SimulateTransactionResponse, error) {
	f.opts = opts
	return f.resp, f.err
}

func TestSimulate(t *testing.T) {
	units := uint64(42_000)
	tests := []struct {
		name     string
		resp     *rpc.SimulateTransactionResponse
		success  bool
		slippage bool
		funds    bool
	}{
		{
			name:    "success",
			resp:    &rpc.SimulateTransactionResponse{Value: &rpc.SimulateTransactionResult{UnitsConsumed: &units}},
			success: true,
		},
		{
			name: "slippage",
			resp: &rpc.SimulateTransactionResponse{Value: &rpc.SimulateTransactionResult{
				Err:  map[string]interface{}{"InstructionError": []interface{}{2, map[string]interface{}{"Custom": 30}}},
				Logs: []string{"Program log: Error: exceeds desired slippage limit"},
			}},
			slippage: true,
		},
		{
			name: "insufficient funds",
			resp: &rpc.SimulateTransactionResponse{Value: &rpc.SimulateTransactionResult{
				Err:  "InsufficientFundsForFee",
				Logs: nil,
			}},
			funds: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeSimClient{resp: tt.resp}
			sim := NewSimulator(client, rpc.CommitmentProcessed)

			res, err := sim.Simulate(context.Background(), &solana.Transaction{})
			require.NoError(t, err)
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.slippage, res.SlippageExceeded)
			assert.Equal(t, tt.funds, res.InsufficientFunds)
			assert.False(t, client.opts.SigVerify)
			assert.True(t, client.opts.ReplaceRecentBlockhash)
			if tt.success {
				assert.Equal(t, units, res.ComputeUnitsConsumed)
			}
		})
	}
}

func TestSimulateTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	sim := NewSimulator(&fakeSimClient{err: boom}, rpc.CommitmentProcessed)

	_, err := sim.Simulate(context.Background(), &solana.Transaction{})
	require.ErrorIs(t, err, boom)

	_, err = sim.Simulate(context.Background(), nil)
	require.Error(t, err)
}
