// Package priority picks compute-unit prices from recent network fees.
package priority

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
)

type Urgency uint8

const (
	UrgencyLow Urgency = iota
	UrgencyMedium
	UrgencyHigh
	UrgencyExtreme
)

// minFeePerCU is the floor in microLamports applied to sampled fees.
const minFeePerCU = 100

// DefaultFees are used when the node returns no samples, in microLamports per CU.
var DefaultFees = map[Urgency]uint64{
	UrgencyLow:     1_000,
	UrgencyMedium:  10_000,
	UrgencyHigh:    100_000,
	UrgencyExtreme: 1_000_000,
}

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyMedium:
		return "medium"
	case UrgencyHigh:
		return "high"
	case UrgencyExtreme:
		return "extreme"
	default:
		return "UNKNOWN"
	}
}

func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return UrgencyLow, nil
	case "", "medium":
		return UrgencyMedium, nil
	case "high":
		return UrgencyHigh, nil
	case "extreme":
		return UrgencyExtreme, nil
	}
	return 0, fmt.Errorf("unknown urgency %q", s)
}

// Percentile is the sample percentile used for the urgency.
func (u Urgency) Percentile() int {
	switch u {
	case UrgencyLow:
		return 50
	case UrgencyHigh:
		return 90
	case UrgencyExtreme:
		return 99
	default:
		return 75
	}
}

type FeeClient interface {
	GetRecentPrioritizationFees(ctx context.Context, accounts solana.PublicKeySlice) ([]rpc.PriorizationFeeResult, error)
}

type FeeCalculator struct {
	client FeeClient
	logger zerolog.Logger
}

func NewFeeCalculator(client FeeClient, logger zerolog.Logger) *FeeCalculator {
	return &FeeCalculator{client: client, logger: logger}
}

type PriorityFeeResult struct {
	FeePerCU    uint64  `json:"fee_per_cu"`
	Urgency     Urgency `json:"urgency"`
	Percentile  int     `json:"percentile"`
	SampleCount int     `json:"sample_count"`
}

// TotalLamports is the priority fee paid for computeUnits, rounded down.
func (r *PriorityFeeResult) TotalLamports(computeUnits uint32) uint64 {
	return r.FeePerCU * uint64(computeUnits) / 1_000_000
}

// GetOptimalFee prices the urgency from fees recently paid on accounts.
func (f *FeeCalculator) GetOptimalFee(ctx context.Context, urgency Urgency, accounts []solana.PublicKey) *PriorityFeeResult {
	res := &PriorityFeeResult{
		FeePerCU:   DefaultFees[urgency],
		Urgency:    urgency,
		Percentile: urgency.Percentile(),
	}

	recent, err := f.client.GetRecentPrioritizationFees(ctx, accounts)
	if err != nil {
		f.logger.Warn().Err(err).Str("urgency", urgency.String()).Msg("Prioritization fee lookup failed, using default")
		return res
	}

	fees := make([]uint64, 0, len(recent))
	for _, r := range recent {
		if r.PrioritizationFee > 0 {
			fees = append(fees, r.PrioritizationFee)
		}
	}
	if len(fees) == 0 {
		return res
	}

	slices.Sort(fees)
	res.FeePerCU = max(percentile(fees, res.Percentile), minFeePerCU)
	res.SampleCount = len(fees)
	return res
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []uint64, p int) uint64 {
	switch {
	case len(sorted) == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[len(sorted)-1]
	}

	k := float64(p) / 100 * float64(len(sorted)-1)
	lo := int(k)
	hi := min(lo+1, len(sorted)-1)
	frac := k - float64(lo)
	return uint64(float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac)
}
