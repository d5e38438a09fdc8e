// Package quote prices Raydium v4 constant-product swaps.
package quote

import (
	"fmt"

	"github.com/hxuan190/pool-sniper/internal/common"
	"github.com/hxuan190/pool-sniper/internal/domain"
)

// Fees is the pool trade fee as a fraction.
type Fees struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

func DefaultFees() Fees {
	return Fees{Numerator: common.DefaultFeeNumerator, Denominator: common.DefaultFeeDenominator}
}

func (f Fees) validate(exactOut bool) error {
	if f.Denominator == 0 {
		return fmt.Errorf("%w: zero denominator", common.ErrInvalidFee)
	}
	if f.Numerator > f.Denominator || (exactOut && f.Numerator == f.Denominator) {
		return fmt.Errorf("%w: %d/%d", common.ErrInvalidFee, f.Numerator, f.Denominator)
	}
	return nil
}

// reserves orders the pool reserves as (in, out) for a direction.
func reserves(coinReserve, pcReserve uint64, direction domain.SwapDirection) (uint64, uint64) {
	if direction == domain.Coin2PC {
		return coinReserve, pcReserve
	}
	return pcReserve, coinReserve
}

// Swap returns the output for an input amount, or the gross input for an output amount.
func Swap(coinReserve, pcReserve uint64, fees Fees, direction domain.SwapDirection, amount uint64, amountIsInput bool) (uint64, error) {
	rIn, rOut := reserves(coinReserve, pcReserve, direction)
	if amountIsInput {
		out, _, err := SwapExactIn(rIn, rOut, fees, amount)
		return out, err
	}
	in, _, err := SwapExactOut(rIn, rOut, fees, amount)
	return in, err
}

// SwapExactIn returns the amount out and the fee charged on amountIn.
func SwapExactIn(reserveIn, reserveOut uint64, fees Fees, amountIn uint64) (amountOut, fee uint64, err error) {
	if err := fees.validate(false); err != nil {
		return 0, 0, err
	}
	if reserveIn == 0 || reserveOut == 0 {
		return 0, 0, common.ErrInsufficientLiquidity
	}

	amt := getU256().SetUint64(amountIn)
	num := getU256().SetUint64(fees.Numerator)
	den := getU256().SetUint64(fees.Denominator)
	rIn := getU256().SetUint64(reserveIn)
	rOut := getU256().SetUint64(reserveOut)
	tmp := getU256()
	res := getU256()
	defer putU256(amt, num, den, rIn, rOut, tmp, res)

	// fee = ceil(amountIn * num / den)
	if err := mul(amt, num, tmp); err != nil {
		return 0, 0, err
	}
	ceilDiv(tmp, den, res)
	if fee, err = toUint64(res); err != nil {
		return 0, 0, err
	}

	// out = rOut * net / (rIn + net)
	amt.Sub(amt, res)
	if err := mul(rOut, amt, tmp); err != nil {
		return 0, 0, err
	}
	if err := add(rIn, amt, res); err != nil {
		return 0, 0, err
	}
	res.Div(tmp, res)
	if amountOut, err = toUint64(res); err != nil {
		return 0, 0, err
	}
	return amountOut, fee, nil
}

// SwapExactOut returns the gross input, fee included, needed to receive amountOut.
func SwapExactOut(reserveIn, reserveOut uint64, fees Fees, amountOut uint64) (amountIn, fee uint64, err error) {
	if err := fees.validate(true); err != nil {
		return 0, 0, err
	}
	if reserveIn == 0 || reserveOut == 0 || amountOut >= reserveOut {
		return 0, 0, common.ErrInsufficientLiquidity
	}

	out := getU256().SetUint64(amountOut)
	num := getU256().SetUint64(fees.Numerator)
	den := getU256().SetUint64(fees.Denominator)
	rIn := getU256().SetUint64(reserveIn)
	rOut := getU256().SetUint64(reserveOut)
	tmp := getU256()
	net := getU256()
	gross := getU256()
	defer putU256(out, num, den, rIn, rOut, tmp, net, gross)

	// net = ceil(rIn * out / (rOut - out))
	if err := mul(rIn, out, tmp); err != nil {
		return 0, 0, err
	}
	rOut.Sub(rOut, out)
	ceilDiv(tmp, rOut, net)

	// gross = ceil(net * den / (den - num))
	if err := mul(net, den, tmp); err != nil {
		return 0, 0, err
	}
	den.Sub(den, num)
	ceilDiv(tmp, den, gross)

	if amountIn, err = toUint64(gross); err != nil {
		return 0, 0, err
	}
	return amountIn, amountIn - net.Uint64(), nil
}

// MinAmountWithSlippage is the floor of x*(10000-bps)/10000.
func MinAmountWithSlippage(x, bps uint64) (uint64, error) {
	if bps > common.BpsDenominator {
		return 0, fmt.Errorf("%w: %d bps", common.ErrInvalidSlippage, bps)
	}
	return scaleBps(x, common.BpsDenominator-bps)
}

// MaxAmountWithSlippage is the floor of x*(10000+bps)/10000.
func MaxAmountWithSlippage(x, bps uint64) (uint64, error) {
	if bps > common.BpsDenominator {
		return 0, fmt.Errorf("%w: %d bps", common.ErrInvalidSlippage, bps)
	}
	return scaleBps(x, common.BpsDenominator+bps)
}

func scaleBps(x, factor uint64) (uint64, error) {
	v := getU256().SetUint64(x)
	f := getU256().SetUint64(factor)
	defer putU256(v, f)

	if err := mul(v, f, v); err != nil {
		return 0, err
	}
	v.Div(v, u256BpsDenom)
	return toUint64(v)
}

// priceImpactBps is net/(rIn+net) in bps, the constant-product shortfall against the spot price.
func priceImpactBps(reserveIn, netIn uint64) uint64 {
	if netIn == 0 {
		return 0
	}
	n := getU256().SetUint64(netIn)
	d := getU256().SetUint64(reserveIn)
	defer putU256(n, d)

	d.Add(d, n)
	n.Mul(n, u256BpsDenom)
	n.Div(n, d)
	return n.Uint64()
}

// Quote prices a swap and applies the slippage bound to the unspecified side.
func Quote(coinReserve, pcReserve uint64, fees Fees, direction domain.SwapDirection, amount uint64, amountIsInput bool, slippageBps uint64) (*domain.SwapQuote, error) {
	if slippageBps > common.BpsDenominator {
		return nil, fmt.Errorf("%w: %d bps", common.ErrInvalidSlippage, slippageBps)
	}
	rIn, rOut := reserves(coinReserve, pcReserve, direction)

	q := &domain.SwapQuote{
		Direction:     direction,
		AmountIsInput: amountIsInput,
		SlippageBps:   slippageBps,
	}

	if amountIsInput {
		out, fee, err := SwapExactIn(rIn, rOut, fees, amount)
		if err != nil {
			return nil, err
		}
		minOut, err := MinAmountWithSlippage(out, slippageBps)
		if err != nil {
			return nil, err
		}
		q.AmountIn, q.AmountOut, q.Fee = amount, out, fee
		q.OtherAmountThreshold = minOut
		q.PriceImpactBps = priceImpactBps(rIn, amount-fee)
		return q, nil
	}

	in, fee, err := SwapExactOut(rIn, rOut, fees, amount)
	if err != nil {
		return nil, err
	}
	maxIn, err := MaxAmountWithSlippage(in, slippageBps)
	if err != nil {
		return nil, err
	}
	q.AmountIn, q.AmountOut, q.Fee = in, amount, fee
	q.OtherAmountThreshold = maxIn
	q.PriceImpactBps = priceImpactBps(rIn, in-fee)
	return q, nil
}
