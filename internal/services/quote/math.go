package quote

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/hxuan190/pool-sniper/internal/common"
)

// maxIntermediateBits bounds every product in the swap math.
const maxIntermediateBits = 128

var u256BpsDenom = uint256.NewInt(common.BpsDenominator)

var uint256Pool = sync.Pool{
	New: func() interface{} {
		return new(uint256.Int)
	},
}

func getU256() *uint256.Int {
	return uint256Pool.Get().(*uint256.Int)
}

func putU256(vs ...*uint256.Int) {
	for _, v := range vs {
		v.Clear()
		uint256Pool.Put(v)
	}
}

// mul sets out = a*b and fails when the product leaves the working width.
func mul(a, b, out *uint256.Int) error {
	if _, overflow := out.MulOverflow(a, b); overflow || out.BitLen() > maxIntermediateBits {
		return common.ErrArithmeticOverflow
	}
	return nil
}

func add(a, b, out *uint256.Int) error {
	if _, overflow := out.AddOverflow(a, b); overflow || out.BitLen() > maxIntermediateBits {
		return common.ErrArithmeticOverflow
	}
	return nil
}

// ceilDiv sets out = ceil(a/b); b must be non-zero.
func ceilDiv(a, b, out *uint256.Int) {
	rem := getU256()
	out.DivMod(a, b, rem)
	if !rem.IsZero() {
		out.AddUint64(out, 1)
	}
	putU256(rem)
}

func toUint64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, common.ErrArithmeticOverflow
	}
	return v.Uint64(), nil
}
