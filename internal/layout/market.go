package layout

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/pool-sniper/internal/common"
	"github.com/hxuan190/pool-sniper/internal/domain"
)

// Word offsets of the V1 market record.
const (
	wordAccountFlags           = 0
	wordOwnAddress             = 1
	wordVaultSignerNonce       = 5
	wordCoinMint               = 6
	wordPcMint                 = 10
	wordCoinVault              = 14
	wordCoinDepositsTotal      = 18
	wordCoinFeesAccrued        = 19
	wordPcVault                = 20
	wordPcDepositsTotal        = 24
	wordPcFeesAccrued          = 25
	wordPcDustThreshold        = 26
	wordRequestQueue           = 27
	wordEventQueue             = 31
	wordBids                   = 35
	wordAsks                   = 39
	wordCoinLotSize            = 43
	wordPcLotSize              = 44
	wordFeeRateBps             = 45
	wordReferrerRebatesAccrued = 46

	marketStateWords = 47
)

const (
	MarketStateSize = marketStateWords * wordSize
	// V2 appends three authorities and 992 reserved bytes.
	marketStateV2Reserved = 992
	MarketStateV2Size     = MarketStateSize + 3*solana.PublicKeyLength + marketStateV2Reserved
)

// ReadAccountFlags reads the flags word straight from the raw account, before the
// record shape is known.
func ReadAccountFlags(raw []byte) (domain.AccountFlags, error) {
	start := len(common.AccountHeadPadding)
	if len(raw) < start+wordSize {
		return 0, fmt.Errorf("%w: account length %d is too small to contain flags", common.ErrMalformedLayout, len(raw))
	}
	return domain.AccountFlags(binary.LittleEndian.Uint64(raw[start : start+wordSize])), nil
}

// ParseMarketState decodes a market account of either shape and returns the V1 record.
func ParseMarketState(raw []byte) (*domain.MarketState, error) {
	flags, err := ReadAccountFlags(raw)
	if err != nil {
		return nil, err
	}
	if flags.Has(domain.FlagPermissioned) {
		v2, err := ParseMarketStateV2(raw)
		if err != nil {
			return nil, err
		}
		return &v2.Inner, nil
	}

	inner, err := interior(raw, MarketStateSize)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(inner)
	state := r.marketState()
	if r.err != nil {
		return nil, r.err
	}
	if err := checkFlags(state.AccountFlags); err != nil {
		return nil, err
	}
	return &state, nil
}

// ParseMarketStateV2 decodes a permissioned market account.
func ParseMarketStateV2(raw []byte) (*domain.MarketStateV2, error) {
	inner, err := interior(raw, MarketStateV2Size)
	if err != nil {
		return nil, err
	}
	r := newFieldReader(inner)
	state := domain.MarketStateV2{Inner: r.marketState()}
	state.OpenOrdersAuthority = r.keyAt(MarketStateSize)
	state.PruneAuthority = r.keyAt(MarketStateSize + solana.PublicKeyLength)
	state.ConsumeEventsAuthority = r.keyAt(MarketStateSize + 2*solana.PublicKeyLength)
	if r.err != nil {
		return nil, r.err
	}
	if err := checkFlags(state.Inner.AccountFlags); err != nil {
		return nil, err
	}
	if !state.Inner.AccountFlags.Has(domain.FlagPermissioned) {
		return nil, fmt.Errorf("%w: %s is not a permissioned market", common.ErrInvalidFlags, state.Inner.AccountFlags)
	}
	return &state, nil
}

func interior(raw []byte, size int) ([]byte, error) {
	inner, err := StripPadding(raw)
	if err != nil {
		return nil, err
	}
	if len(inner)%wordSize != 0 {
		return nil, fmt.Errorf("%w: interior length %d is not a multiple of %d", common.ErrMalformedLayout, len(inner), wordSize)
	}
	if len(inner) != size {
		return nil, fmt.Errorf("%w: market record is %d bytes, want %d", common.ErrMalformedLayout, len(inner), size)
	}
	return inner, nil
}

func checkFlags(flags domain.AccountFlags) error {
	if !flags.ValidMarket() {
		return fmt.Errorf("%w: %#x (%s)", common.ErrInvalidFlags, uint64(flags), flags)
	}
	return nil
}

// fieldReader reads little-endian fields at explicit byte offsets. The first
// failure sticks; later reads return zero values.
type fieldReader struct {
	dec *bin.Decoder
	err error
}

func newFieldReader(data []byte) *fieldReader {
	return &fieldReader{dec: bin.NewBinDecoder(data)}
}

func (r *fieldReader) seek(offset int) bool {
	if r.err != nil {
		return false
	}
	if err := r.dec.SetPosition(uint(offset)); err != nil {
		r.err = fmt.Errorf("%w: %v", common.ErrMalformedLayout, err)
		return false
	}
	return true
}

func (r *fieldReader) u64(word int) uint64 {
	if !r.seek(word * wordSize) {
		return 0
	}
	v, err := r.dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		r.err = fmt.Errorf("%w: word %d: %v", common.ErrMalformedLayout, word, err)
		return 0
	}
	return v
}

func (r *fieldReader) key(word int) solana.PublicKey {
	return r.keyAt(word * wordSize)
}

func (r *fieldReader) keyAt(offset int) solana.PublicKey {
	var pk solana.PublicKey
	if !r.seek(offset) {
		return pk
	}
	b, err := r.dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		r.err = fmt.Errorf("%w: key at %d: %v", common.ErrMalformedLayout, offset, err)
		return pk
	}
	copy(pk[:], b)
	return pk
}

func (r *fieldReader) marketState() domain.MarketState {
	return domain.MarketState{
		AccountFlags:           domain.AccountFlags(r.u64(wordAccountFlags)),
		OwnAddress:             r.key(wordOwnAddress),
		VaultSignerNonce:       r.u64(wordVaultSignerNonce),
		CoinMint:               r.key(wordCoinMint),
		PcMint:                 r.key(wordPcMint),
		CoinVault:              r.key(wordCoinVault),
		CoinDepositsTotal:      r.u64(wordCoinDepositsTotal),
		CoinFeesAccrued:        r.u64(wordCoinFeesAccrued),
		PcVault:                r.key(wordPcVault),
		PcDepositsTotal:        r.u64(wordPcDepositsTotal),
		PcFeesAccrued:          r.u64(wordPcFeesAccrued),
		PcDustThreshold:        r.u64(wordPcDustThreshold),
		RequestQueue:           r.key(wordRequestQueue),
		EventQueue:             r.key(wordEventQueue),
		Bids:                   r.key(wordBids),
		Asks:                   r.key(wordAsks),
		CoinLotSize:            r.u64(wordCoinLotSize),
		PcLotSize:              r.u64(wordPcLotSize),
		FeeRateBps:             r.u64(wordFeeRateBps),
		ReferrerRebatesAccrued: r.u64(wordReferrerRebatesAccrued),
	}
}
