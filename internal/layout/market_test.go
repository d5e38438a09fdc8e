package layout

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/pool-sniper/internal/common"
	"github.com/hxuan190/pool-sniper/internal/domain"
)

// testKey returns a key whose bytes are all b.
func testKey(b byte) solana.PublicKey {
	var pk solana.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func putKey(inner []byte, word int, pk solana.PublicKey) {
	copy(inner[word*8:], pk[:])
}

func putWord(inner []byte, word int, v uint64) {
	binary.LittleEndian.PutUint64(inner[word*8:], v)
}

func marketInner(size int, flags domain.AccountFlags) []byte {
	inner := make([]byte, size)
	putWord(inner, 0, uint64(flags))
	putKey(inner, 1, testKey(1))
	putWord(inner, 5, 254)
	putKey(inner, 6, testKey(6))
	putKey(inner, 10, testKey(10))
	putKey(inner, 14, testKey(14))
	putWord(inner, 18, 18_000)
	putWord(inner, 19, 19_000)
	putKey(inner, 20, testKey(20))
	putWord(inner, 24, 24_000)
	putWord(inner, 25, 25_000)
	putWord(inner, 26, 26_000)
	putKey(inner, 27, testKey(27))
	putKey(inner, 31, testKey(31))
	putKey(inner, 35, testKey(35))
	putKey(inner, 39, testKey(39))
	putWord(inner, 43, 1_000_000)
	putWord(inner, 44, 100)
	putWord(inner, 45, 22)
	putWord(inner, 46, 46_000)
	return inner
}

func TestParseMarketStateV1(t *testing.T) {
	raw := frame(marketInner(MarketStateSize, domain.FlagsRequiredMarket))
	require.Len(t, raw, 388)

	state, err := ParseMarketState(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.FlagsRequiredMarket, state.AccountFlags)
	assert.Equal(t, testKey(1), state.OwnAddress)
	assert.Equal(t, uint64(254), state.VaultSignerNonce)
	assert.Equal(t, testKey(6), state.CoinMint)
	assert.Equal(t, testKey(10), state.PcMint)
	assert.Equal(t, testKey(14), state.CoinVault)
	assert.Equal(t, uint64(18_000), state.CoinDepositsTotal)
	assert.Equal(t, uint64(19_000), state.CoinFeesAccrued)
	assert.Equal(t, testKey(20), state.PcVault)
	assert.Equal(t, uint64(24_000), state.PcDepositsTotal)
	assert.Equal(t, uint64(25_000), state.PcFeesAccrued)
	assert.Equal(t, uint64(26_000), state.PcDustThreshold)
	assert.Equal(t, testKey(27), state.RequestQueue)
	assert.Equal(t, testKey(31), state.EventQueue)
	assert.Equal(t, testKey(35), state.Bids)
	assert.Equal(t, testKey(39), state.Asks)
	assert.Equal(t, uint64(1_000_000), state.CoinLotSize)
	assert.Equal(t, uint64(100), state.PcLotSize)
	assert.Equal(t, uint64(22), state.FeeRateBps)
	assert.Equal(t, uint64(46_000), state.ReferrerRebatesAccrued)
}

func TestParseMarketStateV2(t *testing.T) {
	flags := domain.FlagsRequiredMarket | domain.FlagPermissioned | domain.FlagCrankAuthorityRequired
	inner := marketInner(MarketStateV2Size, flags)
	copy(inner[MarketStateSize:], testKey(0xa1).Bytes())
	copy(inner[MarketStateSize+32:], testKey(0xa2).Bytes())
	copy(inner[MarketStateSize+64:], testKey(0xa3).Bytes())
	raw := frame(inner)

	state, err := ParseMarketState(raw)
	require.NoError(t, err)
	assert.Equal(t, flags, state.AccountFlags)
	assert.Equal(t, testKey(31), state.EventQueue)
	assert.Equal(t, uint64(254), state.VaultSignerNonce)

	v2, err := ParseMarketStateV2(raw)
	require.NoError(t, err)
	assert.Equal(t, testKey(0xa1), v2.OpenOrdersAuthority)
	assert.Equal(t, testKey(0xa2), v2.PruneAuthority)
	assert.Equal(t, testKey(0xa3), v2.ConsumeEventsAuthority)
	assert.Equal(t, *state, v2.Inner)
}

func TestParseMarketStateFlags(t *testing.T) {
	req := domain.FlagsRequiredMarket
	tests := []struct {
		name  string
		flags domain.AccountFlags
		ok    bool
	}{
		{"initialized market", req, true},
		{"disabled", req | domain.FlagDisabled, true},
		{"missing initialized", domain.FlagMarket, false},
		{"missing market", domain.FlagInitialized, false},
		{"zero", 0, false},
		{"open orders", req | domain.FlagOpenOrders, false},
		{"request queue", req | domain.FlagRequestQueue, false},
		{"event queue", req | domain.FlagEventQueue, false},
		{"bids", req | domain.FlagBids, false},
		{"asks", req | domain.FlagAsks, false},
		{"closed", req | domain.FlagClosed, false},
		{"unknown high bit", req | 1<<40, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMarketState(frame(marketInner(MarketStateSize, tt.flags)))
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, common.ErrInvalidFlags)
		})
	}
}

func TestParseMarketStatePermissionedFlagsOnV2(t *testing.T) {
	base := domain.FlagsRequiredMarket | domain.FlagPermissioned
	for _, flags := range []domain.AccountFlags{
		base,
		base | domain.FlagDisabled,
		base | domain.FlagCrankAuthorityRequired | domain.FlagDisabled,
	} {
		_, err := ParseMarketState(frame(marketInner(MarketStateV2Size, flags)))
		require.NoError(t, err, flags.String())
	}

	_, err := ParseMarketState(frame(marketInner(MarketStateV2Size, base|domain.FlagBids)))
	require.ErrorIs(t, err, common.ErrInvalidFlags)
}

func TestParseMarketStateSelectsShapeFromFlags(t *testing.T) {
	// A permissioned flag word on a V1 sized record cannot be decoded as V2.
	raw := frame(marketInner(MarketStateSize, domain.FlagsRequiredMarket|domain.FlagPermissioned))
	_, err := ParseMarketState(raw)
	require.ErrorIs(t, err, common.ErrMalformedLayout)

	// And a V2 sized record without the flag is rejected as V1.
	raw = frame(marketInner(MarketStateV2Size, domain.FlagsRequiredMarket))
	_, err = ParseMarketState(raw)
	require.ErrorIs(t, err, common.ErrMalformedLayout)
}

func TestParseMarketStateMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"too short for flags", []byte("serum123")},
		{"truncated record", frame(marketInner(MarketStateSize, domain.FlagsRequiredMarket)[:MarketStateSize-8])},
		{"bad head", append([]byte("xxxxx"), frame(marketInner(MarketStateSize, domain.FlagsRequiredMarket))[5:]...)},
		{"unaligned", frame(marketInner(MarketStateSize+3, domain.FlagsRequiredMarket))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMarketState(tt.raw)
			require.ErrorIs(t, err, common.ErrMalformedLayout)
		})
	}
}

func TestReadAccountFlagsMatchesDecodedWord(t *testing.T) {
	flags := domain.FlagsRequiredMarket | domain.FlagDisabled
	raw := frame(marketInner(MarketStateSize, flags))

	got, err := ReadAccountFlags(raw)
	require.NoError(t, err)
	words, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, flags, got)
	assert.Equal(t, uint64(flags), words[0])
	assert.Equal(t, "Initialized|Market|Disabled", got.String())
}
