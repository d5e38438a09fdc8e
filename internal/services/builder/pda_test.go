package builder

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/pool-sniper/internal/common"
)

var testMarket = solana.MustPublicKeyFromBase58("8BnEgHoWFysVcuFFX7QztDmzuH8r5ZFvyP3sYwn1XTh6")

func TestDeriveDeterministic(t *testing.T) {
	seeds := [][]byte{[]byte(common.AmmAuthoritySeed), {252}}
	var first solana.PublicKey
	var firstErr error
	for i := 0; i < 3; i++ {
		got, err := Derive(seeds, common.RaydiumAmmV4ProgramID)
		if i == 0 {
			first, firstErr = got, err
			continue
		}
		assert.Equal(t, first, got)
		assert.Equal(t, firstErr, err)
	}
}

func TestDeriveSeedChangesAddress(t *testing.T) {
	seen := make(map[solana.PublicKey]uint64)
	for nonce := uint64(0); nonce < 64; nonce++ {
		addr, err := VaultSignerAddress(testMarket, nonce, common.OpenBookProgramID)
		if err != nil {
			require.ErrorIs(t, err, common.ErrInvalidSeed)
			continue
		}
		prev, dup := seen[addr]
		require.False(t, dup, "nonce %d collides with nonce %d", nonce, prev)
		seen[addr] = nonce
	}
	assert.NotEmpty(t, seen)
}

func TestDeriveRejectsOversizedSeeds(t *testing.T) {
	long := make([]byte, solana.MaxSeedLength+1)
	_, err := Derive([][]byte{long}, common.RaydiumAmmV4ProgramID)
	require.ErrorIs(t, err, common.ErrInvalidSeed)

	many := make([][]byte, solana.MaxSeeds+1)
	for i := range many {
		many[i] = []byte{byte(i)}
	}
	_, err = Derive(many, common.RaydiumAmmV4ProgramID)
	require.ErrorIs(t, err, common.ErrInvalidSeed)
}

func TestVaultSignerSeeds(t *testing.T) {
	seeds := VaultSignerSeeds(testMarket, 0x0102)
	require.Len(t, seeds, 2)
	assert.Equal(t, testMarket[:], seeds[0])
	assert.Equal(t, []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0}, seeds[1])
}

func TestVaultSignerAddressMatchesDerive(t *testing.T) {
	for nonce := uint64(0); nonce < 32; nonce++ {
		want, wantErr := Derive(VaultSignerSeeds(testMarket, nonce), common.OpenBookProgramID)
		got, err := VaultSignerAddress(testMarket, nonce, common.OpenBookProgramID)
		if wantErr != nil {
			require.ErrorIs(t, err, common.ErrInvalidSeed)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, want, got)

		// second call is served from the cache
		cached, err := VaultSignerAddress(testMarket, nonce, common.OpenBookProgramID)
		require.NoError(t, err)
		assert.Equal(t, got, cached)
	}
}

func TestAmmAuthority(t *testing.T) {
	authority, nonce, err := FindAmmAuthority(common.RaydiumAmmV4ProgramID)
	require.NoError(t, err)
	assert.Equal(t, "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1", authority.String())

	// The found nonce is the highest one that lands off the curve.
	failures := 0
	for n := 255; n >= 0; n-- {
		got, err := AmmAuthorityAddress(uint8(n), common.RaydiumAmmV4ProgramID)
		if err != nil {
			require.ErrorIs(t, err, common.ErrInvalidSeed)
			failures++
			continue
		}
		assert.Equal(t, nonce, uint8(n))
		assert.Equal(t, authority, got)
		break
	}
	assert.Equal(t, 255-int(nonce), failures)
}

func TestGetATAAddress(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	want, _, err := solana.FindAssociatedTokenAddress(owner, common.WSOLMint)
	require.NoError(t, err)

	got, err := GetATAAddress(owner, common.WSOLMint)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ix, err := CreateATAIdempotentInstruction(owner, owner, common.WSOLMint)
	require.NoError(t, err)
	assert.Equal(t, common.ATAProgramID, ix.ProgramID())
	accounts := ix.Accounts()
	require.Len(t, accounts, 6)
	assert.Equal(t, want, accounts[1].PublicKey)
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)
}
