package builder

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/pool-sniper/internal/common"
)

// Derive computes a program derived address from seeds. Seeds that hash onto the
// curve, or exceed the seed limits, yield ErrInvalidSeed.
func Derive(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
	pda, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", common.ErrInvalidSeed, err)
	}
	return pda, nil
}

type vaultSignerKey struct {
	market  solana.PublicKey
	nonce   uint64
	program solana.PublicKey
}

var (
	vaultSignerCache   = make(map[vaultSignerKey]solana.PublicKey)
	vaultSignerCacheMu sync.RWMutex
)

// VaultSignerSeeds returns [market, le64(nonce)].
func VaultSignerSeeds(market solana.PublicKey, nonce uint64) [][]byte {
	nonceBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonceBytes, nonce)
	return [][]byte{market[:], nonceBytes}
}

// VaultSignerAddress derives the order-book vault signer of a market.
func VaultSignerAddress(market solana.PublicKey, nonce uint64, marketProgram solana.PublicKey) (solana.PublicKey, error) {
	key := vaultSignerKey{market: market, nonce: nonce, program: marketProgram}

	vaultSignerCacheMu.RLock()
	if cached, ok := vaultSignerCache[key]; ok {
		vaultSignerCacheMu.RUnlock()
		return cached, nil
	}
	vaultSignerCacheMu.RUnlock()

	signer, err := Derive(VaultSignerSeeds(market, nonce), marketProgram)
	if err != nil {
		return solana.PublicKey{}, err
	}

	vaultSignerCacheMu.Lock()
	vaultSignerCache[key] = signer
	vaultSignerCacheMu.Unlock()

	return signer, nil
}

// AmmAuthorityAddress derives the pool authority for a known nonce.
func AmmAuthorityAddress(nonce uint8, ammProgram solana.PublicKey) (solana.PublicKey, error) {
	return Derive([][]byte{[]byte(common.AmmAuthoritySeed), {nonce}}, ammProgram)
}

// FindAmmAuthority searches nonces from 255 down for the first one that derives a pool authority.
func FindAmmAuthority(ammProgram solana.PublicKey) (solana.PublicKey, uint8, error) {
	for nonce := uint8(255); nonce != 0; nonce-- {
		authority, err := AmmAuthorityAddress(nonce, ammProgram)
		if err == nil {
			return authority, nonce, nil
		}
	}
	return solana.PublicKey{}, 0, fmt.Errorf("%w: no authority nonce for %s", common.ErrInvalidSeed, ammProgram)
}

type ataKey struct {
	Wallet solana.PublicKey
	Mint   solana.PublicKey
}

var (
	ataCache   = make(map[ataKey]solana.PublicKey)
	ataCacheMu sync.RWMutex
)

// GetATAAddress returns the owner's associated token account for a classic SPL mint.
func GetATAAddress(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	key := ataKey{Wallet: wallet, Mint: mint}

	ataCacheMu.RLock()
	if cached, ok := ataCache[key]; ok {
		ataCacheMu.RUnlock()
		return cached, nil
	}
	ataCacheMu.RUnlock()

	ata, _, err := solana.FindProgramAddress(
		[][]byte{
			wallet[:],
			common.TokenProgramID[:],
			mint[:],
		},
		common.ATAProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, err
	}

	ataCacheMu.Lock()
	ataCache[key] = ata
	ataCacheMu.Unlock()

	return ata, nil
}

// CreateATAIdempotentInstruction creates the owner's token account for mint unless it exists.
func CreateATAIdempotentInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	ata, err := GetATAAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	return &createATAInstruction{
		payer: payer,
		ata:   ata,
		owner: owner,
		mint:  mint,
	}, nil
}

type createATAInstruction struct {
	payer solana.PublicKey
	ata   solana.PublicKey
	owner solana.PublicKey
	mint  solana.PublicKey
}

func (i *createATAInstruction) ProgramID() solana.PublicKey {
	return common.ATAProgramID
}

func (i *createATAInstruction) Accounts() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: i.payer, IsSigner: true, IsWritable: true},
		{PublicKey: i.ata, IsSigner: false, IsWritable: true},
		{PublicKey: i.owner, IsSigner: false, IsWritable: false},
		{PublicKey: i.mint, IsSigner: false, IsWritable: false},
		{PublicKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: common.TokenProgramID, IsSigner: false, IsWritable: false},
	}
}

// Data is the CreateIdempotent discriminator.
func (i *createATAInstruction) Data() ([]byte, error) {
	return []byte{1}, nil
}
