package builder

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/pool-sniper/internal/common"
	"github.com/hxuan190/pool-sniper/internal/domain"
)

// Raydium v4 instruction tags.
const (
	SwapBaseInTag  uint8 = 9
	SwapBaseOutTag uint8 = 11
)

// swapDataLen is tag + two u64 amounts.
const swapDataLen = 17

// SwapAccounts is everything a v4 swap touches besides the amounts.
type SwapAccounts struct {
	Amm             domain.AmmKeys
	Market          domain.MarketKeys
	UserSource      solana.PublicKey
	UserDestination solana.PublicKey
	Owner           solana.PublicKey
}

func encodeSwapData(tag uint8, first, second uint64) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, swapDataLen))
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(tag); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(first, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(second, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SwapBaseInData encodes tag 9, amount in, minimum amount out.
func SwapBaseInData(amountIn, minAmountOut uint64) ([]byte, error) {
	return encodeSwapData(SwapBaseInTag, amountIn, minAmountOut)
}

// SwapBaseOutData encodes tag 11, maximum amount in, amount out.
func SwapBaseOutData(maxAmountIn, amountOut uint64) ([]byte, error) {
	return encodeSwapData(SwapBaseOutTag, maxAmountIn, amountOut)
}

func (a *SwapAccounts) metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.Meta(common.TokenProgramID),
		solana.Meta(a.Amm.AmmPool).WRITE(),
		solana.Meta(a.Amm.Authority),
		solana.Meta(a.Amm.OpenOrders).WRITE(),
		solana.Meta(a.Amm.CoinVault).WRITE(),
		solana.Meta(a.Amm.PcVault).WRITE(),
		solana.Meta(a.Amm.MarketProgram),
		solana.Meta(a.Amm.Market).WRITE(),
		solana.Meta(a.Market.Bids).WRITE(),
		solana.Meta(a.Market.Asks).WRITE(),
		solana.Meta(a.Market.EventQueue).WRITE(),
		solana.Meta(a.Market.CoinVault).WRITE(),
		solana.Meta(a.Market.PcVault).WRITE(),
		solana.Meta(a.Market.VaultSigner),
		solana.Meta(a.UserSource).WRITE(),
		solana.Meta(a.UserDestination).WRITE(),
		solana.Meta(a.Owner).SIGNER(),
	}
}

func SwapBaseInInstruction(accounts SwapAccounts, amountIn, minAmountOut uint64) (*solana.GenericInstruction, error) {
	data, err := SwapBaseInData(amountIn, minAmountOut)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(common.RaydiumAmmV4ProgramID, accounts.metas(), data), nil
}

func SwapBaseOutInstruction(accounts SwapAccounts, maxAmountIn, amountOut uint64) (*solana.GenericInstruction, error) {
	data, err := SwapBaseOutData(maxAmountIn, amountOut)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(common.RaydiumAmmV4ProgramID, accounts.metas(), data), nil
}
