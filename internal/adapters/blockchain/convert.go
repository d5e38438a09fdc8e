package blockchain

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/hxuan190/pool-sniper/internal/domain"
)

// convertParsedTransaction keeps the top-level instructions and logs of a jsonParsed result.
func convertParsedTransaction(sig solana.Signature, res *rpc.GetParsedTransactionResult) *domain.Transaction {
	tx := &domain.Transaction{Signature: sig}
	if res == nil {
		return tx
	}
	tx.Slot = res.Slot
	if res.Meta != nil {
		tx.LogMessages = res.Meta.LogMessages
	}
	if res.Transaction == nil {
		return tx
	}
	if len(res.Transaction.Signatures) > 0 {
		tx.Signature = res.Transaction.Signatures[0]
	}

	ixs := res.Transaction.Message.Instructions
	tx.Instructions = make([]domain.Instruction, 0, len(ixs))
	for _, ix := range ixs {
		if ix == nil {
			continue
		}
		tx.Instructions = append(tx.Instructions, domain.Instruction{
			ProgramID: ix.ProgramId,
			Accounts:  ix.Accounts,
			Data:      ix.Data,
		})
	}
	return tx
}

func convertLogResult(res *ws.LogResult) domain.LogNotification {
	return domain.LogNotification{
		Signature: res.Value.Signature,
		Slot:      res.Context.Slot,
		Err:       res.Value.Err,
		Logs:      res.Value.Logs,
	}
}
