package domain

import (
	"github.com/gagliardetto/solana-go"
)

// Instruction is a top-level instruction with its resolved accounts.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []solana.PublicKey
	Data      []byte
}

// Transaction is the part of a fetched transaction the pipeline reads.
type Transaction struct {
	Signature    solana.Signature
	Slot         uint64
	Instructions []Instruction
	LogMessages  []string
}

// LogNotification is one logsSubscribe delivery.
type LogNotification struct {
	Signature solana.Signature
	Slot      uint64
	Err       interface{}
	Logs      []string
}

// LogSubscription is a live log stream. Unsubscribe is safe to call more than once;
// only the first call releases the stream.
type LogSubscription interface {
	Notifications() <-chan LogNotification
	// Err reports why the stream closed, nil after Unsubscribe.
	Err() error
	Unsubscribe()
}
