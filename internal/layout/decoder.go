// Package layout decodes OpenBook (Serum) order-book accounts.
//
// Order-book accounts are framed by a 5 byte "serum" head and a 7 byte "padding"
// tail. Everything in between is a packed record of little-endian 8 byte words.
// Fields are read by explicit offset; the raw bytes are never overlaid on a struct.
package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/hxuan190/pool-sniper/internal/common"
)

const wordSize = 8

// StripPadding checks the head and tail markers and returns the interior bytes.
// The returned slice aliases raw.
func StripPadding(raw []byte) ([]byte, error) {
	head, tail := len(common.AccountHeadPadding), len(common.AccountTailPadding)
	if len(raw) < head+tail {
		return nil, fmt.Errorf("%w: account length %d is too small to contain valid padding", common.ErrMalformedLayout, len(raw))
	}
	if !bytes.Equal(raw[:head], common.AccountHeadPadding) {
		return nil, fmt.Errorf("%w: head padding mismatch", common.ErrMalformedLayout)
	}
	if !bytes.Equal(raw[len(raw)-tail:], common.AccountTailPadding) {
		return nil, fmt.Errorf("%w: tail padding mismatch", common.ErrMalformedLayout)
	}
	return raw[head : len(raw)-tail], nil
}

// Decode strips the markers and reads the interior as little-endian u64 words.
func Decode(raw []byte) ([]uint64, error) {
	inner, err := StripPadding(raw)
	if err != nil {
		return nil, err
	}
	if len(inner)%wordSize != 0 {
		return nil, fmt.Errorf("%w: interior length %d is not a multiple of %d", common.ErrMalformedLayout, len(inner), wordSize)
	}

	words := make([]uint64, len(inner)/wordSize)
	dec := bin.NewBinDecoder(inner)
	for i := range words {
		w, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("%w: word %d: %v", common.ErrMalformedLayout, i, err)
		}
		words[i] = w
	}
	return words, nil
}
