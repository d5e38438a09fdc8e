package market

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSignatureCacheSize = 4096

// SignatureCache remembers recently handled transaction signatures.
type SignatureCache struct {
	cache *lru.Cache[solana.Signature, struct{}]
}

func NewSignatureCache(size int) (*SignatureCache, error) {
	if size <= 0 {
		size = DefaultSignatureCacheSize
	}
	c, err := lru.New[solana.Signature, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create signature cache: %w", err)
	}
	return &SignatureCache{cache: c}, nil
}

// Seen records sig and reports whether it had already been recorded.
func (c *SignatureCache) Seen(sig solana.Signature) bool {
	ok, _ := c.cache.ContainsOrAdd(sig, struct{}{})
	return ok
}

func (c *SignatureCache) Len() int {
	return c.cache.Len()
}
