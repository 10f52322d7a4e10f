package redis

import (
	"context"
	"time"

	"chain-comics.backend/pkg/crypto"
)

// NonceStore issues and consumes one-time authentication challenges, keyed by
// wallet address with a TTL. Redis expiry doubles as the purge mechanism, so
// stale nonces disappear without a sweep job and the registry survives
// multi-instance deployments.
type NonceStore struct {
	ttl time.Duration
}

var (
	setNonceValue     = Set
	consumeNonceValue = CompareAndDel
	generateNonce     = crypto.GenerateNonce
)

const noncePrefix = "auth:nonce:"

// NewNonceStore creates a new nonce store with the given validity window
func NewNonceStore(ttl time.Duration) *NonceStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &NonceStore{ttl: ttl}
}

// TTL returns the validity window for issued nonces
func (s *NonceStore) TTL() time.Duration {
	return s.ttl
}

// Issue generates a fresh nonce for the address and stores it under a TTL.
// Reissuing overwrites any previous unconsumed nonce for the same address.
func (s *NonceStore) Issue(ctx context.Context, address string) (string, time.Time, error) {
	nonce, err := generateNonce()
	if err != nil {
		return "", time.Time{}, err
	}

	if err := setNonceValue(ctx, noncePrefix+address, nonce, s.ttl); err != nil {
		return "", time.Time{}, err
	}

	return nonce, time.Now().Add(s.ttl), nil
}

// Consume removes the stored nonce for the address only when it matches the
// submitted value. The compare and the delete run as one redis script, so of
// two concurrent consumers exactly one succeeds, expired or unknown nonces
// fail closed, and a mismatched attempt cannot destroy the live challenge.
func (s *NonceStore) Consume(ctx context.Context, address, nonce string) (bool, error) {
	if nonce == "" {
		return false, nil
	}
	return consumeNonceValue(ctx, noncePrefix+address, nonce)
}
