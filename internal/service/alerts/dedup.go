package alerts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"
)

// Deduplicator suppresses repeat alerts with identical kind and body.
type Deduplicator struct {
	store  Store
	logger *zap.Logger
}

// NewDeduplicator wires a deduplicator over the given store.
func NewDeduplicator(store Store, logger *zap.Logger) *Deduplicator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduplicator{store: store, logger: logger}
}

// ShouldSend reports whether this (kind, body) pair has not been dispatched
// within the store's TTL window. Store failures fail open: a duplicate alert
// beats a silently dropped one.
func (d *Deduplicator) ShouldSend(ctx context.Context, kind, body string) bool {
	key := alertKey(kind, body)

	seen, err := d.store.Seen(ctx, key)
	if err != nil {
		d.logger.Warn("dedup store unavailable, sending anyway",
			zap.String("kind", kind),
			zap.Error(err))
		return true
	}
	if seen {
		d.logger.Debug("suppressed duplicate alert", zap.String("kind", kind))
	}
	return !seen
}

// alertKey hashes kind and body so arbitrarily long alert bodies become
// fixed-size store keys.
func alertKey(kind, body string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{'\n'})
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}
