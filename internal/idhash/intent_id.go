package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeIntentID computes a deterministic intent_id using SHA256.
// Formula: SHA256(ticker|direction|created_at_ms)
// One ticker produces at most one intent per cycle, so the triple is
// unique per cycle timestamp.
func ComputeIntentID(ticker, direction string, createdAtMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", ticker, direction, createdAtMs)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
