package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(ticker|strategy_id|sequence)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(ticker, strategyID string, sequence int) string {
	data := fmt.Sprintf("%s|%s|%d", ticker, strategyID, sequence)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
