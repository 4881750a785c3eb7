package ingest

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// txnUIDLen is the stored fingerprint prefix length in hex characters.
const txnUIDLen = 16

// MakeTxnUID derives the transaction fingerprint from its defining fields.
// Identical inputs always produce the same fingerprint; any single differing
// field produces a different one. The digest is truncated for storage
// compactness, which keeps collisions negligible at statement volumes.
func MakeTxnUID(originalTxnID string, txnDate time.Time, amount int64, description, source string) string {
	base := fmt.Sprintf("%s|%s|%d|%s|%s", originalTxnID, txnDate.Format("2006-01-02"), amount, description, source)
	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:])[:txnUIDLen]
}
