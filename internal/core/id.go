package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewID returns a new entity identifier with the given prefix, e.g.
// "bgt_9f2c1a4e0b7d3c5f". IDs are assigned before anything touches the
// database so a materialized budget is internally consistent as a plain
// value, and the storage layer can insert the whole set in one transaction.
func NewID(prefix string) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// timestamp so we never hand out an empty id.
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return prefix + "_" + hex.EncodeToString(b)
}

// Well-known id prefixes.
const (
	BudgetIDPrefix      = "bgt"
	CategoryIDPrefix    = "cat"
	TransactionIDPrefix = "txn"
)
