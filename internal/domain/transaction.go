package domain

import "time"

// Transaction is an immutable ledger entry recording one quantity change.
// Change holds the requested delta, which may differ from the effective
// change when the item's quantity was clamped at zero.
type Transaction struct {
	ID        int64
	ItemID    int64
	Change    int
	Note      string
	Timestamp time.Time
}
