package ports

import "context"

// SaleLocker provides the per-sale exclusive section that serializes every
// mutating operation against the same sale id. Acquire blocks until the lock
// is held or ctx is done; the returned release function must be called
// exactly once. The reserved key "pool" guards the pool balance and refund
// ledger as a single resource.
type SaleLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// PoolLockKey serializes pool balance and refund-ledger mutations.
const PoolLockKey = "pool"
