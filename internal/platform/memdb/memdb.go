// Package memdb provides the locking and rollback discipline shared by the
// in-memory repositories. All repositories built on the same DB see a single
// critical section: WithinTx holds the write lock for the whole callback, and
// writes performed inside it are undone when the callback fails.
package memdb

import (
	"context"
	"sync"
)

type txKey struct{}

type tx struct {
	db   *DB
	undo []func()
}

// DB is the lock shared by a set of in-memory repositories.
type DB struct {
	mu sync.RWMutex
}

// New creates a new DB.
func New() *DB {
	return &DB{}
}

func (d *DB) txFrom(ctx context.Context) *tx {
	if ctx == nil {
		return nil
	}
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t.db != d {
		return nil
	}
	return t
}

// InTx reports whether ctx carries an open transaction on d.
func (d *DB) InTx(ctx context.Context) bool {
	return d.txFrom(ctx) != nil
}

// WithinTx runs fn holding the write lock. A nested call joins the outer
// transaction. When fn returns an error every write recorded through Write is
// rolled back in reverse order before the lock is released.
func (d *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if d.txFrom(ctx) != nil {
		return fn(ctx)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t := &tx{db: d}
	err := fn(context.WithValue(ctx, txKey{}, t))
	if err != nil {
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
	}
	return err
}

// Read runs fn under the read lock, or directly when ctx already holds the
// write lock through WithinTx.
func (d *DB) Read(ctx context.Context, fn func()) {
	if d.txFrom(ctx) != nil {
		fn()
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn()
}

// Write runs fn under the write lock. fn returns the function that reverts
// its change; inside a transaction it is kept for rollback, outside one it is
// discarded.
func (d *DB) Write(ctx context.Context, fn func() (undo func())) {
	if t := d.txFrom(ctx); t != nil {
		if undo := fn(); undo != nil {
			t.undo = append(t.undo, undo)
		}
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}
