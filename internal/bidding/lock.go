package bidding

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// auctionLocks serializes bidders per auction within this process. The
// SELECT ... FOR UPDATE taken inside the transaction is what protects
// concurrent writers across replicas; this keyed lock bounds the wait with
// the caller's context so a queued bidder fails fast with Contention instead
// of piling up on the database. Bidders on different auctions never contend.
type auctionLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	ch   chan struct{} // 1-slot token; holding the token means holding the lock
	refs int
}

func newAuctionLocks() *auctionLocks {
	return &auctionLocks{entries: make(map[uuid.UUID]*lockEntry)}
}

// acquire blocks until the per-auction lock is held or ctx expires. On
// success it returns a release func that is safe to call more than once.
func (l *auctionLocks) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		l.entries[id] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(id, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			<-e.ch
			l.unref(id, e)
		})
	}
	return release, nil
}

func (l *auctionLocks) unref(id uuid.UUID, e *lockEntry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, id)
	}
	l.mu.Unlock()
}
