// Package store persists named collections of JSON records. A collection is
// an ordered sequence of documents replaced wholesale on every write; the
// read-modify-write cycle runs under a per-collection lock so concurrent
// mutations never lose each other's writes.
package store

import (
	"encoding/json"
	"strconv"
	"sync"
)

// Store is the collection persistence primitive the repositories are built
// on. Load of a collection that was never written returns an empty sequence.
// Replace overwrites the whole collection; a reader never observes a partial
// write. Update runs fn under the collection's lock with the current
// records and persists whatever fn returns; if fn errors, nothing is
// written.
type Store interface {
	Load(name string) ([]json.RawMessage, error)
	Replace(name string, records []json.RawMessage) error
	Update(name string, fn func(records []json.RawMessage) ([]json.RawMessage, error)) error
}

// Collection names used by the engine.
const (
	Products = "products"
	Carts    = "carts"
)

// NextID derives the next identifier from a collection snapshot: one more
// than the highest parseable positive integer id, or 1 when there is none.
// Records whose id is absent or not numeric are skipped.
func NextID(records []json.RawMessage) int {
	max := 0
	for _, rec := range records {
		var probe struct {
			ID any `json:"id"`
		}
		if json.Unmarshal(rec, &probe) != nil {
			continue
		}
		var n int
		switch v := probe.ID.(type) {
		case float64:
			n = int(v)
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			n = int(f)
		default:
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// lockTable hands out one mutex per collection name.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (t *lockTable) get(name string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locks == nil {
		t.locks = make(map[string]*sync.Mutex)
	}
	l, ok := t.locks[name]
	if !ok {
		l = &sync.Mutex{}
		t.locks[name] = l
	}
	return l
}
