package history

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrDuplicateIdentity = errors.New("identity already tracked")

// Table maps device identities to their latest record.
// It is not safe for concurrent use; callers serialize access.
type Table struct {
	records map[string]*Record
}

func NewTable() *Table {
	return &Table{
		records: make(map[string]*Record),
	}
}

// Find returns the record for identity, or nil and false if it is not tracked.
func (t *Table) Find(identity string) (*Record, bool) {
	r, ok := t.records[identity]
	return r, ok
}

func (t *Table) Insert(r *Record) error {
	if r == nil {
		return fmt.Errorf("cannot insert nil record")
	}
	if _, exists := t.records[r.Identity]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, r.Identity)
	}
	t.records[r.Identity] = r
	return nil
}

// Remove forgets identity. Removing an unknown identity is a no-op.
func (t *Table) Remove(identity string) {
	delete(t.records, identity)
}

// EvictOlderThan removes every record last seen more than window before now
// and returns how many were dropped. A record exactly window old is kept.
func (t *Table) EvictOlderThan(now time.Time, window time.Duration) int {
	evicted := 0
	for identity, r := range t.records {
		if r.Age(now) > window {
			delete(t.records, identity)
			evicted++
		}
	}
	return evicted
}

func (t *Table) Len() int {
	return len(t.records)
}

// Identities returns the tracked identities in sorted order.
func (t *Table) Identities() []string {
	ids := make([]string, 0, len(t.records))
	for identity := range t.records {
		ids = append(ids, identity)
	}
	sort.Strings(ids)
	return ids
}
