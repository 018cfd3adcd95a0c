// Package stream keeps the bounded, newest-first list of live errors.
package stream

import (
	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// DefaultMaxItems is the buffer capacity when none is configured.
const DefaultMaxItems = 10

// Snapshot is an immutable copy of the buffer state.
type Snapshot struct {
	Items    []domain.ErrorRecord `json:"items"`
	NewCount int                  `json:"new_count"`
	Paused   bool                 `json:"paused"`
	MaxItems int                  `json:"max_items"`
	Version  uint64               `json:"version"`
}

// Buffer merges poll results into a capped list, newest first, and counts
// records seen since the last acknowledgement.
//
// Records are deduplicated by ID only: a record already shown is never
// updated, even if its count or timestamps changed on the server. Buffer is
// not safe for concurrent use; Live adds locking.
type Buffer struct {
	items    []domain.ErrorRecord
	newCount int
	paused   bool
	max      int
	version  uint64
}

// NewBuffer returns an empty buffer holding at most max records. A
// non-positive max uses DefaultMaxItems.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultMaxItems
	}
	return &Buffer{max: max, items: make([]domain.ErrorRecord, 0, max)}
}

// Merge applies one poll result and returns the records that were not
// already buffered, in service order. While paused the result is discarded.
func (b *Buffer) Merge(incoming []domain.ErrorRecord) []domain.ErrorRecord {
	if b.paused {
		return nil
	}

	seen := make(map[string]struct{}, len(b.items)+len(incoming))
	for _, item := range b.items {
		seen[item.ID] = struct{}{}
	}

	fresh := make([]domain.ErrorRecord, 0, len(incoming))
	for _, rec := range incoming {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		fresh = append(fresh, rec)
	}
	if len(fresh) == 0 {
		return nil
	}

	merged := make([]domain.ErrorRecord, 0, len(fresh)+len(b.items))
	merged = append(merged, fresh...)
	merged = append(merged, b.items...)
	if len(merged) > b.max {
		merged = merged[:b.max]
	}
	b.items = merged
	b.newCount += len(fresh)
	b.version++
	return fresh
}

// Acknowledge resets the new-record counter.
func (b *Buffer) Acknowledge() {
	if b.newCount == 0 {
		return
	}
	b.newCount = 0
	b.version++
}

// Pause stops merges from changing the buffer.
func (b *Buffer) Pause() {
	if b.paused {
		return
	}
	b.paused = true
	b.version++
}

// Resume re-enables merges and resets the new-record counter.
func (b *Buffer) Resume() {
	if !b.paused && b.newCount == 0 {
		return
	}
	b.paused = false
	b.newCount = 0
	b.version++
}

// Refresh empties the buffer. The paused flag is left as is.
func (b *Buffer) Refresh() {
	if len(b.items) == 0 && b.newCount == 0 {
		return
	}
	b.items = make([]domain.ErrorRecord, 0, b.max)
	b.newCount = 0
	b.version++
}

func (b *Buffer) Len() int      { return len(b.items) }
func (b *Buffer) NewCount() int { return b.newCount }
func (b *Buffer) Paused() bool  { return b.paused }
func (b *Buffer) Max() int      { return b.max }

// Version changes every time the visible state changes.
func (b *Buffer) Version() uint64 { return b.version }

// Snapshot copies the current state.
func (b *Buffer) Snapshot() Snapshot {
	items := make([]domain.ErrorRecord, len(b.items))
	copy(items, b.items)
	return Snapshot{
		Items:    items,
		NewCount: b.newCount,
		Paused:   b.paused,
		MaxItems: b.max,
		Version:  b.version,
	}
}
