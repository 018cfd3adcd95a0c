package domain

import "time"

// Observation is an ErrorRecord as seen by the live stream, stored in
// ClickHouse for reports.
type Observation struct {
	RecordID    string    `ch:"record_id" json:"record_id"`
	Fingerprint string    `ch:"fingerprint" json:"fingerprint"`
	Level       string    `ch:"level" json:"level"`
	Source      string    `ch:"source" json:"source"`
	Message     string    `ch:"message" json:"message"`
	Count       uint32    `ch:"count" json:"count"`
	Resolved    bool      `ch:"resolved" json:"resolved"`
	Timestamp   time.Time `ch:"timestamp" json:"timestamp"`
	FirstSeen   time.Time `ch:"first_seen" json:"first_seen"`
	LastSeen    time.Time `ch:"last_seen" json:"last_seen"`
	ObservedAt  time.Time `ch:"observed_at" json:"observed_at"`
	Version     uint64    `ch:"version" json:"-"`
}

// NewObservation snapshots a record at observedAt.
func NewObservation(record ErrorRecord, observedAt time.Time) *Observation {
	count := record.Count
	if count < 1 {
		count = 1
	}
	return &Observation{
		RecordID:    record.ID,
		Fingerprint: record.Fingerprint,
		Level:       string(record.Level),
		Source:      record.Source,
		Message:     record.Message,
		Count:       uint32(count),
		Resolved:    record.Resolved,
		Timestamp:   record.Timestamp,
		FirstSeen:   record.FirstSeen,
		LastSeen:    record.LastSeen,
		ObservedAt:  observedAt,
	}
}
