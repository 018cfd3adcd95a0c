package consumer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

var errMissingRecordID = errors.New("observation has no record_id")

// JSONObservationParser implements MessageParser for JSON observation messages
type JSONObservationParser struct {
	now func() time.Time
}

func NewJSONObservationParser() *JSONObservationParser {
	return &JSONObservationParser{now: time.Now}
}

// Parse decodes a message body, rejecting bodies without a record id or
// with an unknown level.
func (p *JSONObservationParser) Parse(body []byte) (*domain.Observation, error) {
	var obs domain.Observation
	if err := json.Unmarshal(body, &obs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	if obs.RecordID == "" {
		return nil, errMissingRecordID
	}

	level, err := domain.ParseLevel(obs.Level)
	if err != nil {
		return nil, err
	}
	obs.Level = string(level)

	if obs.Count == 0 {
		obs.Count = 1
	}
	now := p.now()
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = now
	}
	obs.Version = uint64(now.UnixNano())

	return &obs, nil
}
