package views

import (
	"fmt"
	"time"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/stream"
)

// EmptyMessage is shown for a successful fetch with no results.
const EmptyMessage = "No errors found"

type ErrorRow struct {
	ID       string       `json:"id"`
	Level    domain.Level `json:"level"`
	Message  string       `json:"message"`
	Source   string       `json:"source"`
	Count    int          `json:"count"`
	Resolved bool         `json:"resolved"`
	LastSeen time.Time    `json:"last_seen"`
	Age      string       `json:"age"`
}

func NewErrorRow(r domain.ErrorRecord, now time.Time) ErrorRow {
	seen := r.LastSeen
	if seen.IsZero() {
		seen = r.Timestamp
	}
	return ErrorRow{
		ID:       r.ID,
		Level:    r.Level,
		Message:  r.Message,
		Source:   r.Source,
		Count:    r.Count,
		Resolved: r.Resolved,
		LastSeen: seen,
		Age:      TimeAgo(seen, now),
	}
}

// ErrorTable is a page of errors. An empty result is not an error state.
type ErrorTable struct {
	Rows    []ErrorRow `json:"rows"`
	Total   int        `json:"total"`
	Empty   bool       `json:"empty"`
	Message string     `json:"message,omitempty"`
}

func NewErrorTable(list *domain.ErrorList, now time.Time) ErrorTable {
	table := ErrorTable{Rows: []ErrorRow{}}
	if list != nil {
		table.Total = list.Total
		for _, r := range list.Errors {
			table.Rows = append(table.Rows, NewErrorRow(r, now))
		}
	}
	if len(table.Rows) == 0 {
		table.Empty = true
		table.Message = EmptyMessage
	}
	return table
}

// StreamView renders the live stream.
type StreamView struct {
	Rows       []ErrorRow `json:"rows"`
	NewCount   int        `json:"new_count"`
	ShowBadge  bool       `json:"show_badge"`
	Paused     bool       `json:"paused"`
	Loading    bool       `json:"loading"`
	Failed     bool       `json:"failed"`
	Message    string     `json:"message,omitempty"`
	MaxItems   int        `json:"max_items"`
	LastPollAt time.Time  `json:"last_poll_at,omitempty"`
}

func NewStreamView(s stream.Status, now time.Time) StreamView {
	view := StreamView{
		Rows:       make([]ErrorRow, 0, len(s.Items)),
		NewCount:   s.NewCount,
		ShowBadge:  s.NewCount > 0 && !s.Paused,
		Paused:     s.Paused,
		Loading:    s.Loading,
		Failed:     s.Err != nil,
		MaxItems:   s.MaxItems,
		LastPollAt: s.LastPollAt,
	}
	for _, r := range s.Items {
		view.Rows = append(view.Rows, NewErrorRow(r, now))
	}
	if view.Failed {
		view.Message = FailureMessage
	} else if len(view.Rows) == 0 && !view.Loading {
		view.Message = EmptyMessage
	}
	return view
}

// TimeAgo renders t relative to now: seconds under a minute, minutes under
// an hour, the wall-clock time otherwise.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	default:
		return t.Format("15:04:05")
	}
}
