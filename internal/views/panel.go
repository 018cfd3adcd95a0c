// Package views turns polled resources into display models. Everything here
// is a pure function of its inputs.
package views

import (
	"math"
	"time"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/poller"
)

type PanelState string

const (
	PanelLoading PanelState = "loading"
	PanelError   PanelState = "error"
	PanelReady   PanelState = "ready"
)

// FailureMessage is shown for any failed fetch; error kinds are not
// distinguished on screen.
const FailureMessage = "Failed to load data. Please try again later."

// Panel is one independently loading section of a page.
type Panel[V any] struct {
	State     PanelState `json:"state"`
	Stale     bool       `json:"stale,omitempty"`
	Message   string     `json:"message,omitempty"`
	Data      *V         `json:"data,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
}

// NewPanel derives a panel from a poll state. Data that has loaded once
// stays visible after later failures and is marked stale.
func NewPanel[T, V any](s poller.State[T], transform func(T) V) Panel[V] {
	if !s.HasData {
		if s.Err != nil {
			return Panel[V]{State: PanelError, Message: FailureMessage}
		}
		return Panel[V]{State: PanelLoading}
	}
	v := transform(s.Data)
	return Panel[V]{
		State:     PanelReady,
		Stale:     s.Err != nil,
		Data:      &v,
		UpdatedAt: s.UpdatedAt,
	}
}

// ReadyPanel wraps data fetched on demand.
func ReadyPanel[V any](v V, at time.Time) Panel[V] {
	return Panel[V]{State: PanelReady, Data: &v, UpdatedAt: at}
}

// ErrorPanel is the panel for a failed on-demand fetch.
func ErrorPanel[V any]() Panel[V] {
	return Panel[V]{State: PanelError, Message: FailureMessage}
}

// Percent returns part/total*100, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
