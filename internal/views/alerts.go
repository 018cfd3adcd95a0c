package views

import "github.com/BarkinBalci/error-monitor-dashboard/internal/domain"

const incidentResolved = "resolved"

type Alerts struct {
	Rules         []domain.AlertRule `json:"rules"`
	Incidents     []domain.Incident  `json:"incidents"`
	EnabledRules  int                `json:"enabled_rules"`
	OpenIncidents int                `json:"open_incidents"`
}

func NewAlerts(rules *domain.AlertRules, incidents *domain.Incidents) Alerts {
	out := Alerts{Rules: []domain.AlertRule{}, Incidents: []domain.Incident{}}
	if rules != nil && rules.Rules != nil {
		out.Rules = rules.Rules
	}
	if incidents != nil && incidents.Incidents != nil {
		out.Incidents = incidents.Incidents
	}
	for _, r := range out.Rules {
		if r.Enabled {
			out.EnabledRules++
		}
	}
	for _, i := range out.Incidents {
		if i.Status != incidentResolved && i.ResolvedAt == nil {
			out.OpenIncidents++
		}
	}
	return out
}
