package service

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/wltransit/opsdash/internal/model"
	"github.com/wltransit/opsdash/internal/store"
)

// Alert count bounds per request, inclusive.
const (
	minAlerts = 2
	maxAlerts = 6
)

// alertTemplates are the incident messages. Placeholders are filled with
// real schedule rows when the corresponding table is non-empty;
// otherwise the literal token is left in place rather than failing.
var alertTemplates = []string{
	"Vehicle breakdown on line {route}",
	"Signal failure at station {stop}",
	"Delay on line {route} - {delay} min",
	"Overcrowding at station {stop}",
	"Switch failure in area {area}",
	"Weather-related delays across the network",
}

var alertSeverities = []string{"high", "medium", "low"}

var alertAreas = []string{"Center", "South", "North", "East", "West"}

// AlertService generates a bounded list of synthetic incident alerts.
// Nothing is persisted: consecutive requests yield different alerts.
type AlertService struct {
	sched store.ScheduleStore
	clock Clock
}

// NewAlertService creates an alert generator over the schedule store.
func NewAlertService(sched store.ScheduleStore, clock Clock) *AlertService {
	return &AlertService{sched: sched, clock: clock}
}

// Alerts returns between 2 and 6 synthetic alerts.
func (s *AlertService) Alerts(ctx context.Context) []model.AlertRecord {
	now := s.clock.Now()
	count := intBetween(minAlerts, maxAlerts)

	alerts := make([]model.AlertRecord, 0, count)
	for i := 0; i < count; i++ {
		alerts = append(alerts, model.AlertRecord{
			ID:           i + 1,
			Message:      s.fillTemplate(ctx, choice(alertTemplates)),
			Severity:     choice(alertSeverities),
			Timestamp:    now.Add(-time.Duration(intBetween(1, 120)) * time.Minute).Format("15:04"),
			Acknowledged: intBetween(0, 1) == 1,
		})
	}
	return alerts
}

// fillTemplate substitutes each placeholder present in msg. No template
// uses the same placeholder twice, so a single replacement suffices.
func (s *AlertService) fillTemplate(ctx context.Context, msg string) string {
	if strings.Contains(msg, "{route}") {
		if routes, err := s.sched.SampleRoutes(ctx, 1); err == nil && len(routes) > 0 {
			msg = strings.Replace(msg, "{route}", routes[0].ShortName, 1)
		} else if err != nil {
			log.Printf("[service] route sample for alert failed: %v", err)
		}
	}
	if strings.Contains(msg, "{stop}") {
		if stops, err := s.sched.SampleStops(ctx, 1); err == nil && len(stops) > 0 {
			msg = strings.Replace(msg, "{stop}", stops[0].Name, 1)
		} else if err != nil {
			log.Printf("[service] stop sample for alert failed: %v", err)
		}
	}
	if strings.Contains(msg, "{delay}") {
		msg = strings.Replace(msg, "{delay}", strconv.Itoa(intBetween(5, 20)), 1)
	}
	if strings.Contains(msg, "{area}") {
		msg = strings.Replace(msg, "{area}", choice(alertAreas), 1)
	}
	return msg
}
