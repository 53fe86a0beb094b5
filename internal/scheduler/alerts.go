package scheduler

import (
	"time"

	"github.com/sandeepkv93/tasklist/internal/model"
)

// AlertsFor builds one alert per pending item due today or later. The alert
// fires at local midnight of the due day, so items due today fire at once.
// Overdue and undated items get no alert.
func AlertsFor(items []model.Item, now time.Time) []DueAlert {
	today := startOfDay(now, now.Location())
	alerts := make([]DueAlert, 0, len(items))
	for _, item := range items {
		if item.IsDone() || !item.HasDue() {
			continue
		}
		trigger := startOfDay(item.Due, now.Location())
		if trigger.Before(today) {
			continue
		}
		alerts = append(alerts, DueAlert{
			Title:     item.Title,
			Category:  item.Category,
			Due:       item.Due,
			TriggerAt: trigger,
		})
	}
	return alerts
}

// startOfDay keeps t's calendar date and places it at midnight in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
