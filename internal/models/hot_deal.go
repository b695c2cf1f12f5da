package models

import "time"

type DealStatus string

const (
	DealScheduled DealStatus = "scheduled"
	DealActive    DealStatus = "active"
	DealExpired   DealStatus = "expired"
)

func (d HotDeal) EndTime() time.Time {
	return d.StartTime.Add(time.Duration(d.DurationHours) * time.Hour)
}

// Status is derived from the half-open window [start, start+duration).
func (d HotDeal) Status(now time.Time) DealStatus {
	now = now.UTC()
	if now.Before(d.StartTime.UTC()) {
		return DealScheduled
	}
	if now.Before(d.EndTime().UTC()) {
		return DealActive
	}
	return DealExpired
}

func (d HotDeal) IsActive(now time.Time) bool {
	return d.Status(now) == DealActive
}
