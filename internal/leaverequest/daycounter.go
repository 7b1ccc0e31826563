package leaverequest

import "time"

const (
	DayCountingCalendar = "calendar"
	DayCountingBusiness = "business"
)

// DayCounter is the pluggable day-counting rule. The source system never
// settled whether weekends count against the balance, so the rule is config,
// not code (LEAVE_DAY_COUNTING).
type DayCounter interface {
	Count(start, end time.Time) int
	Name() string
}

// NewDayCounter returns the counter for the configured policy, defaulting to
// inclusive calendar days.
func NewDayCounter(policy string) DayCounter {
	if policy == DayCountingBusiness {
		return businessDays{}
	}
	return calendarDays{}
}

type calendarDays struct{}

func (calendarDays) Name() string { return DayCountingCalendar }

// Count is the inclusive calendar span; 0 when end precedes start.
func (calendarDays) Count(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

type businessDays struct{}

func (businessDays) Name() string { return DayCountingBusiness }

// Count skips Saturdays and Sundays, matching the attendance weekend config.
func (businessDays) Count(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days++
	}
	return days
}
