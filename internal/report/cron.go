package report

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// CronExpression converts a schedule into a five-field cron expression. Weekly
// reports run on Mondays and monthly reports on the first of the month.
func CronExpression(s *domain.ScheduleConfig) (string, error) {
	if s == nil {
		return "", fmt.Errorf("schedule is missing")
	}

	hour, minute, err := domain.ParseClock(s.Time)
	if err != nil {
		return "", err
	}

	switch s.Frequency {
	case domain.FrequencyDaily:
		return fmt.Sprintf("%d %d * * *", minute, hour), nil
	case domain.FrequencyWeekly:
		return fmt.Sprintf("%d %d * * 1", minute, hour), nil
	case domain.FrequencyMonthly:
		return fmt.Sprintf("%d %d 1 * *", minute, hour), nil
	default:
		return "", fmt.Errorf("invalid schedule frequency: %s", s.Frequency)
	}
}

// NextRun returns the first activation strictly after from, evaluated in loc.
func NextRun(s *domain.ScheduleConfig, from time.Time, loc *time.Location) (time.Time, error) {
	expr, err := CronExpression(s)
	if err != nil {
		return time.Time{}, err
	}

	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}

	if loc == nil {
		loc = time.UTC
	}

	return sched.Next(from.In(loc)), nil
}
