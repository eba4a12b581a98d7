package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Notifier delivers a rendered summary to its recipients.
type Notifier interface {
	Send(subject, body string) error
}

// SummaryProvider yields the latest completed backtest summary, if any.
type SummaryProvider interface {
	LatestSummary() (string, bool)
}

// WeeklyReportJob emails the most recent backtest summary once a week.
type WeeklyReportJob struct {
	log      zerolog.Logger
	notifier Notifier
	provider SummaryProvider
}

// NewWeeklyReportJob creates a new weekly report job
func NewWeeklyReportJob(notifier Notifier, provider SummaryProvider, log zerolog.Logger) *WeeklyReportJob {
	return &WeeklyReportJob{
		log:      log.With().Str("job", "weekly_report").Logger(),
		notifier: notifier,
		provider: provider,
	}
}

// Name returns the job name
func (j *WeeklyReportJob) Name() string {
	return "weekly_report"
}

// Run sends the latest summary. A week with no completed run is skipped,
// not failed.
func (j *WeeklyReportJob) Run() error {
	summary, ok := j.provider.LatestSummary()
	if !ok {
		j.log.Info().Msg("No completed backtest to report, skipping")
		return nil
	}

	subject := fmt.Sprintf("Strategy report - week of %s", time.Now().Format("2006-01-02"))
	if err := j.notifier.Send(subject, summary); err != nil {
		return fmt.Errorf("failed to send weekly report: %w", err)
	}
	return nil
}

// WeeklySchedule converts a weekday name into a cron expression firing at
// 8 AM on that day. Unrecognized names fall back to Friday.
func WeeklySchedule(weekday string) string {
	days := map[string]string{
		"monday":    "MON",
		"tuesday":   "TUE",
		"wednesday": "WED",
		"thursday":  "THU",
		"friday":    "FRI",
		"saturday":  "SAT",
		"sunday":    "SUN",
	}
	day, ok := days[strings.ToLower(weekday)]
	if !ok {
		day = "FRI"
	}
	return fmt.Sprintf("0 0 8 * * %s", day)
}
