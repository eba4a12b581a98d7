package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	sent    int
	subject string
	body    string
	err     error
}

func (f *fakeNotifier) Send(subject, body string) error {
	f.sent++
	f.subject = subject
	f.body = body
	return f.err
}

type fakeProvider struct {
	summary string
	ok      bool
}

func (f *fakeProvider) LatestSummary() (string, bool) {
	return f.summary, f.ok
}

func TestWeeklyReportJobSendsLatestSummary(t *testing.T) {
	notifier := &fakeNotifier{}
	provider := &fakeProvider{summary: "CAGR: 12%", ok: true}
	job := NewWeeklyReportJob(notifier, provider, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, 1, notifier.sent)
	assert.Contains(t, notifier.subject, "Strategy report")
	assert.Equal(t, "CAGR: 12%", notifier.body)
}

func TestWeeklyReportJobSkipsWithoutRun(t *testing.T) {
	notifier := &fakeNotifier{}
	job := NewWeeklyReportJob(notifier, &fakeProvider{}, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Zero(t, notifier.sent)
}

func TestWeeklyReportJobPropagatesSendFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	job := NewWeeklyReportJob(notifier, &fakeProvider{summary: "x", ok: true}, zerolog.Nop())

	assert.Error(t, job.Run())
}

func TestWeeklySchedule(t *testing.T) {
	assert.Equal(t, "0 0 8 * * MON", WeeklySchedule("Monday"))
	assert.Equal(t, "0 0 8 * * FRI", WeeklySchedule("friday"))
	assert.Equal(t, "0 0 8 * * FRI", WeeklySchedule("someday"))
}
