package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kroner-bit/pivot-stat/internal/notifier"
	"github.com/Kroner-bit/pivot-stat/internal/pipeline"
	"github.com/Kroner-bit/pivot-stat/internal/session"
	"github.com/Kroner-bit/pivot-stat/internal/stats"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) SendReport(ctx context.Context, source string, at time.Time, report string) error {
	for _, msg := range notifier.ReportMessages(source, at, report) {
		if err := f.SendWithRetry(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func okRunner(calls *int) Runner {
	return func(ctx context.Context) (*pipeline.Outcome, error) {
		*calls++
		return &pipeline.Outcome{
			Source: "bars.csv",
			Result: &session.Result{Stats: stats.NewAggregator(), Days: 10, Events: 42},
			Report: "FIRST DIRECTION table",
		}, nil
	}
}

func TestRunNow_SendsReport(t *testing.T) {
	calls := 0
	sender := &fakeSender{}
	s := NewScheduler(context.Background(), okRunner(&calls), sender)

	s.RunNow()
	assert.Equal(t, 1, calls)
	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "<pre>FIRST DIRECTION table</pre>")
	assert.Contains(t, msgs[0], "bars.csv")

	last, at := s.Last()
	require.NotNil(t, last)
	assert.False(t, at.IsZero())
}

func TestRunNow_Failure(t *testing.T) {
	sender := &fakeSender{}
	s := NewScheduler(context.Background(), func(ctx context.Context) (*pipeline.Outcome, error) {
		return nil, errors.New("file does not exist")
	}, sender)

	s.RunNow()
	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "failed")
	assert.Contains(t, msgs[0], "file does not exist")
	last, _ := s.Last()
	assert.Nil(t, last)
}

func TestRunNow_WithoutNotifier(t *testing.T) {
	calls := 0
	s := NewScheduler(context.Background(), okRunner(&calls), nil)
	s.RunNow()
	assert.Equal(t, 1, calls)
}

func TestRegister(t *testing.T) {
	calls := 0
	s := NewScheduler(context.Background(), okRunner(&calls), nil)
	require.NoError(t, s.Register("0 30 0 * * 2-6"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("not a cron"))
}

func TestScheduledRun(t *testing.T) {
	done := make(chan struct{}, 1)
	s := NewScheduler(context.Background(), func(ctx context.Context) (*pipeline.Outcome, error) {
		select {
		case done <- struct{}{}:
		default:
		}
		return &pipeline.Outcome{Result: &session.Result{Stats: stats.NewAggregator()}}, nil
	}, nil)
	require.NoError(t, s.Register("* * * * * *"))
	s.Start()
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestHandleCommand(t *testing.T) {
	calls := 0
	s := NewScheduler(context.Background(), okRunner(&calls), nil)

	reply := func(cmd string) string {
		return strings.Join(s.HandleCommand(context.Background(), cmd), "\n")
	}

	assert.Contains(t, reply("/last"), "No analysis")
	assert.Contains(t, reply("/report"), "<pre>FIRST DIRECTION table</pre>")
	assert.Equal(t, 1, calls)
	assert.Contains(t, reply("/last"), "FIRST DIRECTION table")
	assert.Equal(t, 1, calls)
	assert.Contains(t, reply("hello"), "/report")
}
