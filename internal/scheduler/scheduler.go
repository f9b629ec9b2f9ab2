package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"

	"github.com/Kroner-bit/pivot-stat/internal/logger"
	"github.com/Kroner-bit/pivot-stat/internal/notifier"
	"github.com/Kroner-bit/pivot-stat/internal/pipeline"
)

// Runner performs one batch analysis.
type Runner func(ctx context.Context) (*pipeline.Outcome, error)

// Sender publishes reports. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendReport(ctx context.Context, source string, at time.Time, report string) error
	SendWithRetry(ctx context.Context, text string) error
}

// Scheduler re-runs the analysis on a cron schedule and publishes the report.
type Scheduler struct {
	Cron     *cron.Cron
	Run      Runner
	Notifier Sender // nil disables publishing
	Ctx      context.Context

	mu      sync.Mutex
	running bool
	last    *pipeline.Outcome
	lastAt  time.Time
}

// NewScheduler creates a new Scheduler. sender may be nil.
func NewScheduler(ctx context.Context, run Runner, sender Sender) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Run:      run,
		Notifier: sender,
		Ctx:      ctx,
	}
}

// Register adds the analysis job under the given cron spec (with seconds field).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.analysisTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Infof("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Infof("scheduler stopped")
}

// RunNow executes the analysis job immediately.
func (s *Scheduler) RunNow() {
	s.analysisTask()
}

// Last returns the most recent successful outcome, if any.
func (s *Scheduler) Last() (*pipeline.Outcome, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastAt
}

// execute runs the analysis unless another run is in progress.
func (s *Scheduler) execute() (*pipeline.Outcome, bool, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, false, nil
	}
	s.running = true
	s.mu.Unlock()

	out, err := s.Run(s.Ctx)

	s.mu.Lock()
	s.running = false
	if err == nil {
		s.last = out
		s.lastAt = time.Now()
	}
	s.mu.Unlock()
	return out, true, err
}

func (s *Scheduler) analysisTask() {
	logger.Infof("running scheduled analysis")
	out, ran, err := s.execute()
	if !ran {
		logger.Warnf("previous analysis still running, skipping this tick")
		return
	}
	now := time.Now()
	if err != nil {
		logger.Errorf("scheduled analysis: %v", err)
		if s.Notifier != nil {
			if err := s.Notifier.SendWithRetry(s.Ctx, notifier.FormatFailure(now, err)); err != nil {
				logger.Errorf("send failure notice: %v", err)
			}
		}
		return
	}
	logger.Infof("scheduled analysis done in %s: %s touch events over %s days",
		out.Duration.Round(time.Millisecond), humanize.Comma(int64(out.Result.Events)),
		humanize.Comma(int64(out.Result.Days)))
	if s.Notifier != nil {
		if err := s.Notifier.SendReport(s.Ctx, out.Source, now, out.Report); err != nil {
			logger.Errorf("send report: %v", err)
		}
	}
}

// HandleCommand processes a chat command and returns the reply messages.
func (s *Scheduler) HandleCommand(_ context.Context, command string) []string {
	switch command {
	case "/report":
		out, ran, err := s.execute()
		if !ran {
			return []string{"⏳ An analysis is already running."}
		}
		if err != nil {
			return []string{notifier.FormatFailure(time.Now(), err)}
		}
		return notifier.ReportMessages(out.Source, time.Now(), out.Report)
	case "/last":
		out, at := s.Last()
		if out == nil {
			return []string{"No analysis has completed yet."}
		}
		return notifier.ReportMessages(out.Source, at, out.Report)
	default:
		return []string{"Available commands:\n• /report run the analysis now\n• /last show the latest report"}
	}
}
