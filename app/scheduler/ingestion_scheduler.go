// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	businessflow "github.com/kbtwatch/tracker/business_flow"
	"gopkg.in/natefinch/lumberjack.v2"
)

// IngestionScheduler periodically runs the ingestion cycle against the
// upstream results API. Each firing is independent: a failed or slow cycle
// never prevents the next tick, and ticks are allowed to overlap because the
// store's uniqueness constraint makes concurrent cycles safe.
type IngestionScheduler struct {
	flow     businessflow.IngestionFlow
	logger   *log.Logger
	interval time.Duration
}

func NewIngestionScheduler(flow businessflow.IngestionFlow, logger *log.Logger, interval time.Duration) *IngestionScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}

	return &IngestionScheduler{
		flow:     flow,
		logger:   logger,
		interval: interval,
	}
}

// NewSchedulerLogger builds the scheduler's prefixed logger, writing to both
// stdout and a size-rotated file so cycle history survives restarts.
func NewSchedulerLogger(filePath string, maxSizeMB, maxBackups, maxAge int, compress bool) *log.Logger {
	var w io.Writer = os.Stdout
	if filePath != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAge,
			Compress:   compress,
		})
	}
	return log.New(w, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *IngestionScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Cycles run on their own goroutine so a hung upstream call
				// delays nothing but its own cycle
				go s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

// runOnce executes a single ingestion cycle and contains every failure mode:
// classified fetch errors and store errors are logged, panics are recovered.
// Nothing that happens here may reach the scheduler loop.
func (s *IngestionScheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			ingestionCyclesTotal.WithLabelValues(outcomePanic).Inc()
			s.logger.Printf("scheduler: recovered panic in ingestion cycle: %v", r)
		}
	}()

	start := time.Now()
	report, err := s.flow.RunCycle(ctx)
	ingestionCycleDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case businessflow.IsNetworkError(err):
			ingestionCyclesTotal.WithLabelValues(outcomeNetworkError).Inc()
			s.logger.Printf("scheduler: cycle=%s network error fetching results: %v", report.CycleID, err)
		case businessflow.IsParseError(err):
			ingestionCyclesTotal.WithLabelValues(outcomeParseError).Inc()
			s.logger.Printf("scheduler: cycle=%s failed to decode results response: %v", report.CycleID, err)
			if body := parseErrorBody(err); len(body) > 0 {
				s.logger.Printf("scheduler: cycle=%s raw response content: %s", report.CycleID, body)
			}
		default:
			ingestionCyclesTotal.WithLabelValues(outcomeStoreError).Inc()
			s.logger.Printf("scheduler: cycle=%s store error: %v", report.CycleID, err)
		}
		return
	}

	ingestionCyclesTotal.WithLabelValues(outcomeOK).Inc()
	ingestionResultsStored.Add(float64(report.Stored))

	if report.Stored > 0 {
		s.logger.Printf("scheduler: cycle=%s stored %d new results (%d candidates, %d staged)",
			report.CycleID, report.Stored, report.Candidates, report.Staged)
	} else {
		s.logger.Printf("scheduler: cycle=%s no new results to store (%d candidates)",
			report.CycleID, report.Candidates)
	}
}
