package simulator

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sibexico/HexPager/paging"
	"github.com/sibexico/HexPager/swaplog"
)

type swapSink interface {
	paging.EventSink
	Close() error
}

// Option configures a Simulator
type Option func(*Simulator)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRunID sets the id recorded in binary swap logs
func WithRunID(id xid.ID) Option {
	return func(s *Simulator) {
		s.runID = id
	}
}

// Simulator drives the paging engine over a reference sequence, reporting
// progress, collecting metrics and recording swap-outs
type Simulator struct {
	cfg      *Config
	out      io.Writer
	logger   *slog.Logger
	runID    xid.ID
	reporter *Reporter
	metrics  *Metrics
}

// New creates a simulator printing progress to out
func New(cfg *Config, out io.Writer, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Simulator{
		cfg:      cfg.Clone(),
		out:      out,
		logger:   slog.New(slog.DiscardHandler),
		runID:    xid.New(),
		reporter: NewReporter(out, cfg.ColorOutput),
		metrics:  NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Metrics returns the metrics of the last run
func (s *Simulator) Metrics() *Metrics {
	return s.metrics
}

// RunSession applies the geometry read from the user and runs its references
func (s *Simulator) RunSession(session *Session) (paging.Stats, error) {
	s.cfg.NumFrames = session.NumFrames
	s.cfg.NumPages = session.NumPages
	return s.Run(session.Refs)
}

// Run processes refs in order. With the abort policy the first invalid
// reference ends the run with an error; the stats up to that point are
// still returned and printed.
func (s *Simulator) Run(refs []int) (paging.Stats, error) {
	s.metrics.Reset()

	swaps, err := s.openSwapLog()
	if err != nil {
		return paging.Stats{}, err
	}

	sinks := paging.MultiSink{s.reporter}
	if s.cfg.EnableMetrics {
		sinks = append(sinks, s.metrics)
	}
	if swaps != nil {
		sinks = append(sinks, swaps)
	}

	engine, err := paging.NewEngine(s.cfg.NumFrames, s.cfg.NumPages,
		paging.WithSink(sinks),
		paging.WithLogger(s.logger),
	)
	if err != nil {
		if swaps != nil {
			swaps.Close()
		}
		return paging.Stats{}, fmt.Errorf("failed to create engine: %w", err)
	}

	s.logger.Info("simulation started",
		slog.Int("frames", s.cfg.NumFrames),
		slog.Int("pages", s.cfg.NumPages),
		slog.Int("references", len(refs)),
		slog.String("swap_log", s.swapLogPath()),
	)
	s.reporter.PrintStart()

	runErr := s.process(engine, refs)

	stats := engine.FinalStats()
	if swaps != nil {
		if err := swaps.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}

	s.reporter.PrintSummary(stats, s.swapLogPath())
	if s.cfg.EnableMetrics {
		s.metrics.LogMetrics(s.logger)
	}
	s.logger.Info("simulation finished",
		slog.Uint64("references", stats.TotalRefs),
		slog.Uint64("faults", stats.Faults),
		slog.Uint64("swaps", stats.Swaps),
		slog.Float64("fault_rate", stats.FaultRate()),
	)

	return stats, runErr
}

func (s *Simulator) process(engine *paging.Engine, refs []int) error {
	for i, ref := range refs {
		s.reporter.BeginReference(i + 1)

		start := time.Now()
		_, err := engine.StepAt(uint64(i+1), paging.PageID(ref))
		s.metrics.RecordStepLatency(time.Since(start))

		if err != nil {
			if !paging.IsErrorCode(err, paging.ErrCodeInvalidPage) {
				return err
			}
			s.metrics.RecordInvalidReference()
			skip := s.cfg.OnInvalidPage == OnInvalidSkip
			s.reporter.InvalidReference(ref, s.cfg.NumPages, skip)
			s.logger.Warn("invalid reference",
				slog.Int("position", i+1),
				slog.Int("page", ref),
				slog.Bool("skipped", skip),
			)
			if skip {
				continue
			}
			return fmt.Errorf("reference %d: %w", i+1, err)
		}

		if s.cfg.CheckInvariants {
			if err := engine.CheckInvariants(); err != nil {
				panic(err)
			}
		}
	}
	return nil
}

func (s *Simulator) openSwapLog() (swapSink, error) {
	switch s.cfg.SwapLogFormat {
	case SwapLogText:
		return swaplog.NewTextLog(s.cfg.SwapLogPath)
	case SwapLogBinary:
		compression, err := swaplog.ParseCompression(s.cfg.SwapLogCompression)
		if err != nil {
			return nil, err
		}
		return swaplog.NewLogManager(s.cfg.SwapLogPath, compression, s.runID)
	default:
		return nil, nil
	}
}

func (s *Simulator) swapLogPath() string {
	if s.cfg.SwapLogFormat == SwapLogNone {
		return ""
	}
	return s.cfg.SwapLogPath
}
