package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kasuboski/watchlistarr/config"
	"github.com/kasuboski/watchlistarr/pkg/cache"
	"github.com/kasuboski/watchlistarr/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type LoopType string

const (
	TokenPing       LoopType = "TokenPing"
	IncrementalSync LoopType = "IncrementalSync"
	FullSync        LoopType = "FullSync"
	RemovalSync     LoopType = "RemovalSync"
)

// Loops lists every loop in a stable order
var Loops = []LoopType{TokenPing, IncrementalSync, FullSync, RemovalSync}

const (
	DefaultTokenPingInterval = 24 * time.Hour
	DefaultFullSyncInterval  = 19 * time.Minute
)

var (
	ErrLoopRunning  = errors.New("loop cycle already running")
	ErrUnknownLoop  = errors.New("unknown loop")
	ErrLoopDisabled = errors.New("loop is disabled")
)

// Schedule holds the interval of every loop
type Schedule struct {
	TokenPing       time.Duration
	IncrementalSync time.Duration
	FullSync        time.Duration
	RemovalSync     time.Duration
	// Removal gates the removal loop
	Removal bool
}

// ScheduleFromConfig builds the schedule for cfg
func ScheduleFromConfig(cfg config.Config) Schedule {
	return Schedule{
		TokenPing:       DefaultTokenPingInterval,
		IncrementalSync: cfg.RefreshInterval(),
		FullSync:        DefaultFullSyncInterval,
		RemovalSync:     cfg.DeleteInterval(),
		Removal:         cfg.Delete.Enabled(),
	}
}

// LoopStatus is the state of a loop's most recent cycle
type LoopStatus struct {
	Loop         LoopType       `json:"loop"`
	Enabled      bool           `json:"enabled"`
	Interval     time.Duration  `json:"interval"`
	Running      bool           `json:"running"`
	Cycles       int            `json:"cycles"`
	LastStarted  *time.Time     `json:"lastStarted,omitempty"`
	LastFinished *time.Time     `json:"lastFinished,omitempty"`
	LastError    string         `json:"lastError,omitempty"`
	LastRunID    string         `json:"lastRunId,omitempty"`
	Counts       map[Status]int `json:"counts,omitempty"`
}

type loop struct {
	interval time.Duration
	enabled  bool
	run      func(ctx context.Context) (Report, error)
	mu       sync.Mutex
}

// Scheduler runs the sync loops. Cycles of one loop never overlap; loops never wait on each other.
type Scheduler struct {
	loops  map[LoopType]*loop
	status *cache.Cache[LoopType, LoopStatus]
	// cycles tracks manually triggered cycles
	cycles sync.WaitGroup
	now    func() time.Time
}

// NewScheduler creates the scheduler for engine
func NewScheduler(engine *Engine, schedule Schedule) *Scheduler {
	s := &Scheduler{
		status: cache.New[LoopType, LoopStatus](),
		now:    time.Now,
	}

	s.loops = map[LoopType]*loop{
		TokenPing: {
			interval: schedule.TokenPing,
			enabled:  true,
			run: func(ctx context.Context) (Report, error) {
				_, err := engine.Ping(ctx)
				return Report{}, err
			},
		},
		IncrementalSync: {
			interval: schedule.IncrementalSync,
			enabled:  true,
			run: func(ctx context.Context) (Report, error) {
				return engine.Sync(ctx, false)
			},
		},
		FullSync: {
			interval: schedule.FullSync,
			enabled:  true,
			run: func(ctx context.Context) (Report, error) {
				return engine.Sync(ctx, true)
			},
		},
		RemovalSync: {
			interval: schedule.RemovalSync,
			enabled:  schedule.Removal,
			run: func(ctx context.Context) (Report, error) {
				return Report{}, engine.Prune(ctx)
			},
		},
	}

	for _, lt := range Loops {
		l := s.loops[lt]
		s.status.Set(lt, LoopStatus{Loop: lt, Enabled: l.enabled, Interval: l.interval})
	}

	return s
}

// Run ticks every enabled loop until ctx is done. Each loop runs a cycle immediately.
// Cycles in progress when ctx is done are finished before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.FromCtx(ctx)

	for _, lt := range Loops {
		if l := s.loops[lt]; l.enabled && l.interval <= 0 {
			return fmt.Errorf("loop %s has no interval", lt)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, lt := range Loops {
		l := s.loops[lt]
		if !l.enabled {
			log.Infow("loop disabled", zap.String("loop", string(lt)))
			continue
		}

		g.Go(func() error {
			s.tick(gctx, lt, l)
			return nil
		})
	}

	err := g.Wait()
	s.cycles.Wait()
	log.Debug("scheduler stopped")
	return err
}

func (s *Scheduler) tick(ctx context.Context, lt LoopType, l *loop) {
	log := logger.FromCtx(ctx).With(zap.String("loop", string(lt)))
	log.Infow("starting loop", zap.Duration("interval", l.interval))

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if l.mu.TryLock() {
			s.cycle(context.WithoutCancel(ctx), lt, l)
		} else {
			log.Debug("previous cycle still running, skipping tick")
		}

		select {
		case <-ctx.Done():
			log.Debug("loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunLoopOnce starts one cycle of lt in the background
func (s *Scheduler) RunLoopOnce(ctx context.Context, lt LoopType) error {
	l, ok := s.loops[lt]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLoop, lt)
	}
	if !l.enabled {
		return fmt.Errorf("%w: %s", ErrLoopDisabled, lt)
	}
	if !l.mu.TryLock() {
		return ErrLoopRunning
	}

	s.cycles.Add(1)
	go func() {
		defer s.cycles.Done()
		s.cycle(context.WithoutCancel(ctx), lt, l)
	}()

	return nil
}

// cycle runs one cycle of l. The caller must hold l.mu.
func (s *Scheduler) cycle(ctx context.Context, lt LoopType, l *loop) {
	defer l.mu.Unlock()

	log := logger.FromCtx(ctx).With(zap.String("loop", string(lt)))
	ctx = logger.WithCtx(ctx, log)

	started := s.now()
	s.update(lt, func(st *LoopStatus) {
		st.Running = true
		st.LastStarted = &started
	})

	report, err := s.safeRun(ctx, l)

	finished := s.now()
	s.update(lt, func(st *LoopStatus) {
		st.Running = false
		st.Cycles++
		st.LastFinished = &finished
		st.LastError = ""
		st.LastRunID = report.RunID
		st.Counts = nil
		if err != nil {
			st.LastError = err.Error()
			return
		}
		if report.RunID != "" {
			st.Counts = report.Counts()
		}
	})

	if err != nil {
		log.Errorw("loop cycle failed", zap.Error(err), zap.Duration("duration", finished.Sub(started)))
		return
	}
	log.Debugw("loop cycle finished", zap.Duration("duration", finished.Sub(started)))
}

func (s *Scheduler) safeRun(ctx context.Context, l *loop) (report Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return l.run(ctx)
}

func (s *Scheduler) update(lt LoopType, fn func(*LoopStatus)) {
	s.status.Update(lt, func(st LoopStatus) LoopStatus {
		fn(&st)
		return st
	})
}

// Status returns the state of every loop
func (s *Scheduler) Status() []LoopStatus {
	statuses := make([]LoopStatus, 0, len(Loops))
	for _, lt := range Loops {
		st, ok := s.status.Get(lt)
		if !ok {
			continue
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// LoopStatus returns the state of lt
func (s *Scheduler) LoopStatus(lt LoopType) (LoopStatus, bool) {
	return s.status.Get(lt)
}
