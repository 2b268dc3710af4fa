package poller

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Logger defines the logging interface used by the Poller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// PollFunc runs one poll cycle.
type PollFunc func(ctx context.Context) error

// Condition is the input the enable decision is made from.
type Condition struct {
	Validated       bool
	IntervalSeconds int
	DeviceCount     int
}

// Enabled reports whether polling should run under c.
func (c Condition) Enabled() bool {
	return c.Validated && c.IntervalSeconds > 0 && c.DeviceCount > 0
}

// Poller schedules PollFunc on a fixed interval.
type Poller struct {
	poll   PollFunc
	logger Logger

	// op serializes Reconfigure, Start and Stop.
	op sync.Mutex

	mu       sync.Mutex
	cron     *cron.Cron
	gen      uint64
	interval time.Duration
	cond     Condition
	known    bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets the logger.
func WithLogger(l Logger) Option { return func(p *Poller) { p.logger = l } }

// New creates a stopped Poller.
func New(poll PollFunc, opts ...Option) *Poller {
	p := &Poller{poll: poll, logger: noopLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reconfigure applies a new condition. When it differs from the last one
// the poller is stopped and, if the new condition enables polling,
// started again. It reports whether polling is enabled afterwards.
func (p *Poller) Reconfigure(ctx context.Context, c Condition) bool {
	p.op.Lock()
	defer p.op.Unlock()

	p.mu.Lock()
	same := p.known && p.cond == c
	p.cond = c
	p.known = true
	p.mu.Unlock()

	if same {
		return c.Enabled()
	}

	p.stop()
	if !c.Enabled() {
		p.logger.Debug("polling disabled",
			"validated", c.Validated, "interval_seconds", c.IntervalSeconds, "devices", c.DeviceCount)
		return false
	}
	p.start(ctx, time.Duration(c.IntervalSeconds)*time.Second)
	return true
}

// Start fires one poll immediately and schedules one per interval. A
// running schedule is replaced.
func (p *Poller) Start(ctx context.Context, interval time.Duration) {
	p.op.Lock()
	defer p.op.Unlock()
	p.start(ctx, interval)
}

func (p *Poller) start(ctx context.Context, interval time.Duration) {
	p.stop()

	p.mu.Lock()
	p.gen++
	gen := p.gen
	// The immediate poll shares the wrapped job with the schedule so a slow
	// first cycle makes the first tick skip instead of overlapping.
	job := cron.NewChain(cron.SkipIfStillRunning(cronLogger{p.logger})).Then(cron.FuncJob(p.job(ctx, gen)))
	c := cron.New()
	c.Schedule(cron.Every(interval), job)
	p.cron = c
	p.interval = interval
	p.mu.Unlock()

	c.Start()
	go job.Run()

	p.logger.Info("polling started", "interval", interval)
}

// Stop cancels the schedule. No poll starts after Stop returns. The next
// Reconfigure starts again even if its condition is unchanged.
func (p *Poller) Stop() {
	p.op.Lock()
	defer p.op.Unlock()
	p.stop()

	p.mu.Lock()
	p.known = false
	p.mu.Unlock()
}

func (p *Poller) stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.interval = 0
	p.gen++
	p.mu.Unlock()

	if c == nil {
		return
	}
	c.Stop()
	p.logger.Info("polling stopped")
}

// Running reports whether a schedule is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cron != nil
}

// Interval returns the active interval, or zero when stopped.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// job returns the body run on each tick. It does nothing once the
// generation it was created for is superseded.
func (p *Poller) job(ctx context.Context, gen uint64) func() {
	return func() {
		p.mu.Lock()
		current := p.gen == gen
		p.mu.Unlock()
		if !current || ctx.Err() != nil {
			return
		}
		if err := p.poll(ctx); err != nil {
			p.logger.Warn("poll cycle failed", "error", err)
		}
	}
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct{ l Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
