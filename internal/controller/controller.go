// Package controller coordinates the probe and heartbeat tasks with the tray
// indicator. All timer callbacks and menu actions serialize on one mutex.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"trayping/internal/inhibit"
	"trayping/internal/metrics"
	"trayping/internal/models"
	"trayping/internal/monitor"
	"trayping/internal/notify"
)

// Player plays the heartbeat clip synchronously.
type Player interface {
	Play(ctx context.Context) error
}

// Display is the status indicator as the controller sees it.
type Display interface {
	SetIcon(state models.IconState)
	SetMenuLabel(label string)
	SetTooltip(text string)
	Quit()
}

// Releaser gives up the single-instance lock.
type Releaser interface {
	Release() error
}

// Options are the fixed timings and probe target.
type Options struct {
	Target            string
	Title             string
	ProbeInterval     time.Duration
	HeartbeatInterval time.Duration
}

// Deps are the collaborators the controller drives.
type Deps struct {
	Prober    monitor.Prober
	Player    Player
	Display   Display
	Guard     Releaser
	Notifier  notify.Notifier
	Inhibitor inhibit.Inhibitor
	Log       *zap.Logger
}

// Snapshot is a consistent view of the controller state.
type Snapshot struct {
	State            models.RunState
	Reachability     models.Reachability
	Icon             models.IconState
	Label            string
	ProbeRunning     bool
	HeartbeatRunning bool
	Uptime           metrics.Uptime
	Exited           bool
}

// Controller owns the run state, the latest reachability and both tasks.
type Controller struct {
	opts      Options
	prober    monitor.Prober
	player    Player
	display   Display
	guard     Releaser
	notifier  notify.Notifier
	inhibitor inhibit.Inhibitor
	log       *zap.Logger

	probeTask     *monitor.Task
	heartbeatTask *monitor.Task
	tally         *metrics.Tally

	mu     sync.Mutex
	state  models.RunState
	reach  models.Reachability
	epoch  uint64
	exited bool
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New wires a controller. Nothing runs until Start.
func New(opts Options, deps Deps) *Controller {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Inhibitor == nil {
		deps.Inhibitor = inhibit.Nop{}
	}
	if opts.Title == "" {
		opts.Title = "Tray ping"
	}

	c := &Controller{
		opts:      opts,
		prober:    deps.Prober,
		player:    deps.Player,
		display:   deps.Display,
		guard:     deps.Guard,
		notifier:  deps.Notifier,
		inhibitor: deps.Inhibitor,
		log:       deps.Log.Named("controller"),
		tally:     metrics.NewTally(),
		state:     models.Active,
		reach:     models.Unknown,
		ctx:       context.Background(),
		cancel:    func() {},
		done:      make(chan struct{}),
	}
	c.probeTask = monitor.NewTask("probe", opts.ProbeInterval, true, c.ProbeTick)
	c.heartbeatTask = monitor.NewTask("heartbeat", opts.HeartbeatInterval, false, c.HeartbeatTick)
	return c
}

// Start shows the initial Active-Unreachable state and starts both tasks.
// The probe fires at once; the heartbeat after its first interval.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exited {
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.render()
	c.startTasksLocked()

	c.log.Info("monitoring started",
		zap.String("target", c.opts.Target),
		zap.Duration("probe_interval", c.probeTask.Interval()),
		zap.Duration("heartbeat_interval", c.heartbeatTask.Interval()),
	)
}

// ProbeTick runs one probe and applies the result. Results that finish after
// a pause, or after a pause and resume, are discarded.
func (c *Controller) ProbeTick(ctx context.Context) {
	c.mu.Lock()
	if c.state == models.Paused || c.exited {
		c.mu.Unlock()
		return
	}
	epoch := c.epoch
	c.mu.Unlock()

	res := c.prober.Probe(ctx, c.opts.Target)

	c.mu.Lock()
	if c.state == models.Paused || c.exited || c.epoch != epoch {
		c.mu.Unlock()
		c.log.Debug("discarding stale probe result", zap.Bool("ok", res.OK))
		return
	}
	prev := c.reach
	c.reach = res.Reachability()
	now := c.reach
	c.tally.Record(res)
	c.render()
	c.mu.Unlock()

	if res.OK {
		c.log.Debug("probe ok", zap.String("target", res.Target), zap.Duration("latency", res.Latency))
	} else {
		c.log.Debug("probe failed", zap.String("target", res.Target), zap.String("error", res.Error))
	}

	if prev != models.Unknown && prev != now {
		c.announce(now)
	}
}

func (c *Controller) announce(reach models.Reachability) {
	c.log.Info("reachability changed", zap.Stringer("status", reach), zap.String("target", c.opts.Target))

	body := c.opts.Target + " is reachable again"
	if reach == models.Unreachable {
		body = c.opts.Target + " is unreachable"
	}
	if err := c.notifier.Notify(c.opts.Title, body); err != nil {
		c.log.Warn("notification failed", zap.Error(err))
	}
}

// HeartbeatTick plays the heartbeat clip unless paused.
func (c *Controller) HeartbeatTick(ctx context.Context) {
	c.mu.Lock()
	skip := c.state == models.Paused || c.exited
	c.mu.Unlock()
	if skip {
		return
	}

	started := time.Now()
	if err := c.player.Play(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			c.log.Debug("heartbeat interrupted")
			return
		}
		c.log.Warn("heartbeat playback failed", zap.Error(err))
		return
	}
	c.log.Debug("heartbeat played", zap.Duration("took", time.Since(started)))
}

// TogglePause flips between Active and Paused. Pausing stops both tasks and
// shows the paused icon; resuming restarts them, starts a fresh tally and
// shows the unreachable icon until the next probe completes.
func (c *Controller) TogglePause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exited {
		return
	}
	c.epoch++

	if c.state == models.Active {
		c.state = models.Paused
		c.probeTask.Stop()
		c.heartbeatTask.Stop()
		if err := c.inhibitor.Release(); err != nil {
			c.log.Warn("release idle inhibitor", zap.Error(err))
		}
		c.render()
		c.log.Info("monitoring paused")
		return
	}

	c.state = models.Active
	c.reach = models.Unknown
	c.tally.Reset()
	c.render()
	c.startTasksLocked()
	c.log.Info("monitoring resumed")
}

// Exit stops everything, releases the single-instance lock and tears the
// tray down. In-flight callbacks are not awaited.
func (c *Controller) Exit() {
	c.mu.Lock()
	if c.exited {
		c.mu.Unlock()
		return
	}
	c.exited = true
	c.epoch++
	c.probeTask.Stop()
	c.heartbeatTask.Stop()
	c.cancel()
	if err := c.inhibitor.Release(); err != nil {
		c.log.Warn("release idle inhibitor", zap.Error(err))
	}
	if c.guard != nil {
		if err := c.guard.Release(); err != nil {
			c.log.Warn("release instance lock", zap.Error(err))
		}
	}
	close(c.done)
	c.mu.Unlock()

	c.log.Info("exiting")
	c.display.Quit()
}

// Done is closed once Exit has run.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:            c.state,
		Reachability:     c.reach,
		Icon:             models.IconFor(c.state, c.reach),
		Label:            models.ToggleLabel(c.state),
		ProbeRunning:     c.probeTask.Running(),
		HeartbeatRunning: c.heartbeatTask.Running(),
		Uptime:           c.tally.Summary(),
		Exited:           c.exited,
	}
}

// Wait blocks until both task loops have returned.
func (c *Controller) Wait() {
	c.probeTask.Wait()
	c.heartbeatTask.Wait()
}

func (c *Controller) startTasksLocked() {
	c.probeTask.Start(c.ctx)
	c.heartbeatTask.Start(c.ctx)
	if err := c.inhibitor.Acquire(); err != nil {
		c.log.Warn("acquire idle inhibitor", zap.Error(err))
	}
}

// render pushes the derived icon, label and tooltip. Callers hold mu.
func (c *Controller) render() {
	c.display.SetIcon(models.IconFor(c.state, c.reach))
	c.display.SetMenuLabel(models.ToggleLabel(c.state))
	c.display.SetTooltip(metrics.Tooltip(c.opts.Title, c.state, c.reach, c.tally.Summary()))
}
