package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trayping/internal/models"
)

type fakeProber struct {
	mu    sync.Mutex
	ok    bool
	calls int
	gate  chan struct{}
}

func (p *fakeProber) set(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ok = ok
}

func (p *fakeProber) block() chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gate = make(chan struct{})
	return p.gate
}

func (p *fakeProber) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *fakeProber) Probe(ctx context.Context, target string) models.ProbeResult {
	p.mu.Lock()
	p.calls++
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	res := models.ProbeResult{Target: target, OK: p.ok, CheckedAt: time.Now().UTC()}
	if !p.ok {
		res.Error = "request timed out"
	} else {
		res.Latency = 12 * time.Millisecond
	}
	return res
}

type fakePlayer struct {
	mu    sync.Mutex
	plays int
	err   error
}

func (p *fakePlayer) Play(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	return p.err
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

type fakeDisplay struct {
	mu       sync.Mutex
	icons    []models.IconState
	label    string
	tooltip  string
	quitCall int
}

func (d *fakeDisplay) SetIcon(state models.IconState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.icons = append(d.icons, state)
}

func (d *fakeDisplay) SetMenuLabel(label string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.label = label
}

func (d *fakeDisplay) SetTooltip(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tooltip = text
}

func (d *fakeDisplay) Quit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quitCall++
}

func (d *fakeDisplay) icon() models.IconState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.icons[len(d.icons)-1]
}

func (d *fakeDisplay) menuLabel() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.label
}

type fakeGuard struct {
	mu       sync.Mutex
	released int
}

func (g *fakeGuard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released++
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	bodies []string
}

func (n *fakeNotifier) Notify(_, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bodies = append(n.bodies, body)
	return nil
}

func (n *fakeNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.bodies...)
}

type fakeInhibitor struct {
	mu   sync.Mutex
	held bool
}

func (i *fakeInhibitor) Acquire() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.held = true
	return nil
}

func (i *fakeInhibitor) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.held = false
	return nil
}

func (i *fakeInhibitor) isHeld() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.held
}

type harness struct {
	ctrl      *Controller
	prober    *fakeProber
	player    *fakePlayer
	display   *fakeDisplay
	guard     *fakeGuard
	notifier  *fakeNotifier
	inhibitor *fakeInhibitor
}

func newHarness(t *testing.T, probeInterval, heartbeatInterval time.Duration) *harness {
	t.Helper()
	h := &harness{
		prober:    &fakeProber{},
		player:    &fakePlayer{},
		display:   &fakeDisplay{},
		guard:     &fakeGuard{},
		notifier:  &fakeNotifier{},
		inhibitor: &fakeInhibitor{},
	}
	h.ctrl = New(Options{
		Target:            "8.8.8.8",
		ProbeInterval:     probeInterval,
		HeartbeatInterval: heartbeatInterval,
	}, Deps{
		Prober:    h.prober,
		Player:    h.player,
		Display:   h.display,
		Guard:     h.guard,
		Notifier:  h.notifier,
		Inhibitor: h.inhibitor,
	})
	t.Cleanup(func() {
		h.ctrl.Exit()
		h.ctrl.Wait()
	})
	return h
}

// startIdle starts with hour-long intervals and waits for the immediate
// probe so that the test drives every further tick by hand.
func startIdle(t *testing.T, reachable bool) *harness {
	t.Helper()
	h := newHarness(t, time.Hour, time.Hour)
	h.prober.set(reachable)
	h.ctrl.Start(context.Background())
	require.Eventually(t, func() bool {
		return h.ctrl.Snapshot().Reachability != models.Unknown
	}, time.Second, time.Millisecond)
	return h
}

func TestStart(t *testing.T) {
	h := newHarness(t, time.Hour, time.Hour)
	gate := h.prober.block()

	h.ctrl.Start(context.Background())

	snap := h.ctrl.Snapshot()
	assert.Equal(t, models.Active, snap.State)
	assert.Equal(t, models.Unknown, snap.Reachability)
	assert.Equal(t, models.IconUnreachable, h.display.icon(), "safe default before the first probe")
	assert.Equal(t, "Pause", h.display.menuLabel())
	assert.True(t, snap.ProbeRunning)
	assert.True(t, snap.HeartbeatRunning)
	assert.True(t, h.inhibitor.isHeld())

	require.Eventually(t, func() bool { return h.prober.count() == 1 }, time.Second, time.Millisecond)
	close(gate)
}

func TestProbeTick(t *testing.T) {
	t.Run("success shows green", func(t *testing.T) {
		h := startIdle(t, true)
		assert.Equal(t, models.Reachable, h.ctrl.Snapshot().Reachability)
		assert.Equal(t, models.IconReachable, h.display.icon())
	})

	t.Run("timeout shows red", func(t *testing.T) {
		h := startIdle(t, false)
		assert.Equal(t, models.Unreachable, h.ctrl.Snapshot().Reachability)
		assert.Equal(t, models.IconUnreachable, h.display.icon())
	})

	t.Run("icon follows the latest result", func(t *testing.T) {
		h := startIdle(t, true)
		ctx := context.Background()

		for _, ok := range []bool{false, true, true, false} {
			h.prober.set(ok)
			h.ctrl.ProbeTick(ctx)
			want := models.IconUnreachable
			if ok {
				want = models.IconReachable
			}
			assert.Equal(t, want, h.display.icon())
		}
		assert.Equal(t, 5, h.ctrl.Snapshot().Uptime.TotalChecks)
	})

	t.Run("paused ticks do nothing", func(t *testing.T) {
		h := startIdle(t, false)
		h.ctrl.TogglePause()
		calls := h.prober.count()

		h.prober.set(true)
		h.ctrl.ProbeTick(context.Background())

		assert.Equal(t, calls, h.prober.count())
		assert.Equal(t, models.IconPaused, h.display.icon())
	})

	t.Run("result finishing after pause is discarded", func(t *testing.T) {
		h := startIdle(t, false)
		h.prober.set(true)
		gate := h.prober.block()

		done := make(chan struct{})
		go func() {
			h.ctrl.ProbeTick(context.Background())
			close(done)
		}()
		require.Eventually(t, func() bool { return h.prober.count() == 2 }, time.Second, time.Millisecond)

		h.ctrl.TogglePause()
		close(gate)
		<-done

		snap := h.ctrl.Snapshot()
		assert.Equal(t, models.Paused, snap.State)
		assert.Equal(t, models.Unreachable, snap.Reachability)
		assert.Equal(t, models.IconPaused, h.display.icon())
	})

	t.Run("notifies on transitions only", func(t *testing.T) {
		h := startIdle(t, true)
		ctx := context.Background()

		h.ctrl.ProbeTick(ctx)
		h.prober.set(false)
		h.ctrl.ProbeTick(ctx)
		h.ctrl.ProbeTick(ctx)
		h.prober.set(true)
		h.ctrl.ProbeTick(ctx)

		assert.Equal(t, []string{"8.8.8.8 is unreachable", "8.8.8.8 is reachable again"}, h.notifier.sent())
	})
}

func TestTogglePause(t *testing.T) {
	t.Run("pause stops both tasks and shows yellow", func(t *testing.T) {
		h := startIdle(t, true)

		h.ctrl.TogglePause()

		snap := h.ctrl.Snapshot()
		assert.Equal(t, models.Paused, snap.State)
		assert.False(t, snap.ProbeRunning)
		assert.False(t, snap.HeartbeatRunning)
		assert.Equal(t, models.IconPaused, h.display.icon())
		assert.Equal(t, "Resume", h.display.menuLabel())
		assert.False(t, h.inhibitor.isHeld())
	})

	t.Run("resume restarts tasks and shows red until the next probe", func(t *testing.T) {
		h := startIdle(t, true)
		require.Positive(t, h.ctrl.Snapshot().Uptime.TotalChecks)
		h.ctrl.TogglePause()
		gate := h.prober.block()

		h.ctrl.TogglePause()

		snap := h.ctrl.Snapshot()
		assert.Equal(t, models.Active, snap.State)
		assert.Equal(t, models.Unknown, snap.Reachability)
		assert.Zero(t, snap.Uptime.TotalChecks)
		assert.True(t, snap.ProbeRunning)
		assert.True(t, snap.HeartbeatRunning)
		assert.Equal(t, models.IconUnreachable, h.display.icon())
		assert.Equal(t, "Pause", h.display.menuLabel())
		assert.True(t, h.inhibitor.isHeld())

		close(gate)
		require.Eventually(t, func() bool {
			return h.ctrl.Snapshot().Reachability == models.Reachable
		}, time.Second, time.Millisecond)
		assert.Equal(t, models.IconReachable, h.display.icon())
		assert.Equal(t, 1, h.ctrl.Snapshot().Uptime.TotalChecks)
	})

	t.Run("round trip restores the run state", func(t *testing.T) {
		h := startIdle(t, false)
		before := h.ctrl.Snapshot()

		h.ctrl.TogglePause()
		h.ctrl.TogglePause()

		require.Eventually(t, func() bool {
			return h.ctrl.Snapshot().Reachability == before.Reachability
		}, time.Second, time.Millisecond)
		after := h.ctrl.Snapshot()
		assert.Equal(t, before.State, after.State)
		assert.Equal(t, before.Icon, after.Icon)
		assert.Equal(t, before.Label, after.Label)
	})
}

func TestHeartbeatTick(t *testing.T) {
	t.Run("plays while active", func(t *testing.T) {
		h := startIdle(t, true)
		h.ctrl.HeartbeatTick(context.Background())
		h.ctrl.HeartbeatTick(context.Background())
		assert.Equal(t, 2, h.player.count())
	})

	t.Run("silent while paused", func(t *testing.T) {
		h := startIdle(t, true)
		h.ctrl.TogglePause()
		h.ctrl.HeartbeatTick(context.Background())
		assert.Zero(t, h.player.count())
	})

	t.Run("playback failure is absorbed", func(t *testing.T) {
		h := startIdle(t, true)
		h.player.err = assert.AnError
		assert.NotPanics(t, func() { h.ctrl.HeartbeatTick(context.Background()) })
		assert.Equal(t, models.Active, h.ctrl.Snapshot().State)
	})
}

func TestExit(t *testing.T) {
	h := startIdle(t, true)

	h.ctrl.Exit()

	select {
	case <-h.ctrl.Done():
	default:
		t.Fatal("Done not closed")
	}
	snap := h.ctrl.Snapshot()
	assert.True(t, snap.Exited)
	assert.False(t, snap.ProbeRunning)
	assert.False(t, snap.HeartbeatRunning)
	assert.Equal(t, 1, h.guard.released)
	assert.Equal(t, 1, h.display.quitCall)
	assert.False(t, h.inhibitor.isHeld())

	h.ctrl.Exit()
	h.ctrl.TogglePause()
	assert.Equal(t, 1, h.guard.released, "exit runs once")
	assert.Equal(t, models.Active, h.ctrl.Snapshot().State)
}

func TestPeriodicTasks(t *testing.T) {
	h := newHarness(t, 5*time.Millisecond, 5*time.Millisecond)
	h.prober.set(true)
	h.ctrl.Start(context.Background())

	require.Eventually(t, func() bool {
		return h.prober.count() >= 3 && h.player.count() >= 2
	}, 2*time.Second, time.Millisecond)

	h.ctrl.TogglePause()
	h.ctrl.Wait()
	probes, plays := h.prober.count(), h.player.count()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, probes, h.prober.count(), "no probes while paused")
	assert.Equal(t, plays, h.player.count(), "no heartbeat while paused")
}

func TestConcurrentTriggersKeepIconConsistent(t *testing.T) {
	h := newHarness(t, time.Millisecond, time.Millisecond)
	h.ctrl.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.prober.set((i+j)%2 == 0)
				h.ctrl.ProbeTick(context.Background())
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 20; j++ {
			h.ctrl.TogglePause()
		}
	}()
	wg.Wait()

	h.ctrl.TogglePause()
	h.ctrl.Wait()

	snap := h.ctrl.Snapshot()
	assert.Equal(t, models.Paused, snap.State)
	assert.Equal(t, snap.Icon, h.display.icon())
	assert.Equal(t, "Resume", h.display.menuLabel())
}
