// Package term wires a shell session, the escape decoder, and the
// screen grid into one live terminal. A single goroutine owns the
// decoder and grid, so neither needs locking; everything else observes
// the terminal through immutable snapshots.
package term

import (
	"log/slog"
	"sync"

	"github.com/starlingterm/starling/grid"
	"github.com/starlingterm/starling/parser"
	"github.com/starlingterm/starling/shell"
)

// session is the slice of shell.Session the terminal drives. Tests
// substitute a scripted implementation.
type session interface {
	Start(workingDir string) error
	Events() <-chan shell.Event
	SendInput(text string)
	Interrupt()
	Resize(rows, cols int) error
	Terminate()
	Done() <-chan struct{}
}

// command runs on the apply loop, which is the only goroutine allowed
// to touch the grid.
type command func(g *grid.Grid)

const cmdBuffer = 64

// Options configures a Terminal.
type Options struct {
	Rows, Cols    int
	MaxScrollback int // 0 means grid.DefaultMaxScrollback
	Logger        *slog.Logger
}

// Terminal composes a shell session with the decoder and grid. Output
// bytes from the session are decoded into actions and applied to the
// grid; consumers read the result as snapshots and repaint when the
// Changed channel fires.
type Terminal struct {
	sess session
	dec  *parser.Decoder
	g    *grid.Grid
	log  *slog.Logger

	cmds    chan command
	events  chan shell.Event
	changed chan struct{}
	loop    chan struct{} // closed when the apply loop exits

	mu   sync.Mutex
	snap *grid.Snapshot

	closeOnce sync.Once
}

// New builds a terminal around an existing session. The apply loop
// starts immediately and runs until the session's event stream closes.
func New(sess *shell.Session, opts Options) *Terminal {
	return newTerminal(sess, opts)
}

func newTerminal(sess session, opts Options) *Terminal {
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	t := &Terminal{
		sess:    sess,
		dec:     parser.NewDecoder(),
		g:       grid.NewGrid(opts.Rows, opts.Cols),
		log:     log.With("component", "term"),
		cmds:    make(chan command, cmdBuffer),
		events:  make(chan shell.Event, 8),
		changed: make(chan struct{}, 1),
		loop:    make(chan struct{}),
	}
	if opts.MaxScrollback > 0 {
		t.g.SetMaxScrollback(opts.MaxScrollback)
	}
	t.publish()

	go t.run()
	return t
}

// Start launches the underlying shell in workingDir.
func (t *Terminal) Start(workingDir string) error {
	return t.sess.Start(workingDir)
}

// run is the apply loop. It owns the decoder and grid exclusively.
func (t *Terminal) run() {
	defer close(t.loop)

	events := t.sess.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.publish()
				close(t.events)
				return
			}
			t.handleEvent(ev)
		case cmd := <-t.cmds:
			cmd(t.g)
			t.publish()
		}
	}
}

func (t *Terminal) handleEvent(ev shell.Event) {
	switch ev.Type {
	case shell.EventOutput:
		t.g.ApplyAll(t.dec.Feed(ev.Data))
		t.publish()
	default:
		// Lifecycle events pass through without the output payload.
		ev.Data = nil
		select {
		case t.events <- ev:
		default:
			t.log.Warn("lifecycle event dropped", "type", ev.Type)
		}
	}
}

// publish refreshes the shared snapshot and pokes the changed channel.
func (t *Terminal) publish() {
	snap := t.g.Snapshot()
	t.mu.Lock()
	t.snap = snap
	t.mu.Unlock()

	select {
	case t.changed <- struct{}{}:
	default:
	}
}

// enqueue hands a command to the apply loop, dropping it if the loop
// has already exited.
func (t *Terminal) enqueue(cmd command) {
	select {
	case t.cmds <- cmd:
	case <-t.loop:
	}
}

// Snapshot returns the most recently published screen state.
func (t *Terminal) Snapshot() *grid.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Changed fires whenever a new snapshot is available. The channel is
// coalescing: consumers repaint from Snapshot and may miss
// intermediate states, never the latest one.
func (t *Terminal) Changed() <-chan struct{} {
	return t.changed
}

// Events carries session lifecycle notifications (started, failed,
// terminated). Output events are consumed internally and never appear
// here.
func (t *Terminal) Events() <-chan shell.Event {
	return t.events
}

// SendInput forwards keyboard bytes to the shell.
func (t *Terminal) SendInput(text string) {
	t.sess.SendInput(text)
}

// Interrupt delivers Ctrl-C to the foreground job.
func (t *Terminal) Interrupt() {
	t.sess.Interrupt()
}

// Resize propagates a new geometry to both the PTY and the grid.
func (t *Terminal) Resize(rows, cols int) error {
	if err := t.sess.Resize(rows, cols); err != nil {
		return err
	}
	t.enqueue(func(g *grid.Grid) {
		if err := g.Resize(rows, cols); err != nil {
			t.log.Warn("grid resize failed", "error", err)
		}
	})
	return nil
}

// ScrollUp moves the view toward older scrollback lines.
func (t *Terminal) ScrollUp(lines int) {
	t.enqueue(func(g *grid.Grid) { g.ScrollViewUp(lines) })
}

// ScrollDown moves the view back toward the live screen.
func (t *Terminal) ScrollDown(lines int) {
	t.enqueue(func(g *grid.Grid) { g.ScrollViewDown(lines) })
}

// ResetScroll snaps the view to the live screen.
func (t *Terminal) ResetScroll() {
	t.enqueue(func(g *grid.Grid) { g.ResetScrollView() })
}

// Close terminates the session and waits for the apply loop to drain
// the remaining events.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		t.sess.Terminate()
		<-t.loop
	})
}

// Done closes once the shell process is gone and the session has shut
// down.
func (t *Terminal) Done() <-chan struct{} {
	return t.sess.Done()
}
