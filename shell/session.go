package shell

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"
)

// State is the lifecycle position of a Session. Terminated is final;
// Failed can be retried with another Start.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateFailed
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EventType classifies a lifecycle notification.
type EventType int

const (
	EventStarted EventType = iota
	EventOutput
	EventFailed
	EventTerminated
)

// Event is a lifecycle notification delivered on Session.Events().
type Event struct {
	Type     EventType
	Data     []byte // EventOutput: one output delivery from the shell
	Err      error  // EventFailed: why the spawn failed
	ExitCode int    // EventTerminated: process exit code, -1 if unknown
}

var (
	// ErrNotStartable is returned by Start on a session that is already
	// running or has terminated.
	ErrNotStartable = errors.New("session cannot be started in this state")
	// ErrBadDimensions is returned by Resize for non-positive dimensions.
	ErrBadDimensions = errors.New("rows and cols must be positive")
)

const (
	// DefaultGraceTimeout bounds how long Terminate waits for the shell
	// to exit before force-killing it.
	DefaultGraceTimeout = 2 * time.Second

	readBufferSize = 4096
	eventBuffer    = 256
	inputBuffer    = 256
)

// Options configure a Session.
type Options struct {
	// Shell is an explicit shell binary path. Empty means discover one.
	Shell string
	// Term is the advertised terminal type. A low-complexity type keeps
	// shells from emitting sequences outside the modeled vocabulary.
	// Empty means "xterm".
	Term string
	// Rows, Cols are the initial dimensions. Non-positive values become
	// 24x80.
	Rows, Cols int
	// Env entries are appended after the curated defaults and therefore
	// override them.
	Env []string
	// GraceTimeout overrides DefaultGraceTimeout when positive.
	GraceTimeout time.Duration
	// Logger receives lifecycle logs. Nil means slog.Default().
	Logger *slog.Logger
}

// Session owns one shell subprocess and its pseudo-terminal: spawning,
// output delivery, asynchronous input, resize, interrupt and bounded
// termination.
//
// Events() must be drained until it closes; output delivery applies
// backpressure to the shell rather than dropping data.
type Session struct {
	id   string
	opts Options
	log  *slog.Logger

	mu       sync.Mutex
	state    State
	cmd      *exec.Cmd
	ptmx     *os.File
	rows     int
	cols     int
	exitCode int

	events chan Event
	input  chan []byte

	// procExited closes once the child is reaped; done closes once the
	// session has fully shut down.
	procExited chan struct{}
	done       chan struct{}

	terminateOnce sync.Once
	closePtyOnce  sync.Once
}

// NewSession creates a session in the not-started state.
func NewSession(opts Options) *Session {
	if opts.Term == "" {
		opts.Term = "xterm"
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.GraceTimeout <= 0 {
		opts.GraceTimeout = DefaultGraceTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	return &Session{
		id:         id,
		opts:       opts,
		log:        logger.With("component", "shell", "session", id[:8]),
		state:      StateNotStarted,
		rows:       opts.Rows,
		cols:       opts.Cols,
		exitCode:   -1,
		events:     make(chan Event, eventBuffer),
		input:      make(chan []byte, inputBuffer),
		procExited: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Events returns the lifecycle notification stream. It closes after the
// terminated event has been delivered.
func (s *Session) Events() <-chan Event { return s.events }

// Done closes once the session has fully shut down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Size returns the dimensions last given to the session.
func (s *Session) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.cols
}

// Start spawns the shell in workingDir (the user's home when empty). A
// spawn failure leaves the session in Failed and is recoverable: the
// caller may fix the configuration and call Start again.
func (s *Session) Start(workingDir string) error {
	s.mu.Lock()
	if s.state != StateNotStarted && s.state != StateFailed {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotStartable, state)
	}
	rows, cols := s.rows, s.cols
	s.mu.Unlock()

	shellPath, err := findShell(s.opts.Shell)
	if err != nil {
		return s.failStart(fmt.Errorf("finding shell: %w", err))
	}

	if workingDir == "" {
		workingDir, _ = os.UserHomeDir()
	}

	cmd := exec.Command(shellPath, shellArgs(shellPath)...)
	cmd.Dir = workingDir
	cmd.Env = buildEnv(shellPath, s.opts.Term, rows, cols, s.opts.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: toUint16(rows),
		Cols: toUint16(cols),
	})
	if err != nil {
		return s.failStart(fmt.Errorf("spawning %s: %w", shellPath, err))
	}

	s.mu.Lock()
	s.state = StateRunning
	s.cmd = cmd
	s.ptmx = ptmx
	s.mu.Unlock()

	s.log.Info("shell started",
		"shell", shellPath,
		"pid", cmd.Process.Pid,
		"dir", workingDir,
		"size", fmt.Sprintf("%dx%d", rows, cols))

	s.events <- Event{Type: EventStarted}

	go s.waitLoop()
	go s.readLoop()
	go s.inputPump()
	return nil
}

// failStart records a recoverable spawn failure.
func (s *Session) failStart(err error) error {
	s.mu.Lock()
	s.state = StateFailed
	s.mu.Unlock()
	s.log.Warn("shell start failed", "error", err)
	s.events <- Event{Type: EventFailed, Err: err}
	return err
}

// waitLoop reaps the child and records its exit code.
func (s *Session) waitLoop() {
	err := s.cmd.Wait()
	s.mu.Lock()
	s.exitCode = exitCodeFromWait(err)
	s.mu.Unlock()
	close(s.procExited)
}

// readLoop delivers shell output until the PTY errors out (process exit
// or Terminate closing the descriptor), then finishes the session.
func (s *Session) readLoop() {
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.events <- Event{Type: EventOutput, Data: data}
		}
		if err != nil {
			break
		}
	}

	// The descriptor is dead; wait for the reaper before reporting.
	<-s.procExited
	s.mu.Lock()
	s.state = StateTerminated
	code := s.exitCode
	s.mu.Unlock()

	s.closePty()
	s.log.Info("shell terminated", "exit_code", code)

	close(s.done)
	s.events <- Event{Type: EventTerminated, ExitCode: code}
	close(s.events)
}

// inputPump writes queued input to the PTY so senders never block.
func (s *Session) inputPump() {
	for {
		select {
		case data := <-s.input:
			if _, err := s.ptmx.Write(data); err != nil {
				s.log.Debug("input write failed", "error", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

// SendInput queues literal bytes for the shell. It never blocks; input is
// silently dropped once the session is no longer running.
func (s *Session) SendInput(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state != StateRunning {
		return
	}

	select {
	case s.input <- []byte(text):
	default:
		// The shell has stopped consuming; dropping beats blocking a
		// UI caller.
		s.log.Warn("input queue full, dropping", "bytes", len(text))
	}
}

// Interrupt asks the foreground job to stop. ETX through the PTY lets the
// line discipline deliver SIGINT to the foreground process group; nothing
// is signaled directly so the shell itself survives.
func (s *Session) Interrupt() {
	s.SendInput("\x03")
}

// Resize informs the pseudo-terminal of new dimensions so the shell's
// line-wrap math matches the screen. Non-positive values are rejected
// without touching session state.
func (s *Session) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadDimensions, rows, cols)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows, s.cols = rows, cols
	if s.state != StateRunning || s.ptmx == nil {
		return nil
	}
	if err := pty.Setsize(s.ptmx, &pty.Winsize{
		Rows: toUint16(rows),
		Cols: toUint16(cols),
	}); err != nil {
		return fmt.Errorf("resizing pty: %w", err)
	}
	return nil
}

// Terminate shuts the session down: the PTY closes (hanging up the shell
// and stopping the read loop), and if the process is still alive after
// the grace period it is force-killed. Idempotent and non-blocking; wait
// on Done() for completion.
func (s *Session) Terminate() {
	s.terminateOnce.Do(func() {
		s.mu.Lock()
		if s.state == StateNotStarted || s.state == StateFailed {
			// Nothing is running; finish the lifecycle directly.
			s.state = StateTerminated
			s.mu.Unlock()
			close(s.done)
			s.events <- Event{Type: EventTerminated, ExitCode: -1}
			close(s.events)
			return
		}
		if s.state != StateRunning {
			s.mu.Unlock()
			return
		}
		proc := s.cmd.Process
		grace := s.opts.GraceTimeout
		s.mu.Unlock()

		s.log.Info("terminating session", "grace", grace)
		s.closePty()

		go func() {
			select {
			case <-s.procExited:
			case <-time.After(grace):
				s.log.Warn("grace period expired, killing shell")
				_ = proc.Kill()
				<-s.procExited
			}
		}()
	})
}

func (s *Session) closePty() {
	s.closePtyOnce.Do(func() {
		s.mu.Lock()
		ptmx := s.ptmx
		s.mu.Unlock()
		if ptmx != nil {
			_ = ptmx.Close()
		}
	})
}

// exitCodeFromWait extracts a process exit code from cmd.Wait's error.
func exitCodeFromWait(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// toUint16 converts a positive dimension to the PTY wire type, capping at
// the representable range.
func toUint16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
