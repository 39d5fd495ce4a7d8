// Package runner invokes external tools with an optional deadline. A
// command that outlives its deadline is killed and reported as timed out.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout marks a command killed at its deadline.
var ErrTimeout = errors.New("command timed out")

// Command describes one invocation. A zero Timeout waits indefinitely.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of Run. Exactly one of these holds: Err is nil
// (exit 0), TimedOut is set, or Err explains the failure.
type Result struct {
	Output   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
	Err      error
}

func (r Result) OK() bool { return r.Err == nil && !r.TimedOut }

// Runner runs external commands.
type Runner interface {
	Run(ctx context.Context, c Command) Result
}

// Exec runs commands as child processes via os/exec.
type Exec struct {
	Logger *slog.Logger
}

// NewExec returns an Exec; a nil logger discards output.
func NewExec(logger *slog.Logger) *Exec {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Exec{Logger: logger}
}

// Run starts c, captures combined output and waits for it to exit or for
// its timeout to elapse.
func (e *Exec) Run(ctx context.Context, c Command) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.WaitDelay = 2 * time.Second
	configure(cmd)

	start := time.Now()
	out, err := cmd.CombinedOutput()
	res := Result{
		Output:   string(out),
		Duration: time.Since(start),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.Err = fmt.Errorf("%s: %w after %s", c.Name, ErrTimeout, c.Timeout)
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Err = fmt.Errorf("%s exited with status %d: %s", c.Name, res.ExitCode, firstLine(res.Output))
		} else {
			res.Err = fmt.Errorf("%s: %w", c.Name, err)
		}
	}

	if e.Logger != nil {
		e.Logger.Debug("external command finished",
			slog.String("command", c.String()),
			slog.Int("exit_code", res.ExitCode),
			slog.Bool("timed_out", res.TimedOut),
			slog.Duration("duration", res.Duration))
	}
	return res
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return "no output"
	}
	return s
}
