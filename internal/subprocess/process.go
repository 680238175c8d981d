package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/git-annex-adapter-go/internal/config"
	"github.com/wagiedev/git-annex-adapter-go/internal/errors"
)

const (
	// readBufferSize is the initial buffer size of the stdout reader.
	readBufferSize = 64 * 1024
	// maxStderrBufferSize is the maximum size for the stderr buffer.
	// Stderr is consumed for the whole process lifetime, but the buffer
	// stops growing after this limit to prevent unbounded memory usage.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

// Process is an interactive session with one long-lived subprocess.
//
// The subprocess is spawned by Start and owned exclusively by the Process
// until Close. Each request is one line written to its stdin; each response
// is one or more lines read from its stdout.
type Process struct {
	log          *slog.Logger
	id           string
	command      Command
	cmd          *exec.Cmd
	stdin        io.WriteCloser
	stdout       *bufio.Reader
	stderr       *cappedBuffer
	maxLineSize  int
	closeTimeout time.Duration

	// kill force-stops the process; replaced in tests.
	kill func() error

	eg        errgroup.Group
	waitOnce  sync.Once
	drainOnce sync.Once
	done     chan struct{} // closed once the process has been reaped
	waitErr  error

	stdinClosed bool
	closing     bool // Close has started; the reader belongs to the drainer
	closed      bool
}

// Start spawns command with stdin, stdout and stderr connected to pipes.
//
// Cancelling ctx kills the subprocess; a read blocked on it then fails with
// a TerminatedError. Returns a LaunchError if the process cannot be created.
func Start(ctx context.Context, command Command, opts *config.Options) (*Process, error) {
	opts = opts.WithDefaults()

	if len(command.args) == 0 {
		return nil, errors.ErrEmptyCommand
	}

	id := ulid.Make().String()
	log := opts.Logger.With("component", "process", "session", id)

	cmd := command.build(ctx, opts.Env)
	cmd.WaitDelay = opts.CloseTimeout

	stderr := &cappedBuffer{limit: maxStderrBufferSize}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Error("Failed to create stdin pipe", "error", err)

		return nil, &errors.LaunchError{Args: command.Args(), Dir: command.dir, Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Error("Failed to create stdout pipe", "error", err)

		return nil, &errors.LaunchError{Args: command.Args(), Dir: command.dir, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		log.Error("Failed to start process", "args", command.args, "dir", command.dir, "error", err)

		return nil, &errors.LaunchError{Args: command.Args(), Dir: command.dir, Err: err}
	}

	log = log.With("pid", cmd.Process.Pid)
	log.Debug("Process started", "args", command.args, "dir", command.dir)

	proc := &Process{
		log:          log,
		id:           id,
		command:      command,
		cmd:          cmd,
		stdin:        stdin,
		stdout:       bufio.NewReaderSize(stdout, readBufferSize),
		stderr:       stderr,
		maxLineSize:  opts.MaxLineSize,
		closeTimeout: opts.CloseTimeout,
		done:         make(chan struct{}),
	}
	proc.kill = proc.cmd.Process.Kill

	return proc, nil
}

// ID returns the session identifier used in log records.
func (p *Process) ID() string {
	return p.id
}

// Command returns the command the process was started with.
func (p *Process) Command() Command {
	return p.command
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// WriteLine sends one request line to the process.
//
// The line terminator is appended and the write goes straight to the pipe.
// A line containing a terminator is rejected with ErrInvalidRequest.
func (p *Process) WriteLine(line string) error {
	if p.closing {
		return errors.ErrProcessClosed
	}

	if p.stdinClosed {
		return errors.ErrStdinClosed
	}

	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("%w: %q", errors.ErrInvalidRequest, line)
	}

	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		p.log.Debug("Failed to write request", "error", err)

		return &errors.TerminatedError{
			Args:   p.command.Args(),
			Stderr: p.stderr.String(),
			Err:    fmt.Errorf("write to stdin: %w", err),
		}
	}

	p.log.Debug("Request sent", "data_len", len(line))

	return nil
}

// ReadLine reads exactly one line of output with its terminator stripped.
//
// If the output ends before a complete line arrives, ReadLine returns a
// TerminatedError holding any partial text and the stderr captured so far.
func (p *Process) ReadLine() (string, error) {
	if p.closing {
		return "", errors.ErrProcessClosed
	}

	line, err := p.readLine()
	if err == nil {
		return line, nil
	}

	if stderrors.Is(err, errors.ErrLineTooLong) {
		return "", err
	}

	return "", p.terminated(line, err)
}

// ReadLines reads lines one at a time until framer reports the response complete.
// A nil framer reads a single line.
func (p *Process) ReadLines(framer Framer) ([]string, error) {
	if framer == nil {
		framer = UntilCount(1)
	}

	lines := make([]string, 0, 4)

	for {
		line, err := p.ReadLine()
		if err != nil {
			return lines, err
		}

		lines = append(lines, line)

		if framer.Complete(lines) {
			p.log.Debug("Response received", "lines", len(lines))

			return lines, nil
		}
	}
}

// Communicate writes one request line and reads its one-line response.
func (p *Process) Communicate(line string) (string, error) {
	if err := p.WriteLine(line); err != nil {
		return "", err
	}

	return p.ReadLine()
}

// CommunicateLines writes one request line and reads a multi-line response
// framed by framer.
func (p *Process) CommunicateLines(line string, framer Framer) ([]string, error) {
	if err := p.WriteLine(line); err != nil {
		return nil, err
	}

	return p.ReadLines(framer)
}

// Finish closes stdin and reads every remaining line until the process
// closes its output. Unlike ReadLine, reaching the end of output is the
// expected outcome here; a final unterminated line is included as is.
func (p *Process) Finish() ([]string, error) {
	if p.closing {
		return nil, errors.ErrProcessClosed
	}

	if err := p.closeStdin(); err != nil {
		return nil, fmt.Errorf("close stdin: %w", err)
	}

	var lines []string

	for {
		line, err := p.readLine()

		switch {
		case err == nil:
			lines = append(lines, line)
		case stderrors.Is(err, io.EOF):
			if line != "" {
				lines = append(lines, line)
			}

			return lines, nil
		default:
			return lines, err
		}
	}
}

// Close ends the session and reaps the subprocess.
//
// Stdin is closed first, which tells batch-mode tools to exit. Unread output
// is discarded. If the process is still running after the close timeout it
// is sent SIGTERM, and killed if it survives a second timeout. A non-zero
// exit status is not an error here; inspect ExitCode and Stderr instead.
// Close is safe to call multiple times.
func (p *Process) Close() error {
	if p.closed {
		return nil
	}

	p.closing = true

	p.log.Debug("Closing process")

	if err := p.closeStdin(); err != nil {
		p.log.Debug("Failed to close stdin", "error", err)
	}

	p.drainOnce.Do(func() {
		p.eg.Go(func() error {
			// Drain unread output so the process is never blocked writing.
			_, _ = io.Copy(io.Discard, p.stdout)

			return nil
		})
	})

	var closeErr error

	if !p.awaitExit(p.closeTimeout) {
		p.log.Debug("Process still running after stdin close, terminating")

		if err := p.terminate(); err != nil {
			closeErr = fmt.Errorf("terminate process (pid %d): %w", p.Pid(), err)
		} else if !p.awaitExit(p.closeTimeout) {
			p.log.Warn("Process ignored terminate, killing")

			if err := p.kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
				closeErr = fmt.Errorf("kill process (pid %d): %w", p.Pid(), err)
			}
		}
	}

	// After a failed stop the process may still exit on its own; otherwise
	// Close can be called again.
	if closeErr != nil && !p.awaitExit(p.closeTimeout) {
		p.log.Warn("Failed to stop process", "error", closeErr)

		return closeErr
	}

	p.closed = true

	<-p.done
	_ = p.eg.Wait()

	p.log.Debug("Process reaped", "exit_code", p.ExitCode())

	return nil
}

// Exited reports whether the process has been reaped.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the exit code of a reaped process, or -1 while it is
// still running or if it was terminated by a signal.
func (p *Process) ExitCode() int {
	if !p.Exited() {
		return -1
	}

	return p.cmd.ProcessState.ExitCode()
}

// ProcessState returns the completion status of a reaped process, or nil.
func (p *Process) ProcessState() *os.ProcessState {
	if !p.Exited() {
		return nil
	}

	return p.cmd.ProcessState
}

// WaitError returns the error reported when the process was reaped, such as
// an *exec.ExitError for a non-zero exit. It is nil while running.
func (p *Process) WaitError() error {
	if !p.Exited() {
		return nil
	}

	return p.waitErr
}

// Stderr returns the stderr output captured so far.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

// readLine reads one physical line. On a read error it returns the partial
// line read so far together with the error.
//
// A line whose content exceeds maxLineSize is consumed up to its terminator
// and reported as ErrLineTooLong, so the next read starts on a fresh line.
func (p *Process) readLine() (string, error) {
	var buf []byte

	for {
		chunk, err := p.stdout.ReadSlice('\n')
		buf = append(buf, chunk...)

		if err == nil {
			line := trimTerminator(buf)
			if len(line) > p.maxLineSize {
				return "", p.lineTooLong()
			}

			return line, nil
		}

		// One extra byte may be the '\r' of a "\r\n" terminator.
		if len(buf) > p.maxLineSize+1 {
			if err := p.skipLine(); err != nil {
				return "", err
			}

			return "", p.lineTooLong()
		}

		if !stderrors.Is(err, bufio.ErrBufferFull) {
			return string(buf), err
		}
	}
}

// skipLine discards output up to and including the next line terminator.
func (p *Process) skipLine() error {
	for {
		_, err := p.stdout.ReadSlice('\n')
		if err == nil {
			return nil
		}

		if !stderrors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

func (p *Process) lineTooLong() error {
	p.log.Debug("Discarded oversized output line", "max_line_size", p.maxLineSize)

	return fmt.Errorf("%w: exceeds %d bytes", errors.ErrLineTooLong, p.maxLineSize)
}

// terminated builds the error for output that ended mid-response. The
// process is given a bounded chance to exit so its stderr and exit status
// are complete.
func (p *Process) terminated(partial string, err error) error {
	if stderrors.Is(err, io.EOF) {
		p.awaitExit(p.closeTimeout)
	}

	p.log.Debug("Process output ended unexpectedly", "error", err, "exited", p.Exited())

	return &errors.TerminatedError{
		Args:    p.command.Args(),
		Partial: partial,
		Stderr:  p.stderr.String(),
		Err:     err,
	}
}

func (p *Process) closeStdin() error {
	if p.stdinClosed {
		return nil
	}

	p.stdinClosed = true

	return p.stdin.Close()
}

// startWait reaps the process in the background exactly once.
func (p *Process) startWait() {
	p.waitOnce.Do(func() {
		p.eg.Go(func() error {
			p.waitErr = p.cmd.Wait()
			close(p.done)

			return nil
		})
	})
}

// awaitExit waits up to timeout for the process to be reaped.
func (p *Process) awaitExit(timeout time.Duration) bool {
	p.startWait()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	}
}

// terminate asks the process to exit, falling back to kill where SIGTERM
// is unsupported.
func (p *Process) terminate() error {
	err := p.cmd.Process.Signal(syscall.SIGTERM)
	if err == nil || stderrors.Is(err, os.ErrProcessDone) {
		return nil
	}

	if err := p.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return err
	}

	return nil
}

// trimTerminator strips a trailing "\n" or "\r\n".
func trimTerminator(line []byte) string {
	s := strings.TrimSuffix(string(line), "\n")

	return strings.TrimSuffix(s, "\r")
}

// cappedBuffer collects output up to limit bytes and silently drops the rest.
type cappedBuffer struct {
	mu    sync.Mutex
	buf   strings.Builder
	limit int
}

func (b *cappedBuffer) Write(data []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if remaining := b.limit - b.buf.Len(); remaining > 0 {
		b.buf.Write(data[:min(len(data), remaining)])
	}

	return len(data), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
