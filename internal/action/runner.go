// Package action runs the shell commands bound to holds.
package action

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	queueSize      = 32
	defaultTimeout = 10 * time.Second
	// killGrace bounds how long Wait keeps reading output after the
	// command's process group is killed.
	killGrace = 500 * time.Millisecond
)

// Phases reported in Job.Phase.
const (
	PhaseStart = "start"
	PhaseEnd   = "end"
)

// Job is one command run for a hold transition.
type Job struct {
	Hold     string
	Phase    string
	Command  string
	Keyboard string
	Code     int
	Timeout  time.Duration
}

// Expand substitutes {hold}, {keyboard} and {keycode} in the command.
func (j Job) Expand() string {
	return strings.NewReplacer(
		"{hold}", j.Hold,
		"{keyboard}", j.Keyboard,
		"{keycode}", strconv.Itoa(j.Code),
	).Replace(j.Command)
}

// Runner executes jobs one at a time on its own goroutine, in submission
// order, so slow commands never stall event dispatch.
type Runner struct {
	queue  chan Job
	logger *log.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRunner starts a worker that stops when ctx is cancelled or Close
// is called. Cancelling ctx also kills the running command.
func NewRunner(ctx context.Context, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	r := &Runner{
		queue:  make(chan Job, queueSize),
		logger: logger,
	}
	r.wg.Add(1)
	go r.work(ctx)
	return r
}

// Submit queues a job. It never blocks: when the queue is full or the
// runner is closed the job is dropped and false is returned.
func (r *Runner) Submit(j Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	select {
	case r.queue <- j:
		return true
	default:
		r.logger.Printf("action %s: queue full, dropping %s command", j.Hold, j.Phase)
		return false
	}
}

// Close stops accepting jobs, waits for queued ones to finish and returns.
func (r *Runner) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Runner) work(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-r.queue:
			if !ok {
				return
			}
			if err := r.run(ctx, j); err != nil {
				r.logger.Printf("action %s: %s command failed: %v", j.Hold, j.Phase, err)
			}
		}
	}
}

func (r *Runner) run(ctx context.Context, j Job) error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmdStr := j.Expand()
	if strings.TrimSpace(cmdStr) == "" {
		return fmt.Errorf("empty command after substitution")
	}

	r.logger.Printf("action %s: %s command: %s", j.Hold, j.Phase, cmdStr)

	start := time.Now()
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdStr)
	killProcessGroup(cmd)
	cmd.WaitDelay = killGrace
	output, err := cmd.CombinedOutput()
	latency := time.Since(start)
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			return fmt.Errorf("run command: %w: %s", err, out)
		}
		return fmt.Errorf("run command: %w", err)
	}

	r.logger.Printf("action %s: %s done: output_size=%d latency=%s", j.Hold, j.Phase, len(output), latency.Round(time.Millisecond))
	if text := strings.TrimSpace(string(output)); text != "" {
		r.logger.Printf("action %s: output: %q", j.Hold, text)
	}
	return nil
}
