package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes a single kubectl invocation. Abstracted so pod tools can
// be tested without a cluster.
type Runner interface {
	Run(ctx context.Context, args ...string) (stdout string, stderr string, err error)
}

// KubectlRunner shells out to the kubectl binary with a hard per-call
// timeout. The subprocess is killed when the timeout fires or the request
// context is cancelled.
type KubectlRunner struct {
	Path    string
	Timeout time.Duration
}

// NewKubectlRunner creates a runner for the given binary path ("" means
// "kubectl" from PATH) and per-call timeout.
func NewKubectlRunner(path string, timeout time.Duration) *KubectlRunner {
	if path == "" {
		path = "kubectl"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KubectlRunner{Path: path, Timeout: timeout}
}

// Run executes kubectl with the given arguments.
func (r *KubectlRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Path, args...)
	// Give the process a short grace period after cancellation before the
	// kill, so kubectl can release its connection cleanly.
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return stdout.String(), stderr.String(),
				fmt.Errorf("kubectl timed out after %s", r.Timeout)
		}
		return stdout.String(), stderr.String(), err
	}
	return stdout.String(), stderr.String(), nil
}
