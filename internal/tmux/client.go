// Package tmux provides a thin wrapper around the tmux binary for probing
// session liveness. swarmdash only ever reads: it never creates, kills, or
// writes to sessions.
package tmux

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ProbeTimeout bounds every liveness probe so a wedged tmux server cannot
// stall a refresh cycle.
const ProbeTimeout = 5 * time.Second

// Client executes tmux commands.
type Client struct{}

// NewClient creates a new tmux client.
func NewClient() *Client {
	return &Client{}
}

// DefaultClient is the shared client used by the package-level helpers.
var DefaultClient = NewClient()

// Run executes a tmux command and returns trimmed stdout.
func (c *Client) Run(args ...string) (string, error) {
	return c.RunContext(context.Background(), args...)
}

// RunContext executes a tmux command with cancellation support.
func (c *Client) RunContext(ctx context.Context, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, "tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("tmux %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsInstalled checks if tmux is available on this host.
func (c *Client) IsInstalled() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// SessionExists reports whether a tmux session with the given name exists.
// Probe failures (tmux missing, server down, timeout) report false.
func (c *Client) SessionExists(name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), ProbeTimeout)
	defer cancel()
	_, err := c.RunContext(ctx, "has-session", "-t", name)
	return err == nil
}

// SessionExists probes via the default client.
func SessionExists(name string) bool {
	return DefaultClient.SessionExists(name)
}

// IsInstalled checks tmux availability via the default client.
func IsInstalled() bool {
	return DefaultClient.IsInstalled()
}
