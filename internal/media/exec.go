package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// errTimeout marks a tool invocation that was killed by its deadline.
var errTimeout = errors.New("timed out")

const (
	// maxStderr bounds how much tool stderr ends up in an error message.
	maxStderr = 512
	// waitDelay bounds how long a killed tool may hold its output pipes.
	waitDelay = 2 * time.Second
)

// runTool runs an external tool and returns its stdout.
func runTool(ctx context.Context, tool string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s: %w", tool, errTimeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr] + "..."
		}
		return nil, fmt.Errorf("%s failed: %w, stderr: %s", tool, err, msg)
	}

	return stdout.Bytes(), nil
}
