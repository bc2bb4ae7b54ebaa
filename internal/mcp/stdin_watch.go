package mcp

import (
	"context"
	"os"
	"time"

	"windtrader/internal/logging"
)

// parentPollInterval is how often the watchdog re-checks the parent PID.
var parentPollInterval = 2 * time.Second

// WatchParent monitors for parent process death in a background goroutine.
// When the parent PID changes (the editor disconnected or restarted its
// extension host), cancelFn is called to trigger graceful shutdown, so no
// zombie server processes accumulate.
//
// The watchdog must NOT read from stdin: the SDK's StdioTransport owns
// stdin exclusively, and stealing bytes would corrupt the JSON-RPC stream.
//
// The goroutine exits when ctx is canceled or parent death is detected.
func WatchParent(ctx context.Context, cancelFn context.CancelFunc) {
	ppid := os.Getppid()
	log := logging.New("mcp")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(parentPollInterval):
				if os.Getppid() != ppid {
					log.Warn("parent process died, initiating shutdown", "was_pid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
