//go:build deadlock

package syncqueue

import (
	"log"
	"os"
	"time"

	"github.com/sasha-s/go-deadlock"
)

func init() {
	deadlock.Opts.DeadlockTimeout = 2 * time.Second
	deadlock.Opts.LogBuf = os.Stderr
	deadlock.Opts.OnPotentialDeadlock = func() {
		log.Println("syncqueue: potential deadlock detected")
		os.Exit(2)
	}
}

type mutex = deadlock.Mutex
