//go:build !deadlock

package syncqueue

import "sync"

type mutex = sync.Mutex
