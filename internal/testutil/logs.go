package testutil

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogBuffer collects log output written by concurrent workers.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogger returns a text logger at the given level together with the
// buffer it writes to.
func NewLogger(level slog.Level) (*slog.Logger, *LogBuffer) {
	lb := &LogBuffer{}
	return slog.New(slog.NewTextHandler(lb, &slog.HandlerOptions{Level: level})), lb
}

func (lb *LogBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.Write(p)
}

func (lb *LogBuffer) String() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.String()
}

// Lines returns the records written so far, one per element.
func (lb *LogBuffer) Lines() []string {
	out := strings.TrimRight(lb.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Count returns how many records contain substr.
func (lb *LogBuffer) Count(substr string) int {
	n := 0
	for _, line := range lb.Lines() {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

// AssertLogged fails the test if any of wants is missing from the output.
func AssertLogged(t testing.TB, lb *LogBuffer, wants ...string) {
	t.Helper()
	out := lb.String()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
