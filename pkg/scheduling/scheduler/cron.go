package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/taskpool/pkg/scheduling/threadpool"
)

// newParser accepts five or six field expressions plus descriptors.
func newParser() cron.Parser {
	return cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
}

// cronLogger adapts a threadpool.Logger to cron.Logger. cron's
// per-tick info messages go to debug.
type cronLogger struct {
	l threadpool.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
