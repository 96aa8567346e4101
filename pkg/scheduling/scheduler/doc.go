// Package scheduler submits tasks into a threadpool.Pool on cron expressions
// or fixed intervals.
//
// The scheduler never runs tasks itself. When a schedule fires it hands the
// task to the pool with TrySubmit, so a slow task occupies a pool worker and
// never delays other schedules. Timing is driven by github.com/robfig/cron/v3.
//
// # Basic Usage
//
//	pool := threadpool.NewFixed(4, 100)
//	defer pool.Stop()
//
//	s := scheduler.New(pool)
//	defer func() { <-s.Stop() }()
//
//	task := threadpool.TaskFunc(func() {
//		fmt.Println("Task executed!")
//	})
//
//	s.Schedule("cleanup", "0 */15 * * * *", task) // every 15 minutes
//	s.Every("heartbeat", 30*time.Second, task)
//	s.Start()
//
// # Expressions
//
// Schedule accepts five field expressions (minute hour day month weekday),
// six field expressions with a leading seconds field, and descriptors:
//
//	"*/5 * * * * *"  - every 5 seconds
//	"30 14 * * 1-5"  - 2:30 PM on weekdays
//	"@hourly"        - at the top of every hour
//	"@every 90s"     - every 90 seconds
//
// Expressions are evaluated in Config.Location. Every works in whole
// seconds and rounds shorter intervals up to one second.
//
// # Refused Firings
//
// A firing the pool refuses (stopped pool, full elastic queue) is skipped,
// logged at warn level with a retryable flag and counted in Entry.Skipped.
// With Config.SkipIfPending a firing is also skipped while the previous task
// of the same schedule is still queued or running.
//
// # Lifecycle
//
// Start begins firing. Stop returns a channel that closes once no firing is
// in progress. A scheduler created without a pool owns a default fixed pool
// and drains it on Stop; a pool passed in by the caller is left running. A
// stopped scheduler cannot be restarted.
package scheduler
