package scheduler_test

import (
	"fmt"
	"time"

	"github.com/vnykmshr/taskpool/pkg/scheduling/scheduler"
	"github.com/vnykmshr/taskpool/pkg/scheduling/threadpool"
)

func ExampleScheduler_Schedule() {
	pool := threadpool.NewFixed(2, 10)
	defer pool.Stop()

	s, _ := scheduler.NewWithConfig(scheduler.Config{Pool: pool, Location: time.UTC})
	defer func() { <-s.Stop() }()

	task := threadpool.TaskFunc(func() { fmt.Println("report generated") })

	_ = s.Schedule("nightly-report", "0 0 2 * * *", task)
	_ = s.Every("heartbeat", 30*time.Second, task)

	next, _ := s.Next("nightly-report")
	fmt.Println(s.List())
	fmt.Println(next.Hour(), next.Minute())

	// Output:
	// [heartbeat nightly-report]
	// 2 0
}

func ExampleScheduler_Validate() {
	s := scheduler.New(nil)
	defer func() { <-s.Stop() }()

	fmt.Println(s.Validate("*/15 * * * *") == nil)
	fmt.Println(s.Validate("every tuesday") == nil)

	// Output:
	// true
	// false
}
