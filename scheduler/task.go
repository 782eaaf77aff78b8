// Package scheduler runs named periodic jobs that can be stopped and restarted.
package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/namedcache/namedcache/log"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

const minPeriod = time.Second

// Task is a periodic job owned by the object that created it.
// Start always cancels a previous schedule, so repeated Start calls never
// accumulate concurrent schedules.
type Task struct {
	name   string
	period time.Duration
	job    func()
	logger *logrus.Entry

	lock    sync.Mutex
	cron    *cron.Cron
	running atomic.Bool
}

// NewTask creates a stopped task. Periods below one second are rounded up.
func NewTask(name string, period time.Duration, job func()) *Task {
	if period < minPeriod {
		period = minPeriod
	}

	return &Task{
		name:   name,
		period: period,
		job:    job,
		logger: log.PrefixedLog("scheduler").WithField("task", name),
	}
}

// Name returns the task name
func (t *Task) Name() string {
	return t.name
}

// Period returns the effective period
func (t *Task) Period() time.Duration {
	return t.period
}

// Start (re)starts the schedule
func (t *Task) Start() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.stopLocked()

	c := cron.New()
	c.Schedule(cron.Every(t.period), cron.FuncJob(t.RunNow))
	c.Start()

	t.cron = c

	t.logger.Debugf("scheduled every %s", t.period)
}

// Stop cancels the schedule. A run already in progress completes.
func (t *Task) Stop() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.stopLocked()
}

func (t *Task) stopLocked() {
	if t.cron == nil {
		return
	}

	t.cron.Stop()
	t.cron = nil

	t.logger.Debug("stopped")
}

// IsScheduled returns true if the task is currently scheduled
func (t *Task) IsScheduled() bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.cron != nil
}

// RunNow executes the job synchronously. A panic inside the job is logged and
// does not affect later runs. Overlapping runs are skipped.
func (t *Task) RunNow() {
	if !t.running.CompareAndSwap(false, true) {
		t.logger.Warn("previous run still in progress, skipping")

		return
	}

	defer t.running.Store(false)

	if err := t.safeRun(); err != nil {
		t.logger.Error("run failed: ", err)
	}
}

func (t *Task) safeRun() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", t.name, r)
		}
	}()

	t.job()

	return nil
}
