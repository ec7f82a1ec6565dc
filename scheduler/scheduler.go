package scheduler

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/logger"
)

type stoppable interface {
	stop()
	do()
}

type taskTerminating struct {
	tag      string
	todo     func()
	timer    *time.Timer
	done     chan struct{}
	stopOnce sync.Once
}

type taskCron struct {
	tag  string
	todo func()
	id   cron.EntryID
}

var (
	taskMap = commons.NewConcurrentMap[string, stoppable]()

	cronOnce   sync.Once
	cronRunner *cron.Cron
)

func runner() *cron.Cron {
	cronOnce.Do(func() {
		cronRunner = cron.New(cron.WithLocation(commons.AsiaSeoul))
		cronRunner.Start()
	})
	return cronRunner
}

func (task *taskTerminating) stop() {
	task.stopOnce.Do(func() {
		task.timer.Stop()
		close(task.done)
	})
	if current, ok := taskMap.GetValue(task.tag); ok && current == stoppable(task) {
		taskMap.DeleteValue(task.tag)
	}
}

func (task *taskTerminating) do() {
	commons.RunRecovered(task.tag, task.todo)
}

func (task *taskCron) stop() {
	runner().Remove(task.id)
	taskMap.DeleteValue(task.tag)
}

func (task *taskCron) do() {
	commons.RunRecovered(task.tag, task.todo)
}

// Cancel task schedulled by tag
func Cancel(tag string) {
	task, ok := taskMap.GetValue(tag)
	if ok {
		task.stop()
	}
}

// Scheduled reports whether a task is registered under tag.
func Scheduled(tag string) bool {
	_, ok := taskMap.GetValue(tag)
	return ok
}

// Schedule single task. Duplicated tag will overwrite the task to do.
func Schedule(tag string, after time.Duration, todo func()) {
	task := &taskTerminating{
		tag:   tag,
		todo:  todo,
		timer: time.NewTimer(after),
		done:  make(chan struct{}),
	}
	Cancel(tag)
	taskMap.SetValue(tag, task)
	logger.Info("[Scheduler] Appended task %s: after %f minutes", tag, float64(after)/float64(time.Minute))
	commons.InvokeGoroutine(tag, func() {
		select {
		case <-task.timer.C:
		case <-task.done:
			return
		}
		// 이미 다른 task로 교체된 경우 실행하지 않음
		if current, ok := taskMap.GetValue(tag); !ok || current != stoppable(task) {
			return
		}
		taskMap.DeleteValue(tag)
		task.do()
	})
}

// ScheduleEveryday runs a task everyday at a given hour, Asia/Seoul.
// startHour may carry minutes as a fraction: 5.5 is 05:30.
func ScheduleEveryday(tag string, startHour float64, todo func()) error {
	if startHour < 0 || startHour >= 24 {
		return fmt.Errorf("[Scheduler] invalid hour %v", startHour)
	}
	h, m := clock(startHour)
	return ScheduleCron(tag, fmt.Sprintf("%d %d * * *", m, h), todo)
}

// ScheduleCron runs a task on a standard 5 field cron spec, Asia/Seoul.
func ScheduleCron(tag, spec string, todo func()) error {
	task := &taskCron{tag: tag, todo: todo}
	id, err := runner().AddFunc(spec, task.do)
	if err != nil {
		return fmt.Errorf("[Scheduler] invalid spec %q: %w", spec, err)
	}
	task.id = id
	Cancel(tag)
	taskMap.SetValue(tag, task)
	logger.Info("[Scheduler] Appended task %s: %s, next at %v", tag, spec, runner().Entry(id).Next)
	return nil
}

// clock rounds a fractional hour to the nearest minute of the day.
func clock(startHour float64) (hour, minute int) {
	minutes := int(math.Round(startHour*60)) % (24 * 60)
	return minutes / 60, minutes % 60
}

func startingDate(startHour float64) time.Time {
	now := commons.Now()
	y, m, d := now.Date()
	h, i := clock(startHour)
	refDate := time.Date(y, m, d, h, i, 0, 0, commons.AsiaSeoul)
	if !refDate.After(now) {
		refDate = refDate.AddDate(0, 0, 1)
	}
	return refDate
}

// NextRun returns when a daily task at startHour runs next.
func NextRun(startHour float64) time.Time {
	return startingDate(startHour)
}
