package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

type Job interface {
	Name() string
	Run()
}

type CronJob interface {
	Schedule() string
	Job
}

// TaskExecutor runs cron jobs, skipping a run while the previous one is still going.
type TaskExecutor struct {
	cron            *cron.Cron
	cronJobs        []CronJob
	runningCronJobs mapset.Set[string]
	mu              sync.Mutex
}

func NewTaskExecutor(cronJobs ...CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:            cron.New(),
		cronJobs:        cronJobs,
		runningCronJobs: mapset.NewThreadUnsafeSet[string](),
	}
}

// Start schedules the jobs, each run happens in its own goroutine inside the cron.
func (t *TaskExecutor) Start() error {
	for _, job := range t.cronJobs {
		job := job
		err := t.cron.AddFunc(job.Schedule(), func() {
			t.RunOnce(job)
		})
		if err != nil {
			logrus.Errorf("failed to add task %s to cron: %v", job.Name(), err)
			return err
		}
	}

	t.cron.Start()
	return nil
}

// RunOnce runs job unless a run of it is already in progress. It reports whether job ran.
func (t *TaskExecutor) RunOnce(job Job) bool {
	t.mu.Lock()
	if t.runningCronJobs.Contains(job.Name()) {
		t.mu.Unlock()
		logrus.Warnf("task %s is already running", job.Name())
		return false
	}
	t.runningCronJobs.Add(job.Name())
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.runningCronJobs.Remove(job.Name())
	}()

	job.Run()
	return true
}

func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all tasks")
	t.cron.Stop()
}
