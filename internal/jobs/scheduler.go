package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a unit of background work. An empty Schedule registers it for on-demand runs only.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
	log  *logrus.Logger
}

func NewScheduler(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
		log:  log,
	}
}

// Register adds job and schedules it when it has a cron spec.
func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	schedule := job.Schedule()
	if schedule == "" {
		s.log.WithField("job", job.Name()).Info("registered on-demand job")
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		entry := s.log.WithField("job", job.Name())
		entry.Info("starting scheduled job")
		if err := job.Run(context.Background()); err != nil {
			entry.WithError(err).Error("scheduled job failed")
			return
		}
		entry.Info("scheduled job completed")
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"job": job.Name(), "schedule": schedule}).Info("scheduled job")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.jobs)).Info("job scheduler started")
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("job scheduler stopped")
}

// RunByName runs a registered job immediately. It reports false when no job has that name.
func (s *Scheduler) RunByName(ctx context.Context, name string) (bool, error) {
	for _, job := range s.jobs {
		if job.Name() == name {
			return true, job.Run(ctx)
		}
	}
	return false, nil
}

func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
