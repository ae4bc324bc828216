package search

import (
	"context"

	"reelmate/internal/entity"

	"github.com/sirupsen/logrus"
)

// UserSource streams users in batches.
type UserSource interface {
	FindInBatches(ctx context.Context, batchSize int, fn func(users []entity.User) error) error
}

// ReindexJob pushes every user into the search index. Profile updates index
// users immediately; the job repairs anything those writes missed.
type ReindexJob struct {
	users     UserSource
	index     UserSearchService
	schedule  string
	batchSize int
	log       *logrus.Logger
}

func NewReindexJob(users UserSource, index UserSearchService, schedule string, log *logrus.Logger) *ReindexJob {
	return &ReindexJob{
		users:     users,
		index:     index,
		schedule:  schedule,
		batchSize: 500,
		log:       log,
	}
}

const ReindexJobName = "user-reindex"

func (j *ReindexJob) Name() string {
	return ReindexJobName
}

func (j *ReindexJob) Schedule() string {
	return j.schedule
}

func (j *ReindexJob) Run(ctx context.Context) error {
	total := 0
	err := j.users.FindInBatches(ctx, j.batchSize, func(users []entity.User) error {
		if err := j.index.IndexUsers(users); err != nil {
			return err
		}
		total += len(users)
		return nil
	})
	if err != nil {
		return err
	}

	j.log.WithField("users", total).Info("user index rebuilt")
	return nil
}
