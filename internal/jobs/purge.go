package jobs

import (
	"context"
	"time"

	"github.com/emrgen/linkgraph/internal/store"
	"github.com/sirupsen/logrus"
)

var _ CronJob = (*PurgeTask)(nil)

// PurgeTask erases documents that were soft deleted longer ago than the retention.
type PurgeTask struct {
	store     store.Store
	schedule  string
	retention time.Duration
	now       func() time.Time
}

func NewPurgeTask(store store.Store, schedule string, retention time.Duration) *PurgeTask {
	return &PurgeTask{
		store:     store,
		schedule:  schedule,
		retention: retention,
		now:       time.Now,
	}
}

func (p *PurgeTask) Name() string {
	return "purge"
}

func (p *PurgeTask) Schedule() string {
	return p.schedule
}

func (p *PurgeTask) Run() {
	if _, err := p.Purge(context.Background()); err != nil {
		logrus.Errorf("error purging deleted documents: %v", err)
	}
}

// Purge erases the expired documents and returns how many were erased.
func (p *PurgeTask) Purge(ctx context.Context) (int64, error) {
	before := p.now().Add(-p.retention)

	count, err := p.store.EraseDeletedDocuments(ctx, before)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logrus.Infof("erased %d documents deleted before %s", count, before.Format(time.RFC3339))
	}

	return count, nil
}
