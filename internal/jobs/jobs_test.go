package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/emrgen/linkgraph/internal/model"
	"github.com/emrgen/linkgraph/internal/store"
	"github.com/emrgen/linkgraph/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingJob) Name() string     { return "blocking" }
func (b *blockingJob) Schedule() string { return "@every 1h" }
func (b *blockingJob) Run() {
	close(b.started)
	<-b.release
}

func TestTaskExecutor_SkipsRunningJob(t *testing.T) {
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	executor := NewTaskExecutor(job)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.True(t, executor.RunOnce(job))
	}()

	<-job.started
	assert.False(t, executor.RunOnce(job))

	close(job.release)
	wg.Wait()
}

func TestTaskExecutor_InvalidSchedule(t *testing.T) {
	executor := NewTaskExecutor(NewPurgeTask(nil, "every now and then", time.Hour))
	assert.Error(t, executor.Start())
}

func TestPurgeTask(t *testing.T) {
	db := tester.TestDB(t)
	st := store.NewGormStore(db)
	ctx := context.TODO()

	for _, id := range []string{"old", "recent", "live"} {
		require.NoError(t, st.CreateDocument(ctx, &model.Document{ID: id, Collection: "links", Data: []byte("{}")}))
	}
	require.NoError(t, st.DeleteDocument(ctx, "links", "old"))
	require.NoError(t, st.DeleteDocument(ctx, "links", "recent"))

	now := time.Now()
	require.NoError(t, db.Unscoped().Model(&model.Document{}).Where("id = ?", "old").Update("deleted_at", now.Add(-48*time.Hour)).Error)

	task := NewPurgeTask(st, "@every 1h", 24*time.Hour)
	task.now = func() time.Time { return now }

	count, err := task.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var remaining int64
	require.NoError(t, db.Unscoped().Model(&model.Document{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)

	_, err = st.GetDocument(ctx, "links", "recent")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}
