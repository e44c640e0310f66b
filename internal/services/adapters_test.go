package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/syllabusbuilder/internal/eventstore"
	"git.home.luguber.info/inful/syllabusbuilder/internal/scheduler"
)

type fakeServer struct {
	started, stopped atomic.Bool
	startErr         error
}

func (f *fakeServer) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started.Store(true)
	return nil
}

func (f *fakeServer) Stop(context.Context) error {
	f.stopped.Store(true)
	return nil
}

func TestHTTPServerService(t *testing.T) {
	srv := &fakeServer{}
	svc := NewHTTPServerService(srv, NameTemplates)
	require.Equal(t, NameHTTP, svc.Name())
	require.Equal(t, []string{NameTemplates}, svc.Dependencies())
	require.Equal(t, "unhealthy", svc.Health().Status)

	require.NoError(t, svc.Start(context.Background()))
	require.Equal(t, "healthy", svc.Health().Status)
	require.NoError(t, svc.Stop(context.Background()))
	require.True(t, srv.stopped.Load())
	require.Equal(t, "unhealthy", svc.Health().Status)

	failing := NewHTTPServerService(&fakeServer{startErr: errors.New("port in use")})
	require.Error(t, failing.Start(context.Background()))
	require.Equal(t, "unhealthy", failing.Health().Status)
}

type fakeTemplates struct {
	getErr   error
	loadedAt time.Time
	watchCtx context.Context
	closed   atomic.Bool
}

func (f *fakeTemplates) Get(context.Context) ([]byte, error) { return nil, f.getErr }
func (f *fakeTemplates) LoadedAt() time.Time                 { return f.loadedAt }

func (f *fakeTemplates) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeTemplates) Watch(ctx context.Context) error {
	f.watchCtx = ctx
	return nil
}

func TestTemplateService_WatchOutlivesStartContext(t *testing.T) {
	store := &fakeTemplates{}
	svc := NewTemplateService(store, true)

	startCtx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Start(startCtx))
	cancel()
	require.NoError(t, store.watchCtx.Err())

	require.NoError(t, svc.Stop(context.Background()))
	require.Error(t, store.watchCtx.Err())
	require.True(t, store.closed.Load())
}

func TestTemplateService_MissingTemplateIsReportedNotFatal(t *testing.T) {
	store := &fakeTemplates{getErr: errors.New("template.docx not found")}
	svc := NewTemplateService(store, false)

	require.NoError(t, svc.Start(context.Background()))
	health := svc.Health()
	require.Equal(t, "unhealthy", health.Status)
	require.Equal(t, "template.docx not found", health.Message)
	require.Nil(t, store.watchCtx)

	store.loadedAt = time.Now()
	require.Equal(t, "healthy", svc.Health().Status)
}

func TestHistoryService(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	history := eventstore.NewHistory(store, 10)
	require.NoError(t, store.Append(context.Background(), "req-1", eventstore.TypeSyllabusGenerated,
		[]byte(`{"request_id":"req-1","course_code":"CS101"}`), nil))

	sched, err := scheduler.New()
	require.NoError(t, err)

	svc := NewHistoryService(history, sched, store, time.Hour, 24*time.Hour)
	require.NoError(t, svc.Start(context.Background()))
	require.Equal(t, "healthy", svc.Health().Status)

	items := history.List(0)
	require.Len(t, items, 1)
	require.Equal(t, "CS101", items[0].CourseCode)

	require.NoError(t, svc.Stop(context.Background()))
	require.Equal(t, "unhealthy", svc.Health().Status)
	_, err = store.Recent(context.Background(), eventstore.TypeSyllabusGenerated, 1)
	require.Error(t, err, "store should be closed")
}

func TestHistoryService_RejectsBadSchedule(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sched, err := scheduler.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Stop() })

	svc := NewHistoryService(eventstore.NewHistory(store, 10), sched, store, 0, time.Hour)
	require.Error(t, svc.Start(context.Background()))
}

type countingCloser struct{ n int }

func (c *countingCloser) Close() error {
	c.n++
	return nil
}

func TestCloserService(t *testing.T) {
	c := &countingCloser{}
	svc := NewCloserService(NameEvents, c)
	require.Equal(t, NameEvents, svc.Name())
	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.Stop(context.Background()))
	require.Equal(t, 1, c.n)
}
