package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

// MockService is a test implementation of ManagedService.
type MockService struct {
	name         string
	dependencies []string
	startDelay   time.Duration
	failStart    bool
	failStop     bool
	isRunning    bool
	journal      *journal
	mu           sync.Mutex
}

// journal records start and stop calls across services.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, s)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func NewMockService(name string, deps ...string) *MockService {
	return &MockService{name: name, dependencies: deps}
}

func (m *MockService) WithJournal(j *journal) *MockService {
	m.journal = j
	return m
}

func (m *MockService) WithStartDelay(delay time.Duration) *MockService {
	m.startDelay = delay
	return m
}

func (m *MockService) WithStartFailure() *MockService {
	m.failStart = true
	return m
}

func (m *MockService) WithStopFailure() *MockService {
	m.failStop = true
	return m
}

func (m *MockService) Name() string { return m.name }

func (m *MockService) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startDelay > 0 {
		select {
		case <-time.After(m.startDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.failStart {
		return errors.New("mock start failure")
	}
	m.journal.add("start " + m.name)
	m.isRunning = true
	return nil
}

func (m *MockService) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failStop {
		return errors.New("mock stop failure")
	}
	m.journal.add("stop " + m.name)
	m.isRunning = false
	return nil
}

func (m *MockService) Health() HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isRunning {
		return Healthy()
	}
	return Unhealthy("service not running")
}

func (m *MockService) Dependencies() []string { return m.dependencies }

func (m *MockService) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

func TestOrchestrator_SingleServiceLifecycle(t *testing.T) {
	o := NewOrchestrator(nil)
	svc := NewMockService("test-service")
	require.NoError(t, o.Register(svc))

	ctx := context.Background()
	require.NoError(t, o.StartAll(ctx))
	require.True(t, svc.IsRunning())

	info, ok := o.Info("test-service")
	require.True(t, ok)
	require.Equal(t, StatusRunning, info.Status)
	require.Equal(t, "healthy", info.Health.Status)
	require.NotNil(t, info.StartedAt)

	require.NoError(t, o.StopAll(ctx))
	require.False(t, svc.IsRunning())
	info, _ = o.Info("test-service")
	require.Equal(t, StatusStopped, info.Status)
	require.NotNil(t, info.StoppedAt)
}

func TestOrchestrator_DependencyOrder(t *testing.T) {
	j := &journal{}
	o := NewOrchestrator(nil)
	require.NoError(t, o.Register(NewMockService(NameHTTP, NameTemplates, NameHistory).WithJournal(j)))
	require.NoError(t, o.Register(NewMockService(NameHistory).WithJournal(j)))
	require.NoError(t, o.Register(NewMockService(NameTemplates).WithJournal(j)))
	require.NoError(t, o.Register(NewMockService(NameEvents).WithJournal(j)))

	ctx := context.Background()
	require.NoError(t, o.StartAll(ctx))
	require.NoError(t, o.StopAll(ctx))

	require.Equal(t, []string{
		"start events", "start history", "start templates", "start http",
		"stop http", "stop templates", "stop history", "stop events",
	}, j.list())
}

func TestOrchestrator_Register(t *testing.T) {
	o := NewOrchestrator(nil)
	require.NoError(t, o.Register(NewMockService("a")))

	err := o.Register(NewMockService("a"))
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryValidation))

	err = o.Register(NewMockService(""))
	require.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestOrchestrator_DependencyErrors(t *testing.T) {
	t.Run("circular", func(t *testing.T) {
		o := NewOrchestrator(nil)
		require.NoError(t, o.Register(NewMockService("a", "b")))
		require.NoError(t, o.Register(NewMockService("b", "a")))
		err := o.StartAll(context.Background())
		require.ErrorContains(t, err, "circular dependency")
	})

	t.Run("missing", func(t *testing.T) {
		o := NewOrchestrator(nil)
		require.NoError(t, o.Register(NewMockService("a", "ghost")))
		err := o.StartAll(context.Background())
		require.ErrorContains(t, err, "service not found: ghost")
	})
}

func TestOrchestrator_StartFailureStopsStartedServices(t *testing.T) {
	j := &journal{}
	o := NewOrchestrator(nil)
	first := NewMockService("a").WithJournal(j)
	require.NoError(t, o.Register(first))
	require.NoError(t, o.Register(NewMockService("b", "a").WithStartFailure()))

	err := o.StartAll(context.Background())
	require.ErrorContains(t, err, "failed to start service b")
	require.False(t, first.IsRunning())
	require.Equal(t, []string{"start a", "stop a"}, j.list())

	info, _ := o.Info("b")
	require.Equal(t, StatusFailed, info.Status)
	require.Equal(t, "mock start failure", info.LastError)
}

func TestOrchestrator_StartTimeout(t *testing.T) {
	o := NewOrchestrator(nil).WithTimeouts(20*time.Millisecond, time.Second)
	require.NoError(t, o.Register(NewMockService("slow").WithStartDelay(time.Second)))

	err := o.StartAll(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOrchestrator_StopFailureStillStopsOthers(t *testing.T) {
	o := NewOrchestrator(nil)
	ok := NewMockService("a")
	require.NoError(t, o.Register(ok))
	require.NoError(t, o.Register(NewMockService("b", "a").WithStopFailure()))

	ctx := context.Background()
	require.NoError(t, o.StartAll(ctx))
	err := o.StopAll(ctx)
	require.ErrorContains(t, err, "some services failed to stop gracefully")
	require.False(t, ok.IsRunning())
}

func TestOrchestrator_AllInfoSorted(t *testing.T) {
	o := NewOrchestrator(nil)
	for _, n := range []string{"c", "a", "b"} {
		require.NoError(t, o.Register(NewMockService(n)))
	}
	infos := o.AllInfo()
	require.Len(t, infos, 3)
	require.Equal(t, "a", infos[0].Name)
	require.Equal(t, "c", infos[2].Name)
	require.Equal(t, StatusNotStarted, infos[1].Status)
}
