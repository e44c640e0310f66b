package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

type countingPruner struct {
	calls     atomic.Int32
	retention atomic.Int64
}

func (c *countingPruner) Prune(_ context.Context, retention time.Duration) (int64, error) {
	c.calls.Add(1)
	c.retention.Store(int64(retention))
	return 0, nil
}

func TestSchedulePrune_RunsPeriodically(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	p := &countingPruner{}
	id, err := s.SchedulePrune(p, 20*time.Millisecond, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s.Start()
	defer func() { require.NoError(t, s.Stop()) }()

	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, int64(time.Hour), p.retention.Load())
}

func TestSchedulePrune_RejectsNonPositive(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	defer func() { _ = s.Stop() }()

	_, err = s.SchedulePrune(&countingPruner{}, 0, time.Hour)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
