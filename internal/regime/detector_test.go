package regime

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/logger"
	"github.com/tradewind-io/tradewind/pkg/redis"
)

type fakeInputProvider struct {
	inputs *contracts.RegimeInputs
	err    error
	calls  int
}

func (f *fakeInputProvider) GetRegimeInputs(ctx context.Context) (*contracts.RegimeInputs, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.inputs, nil
}

func newTestDetector(provider contracts.RegimeInputProvider) *Detector {
	return NewDetector(
		provider,
		redis.NewCache(redis.Disabled(), "test"),
		logger.NewWithWriter(io.Discard, "test"),
	)
}

func TestDetector_CachesFor24Hours(t *testing.T) {
	provider := &fakeInputProvider{inputs: &contracts.RegimeInputs{
		VIX:     vixSeries(40),
		Indices: indices(4),
		Sectors: balancedSectors(),
	}}
	detector := newTestDetector(provider)

	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	detector.now = func() time.Time { return now }

	ctx := context.Background()

	first, err := detector.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, contracts.RegimeHighVolatility, first.Regime)
	assert.Equal(t, 1, provider.calls)

	// Within the window the cached analysis is served
	now = now.Add(23 * time.Hour)
	second, err := detector.Current(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, provider.calls)

	// Past the window it recomputes
	now = now.Add(2 * time.Hour)
	third, err := detector.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
	assert.Equal(t, now, third.AnalyzedAt)
}

func TestDetector_ForceRefreshThrottled(t *testing.T) {
	provider := &fakeInputProvider{inputs: &contracts.RegimeInputs{
		VIX:     vixSeries(20),
		Indices: indices(2),
		Sectors: balancedSectors(),
	}}
	detector := newTestDetector(provider)

	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	detector.now = func() time.Time { return now }

	ctx := context.Background()

	_, err := detector.Refresh(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	// A second force within 24 hours is downgraded to a cached read
	now = now.Add(1 * time.Hour)
	_, err = detector.Refresh(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	// After the window a force recomputes again
	now = now.Add(24 * time.Hour)
	_, err = detector.Refresh(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestDetector_ServesStaleOnProviderFailure(t *testing.T) {
	provider := &fakeInputProvider{inputs: &contracts.RegimeInputs{
		VIX:     vixSeries(12),
		Indices: indices(4),
		Sectors: balancedSectors(),
	}}
	detector := newTestDetector(provider)

	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	detector.now = func() time.Time { return now }

	ctx := context.Background()

	first, err := detector.Current(ctx)
	require.NoError(t, err)

	// Provider goes dark after the window expires
	provider.err = errors.New("upstream down")
	now = now.Add(25 * time.Hour)

	got, err := detector.Current(ctx)
	require.NoError(t, err, "stale analysis beats a failed cycle")
	assert.Same(t, first, got)
}

func TestDetector_FailsWithNoHistory(t *testing.T) {
	provider := &fakeInputProvider{err: errors.New("upstream down")}
	detector := newTestDetector(provider)

	_, err := detector.Current(context.Background())
	require.Error(t, err)
}
