package cloudfront

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedProvider_CompletedIsMonotonic(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		provider := NewSimulatedProvider(rand.New(rand.NewSource(seed)))
		inv, err := provider.CreateInvalidation(context.Background(), "E1", Request{Paths: []string{"/*"}, CallerReference: "ref"})
		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, inv.Status)

		sawCompleted := false
		for i := 0; i < provider.MaxPolls+5; i++ {
			got, err := provider.GetInvalidation(context.Background(), "E1", inv.Id)
			require.NoError(t, err)
			if sawCompleted {
				assert.Equal(t, StatusCompleted, got.Status, "Completed後にステータスが戻った (seed=%d)", seed)
			}
			if got.Status == StatusCompleted {
				sawCompleted = true
			}
		}
		assert.True(t, sawCompleted, "MaxPolls回以内に完了しない (seed=%d)", seed)
	}
}

func TestSimulatedProvider_PollCountWithinRange(t *testing.T) {
	provider := NewSimulatedProvider(rand.New(rand.NewSource(42)))
	provider.MinPolls, provider.MaxPolls = 3, 3

	inv, err := provider.CreateInvalidation(context.Background(), "E1", Request{Paths: []string{"/*"}, CallerReference: "ref"})
	require.NoError(t, err)

	var statuses []Status
	for i := 0; i < 4; i++ {
		got, err := provider.GetInvalidation(context.Background(), "E1", inv.Id)
		require.NoError(t, err)
		statuses = append(statuses, got.Status)
	}
	assert.Equal(t, []Status{StatusInProgress, StatusInProgress, StatusCompleted, StatusCompleted}, statuses)
}

func TestSimulatedProvider_CallerReferenceIsIdempotent(t *testing.T) {
	provider := NewSimulatedProvider(rand.New(rand.NewSource(1)))

	first, err := provider.CreateInvalidation(context.Background(), "E1", Request{Paths: []string{"/a"}, CallerReference: "same"})
	require.NoError(t, err)
	again, err := provider.CreateInvalidation(context.Background(), "E1", Request{Paths: []string{"/b"}, CallerReference: "same"})
	require.NoError(t, err)
	other, err := provider.CreateInvalidation(context.Background(), "E1", Request{Paths: []string{"/c"}, CallerReference: "other"})
	require.NoError(t, err)

	assert.Equal(t, first.Id, again.Id)
	assert.Equal(t, []string{"/a"}, again.Paths)
	assert.NotEqual(t, first.Id, other.Id)

	list, err := provider.ListInvalidations(context.Background(), "E1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, other.Id, list[0].Id)

	limited, err := provider.ListInvalidations(context.Background(), "E1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSimulatedProvider_UnknownId(t *testing.T) {
	provider := NewSimulatedProvider(nil)
	_, err := provider.GetInvalidation(context.Background(), "E1", "NOPE")
	assert.Equal(t, CodeNoSuchInvalidation, ErrorCode(err))
	assert.True(t, IsPermanentQueryError(err))
}

func TestSimulatedProvider_ScopedByDistribution(t *testing.T) {
	provider := NewSimulatedProvider(rand.New(rand.NewSource(1)))

	inv, err := provider.CreateInvalidation(context.Background(), "E1", Request{Paths: []string{"/a"}, CallerReference: "same"})
	require.NoError(t, err)
	other, err := provider.CreateInvalidation(context.Background(), "E2", Request{Paths: []string{"/b"}, CallerReference: "same"})
	require.NoError(t, err)
	assert.NotEqual(t, inv.Id, other.Id)

	_, err = provider.GetInvalidation(context.Background(), "E2", inv.Id)
	assert.Equal(t, CodeNoSuchInvalidation, ErrorCode(err))

	list, err := provider.ListInvalidations(context.Background(), "E1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, inv.Id, list[0].Id)
}

func TestSimulatedProvider_ReturnsCopies(t *testing.T) {
	provider := NewSimulatedProvider(rand.New(rand.NewSource(1)))
	inv, err := provider.CreateInvalidation(context.Background(), "E1", Request{Paths: []string{"/a", "/b"}, CallerReference: "ref"})
	require.NoError(t, err)
	inv.Paths[0] = "/changed"

	got, err := provider.GetInvalidation(context.Background(), "E1", inv.Id)
	require.NoError(t, err)
	got.Paths[1] = "/changed"

	again, err := provider.GetInvalidation(context.Background(), "E1", inv.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, again.Paths)
}
