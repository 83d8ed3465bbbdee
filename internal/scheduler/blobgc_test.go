package scheduler

import (
	"BlogHub/internal/storage"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Save(ctx context.Context, info storage.FileInfo, r io.Reader) (string, error) {
	args := m.Called(ctx, info, r)
	return args.String(0), args.Error(1)
}
func (m *mockStore) Open(ctx context.Context, id string) (*storage.File, error) {
	args := m.Called(ctx, id)
	if f, ok := args.Get(0).(*storage.File); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockStore) List(ctx context.Context) ([]storage.FileInfo, error) {
	args := m.Called(ctx)
	if v, ok := args.Get(0).([]storage.FileInfo); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type staticRefs struct {
	ids []string
	err error
}

func (s staticRefs) MediaIDs(context.Context) ([]string, error) { return s.ids, s.err }

func TestBlobGC_RunOnce(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	st := new(mockStore)
	st.On("List", mock.Anything).Return([]storage.FileInfo{
		{ID: "used", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "orphan-old", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "orphan-fresh", CreatedAt: now.Add(-10 * time.Minute)},
		{ID: "orphan-broken", CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "orphan-gone", CreatedAt: now.Add(-3 * time.Hour)},
	}, nil).Once()
	st.On("Delete", mock.Anything, "orphan-old").Return(nil).Once()
	st.On("Delete", mock.Anything, "orphan-broken").Return(errors.New("io")).Once()
	st.On("Delete", mock.Anything, "orphan-gone").Return(storage.ErrNotFound).Once()

	gc := NewBlobGC(st, staticRefs{ids: []string{"used"}}, time.Hour, nil)
	gc.now = func() time.Time { return now }

	res, err := gc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 5, Deleted: 2, Failed: 1}, res)
	st.AssertExpectations(t)
	st.AssertNotCalled(t, "Delete", mock.Anything, "used")
	st.AssertNotCalled(t, "Delete", mock.Anything, "orphan-fresh")
}

func TestBlobGC_RefsErrorDeletesNothing(t *testing.T) {
	st := new(mockStore)
	gc := NewBlobGC(st, staticRefs{err: errors.New("db down")}, time.Hour, nil)

	_, err := gc.RunOnce(context.Background())
	assert.Error(t, err)
	st.AssertNotCalled(t, "List", mock.Anything)
	st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestBlobGC_StartValidatesSchedule(t *testing.T) {
	gc := NewBlobGC(new(mockStore), staticRefs{}, time.Hour, nil)
	assert.Error(t, gc.Start("not a schedule"))

	require.NoError(t, gc.Start("@every 1h"))
	assert.Error(t, gc.Start("@every 1h"))
	gc.Stop()
	gc.Stop()
}
