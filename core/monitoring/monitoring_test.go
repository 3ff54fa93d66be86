package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMonitor struct {
	mu      sync.Mutex
	errs    []error
	tags    []map[string]string
	panics  []any
	flushes int
}

func (f *fakeMonitor) CaptureException(err error, tags map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
	f.tags = append(f.tags, tags)
}

func (f *fakeMonitor) CapturePanic(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panics = append(f.panics, v)
}

func (f *fakeMonitor) Flush(time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func install(t *testing.T) *fakeMonitor {
	t.Helper()
	f := &fakeMonitor{}
	Init(f)
	t.Cleanup(func() { Init(nil) })
	return f
}

func TestCaptureException(t *testing.T) {
	f := install(t)
	CaptureException(nil, nil)
	CaptureException(errors.New("boom"), map[string]string{"trip_id": "7"})

	require.Len(t, f.errs, 1)
	assert.EqualError(t, f.errs[0], "boom")
	assert.Equal(t, "7", f.tags[0]["trip_id"])
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	f := install(t)
	assert.PanicsWithValue(t, "kaboom", func() {
		defer Recover()
		panic("kaboom")
	})
	require.Equal(t, []any{"kaboom"}, f.panics)
	assert.Equal(t, 1, f.flushes)
}

func TestRecoverWithoutPanic(t *testing.T) {
	f := install(t)
	func() {
		defer Recover()
	}()
	assert.Empty(t, f.panics)
	Flush(time.Millisecond)
	assert.Equal(t, 1, f.flushes)
}

func TestInitNilResets(t *testing.T) {
	Init(nil)
	assert.IsType(t, NopMonitor{}, get())
}
