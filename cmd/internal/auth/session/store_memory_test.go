package session

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func newTestMemoryStore(t *testing.T, clock *fakeClock) *MemoryStore {
	t.Helper()
	st, err := NewMemoryStore(WithClock(clock.Now), WithoutSweeper())
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	t.Cleanup(st.StopCleanup)
	return st
}

func TestMemoryStore_CommitFindDelete(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	st := newTestMemoryStore(t, clock)
	ctx, cancel := testCtx()
	defer cancel()

	if err := st.CommitCtx(ctx, "tok", []byte("one"), clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CommitCtx: %v", err)
	}
	b, ok, err := st.FindCtx(ctx, "tok")
	if err != nil || !ok || string(b) != "one" {
		t.Fatalf("FindCtx = %q %v %v", b, ok, err)
	}

	// Commit on an existing token replaces data and deadline.
	if err := st.Commit("tok", []byte("two"), clock.Now().Add(2*time.Hour)); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	b, ok, _ = st.Find("tok")
	if !ok || string(b) != "two" {
		t.Fatalf("after upsert: %q %v", b, ok)
	}
	if st.Len() != 1 {
		t.Fatalf("expected one row, got %d", st.Len())
	}

	if err := st.Delete("tok"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete("tok"); err != nil {
		t.Fatalf("second Delete must be a no-op: %v", err)
	}
	if _, ok, _ := st.Find("tok"); ok {
		t.Fatalf("deleted session still found")
	}
}

func TestMemoryStore_ReturnedDataIsACopy(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	st := newTestMemoryStore(t, clock)

	in := []byte("payload")
	_ = st.Commit("tok", in, clock.Now().Add(time.Hour))
	in[0] = 'X'

	b, _, _ := st.Find("tok")
	if !bytes.Equal(b, []byte("payload")) {
		t.Fatalf("store aliased caller slice: %q", b)
	}
	b[0] = 'Y'
	again, _, _ := st.Find("tok")
	if !bytes.Equal(again, []byte("payload")) {
		t.Fatalf("store returned its own slice: %q", again)
	}
}

func TestMemoryStore_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	st := newTestMemoryStore(t, clock)

	_ = st.Commit("tok", []byte("x"), clock.Now().Add(10*time.Second))

	clock.Advance(9 * time.Second)
	if _, ok, _ := st.Find("tok"); !ok {
		t.Fatalf("session must be live one second before its deadline")
	}

	clock.Advance(time.Second)
	if _, ok, _ := st.Find("tok"); ok {
		t.Fatalf("session must be invalid at its deadline")
	}
	if st.Len() != 1 {
		t.Fatalf("Find must not delete expired rows")
	}
}

func TestMemoryStore_AllReturnsLiveOnly(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	st := newTestMemoryStore(t, clock)

	_ = st.Commit("live", []byte("a"), clock.Now().Add(time.Hour))
	_ = st.Commit("dead", []byte("b"), clock.Now().Add(-time.Second))

	all, err := st.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || string(all["live"]) != "a" {
		t.Fatalf("unexpected All result: %v", all)
	}
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	st := newTestMemoryStore(t, clock)
	ctx, cancel := testCtx()
	defer cancel()

	_ = st.Commit("a", []byte("a"), clock.Now().Add(time.Minute))
	_ = st.Commit("b", []byte("b"), clock.Now().Add(time.Hour))
	_ = st.Commit("c", []byte("c"), clock.Now())

	clock.Advance(time.Minute)
	n, err := st.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	if st.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", st.Len())
	}

	n, err = st.SweepExpired(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second SweepExpired=(%d,%v) want (0,nil)", n, err)
	}
	b, found, err := st.FindCtx(ctx, "b")
	if err != nil || !found || string(b) != "b" {
		t.Fatalf("live session after second sweep: found=%v err=%v data=%q", found, err, b)
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	t.Parallel()

	st := newTestMemoryStore(t, newFakeClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := st.FindCtx(ctx, "tok"); !errors.Is(err, context.Canceled) {
		t.Fatalf("FindCtx: expected context.Canceled, got %v", err)
	}
	if _, err := st.SweepExpired(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("SweepExpired: expected context.Canceled, got %v", err)
	}
}

type runRecorder struct {
	runs chan int64
}

func (r *runRecorder) SweepRun(_ string, deleted int64, err error, _ time.Duration) {
	if err == nil {
		r.runs <- deleted
	}
}

func (r *runRecorder) SweepStopped(string) {}

func TestMemoryStore_SweeperRunsOnConstruction(t *testing.T) {
	t.Parallel()

	rec := &runRecorder{runs: make(chan int64, 4)}
	st, err := NewMemoryStore(WithLogger(quietLogger()), WithSweepInterval(time.Hour), WithSweepObserver(rec))
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}

	select {
	case n := <-rec.runs:
		if n != 0 {
			t.Fatalf("empty store swept %d rows", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not run on construction")
	}

	st.StopCleanup()
	st.StopCleanup()
}

func TestOptions_RejectInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		opt  Option
	}{
		{"schema", WithSchema("bad-schema")},
		{"table", WithTable("drop table;")},
		{"interval", WithSweepInterval(0)},
		{"max failures", WithSweepMaxFailures(0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewMemoryStore(tc.opt, WithoutSweeper()); !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}
