package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestKeyedSerializer_SameKeyNeverOverlaps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewKeyedSerializer(4, zerolog.Nop())
	s.Start(ctx)

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Do(ctx, 42, func(context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			if err != nil {
				t.Errorf("Do returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Fatalf("expected at most 1 concurrent job per key, saw %d", maxInFlight)
	}
}

func TestKeyedSerializer_PropagatesError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewKeyedSerializer(2, zerolog.Nop())
	s.Start(ctx)

	boom := errors.New("boom")
	if err := s.Do(ctx, 1, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestKeyedSerializer_RecoversPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewKeyedSerializer(1, zerolog.Nop())
	s.Start(ctx)

	if err := s.Do(ctx, 1, func(context.Context) error { panic("bad") }); err == nil {
		t.Fatal("expected error from panicking job")
	}
	// The worker must survive the panic.
	if err := s.Do(ctx, 1, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("worker did not survive panic: %v", err)
	}
}

func TestKeyedSerializer_CallerContextCancelled(t *testing.T) {
	root, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	s := NewKeyedSerializer(1, zerolog.Nop())
	s.Start(root)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Do(root, 1, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	defer close(release)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Do(ctx, 1, func(context.Context) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestKeyedSerializer_Stopped(t *testing.T) {
	root, cancel := context.WithCancel(context.Background())
	s := NewKeyedSerializer(1, zerolog.Nop())
	s.Start(root)
	cancel()

	deadline := time.After(time.Second)
	for {
		err := s.Do(context.Background(), 1, func(context.Context) error { return nil })
		if errors.Is(err, ErrStopped) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected ErrStopped after root cancel, got %v", err)
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	s := NewKeyedSerializer(8, zerolog.Nop())
	for _, k := range []int64{0, 1, 99, -5, 1 << 40} {
		a, b := s.shardIndex(k), s.shardIndex(k)
		if a != b || a < 0 || a >= 8 {
			t.Fatalf("shardIndex(%d) unstable or out of range: %d %d", k, a, b)
		}
	}
}

func TestKeyedSerializer_StartedJobReportsRealOutcome(t *testing.T) {
	root, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	s := NewKeyedSerializer(1, zerolog.Nop())
	s.Start(root)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var committed atomic.Bool

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Do(ctx, 7, func(context.Context) error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			committed.Store(true)
			return nil
		})
	}()

	<-started
	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("expected the committed job's result, got %v", err)
	}
	if !committed.Load() {
		t.Fatal("expected job to have finished before Do returned")
	}
}

func TestKeyedSerializer_AbandonedJobNeverRuns(t *testing.T) {
	root, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	s := NewKeyedSerializer(1, zerolog.Nop())
	s.Start(root)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Do(root, 1, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var ran atomic.Bool
	if err := s.Do(ctx, 1, func(context.Context) error {
		ran.Store(true)
		return nil
	}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(release)

	// A later job on the same worker proves the abandoned one was drained.
	if err := s.Do(root, 1, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if ran.Load() {
		t.Fatal("abandoned job must not run")
	}
}
