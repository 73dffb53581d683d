package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/99minutos/employee-registry/internal/api/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 64
)

// ErrStopped is returned by Do once the serializer's root context is done.
var ErrStopped = errors.New("serializer stopped")

const (
	jobPending int32 = iota
	jobRunning
	jobAbandoned
)

type job struct {
	ctx   context.Context
	key   int64
	fn    func(context.Context) error
	done  chan error
	state atomic.Int32
}

// claim moves a pending job to running. It fails once the caller has left.
func (j *job) claim() bool { return j.state.CompareAndSwap(jobPending, jobRunning) }

// abandon marks a pending job as skipped. It fails once a worker runs it.
func (j *job) abandon() bool { return j.state.CompareAndSwap(jobPending, jobAbandoned) }

// KeyedSerializer routes work to a fixed set of workers using consistent
// hashing on an integer key, so that all work for one key runs in
// submission order and never concurrently.
type KeyedSerializer struct {
	workers   []chan *job
	stopped   chan struct{}
	startOnce sync.Once
	log       zerolog.Logger
}

// NewKeyedSerializer creates a KeyedSerializer with numWorkers shards.
// If numWorkers <= 0, defaultWorkers is used.
func NewKeyedSerializer(numWorkers int, log zerolog.Logger) *KeyedSerializer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	s := &KeyedSerializer{
		workers: make([]chan *job, numWorkers),
		stopped: make(chan struct{}),
		log:     log,
	}
	for i := range s.workers {
		s.workers[i] = make(chan *job, channelBuffer)
	}
	return s
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (s *KeyedSerializer) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		for i, ch := range s.workers {
			go s.runWorker(ctx, i, ch)
		}
		go func() {
			<-ctx.Done()
			close(s.stopped)
		}()
	})
}

// Do runs fn on the worker owning key and waits for its result.
//
// If ctx ends or the serializer stops before a worker picks the job up, the
// job is skipped and Do returns ctx.Err() or ErrStopped. Once the job has
// started, Do always reports its real outcome, so a write that committed is
// never reported as failed.
func (s *KeyedSerializer) Do(ctx context.Context, key int64, fn func(context.Context) error) error {
	j := &job{ctx: ctx, key: key, fn: fn, done: make(chan error, 1)}

	select {
	case <-s.stopped:
		return ErrStopped
	default:
	}

	idx := s.shardIndex(key)
	select {
	case s.workers[idx] <- j:
		metrics.SerializerQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(s.workers[idx])))
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		if j.abandon() {
			return ctx.Err()
		}
	case <-s.stopped:
		if j.abandon() {
			return ErrStopped
		}
	}
	return <-j.done
}

// shardIndex maps a key deterministically to a worker index.
func (s *KeyedSerializer) shardIndex(key int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(key, 10)))
	return int(h.Sum32() % uint32(len(s.workers)))
}

func (s *KeyedSerializer) runWorker(ctx context.Context, id int, ch <-chan *job) {
	depth := metrics.SerializerQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			depth.Set(float64(len(ch)))
			if !j.claim() {
				continue
			}
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			j.done <- s.run(id, j)
		}
	}
}

func (s *KeyedSerializer) run(id int, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Int64("key", j.key).
				Int("worker_id", id).
				Interface("panic", r).
				Msg("serialized job panicked")
			err = fmt.Errorf("serialized job for key %d panicked: %v", j.key, r)
		}
	}()
	return j.fn(j.ctx)
}
