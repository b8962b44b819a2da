package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/estetica/salon-booking/internal/api/metrics"
	"github.com/estetica/salon-booking/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	processTimeout = 10 * time.Second
)

// Dispatcher routes status changes to a fixed set of workers using
// consistent hashing on the appointment id, guaranteeing per-appointment
// ordering.
type Dispatcher struct {
	workers []chan ports.StatusChangeInput
	service ports.EventService
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.StatusChangeSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.StatusChangeInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.StatusChangeInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Close has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a status change to the worker responsible for its
// appointment. The call is non-blocking up to channelBuffer capacity.
// Changes enqueued after Close are dropped.
func (d *Dispatcher) Enqueue(in ports.StatusChangeInput) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("appointment_id", in.AppointmentID).Msg("dispatcher closed, status change dropped")
		return
	}
	idx := d.shardIndex(in.AppointmentID)
	d.workers[idx] <- in
	metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// Close stops accepting work and waits until the workers drained their
// channels.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps an appointment id deterministically to a worker index.
func (d *Dispatcher) shardIndex(appointmentID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(appointmentID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.StatusChangeInput) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, in)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, in ports.StatusChangeInput) {
	pctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	if err := d.service.Process(pctx, in); err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("process_failed").Inc()
		d.log.Error().Err(err).
			Str("appointment_id", in.AppointmentID).
			Int("worker_id", id).
			Msg("status change processing failed")
	}
}

// Inline processes every status change synchronously on the caller's
// goroutine. It is used when no workers are configured.
type Inline struct {
	Service ports.EventService
	Log     zerolog.Logger
}

var _ ports.StatusChangeSink = Inline{}

func (s Inline) Enqueue(in ports.StatusChangeInput) {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()
	if err := s.Service.Process(ctx, in); err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("process_failed").Inc()
		s.Log.Error().Err(err).Str("appointment_id", in.AppointmentID).Msg("status change processing failed")
	}
}
