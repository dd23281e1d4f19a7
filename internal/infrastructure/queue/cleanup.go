package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"os"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/api/metrics"
	"github.com/zetas/barbershop/internal/core/ports"
	"github.com/zetas/barbershop/internal/infrastructure/uploads"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
)

// Cleanup removes replaced or orphaned managed uploads in the background so
// the record mutation that released them never waits on the filesystem.
// Paths are sharded by hash so removals of the same file stay ordered.
type Cleanup struct {
	workers []chan string
	images  ports.ImageStore
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewCleanup creates a Cleanup with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewCleanup(numWorkers int, images ports.ImageStore, log zerolog.Logger) *Cleanup {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	c := &Cleanup{
		workers: make([]chan string, numWorkers),
		images:  images,
		log:     log,
	}
	for i := range c.workers {
		c.workers[i] = make(chan string, channelBuffer)
	}
	return c
}

// Start launches all worker goroutines. Cancelling ctx does not stop them:
// released files must still be removed during shutdown, so workers only exit
// once Close has drained their channel.
func (c *Cleanup) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i, ch := range c.workers {
		c.wg.Add(1)
		go c.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules removal of publicPath. It never blocks: when the worker
// channel is full the removal is dropped and counted.
func (c *Cleanup) Enqueue(publicPath string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	id := c.shardIndex(publicPath)
	select {
	case c.workers[id] <- publicPath:
		metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(id)).Inc()
	default:
		metrics.ImageCleanupTotal.WithLabelValues("dropped").Inc()
		c.log.Warn().Str("path", publicPath).Int("worker_id", id).Msg("image cleanup queue full, removal dropped")
	}
}

// Close stops accepting work and waits for queued removals to finish.
func (c *Cleanup) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, ch := range c.workers {
		close(ch)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Cleanup) shardIndex(publicPath string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(publicPath))
	return int(h.Sum32() % uint32(len(c.workers)))
}

func (c *Cleanup) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer c.wg.Done()
	gauge := metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(id))
	for p := range ch {
		gauge.Dec()
		c.remove(ctx, id, p)
	}
}

func (c *Cleanup) remove(ctx context.Context, id int, publicPath string) {
	err := c.images.Remove(ctx, publicPath)
	switch {
	case err == nil:
		metrics.ImageCleanupTotal.WithLabelValues("removed").Inc()
		c.log.Debug().Str("path", publicPath).Int("worker_id", id).Msg("managed image removed")
	case errors.Is(err, os.ErrNotExist):
		metrics.ImageCleanupTotal.WithLabelValues("missing").Inc()
		c.log.Debug().Str("path", publicPath).Msg("managed image already gone")
	case errors.Is(err, uploads.ErrOutsideRoot), errors.Is(err, uploads.ErrNotManaged):
		metrics.ImageCleanupTotal.WithLabelValues("refused").Inc()
		c.log.Warn().Err(err).Str("path", publicPath).Msg("image removal refused")
	default:
		metrics.ImageCleanupTotal.WithLabelValues("failed").Inc()
		c.log.Warn().Err(err).Str("path", publicPath).Int("worker_id", id).Msg("image removal failed")
	}
}
