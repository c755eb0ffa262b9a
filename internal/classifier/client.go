package classifier

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"sync/atomic"
	"time"

	"sketch-guess/internal/surface"

	"github.com/rs/zerolog"
)

var ErrNotReady = errors.New("classifier not ready")

type Options struct {
	Timeout      time.Duration
	PollInterval time.Duration
	Logger       zerolog.Logger
}

type Client struct {
	backend Backend
	timeout time.Duration
	poll    time.Duration
	log     zerolog.Logger

	ready     atomic.Bool
	seq       atomic.Uint64
	readyOnce sync.Once

	mu        sync.Mutex
	listeners []func()
}

func NewClient(backend Backend, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &Client{
		backend: backend,
		timeout: opts.Timeout,
		poll:    opts.PollInterval,
		log:     opts.Logger.With().Str("backend", backend.Name()).Logger(),
	}
}

func (c *Client) Ready() bool {
	return c.ready.Load()
}

// OnReady registers f to run once the model has loaded. If it already has,
// f runs immediately on the caller's goroutine.
func (c *Client) OnReady(f func()) {
	c.mu.Lock()
	if !c.ready.Load() {
		c.listeners = append(c.listeners, f)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	f()
}

// Load keeps asking the backend to load until it succeeds or ctx ends.
func (c *Client) Load(ctx context.Context) error {
	c.log.Info().Msg("loading model")
	attempt := 0
	for {
		attempt++
		err := c.backend.Load(ctx)
		if err == nil {
			c.markReady()
			return nil
		}
		c.log.Warn().Err(err).Int("attempt", attempt).Msg("model not loaded yet")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.poll):
		}
	}
}

func (c *Client) markReady() {
	c.readyOnce.Do(func() {
		c.mu.Lock()
		c.ready.Store(true)
		listeners := c.listeners
		c.listeners = nil
		c.mu.Unlock()
		c.log.Info().Msg("model loaded")
		for _, f := range listeners {
			f()
		}
	})
}

// Classify submits img and returns its request sequence number. The result
// (or failure) is passed to deliver from another goroutine. Before the model
// is ready nothing is submitted and ErrNotReady is returned.
func (c *Client) Classify(ctx context.Context, img image.Image, deliver func(Delivery)) (uint64, error) {
	if !c.ready.Load() {
		return 0, ErrNotReady
	}
	in := Input{Image: cloneRGBA(img)}
	in.Normalized = surface.Normalize(in.Image, surface.InputSize)
	seq := c.seq.Add(1)

	go func() {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		deliver(c.call(reqCtx, seq, in))
	}()
	return seq, nil
}

func (c *Client) call(ctx context.Context, seq uint64, in Input) (d Delivery) {
	d.Seq = seq
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Uint64("seq", seq).Interface("panic", r).Msg("classifier call panicked")
			d.Reply = Reply{}
			d.Err = fmt.Errorf("classifier panic: %v", r)
		}
	}()
	reply, err := c.backend.Classify(ctx, in)
	d.Reply = reply
	d.Err = err
	return d
}

func cloneRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}
