package atlas

import (
	"context"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/openrelic/artifactview/internal/logger"
	"go.uber.org/zap"
)

// Compositor runs atlas build cycles. Each call to Build starts a new
// generation; completions belonging to a superseded generation mutate
// nothing, so rapid input changes never produce a partially stale sheet.
type Compositor struct {
	client *http.Client

	mu      sync.Mutex
	gen     uint64
	current *buildState
}

// buildState tracks one build cycle until every fetch has settled.
type buildState struct {
	gen     uint64
	sheet   *image.RGBA
	total   int
	settled int
	onReady func(*image.RGBA)
}

// New creates a compositor with a default HTTP client.
func New() *Compositor {
	return &Compositor{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithClient creates a compositor using the given HTTP client.
func NewWithClient(client *http.Client) *Compositor {
	return &Compositor{client: client}
}

// Build starts a new build cycle for the given image sources. Every source
// is fetched concurrently and drawn into its grid cell; a failed fetch is
// logged and its cell keeps the background fill. onReady fires exactly
// once, after all sources have settled, and never fires for a cycle that a
// later Build has superseded. An empty source list starts no cycle and
// never calls onReady.
//
// onReady runs on whichever fetch goroutine settles last; callers that need
// the result on a particular thread hand it off themselves.
func (c *Compositor) Build(ctx context.Context, sources []string, onReady func(*image.RGBA)) {
	if len(sources) == 0 {
		return
	}

	c.mu.Lock()
	c.gen++
	state := &buildState{
		gen:     c.gen,
		sheet:   newSheet(),
		total:   len(sources),
		onReady: onReady,
	}
	c.current = state
	c.mu.Unlock()

	logger.Debug("atlas build started",
		zap.Uint64("generation", state.gen),
		zap.Int("images", state.total),
	)

	for i, src := range sources {
		go c.fetchCell(ctx, state.gen, i, src)
	}
}

// BuildSync runs one build cycle to completion and returns the finished
// sheet. It returns nil for an empty source list or a cancelled context.
func (c *Compositor) BuildSync(ctx context.Context, sources []string) *image.RGBA {
	if len(sources) == 0 {
		return nil
	}

	ready := make(chan *image.RGBA, 1)
	c.Build(ctx, sources, func(sheet *image.RGBA) {
		ready <- sheet
	})

	select {
	case sheet := <-ready:
		return sheet
	case <-ctx.Done():
		return nil
	}
}

// fetchCell fetches and draws one source, then marks it settled.
func (c *Compositor) fetchCell(ctx context.Context, gen uint64, index int, source string) {
	img, err := Fetch(ctx, c.client, source)
	if err != nil {
		logger.Warn("scan image failed to load",
			zap.Int("index", index),
			zap.String("source", source),
			zap.Error(err),
		)
	}
	c.settle(gen, index, img)
}

// settle draws a successfully fetched image into its cell and counts the
// fetch toward completion. Settlements from superseded generations are
// no-ops. The final settlement of a live generation fires onReady.
func (c *Compositor) settle(gen uint64, index int, img image.Image) {
	c.mu.Lock()

	state := c.current
	if state == nil || state.gen != gen {
		c.mu.Unlock()
		return
	}

	if img != nil {
		drawCell(state.sheet, index, img)
	}

	state.settled++
	done := state.settled == state.total
	if done {
		c.current = nil
	}
	c.mu.Unlock()

	if done {
		logger.Debug("atlas build settled", zap.Uint64("generation", gen))
		state.onReady(state.sheet)
	}
}
