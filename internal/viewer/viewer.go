// Package viewer runs the interactive artifact reconstruction window.
package viewer

import (
	"context"
	"image"
	"net/http"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/openrelic/artifactview/internal/artifact"
	"github.com/openrelic/artifactview/internal/atlas"
	"github.com/openrelic/artifactview/internal/config"
	"github.com/openrelic/artifactview/internal/engine/camera"
	"github.com/openrelic/artifactview/internal/engine/input"
	"github.com/openrelic/artifactview/internal/engine/renderer"
	"github.com/openrelic/artifactview/internal/engine/window"
	"github.com/openrelic/artifactview/internal/gallery"
	"github.com/openrelic/artifactview/internal/geometry"
	"github.com/openrelic/artifactview/internal/logger"
	"github.com/openrelic/artifactview/internal/profile"
)

// Viewer owns one window, its GL resources and the input listeners for one
// artifact. It must be used from the main thread.
type Viewer struct {
	cfg *config.Config
	art *artifact.Artifact

	win   *window.Window
	in    *input.Input
	rend  *renderer.Renderer
	orbit *camera.Orbit
	gal   *gallery.Gallery
	comp  *atlas.Compositor

	prof   profile.Profile
	client *http.Client

	// Finished atlas sheets are handed back to the frame loop here, so all
	// GL mutation stays on the UI thread. Thumbnails take the same route.
	pending chan *image.RGBA
	thumbs  chan *image.RGBA
}

// New creates the window, renderer and interaction state for an artifact.
func New(cfg *config.Config, art *artifact.Artifact) (*Viewer, error) {
	win, err := window.New(window.Config{
		Title:      art.Title(),
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, err
	}

	rend, err := renderer.New(cfg.Graphics.Width, cfg.Graphics.Height)
	if err != nil {
		win.Close()
		return nil, err
	}
	rend.Resize(win.Size())

	orbit := camera.NewOrbit()
	orbit.AutoSpinSpeed = float32(cfg.Viewer.AutoSpinSpeed)

	v := &Viewer{
		cfg:     cfg,
		art:     art,
		win:     win,
		in:      input.New(),
		rend:    rend,
		orbit:   orbit,
		gal:     gallery.New(art.Images),
		comp:    atlas.New(),
		prof:    art.Profile(),
		client:  &http.Client{Timeout: 10 * time.Second},
		pending: make(chan *image.RGBA, 1),
		thumbs:  make(chan *image.RGBA, 1),
	}

	if art.Label != "" {
		win.SetTitle(art.Title() + " [" + art.Label + "]")
	}

	return v, nil
}

// Rebuild starts a fresh atlas build cycle for the current image set. With
// no images configured it does nothing: no mesh is shown at all.
func (v *Viewer) Rebuild(ctx context.Context) {
	if len(v.art.Images) == 0 {
		logger.Info("no scan images configured, skipping reconstruction")
		return
	}

	v.comp.Build(ctx, v.art.Images, func(sheet *image.RGBA) {
		// Last settle may run on a fetch goroutine; only the frame loop
		// touches GL state. A newer sheet replaces an unconsumed one.
		select {
		case v.pending <- sheet:
		default:
			select {
			case <-v.pending:
			default:
			}
			v.pending <- sheet
		}
	})
}

// Run drives the frame loop until the window closes or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	v.Rebuild(ctx)
	if v.gal.Len() > 0 {
		v.refreshThumbnail(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if quit := v.in.Update(); quit {
			return nil
		}
		for _, e := range v.in.Events() {
			v.handleEvent(e)
		}

		// Adopt a finished atlas: generate the mesh and swap both in,
		// releasing the previous generation's GL resources.
		select {
		case sheet := <-v.pending:
			mesh := geometry.Lathe(v.prof.LathePoints(), v.cfg.Viewer.LatheSegments)
			v.rend.SetMesh(mesh)
			v.rend.SetAtlas(sheet)
			logger.Info("reconstruction rebuilt",
				zap.Int("vertices", len(mesh.Vertices)),
				zap.Int("triangles", len(mesh.Indices)/3),
			)
		default:
		}

		select {
		case thumb := <-v.thumbs:
			v.win.SetIcon(thumb)
		default:
		}

		// Idle auto-spin gates strictly on pointer-down state.
		if !v.orbit.Dragging && v.rend.HasMesh() {
			v.orbit.AutoSpin()
		}

		v.rend.Draw(v.orbit.ModelMatrix(), v.orbit.ViewMatrix())
		v.win.SwapBuffers()
	}
}

func (v *Viewer) handleEvent(e input.Event) {
	switch e.Type {
	case input.EventWindowResize:
		v.rend.Resize(e.Width, e.Height)

	case input.EventMouseDown:
		if e.Button == sdl.BUTTON_LEFT {
			v.orbit.BeginDrag(e.MouseX, e.MouseY)
		}

	case input.EventMouseUp:
		if e.Button == sdl.BUTTON_LEFT {
			v.orbit.EndDrag()
		}

	case input.EventMouseMove:
		v.orbit.HandleMove(e.MouseX, e.MouseY)

	case input.EventWheel:
		v.orbit.HandleZoom(e.WheelY)

	case input.EventKeyDown:
		switch e.Key {
		case sdl.SCANCODE_R:
			v.orbit.Reset()
		case sdl.SCANCODE_RIGHT:
			v.gal.Next()
			v.galleryChanged()
		case sdl.SCANCODE_LEFT:
			v.gal.Prev()
			v.galleryChanged()
		}
	}
}

func (v *Viewer) galleryChanged() {
	if src, ok := v.gal.Current(); ok {
		logger.Info("gallery", zap.Int("index", v.gal.Index()), zap.String("image", src))
	}
	v.refreshThumbnail(context.Background())
}

// refreshThumbnail fetches the current gallery image off-thread, scales it
// down and queues it for the frame loop to install as the window icon. A
// source that fails to load gets the placeholder tile instead.
func (v *Viewer) refreshThumbnail(ctx context.Context) {
	go func() {
		thumb := v.gal.Thumbnail(func(src string) (image.Image, error) {
			return atlas.Fetch(ctx, v.client, src)
		})

		size := gallery.PlaceholderSize
		scaled := image.NewRGBA(image.Rect(0, 0, size, size))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), thumb, thumb.Bounds(), xdraw.Src, nil)

		// Last one wins; an unconsumed older thumbnail is dropped.
		select {
		case v.thumbs <- scaled:
		default:
			select {
			case <-v.thumbs:
			default:
			}
			v.thumbs <- scaled
		}
	}()
}

// Close tears the viewer down: all GL resources, then the window and its
// event listeners.
func (v *Viewer) Close() {
	v.rend.Destroy()
	v.win.Close()
}
