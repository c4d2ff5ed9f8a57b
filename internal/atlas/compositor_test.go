package atlas

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// encodePNG renders a solid-color PNG for test servers.
func encodePNG(t *testing.T, c color.RGBA, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func waitReady(t *testing.T, ch <-chan *image.RGBA) *image.RGBA {
	t.Helper()
	select {
	case sheet := <-ch:
		return sheet
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for atlas build")
		return nil
	}
}

func TestCellRect(t *testing.T) {
	tests := []struct {
		index int
		want  image.Rectangle
	}{
		{0, image.Rect(0, 0, CellWidth, CellHeight)},
		{5, image.Rect(5 * CellWidth, 0, 6 * CellWidth, CellHeight)},
		{6, image.Rect(0, CellHeight, CellWidth, Height)},
		{11, image.Rect(5 * CellWidth, CellHeight, Width, Height)},
		{12, image.Rect(0, 0, CellWidth, CellHeight)}, // wraps
	}

	for _, tt := range tests {
		if got := CellRect(tt.index); got != tt.want {
			t.Errorf("CellRect(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestBuildDrawsCellsAndFiresOnce(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}

	mux := http.NewServeMux()
	mux.HandleFunc("/scan0.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodePNG(t, red, 40, 40))
	})
	mux.HandleFunc("/scan1.png", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/scan2.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodePNG(t, blue, 40, 40))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var calls atomic.Int32
	ready := make(chan *image.RGBA, 2)

	c := New()
	c.Build(context.Background(), []string{
		srv.URL + "/scan0.png",
		srv.URL + "/scan1.png",
		srv.URL + "/scan2.png",
	}, func(sheet *image.RGBA) {
		calls.Add(1)
		ready <- sheet
	})

	sheet := waitReady(t, ready)

	if got := calls.Load(); got != 1 {
		t.Errorf("onReady fired %d times, want 1", got)
	}

	// Cell 0 carries the first image, cell 2 the third.
	center0 := CellRect(0).Min.Add(image.Pt(CellWidth/2, CellHeight/2))
	if got := sheet.RGBAAt(center0.X, center0.Y); got != red {
		t.Errorf("cell 0 center = %v, want %v", got, red)
	}
	center2 := CellRect(2).Min.Add(image.Pt(CellWidth/2, CellHeight/2))
	if got := sheet.RGBAAt(center2.X, center2.Y); got != blue {
		t.Errorf("cell 2 center = %v, want %v", got, blue)
	}

	// The failed fetch keeps the background fill.
	center1 := CellRect(1).Min.Add(image.Pt(CellWidth/2, CellHeight/2))
	if got := sheet.RGBAAt(center1.X, center1.Y); got != Background {
		t.Errorf("failed cell center = %v, want background %v", got, Background)
	}

	// No spurious second callback.
	select {
	case <-ready:
		t.Error("unexpected second onReady")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBuildEmptySourceList(t *testing.T) {
	c := New()
	called := false
	c.Build(context.Background(), nil, func(*image.RGBA) { called = true })

	time.Sleep(100 * time.Millisecond)
	if called {
		t.Error("onReady must not fire for an empty source list")
	}
}

func TestBuildAllFailuresStillSettles(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ready := make(chan *image.RGBA, 1)
	c := New()
	c.Build(context.Background(), []string{
		srv.URL + "/a.png",
		srv.URL + "/b.png",
	}, func(sheet *image.RGBA) { ready <- sheet })

	sheet := waitReady(t, ready)

	// Whole sheet keeps the background fill.
	if got := sheet.RGBAAt(10, 10); got != Background {
		t.Errorf("pixel = %v, want background %v", got, Background)
	}
}

func TestSupersededBuildIsNoOp(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	green := color.RGBA{0, 255, 0, 255}

	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write(encodePNG(t, red, 20, 20))
	})
	mux.HandleFunc("/fast.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodePNG(t, green, 20, 20))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var staleCalls atomic.Int32
	ready := make(chan *image.RGBA, 1)

	c := New()
	c.Build(context.Background(), []string{srv.URL + "/slow.png"}, func(*image.RGBA) {
		staleCalls.Add(1)
	})

	// Supersede the in-flight cycle before its fetch settles.
	c.Build(context.Background(), []string{srv.URL + "/fast.png"}, func(sheet *image.RGBA) {
		ready <- sheet
	})
	close(release)

	sheet := waitReady(t, ready)

	center := CellRect(0).Min.Add(image.Pt(CellWidth/2, CellHeight/2))
	if got := sheet.RGBAAt(center.X, center.Y); got != green {
		t.Errorf("cell 0 = %v, want %v from the live generation", got, green)
	}

	// Give the stale settlement time to run; it must not fire its callback.
	time.Sleep(200 * time.Millisecond)
	if got := staleCalls.Load(); got != 0 {
		t.Errorf("superseded onReady fired %d times, want 0", got)
	}
}

func TestBuildSync(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodePNG(t, red, 10, 10))
	}))
	defer srv.Close()

	c := New()
	sheet := c.BuildSync(context.Background(), []string{srv.URL + "/scan.png"})
	if sheet == nil {
		t.Fatal("BuildSync returned nil for a valid source")
	}

	if got := c.BuildSync(context.Background(), nil); got != nil {
		t.Error("BuildSync for empty list should return nil")
	}
}

func TestBuildLocalFiles(t *testing.T) {
	dir := t.TempDir()
	red := color.RGBA{255, 0, 0, 255}
	path := dir + "/scan.png"
	if err := os.WriteFile(path, encodePNG(t, red, 10, 10), 0644); err != nil {
		t.Fatalf("writing test image: %v", err)
	}

	ready := make(chan *image.RGBA, 1)
	c := New()
	c.Build(context.Background(), []string{path}, func(sheet *image.RGBA) { ready <- sheet })

	sheet := waitReady(t, ready)
	center := CellRect(0).Min.Add(image.Pt(CellWidth/2, CellHeight/2))
	if got := sheet.RGBAAt(center.X, center.Y); got != red {
		t.Errorf("cell 0 = %v, want %v", got, red)
	}
}
