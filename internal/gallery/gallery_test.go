package gallery

import (
	"errors"
	"image"
	"testing"
)

func TestNextWraps(t *testing.T) {
	g := New([]string{"a.png", "b.png", "c.png"})

	if g.Index() != 0 {
		t.Fatalf("initial index = %d, want 0", g.Index())
	}

	g.Next()
	g.Next()
	if g.Index() != 2 {
		t.Fatalf("index after two Next = %d, want 2", g.Index())
	}

	g.Next()
	if g.Index() != 0 {
		t.Errorf("Next from last index = %d, want wrap to 0", g.Index())
	}
}

func TestPrevWraps(t *testing.T) {
	g := New([]string{"a.png", "b.png", "c.png"})

	g.Prev()
	if g.Index() != 2 {
		t.Errorf("Prev from index 0 = %d, want N-1 = 2", g.Index())
	}
}

func TestCurrent(t *testing.T) {
	g := New([]string{"a.png", "b.png"})

	src, ok := g.Current()
	if !ok || src != "a.png" {
		t.Errorf("Current = %q, %v; want a.png, true", src, ok)
	}

	g.Next()
	src, _ = g.Current()
	if src != "b.png" {
		t.Errorf("Current after Next = %q, want b.png", src)
	}
}

func TestEmptyGallery(t *testing.T) {
	g := New(nil)

	if g.Index() != -1 {
		t.Errorf("empty gallery index = %d, want -1", g.Index())
	}
	if _, ok := g.Current(); ok {
		t.Error("empty gallery must have no current image")
	}

	// Navigation on an empty gallery is a no-op, not a panic.
	g.Next()
	g.Prev()
}

func TestThumbnail(t *testing.T) {
	g := New([]string{"a.png", "broken.png"})

	want := image.NewRGBA(image.Rect(0, 0, 8, 8))
	load := func(src string) (image.Image, error) {
		if src == "a.png" {
			return want, nil
		}
		return nil, errors.New("decode failed")
	}

	if got := g.Thumbnail(load); got != image.Image(want) {
		t.Error("thumbnail should return the loaded image")
	}

	// A failed load substitutes the placeholder.
	g.Next()
	got := g.Thumbnail(load)
	if got == nil || got.Bounds().Dx() != PlaceholderSize {
		t.Error("failed thumbnail load should yield the placeholder")
	}

	// So does an empty gallery.
	empty := New(nil)
	if got := empty.Thumbnail(load); got == nil || got.Bounds().Dx() != PlaceholderSize {
		t.Error("empty gallery thumbnail should yield the placeholder")
	}
}

func TestPlaceholder(t *testing.T) {
	img := Placeholder()
	b := img.Bounds()
	if b.Dx() != PlaceholderSize || b.Dy() != PlaceholderSize {
		t.Errorf("placeholder bounds = %v, want %dx%d", b, PlaceholderSize, PlaceholderSize)
	}
	// Center differs from the border fill.
	if img.RGBAAt(1, 1) == img.RGBAAt(PlaceholderSize/2, PlaceholderSize/2) {
		t.Error("placeholder should have a distinct inner square")
	}
}
