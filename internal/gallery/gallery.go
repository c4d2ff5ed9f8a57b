// Package gallery tracks which scan photograph the thumbnail strip shows.
package gallery

import (
	"image"
	"image/color"
	"image/draw"
)

// PlaceholderSize is the edge length of the substitute thumbnail.
const PlaceholderSize = 64

// Gallery navigates an ordered scan-image sequence. Next and Prev wrap
// around the ends of the sequence.
type Gallery struct {
	sources []string
	index   int
}

// New creates a gallery over the given image sources.
func New(sources []string) *Gallery {
	return &Gallery{sources: sources}
}

// Len returns the number of images.
func (g *Gallery) Len() int {
	return len(g.sources)
}

// Index returns the current position, or -1 for an empty gallery.
func (g *Gallery) Index() int {
	if len(g.sources) == 0 {
		return -1
	}
	return g.index
}

// Current returns the source at the current position.
func (g *Gallery) Current() (string, bool) {
	if len(g.sources) == 0 {
		return "", false
	}
	return g.sources[g.index], true
}

// Next advances to the following image, wrapping past the end.
func (g *Gallery) Next() {
	if len(g.sources) == 0 {
		return
	}
	g.index = (g.index + 1) % len(g.sources)
}

// Prev steps back to the preceding image, wrapping past the start.
func (g *Gallery) Prev() {
	if len(g.sources) == 0 {
		return
	}
	g.index = (g.index - 1 + len(g.sources)) % len(g.sources)
}

// Thumbnail returns the image for the current index via load. An empty
// gallery or a failed load yields the fixed placeholder.
func (g *Gallery) Thumbnail(load func(string) (image.Image, error)) image.Image {
	src, ok := g.Current()
	if !ok {
		return Placeholder()
	}
	img, err := load(src)
	if err != nil || img == nil {
		return Placeholder()
	}
	return img
}

// Placeholder returns the fixed substitute drawn when a thumbnail fails to
// load: a dark tile with a lighter inner square.
func Placeholder() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, PlaceholderSize, PlaceholderSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{40, 40, 44, 255}), image.Point{}, draw.Src)

	inner := image.Rect(PlaceholderSize/4, PlaceholderSize/4, 3*PlaceholderSize/4, 3*PlaceholderSize/4)
	draw.Draw(img, inner, image.NewUniform(color.RGBA{90, 90, 96, 255}), image.Point{}, draw.Src)
	return img
}
