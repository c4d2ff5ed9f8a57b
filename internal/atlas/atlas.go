// Package atlas composites scan photographs into the single texture sheet
// applied to the artifact mesh.
package atlas

import (
	"image"
	"image/color"
	"image/draw"
)

// Atlas dimensions and grid layout. The sheet is partitioned into equal
// cells, one per scan image, addressed by sequence index.
const (
	Width  = 2048
	Height = 1024
	Cols   = 6
	Rows   = 2

	// Capacity is the number of grid cells.
	Capacity = Cols * Rows

	CellWidth  = Width / Cols
	CellHeight = Height / Rows
)

// Background is the fill color of cells whose image failed to load.
var Background = color.RGBA{R: 58, G: 56, B: 54, A: 255}

// CellRect returns the pixel rectangle of grid cell i. Indices beyond the
// grid capacity wrap around.
func CellRect(i int) image.Rectangle {
	i = ((i % Capacity) + Capacity) % Capacity
	col := i % Cols
	row := i / Cols
	x := col * CellWidth
	y := row * CellHeight
	return image.Rect(x, y, x+CellWidth, y+CellHeight)
}

// newSheet allocates a fresh atlas surface with the background fill.
func newSheet() *image.RGBA {
	sheet := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	return sheet
}
