// Package geometry generates the solid-of-revolution mesh for an artifact
// from its cross-section profile.
package geometry

import (
	gomath "math"

	"github.com/openrelic/artifactview/pkg/math"
)

// DefaultSegments is the number of angular steps used to revolve a profile.
const DefaultSegments = 32

// Vertex is one mesh vertex in the layout uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Mesh is a triangle mesh with indexed vertices. Exactly one artifact mesh
// exists at a time; rebuilding replaces it.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max [3]float32) {
	min = [3]float32{1e10, 1e10, 1e10}
	max = [3]float32{-1e10, -1e10, -1e10}
	for _, v := range m.Vertices {
		for k := 0; k < 3; k++ {
			if v.Position[k] < min[k] {
				min[k] = v.Position[k]
			}
			if v.Position[k] > max[k] {
				max[k] = v.Position[k]
			}
		}
	}
	return min, max
}

// Lathe revolves the profile polyline 360 degrees around its axis in the
// given number of angular steps. Points are (radius, height) pairs already
// scaled by the caller. The surface is emitted with the revolution axis
// along +Y (the viewer's vertical): the sweep happens around Z and the
// fixed 90 degree X alignment rotation is baked into positions and normals.
//
// Lathe cannot fail: callers substitute the default profile before this
// stage, so points always holds at least one entry. A single-point profile
// yields a vertex ring with no triangles.
func Lathe(points []math.Vec2, segments int) *Mesh {
	if segments < 3 {
		segments = DefaultSegments
	}

	rows := len(points)
	tangents := profileTangents(points)
	align := math.RotateX(-gomath.Pi / 2)

	mesh := &Mesh{
		Vertices: make([]Vertex, 0, (segments+1)*rows),
		Indices:  make([]uint32, 0, 6*segments*maxInt(rows-1, 0)),
	}

	// Ring grid: one column per angular step plus a seam-closing duplicate
	// column so texture coordinates wrap cleanly.
	for j := 0; j < rows; j++ {
		r := points[j].X
		h := points[j].Y

		// 2D outward normal of the profile curve at this point.
		n2 := math.Vec2{X: tangents[j].Y, Y: -tangents[j].X}

		v := float32(0)
		if rows > 1 {
			v = float32(j) / float32(rows-1)
		}

		for i := 0; i <= segments; i++ {
			angle := float64(i) / float64(segments) * 2 * gomath.Pi
			cos := float32(gomath.Cos(angle))
			sin := float32(gomath.Sin(angle))

			pos := align.TransformPoint(math.Vec3{X: r * cos, Y: r * sin, Z: h})
			normal := align.TransformDirection(math.Vec3{X: n2.X * cos, Y: n2.X * sin, Z: n2.Y}.Normalize())

			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: [3]float32{pos.X, pos.Y, pos.Z},
				Normal:   [3]float32{normal.X, normal.Y, normal.Z},
				TexCoord: [2]float32{float32(i) / float32(segments), v},
			})
		}
	}

	// Two triangles per grid cell.
	cols := segments + 1
	for j := 0; j < rows-1; j++ {
		for i := 0; i < segments; i++ {
			a := uint32(j*cols + i)
			b := uint32(j*cols + i + 1)
			c := uint32((j+1)*cols + i)
			d := uint32((j+1)*cols + i + 1)

			mesh.Indices = append(mesh.Indices, a, c, b)
			mesh.Indices = append(mesh.Indices, b, c, d)
		}
	}

	return mesh
}

// profileTangents returns the per-point tangent of the profile polyline,
// using central differences for interior points.
func profileTangents(points []math.Vec2) []math.Vec2 {
	n := len(points)
	tangents := make([]math.Vec2, n)

	if n == 1 {
		// Degenerate curve: treat as a horizontal ring facing outward.
		tangents[0] = math.Vec2{X: 0, Y: 1}
		return tangents
	}

	for j := 0; j < n; j++ {
		prev := points[maxInt(j-1, 0)]
		next := points[minInt(j+1, n-1)]
		tangents[j] = math.Vec2{X: next.X - prev.X, Y: next.Y - prev.Y}
	}
	return tangents
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
