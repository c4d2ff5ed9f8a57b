// Package camera provides the orbit camera used to inspect the artifact.
package camera

import (
	gomath "math"

	"github.com/openrelic/artifactview/pkg/math"
)

// Fixed interaction constants.
const (
	// DragSensitivity converts pointer delta pixels to radians.
	DragSensitivity = 0.01

	// WheelStep is the camera distance change per wheel notch.
	WheelStep = 0.2

	// MinDistance and MaxDistance bound the camera distance.
	MinDistance = 1.5
	MaxDistance = 10.0

	// TiltLimit keeps the view from passing over the poles.
	TiltLimit = gomath.Pi / 2

	// DefaultDistance is the camera distance after Reset.
	DefaultDistance = 3.0

	// DefaultAutoSpinSpeed is the idle spin increment per frame, radians.
	DefaultAutoSpinSpeed = 0.005
)

// Orbit holds the accumulated artifact orientation and camera distance.
// Tilt and Spin rotate the mesh rather than moving the eye, matching how
// the artifact is presented: the camera stays on the +Z axis and the
// reconstruction turns beneath it.
type Orbit struct {
	Tilt     float32 // vertical, clamped to +-TiltLimit
	Spin     float32 // around the revolution axis, unbounded
	Distance float32

	AutoSpinSpeed float32

	// Dragging is true between pointer-down over the canvas and the next
	// pointer-up, wherever that up happens.
	Dragging bool
	LastX    int
	LastY    int
}

// NewOrbit returns an orbit with default distance and spin speed.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:      DefaultDistance,
		AutoSpinSpeed: DefaultAutoSpinSpeed,
	}
}

// BeginDrag enters the dragging state at the given pointer position.
func (o *Orbit) BeginDrag(x, y int) {
	o.Dragging = true
	o.LastX = x
	o.LastY = y
}

// EndDrag leaves the dragging state. Pointer-up is observed globally, so a
// drag started over the canvas and released outside still ends here.
func (o *Orbit) EndDrag() {
	o.Dragging = false
}

// HandleMove accumulates tilt and spin from a pointer move while dragging.
// Moves while idle only update the remembered pointer position.
func (o *Orbit) HandleMove(x, y int) {
	dx := x - o.LastX
	dy := y - o.LastY
	o.LastX = x
	o.LastY = y

	if !o.Dragging {
		return
	}

	o.Spin += float32(dx) * DragSensitivity
	o.Tilt += float32(dy) * DragSensitivity
	o.Tilt = clamp(o.Tilt, -TiltLimit, TiltLimit)
}

// HandleZoom adjusts camera distance by one wheel step in the scroll
// direction; positive deltaY moves the camera away.
func (o *Orbit) HandleZoom(deltaY float32) {
	if deltaY > 0 {
		o.Distance += WheelStep
	} else if deltaY < 0 {
		o.Distance -= WheelStep
	}
	o.Distance = clamp(o.Distance, MinDistance, MaxDistance)
}

// AutoSpin applies the idle per-frame spin increment.
func (o *Orbit) AutoSpin() {
	o.Spin += o.AutoSpinSpeed
}

// Reset zeroes accumulated tilt and spin and restores the default
// distance, returning the mesh to its initial aligned orientation.
func (o *Orbit) Reset() {
	o.Tilt = 0
	o.Spin = 0
	o.Distance = DefaultDistance
}

// ModelMatrix returns the artifact orientation: spin around the revolution
// axis, then tilt around the horizontal. The 90 degree alignment rotation
// is baked into the mesh at generation time, so identity here shows the
// artifact upright.
func (o *Orbit) ModelMatrix() math.Mat4 {
	return math.RotateX(o.Tilt).Mul(math.RotateY(o.Spin))
}

// ViewMatrix returns the view matrix for the fixed eye on the +Z axis.
func (o *Orbit) ViewMatrix() math.Mat4 {
	eye := math.Vec3{X: 0, Y: 0, Z: o.Distance}
	return math.LookAt(eye, math.Vec3{}, math.Vec3{X: 0, Y: 1, Z: 0})
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
