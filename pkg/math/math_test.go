package math

import (
	gomath "math"
	"testing"
)

const epsilon = 1e-5

func approxEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < epsilon
}

func vecApproxEqual(a, b Vec3) bool {
	return approxEqual(a.X, b.X) && approxEqual(a.Y, b.Y) && approxEqual(a.Z, b.Z)
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}

	z := x.Cross(y)
	if !vecApproxEqual(z, Vec3{0, 0, 1}) {
		t.Errorf("x cross y = %v, want +z", z)
	}

	z = y.Cross(x)
	if !vecApproxEqual(z, Vec3{0, 0, -1}) {
		t.Errorf("y cross x = %v, want -z", z)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 0, 4}.Normalize()
	if !approxEqual(v.Length(), 1) {
		t.Errorf("normalized length = %f, want 1", v.Length())
	}

	// Zero vector must not produce NaN
	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Errorf("normalize of zero = %v, want zero", zero)
	}
}

func TestIdentityTransform(t *testing.T) {
	p := Vec3{1, 2, 3}
	got := Identity().TransformPoint(p)
	if !vecApproxEqual(got, p) {
		t.Errorf("identity transform = %v, want %v", got, p)
	}
}

func TestRotateX(t *testing.T) {
	// Rotating +Y by 90 degrees around X yields +Z.
	m := RotateX(gomath.Pi / 2)
	got := m.TransformPoint(Vec3{0, 1, 0})
	if !vecApproxEqual(got, Vec3{0, 0, 1}) {
		t.Errorf("rotateX(90)*y = %v, want +z", got)
	}
}

func TestRotateY(t *testing.T) {
	// Rotating +Z by 90 degrees around Y yields +X.
	m := RotateY(gomath.Pi / 2)
	got := m.TransformPoint(Vec3{0, 0, 1})
	if !vecApproxEqual(got, Vec3{1, 0, 0}) {
		t.Errorf("rotateY(90)*z = %v, want +x", got)
	}
}

func TestMulOrder(t *testing.T) {
	// RotateX(a)*RotateX(b) == RotateX(a+b)
	a, b := float32(0.3), float32(0.5)
	got := RotateX(a).Mul(RotateX(b))
	want := RotateX(a + b)
	for i := range got {
		if !approxEqual(got[i], want[i]) {
			t.Fatalf("element %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestMulAgainstTransform(t *testing.T) {
	// (A*B)*p == A*(B*p)
	a := RotateY(0.7)
	b := RotateX(-1.2)
	p := Vec3{0.5, -2, 1.5}

	left := a.Mul(b).TransformPoint(p)
	right := a.TransformPoint(b.TransformPoint(p))
	if !vecApproxEqual(left, right) {
		t.Errorf("composition mismatch: %v vs %v", left, right)
	}
}

func TestLookAtOrigin(t *testing.T) {
	// Camera at +Z looking at origin: origin maps to -distance on Z.
	view := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})
	got := view.TransformPoint(Vec3{})
	if !vecApproxEqual(got, Vec3{0, 0, -5}) {
		t.Errorf("origin in view space = %v, want (0,0,-5)", got)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Identity()
	m[12], m[13], m[14] = 10, 20, 30

	d := m.TransformDirection(Vec3{0, 1, 0})
	if !vecApproxEqual(d, Vec3{0, 1, 0}) {
		t.Errorf("direction transform = %v, want (0,1,0)", d)
	}
}
