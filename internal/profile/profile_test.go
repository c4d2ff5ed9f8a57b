package profile

import (
	"testing"
)

func TestDefaultHasSixPoints(t *testing.T) {
	p := Default()
	if len(p) != 6 {
		t.Fatalf("expected 6 points, got %d", len(p))
	}
	for i, pt := range p {
		if pt.Radius < 0 || pt.Radius > 1 || pt.Height < 0 || pt.Height > 1 {
			t.Errorf("point %d out of normalized range: %+v", i, pt)
		}
	}
}

func TestParseValid(t *testing.T) {
	p := Parse(`[[0,0.3],[0.4,1],[1,0.3]]`)
	if len(p) != 3 {
		t.Fatalf("expected 3 points, got %d", len(p))
	}
	if p[0].Radius != 0 || p[0].Height != 0.3 {
		t.Errorf("point 0 = %+v, want {0 0.3}", p[0])
	}
	if p[2].Radius != 1 || p[2].Height != 0.3 {
		t.Errorf("point 2 = %+v, want {1 0.3}", p[2])
	}
}

func TestParseFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"not json", "radius:0.5 height:1"},
		{"wrong shape", `{"radius": 0.5}`},
		{"empty array", "[]"},
		{"truncated", `[[0.1, 0.2], [0.3`},
	}

	want := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.text)
			if len(p) != len(want) {
				t.Fatalf("expected default profile (%d points), got %d", len(want), len(p))
			}
			for i := range p {
				if p[i] != want[i] {
					t.Errorf("point %d = %+v, want %+v", i, p[i], want[i])
				}
			}
		})
	}
}

func TestFromPairsEmpty(t *testing.T) {
	p := FromPairs(nil)
	if len(p) != len(Default()) {
		t.Errorf("empty pairs should yield default profile, got %d points", len(p))
	}
}

func TestFromPairsSingle(t *testing.T) {
	p := FromPairs([][2]float64{{0.5, 0.5}})
	if len(p) != 1 {
		t.Fatalf("expected 1 point, got %d", len(p))
	}
}

func TestLathePoints(t *testing.T) {
	p := Profile{{Radius: 0.5, Height: 0}, {Radius: 1, Height: 0.5}, {Radius: 0.5, Height: 1}}
	pts := p.LathePoints()
	if len(pts) != 3 {
		t.Fatalf("expected 3 lathe points, got %d", len(pts))
	}

	// Radius scaled by the fixed factor.
	if pts[1].X != 1*RadiusScale {
		t.Errorf("radius = %f, want %f", pts[1].X, RadiusScale)
	}
	// Height remapped to [-1, 1].
	if pts[0].Y != -1 {
		t.Errorf("bottom height = %f, want -1", pts[0].Y)
	}
	if pts[1].Y != 0 {
		t.Errorf("middle height = %f, want 0", pts[1].Y)
	}
	if pts[2].Y != 1 {
		t.Errorf("top height = %f, want 1", pts[2].Y)
	}
}
