package formats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/openrelic/artifactview/internal/geometry"
	"github.com/openrelic/artifactview/internal/profile"
)

func TestWriteOBJ(t *testing.T) {
	mesh := geometry.Lathe(profile.Default().LathePoints(), 8)

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, mesh, "artifact.mtl"); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")

	var v, vn, vt, f int
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "v "):
			v++
		case strings.HasPrefix(line, "vn "):
			vn++
		case strings.HasPrefix(line, "vt "):
			vt++
		case strings.HasPrefix(line, "f "):
			f++
		}
	}

	if v != len(mesh.Vertices) {
		t.Errorf("v lines = %d, want %d", v, len(mesh.Vertices))
	}
	if vn != len(mesh.Vertices) || vt != len(mesh.Vertices) {
		t.Errorf("vn/vt lines = %d/%d, want %d each", vn, vt, len(mesh.Vertices))
	}
	if f != len(mesh.Indices)/3 {
		t.Errorf("f lines = %d, want %d", f, len(mesh.Indices)/3)
	}

	if !strings.Contains(out, "mtllib artifact.mtl") {
		t.Error("missing mtllib reference")
	}
	if !strings.Contains(out, "usemtl atlas") {
		t.Error("missing usemtl line")
	}
}

func TestWriteOBJWithoutMaterial(t *testing.T) {
	mesh := geometry.Lathe(profile.Default().LathePoints(), 4)

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, mesh, ""); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}
	if strings.Contains(buf.String(), "mtllib") {
		t.Error("unexpected mtllib line for material-less export")
	}
}

func TestWriteOBJEmptyMesh(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, &geometry.Mesh{}, ""); err == nil {
		t.Error("expected error for empty mesh")
	}
}

func TestWriteMTL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMTL(&buf, "atlas.png"); err != nil {
		t.Fatalf("WriteMTL failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "newmtl atlas") {
		t.Error("missing newmtl line")
	}
	if !strings.Contains(out, "map_Kd atlas.png") {
		t.Error("missing map_Kd line")
	}
}
