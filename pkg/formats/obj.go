package formats

import (
	"bufio"
	"fmt"
	"io"

	"github.com/openrelic/artifactview/internal/geometry"
)

// WriteOBJ writes the mesh as a Wavefront OBJ file. mtlName, when not
// empty, is referenced via mtllib/usemtl so the atlas texture applies.
func WriteOBJ(w io.Writer, mesh *geometry.Mesh, mtlName string) error {
	if mesh == nil || len(mesh.Vertices) == 0 {
		return fmt.Errorf("obj: empty mesh")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# artifactview reconstruction")

	if mtlName != "" {
		fmt.Fprintf(bw, "mtllib %s\n", mtlName)
	}

	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.Position[0], v.Position[1], v.Position[2])
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal[0], v.Normal[1], v.Normal[2])
	}
	for _, v := range mesh.Vertices {
		// OBJ texture space has V growing upward.
		fmt.Fprintf(bw, "vt %g %g\n", v.TexCoord[0], 1-v.TexCoord[1])
	}

	if mtlName != "" {
		fmt.Fprintln(bw, "usemtl atlas")
	}

	// Faces with 1-based v/vt/vn triplets.
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := mesh.Indices[i] + 1
		b := mesh.Indices[i+1] + 1
		c := mesh.Indices[i+2] + 1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}

	return bw.Flush()
}

// WriteMTL writes the material library referencing the atlas texture file.
func WriteMTL(w io.Writer, textureFile string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "newmtl atlas")
	fmt.Fprintln(bw, "Ka 1.0 1.0 1.0")
	fmt.Fprintln(bw, "Kd 1.0 1.0 1.0")
	fmt.Fprintln(bw, "Ks 0.0 0.0 0.0")
	fmt.Fprintf(bw, "map_Kd %s\n", textureFile)
	return bw.Flush()
}
