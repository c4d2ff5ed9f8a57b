// Package formats writes the reconstructed artifact to interchange formats
// consumed by external viewers.
package formats

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/openrelic/artifactview/internal/geometry"
)

// GLB container constants (glTF 2.0 binary).
const (
	glbMagic        = 0x46546C67 // "glTF"
	glbVersion      = 2
	glbChunkJSON    = 0x4E4F534A // "JSON"
	glbChunkBIN     = 0x004E4942 // "BIN\0"
	glbHeaderSize   = 12
	glbChunkHdrSize = 8
)

// glTF component types and buffer targets.
const (
	componentFloat       = 5126
	componentUnsignedInt = 5125
	targetArrayBuffer    = 34962
	targetElementArray   = 34963
)

type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

type gltfScene struct {
	Nodes []int `json:"nodes"`
}

type gltfNode struct {
	Name string `json:"name,omitempty"`
	Mesh int    `json:"mesh"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    int            `json:"indices"`
	Material   *int           `json:"material,omitempty"`
}

type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfTextureInfo struct {
	Index int `json:"index"`
}

type gltfPBR struct {
	BaseColorTexture *gltfTextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   float64          `json:"metallicFactor"`
	RoughnessFactor  float64          `json:"roughnessFactor"`
}

type gltfMaterial struct {
	Name                 string  `json:"name,omitempty"`
	PBRMetallicRoughness gltfPBR `json:"pbrMetallicRoughness"`
}

type gltfTexture struct {
	Sampler int `json:"sampler"`
	Source  int `json:"source"`
}

type gltfImage struct {
	MimeType   string `json:"mimeType"`
	BufferView int    `json:"bufferView"`
}

type gltfSampler struct {
	MagFilter int `json:"magFilter"`
	MinFilter int `json:"minFilter"`
	WrapS     int `json:"wrapS"`
	WrapT     int `json:"wrapT"`
}

type gltfAccessor struct {
	BufferView    int       `json:"bufferView"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	Target     int `json:"target,omitempty"`
}

type gltfBuffer struct {
	ByteLength int `json:"byteLength"`
}

type gltfRoot struct {
	Asset       gltfAsset        `json:"asset"`
	Scene       int              `json:"scene"`
	Scenes      []gltfScene      `json:"scenes"`
	Nodes       []gltfNode       `json:"nodes"`
	Meshes      []gltfMesh       `json:"meshes"`
	Materials   []gltfMaterial   `json:"materials,omitempty"`
	Textures    []gltfTexture    `json:"textures,omitempty"`
	Images      []gltfImage      `json:"images,omitempty"`
	Samplers    []gltfSampler    `json:"samplers,omitempty"`
	Accessors   []gltfAccessor   `json:"accessors"`
	BufferViews []gltfBufferView `json:"bufferViews"`
	Buffers     []gltfBuffer     `json:"buffers"`
}

// WriteGLB writes the mesh and its atlas as a binary glTF 2.0 container.
// atlas may be nil, producing an untextured model.
func WriteGLB(w io.Writer, mesh *geometry.Mesh, atlas image.Image, name string) error {
	if mesh == nil || len(mesh.Vertices) == 0 {
		return fmt.Errorf("glb: empty mesh")
	}

	bin := new(bytes.Buffer)

	// Interleaved data is split into tightly packed streams so each
	// accessor maps onto one buffer view.
	posOffset := bin.Len()
	for _, v := range mesh.Vertices {
		binary.Write(bin, binary.LittleEndian, v.Position)
	}
	posLen := bin.Len() - posOffset

	normOffset := bin.Len()
	for _, v := range mesh.Vertices {
		binary.Write(bin, binary.LittleEndian, v.Normal)
	}
	normLen := bin.Len() - normOffset

	uvOffset := bin.Len()
	for _, v := range mesh.Vertices {
		binary.Write(bin, binary.LittleEndian, v.TexCoord)
	}
	uvLen := bin.Len() - uvOffset

	idxOffset := bin.Len()
	binary.Write(bin, binary.LittleEndian, mesh.Indices)
	idxLen := bin.Len() - idxOffset
	padTo4(bin, 0x00)

	minB, maxB := mesh.Bounds()

	root := gltfRoot{
		Asset:  gltfAsset{Version: "2.0", Generator: "artifactview"},
		Scene:  0,
		Scenes: []gltfScene{{Nodes: []int{0}}},
		Nodes:  []gltfNode{{Name: name, Mesh: 0}},
		Accessors: []gltfAccessor{
			{BufferView: 0, ComponentType: componentFloat, Count: len(mesh.Vertices), Type: "VEC3",
				Min: minB[:], Max: maxB[:]},
			{BufferView: 1, ComponentType: componentFloat, Count: len(mesh.Vertices), Type: "VEC3"},
			{BufferView: 2, ComponentType: componentFloat, Count: len(mesh.Vertices), Type: "VEC2"},
			{BufferView: 3, ComponentType: componentUnsignedInt, Count: len(mesh.Indices), Type: "SCALAR"},
		},
		BufferViews: []gltfBufferView{
			{Buffer: 0, ByteOffset: posOffset, ByteLength: posLen, Target: targetArrayBuffer},
			{Buffer: 0, ByteOffset: normOffset, ByteLength: normLen, Target: targetArrayBuffer},
			{Buffer: 0, ByteOffset: uvOffset, ByteLength: uvLen, Target: targetArrayBuffer},
			{Buffer: 0, ByteOffset: idxOffset, ByteLength: idxLen, Target: targetElementArray},
		},
	}

	prim := gltfPrimitive{
		Attributes: map[string]int{
			"POSITION":   0,
			"NORMAL":     1,
			"TEXCOORD_0": 2,
		},
		Indices: 3,
	}

	if atlas != nil {
		pngBytes := new(bytes.Buffer)
		if err := png.Encode(pngBytes, atlas); err != nil {
			return fmt.Errorf("glb: encoding atlas: %w", err)
		}

		imgOffset := bin.Len()
		bin.Write(pngBytes.Bytes())
		imgLen := bin.Len() - imgOffset
		padTo4(bin, 0x00)

		root.BufferViews = append(root.BufferViews, gltfBufferView{
			Buffer: 0, ByteOffset: imgOffset, ByteLength: imgLen,
		})
		root.Images = []gltfImage{{MimeType: "image/png", BufferView: len(root.BufferViews) - 1}}
		root.Samplers = []gltfSampler{{
			MagFilter: 9729, // LINEAR
			MinFilter: 9987, // LINEAR_MIPMAP_LINEAR
			WrapS:     10497,
			WrapT:     33071,
		}}
		root.Textures = []gltfTexture{{Sampler: 0, Source: 0}}
		root.Materials = []gltfMaterial{{
			Name: "atlas",
			PBRMetallicRoughness: gltfPBR{
				BaseColorTexture: &gltfTextureInfo{Index: 0},
				MetallicFactor:   0,
				RoughnessFactor:  0.9,
			},
		}}
		mat := 0
		prim.Material = &mat
	}

	root.Meshes = []gltfMesh{{Name: name, Primitives: []gltfPrimitive{prim}}}
	root.Buffers = []gltfBuffer{{ByteLength: bin.Len()}}

	jsonBytes, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("glb: encoding json: %w", err)
	}
	jsonBuf := bytes.NewBuffer(jsonBytes)
	padTo4(jsonBuf, 0x20)

	total := glbHeaderSize +
		glbChunkHdrSize + jsonBuf.Len() +
		glbChunkHdrSize + bin.Len()

	header := []uint32{glbMagic, glbVersion, uint32(total)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := writeChunk(w, glbChunkJSON, jsonBuf.Bytes()); err != nil {
		return err
	}
	return writeChunk(w, glbChunkBIN, bin.Bytes())
}

func writeChunk(w io.Writer, chunkType uint32, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, [2]uint32{uint32(len(data)), chunkType}); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// padTo4 pads the buffer to a 4-byte boundary with the given filler.
func padTo4(buf *bytes.Buffer, fill byte) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(fill)
	}
}
