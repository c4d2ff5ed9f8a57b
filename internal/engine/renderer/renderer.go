// Package renderer draws the reconstructed artifact with OpenGL.
package renderer

import (
	"fmt"
	"image"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/openrelic/artifactview/internal/geometry"
	"github.com/openrelic/artifactview/pkg/math"
)

const vertexShaderSource = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec2 vTexCoord;

void main() {
    vNormal = mat3(uModel) * aNormal;
    vTexCoord = aTexCoord;
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
` + "\x00"

const fragmentShaderSource = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;

uniform sampler2D uAtlas;
uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform vec3 uDiffuse;

out vec4 FragColor;

void main() {
    vec3 normal = normalize(vNormal);
    vec3 lightDir = normalize(uLightDir);
    float diff = max(dot(normal, lightDir), 0.0);
    vec4 tex = texture(uAtlas, vTexCoord);
    FragColor = vec4((uAmbient + diff * uDiffuse) * tex.rgb, tex.a);
}
` + "\x00"

// Renderer owns the GL resources for exactly one artifact mesh and its
// atlas texture. SetMesh and SetAtlas release the previous generation's
// resources before uploading replacements.
type Renderer struct {
	program       uint32
	locModel      int32
	locView       int32
	locProjection int32
	locLightDir   int32
	locAmbient    int32
	locDiffuse    int32
	locAtlas      int32

	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32

	atlasTexture uint32

	width  int32
	height int32
}

// New initializes OpenGL bindings and compiles the artifact shader.
func New(width, height int) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	r := &Renderer{
		width:  int32(width),
		height: int32(height),
	}
	if err := r.createShaderProgram(); err != nil {
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	return r, nil
}

func (r *Renderer) createShaderProgram() error {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	r.program = gl.CreateProgram()
	gl.AttachShader(r.program, vertexShader)
	gl.AttachShader(r.program, fragmentShader)
	gl.LinkProgram(r.program)

	var status int32
	gl.GetProgramiv(r.program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(r.program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(r.program, logLength, nil, gl.Str(infoLog))
		return fmt.Errorf("shader link failed: %s", infoLog)
	}

	r.locModel = gl.GetUniformLocation(r.program, gl.Str("uModel\x00"))
	r.locView = gl.GetUniformLocation(r.program, gl.Str("uView\x00"))
	r.locProjection = gl.GetUniformLocation(r.program, gl.Str("uProjection\x00"))
	r.locLightDir = gl.GetUniformLocation(r.program, gl.Str("uLightDir\x00"))
	r.locAmbient = gl.GetUniformLocation(r.program, gl.Str("uAmbient\x00"))
	r.locDiffuse = gl.GetUniformLocation(r.program, gl.Str("uDiffuse\x00"))
	r.locAtlas = gl.GetUniformLocation(r.program, gl.Str("uAtlas\x00"))

	return nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %s", infoLog)
	}

	return shader, nil
}

// SetMesh uploads the mesh, replacing and releasing any previous one.
func (r *Renderer) SetMesh(mesh *geometry.Mesh) {
	r.releaseMesh()

	if mesh == nil || len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	stride := int32(unsafe.Sizeof(geometry.Vertex{}))

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	r.indexCount = int32(len(mesh.Indices))
}

// SetAtlas uploads the composited texture sheet, replacing and releasing
// any previous one.
func (r *Renderer) SetAtlas(sheet *image.RGBA) {
	r.releaseAtlas()

	if sheet == nil || len(sheet.Pix) == 0 {
		return
	}

	gl.GenTextures(1, &r.atlasTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.atlasTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(sheet.Bounds().Dx()), int32(sheet.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&sheet.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.GenerateMipmap(gl.TEXTURE_2D)
}

// HasMesh reports whether a mesh is currently uploaded.
func (r *Renderer) HasMesh() bool {
	return r.indexCount > 0
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.width = int32(width)
	r.height = int32(height)
	gl.Viewport(0, 0, r.width, r.height)
}

// Draw renders one frame with the given model and view matrices. With no
// mesh uploaded it only clears the background.
func (r *Renderer) Draw(model, view math.Mat4) {
	gl.ClearColor(0.09, 0.09, 0.11, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if r.indexCount == 0 {
		return
	}

	aspect := float32(r.width) / float32(r.height)
	projection := math.Perspective(0.785398, aspect, 0.1, 100.0) // 45 degrees FOV

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.locProjection, 1, false, projection.Ptr())
	gl.UniformMatrix4fv(r.locView, 1, false, view.Ptr())
	gl.UniformMatrix4fv(r.locModel, 1, false, model.Ptr())

	gl.Uniform3f(r.locLightDir, 0.5, 1.0, 0.7)
	gl.Uniform3f(r.locAmbient, 0.45, 0.45, 0.45)
	gl.Uniform3f(r.locDiffuse, 0.65, 0.65, 0.65)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlasTexture)
	gl.Uniform1i(r.locAtlas, 0)

	gl.BindVertexArray(r.vao)
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (r *Renderer) releaseMesh() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
	r.indexCount = 0
}

func (r *Renderer) releaseAtlas() {
	if r.atlasTexture != 0 {
		gl.DeleteTextures(1, &r.atlasTexture)
		r.atlasTexture = 0
	}
}

// Destroy releases every GL resource the renderer allocated.
func (r *Renderer) Destroy() {
	r.releaseMesh()
	r.releaseAtlas()
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
