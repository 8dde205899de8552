// Package gldriver implements the engine's GL function surface on top of
// the go-gl OpenGL 4.1 core bindings. Importing it registers a loader for
// core.APIOpenGL.
package gldriver

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"nodegl/core"
	"nodegl/internal/opengl"
)

func init() {
	opengl.RegisterLoader(core.APIOpenGL, Load)
}

// Load resolves the go-gl bindings through the platform's proc address
// lookup. The context must be current.
func Load(getProcAddress func(name string) unsafe.Pointer) (opengl.Functions, error) {
	if err := gl.InitWithProcAddrFunc(getProcAddress); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL bindings: %w", err)
	}
	return functions{}, nil
}

type functions struct{}

func cstr(s string) *uint8 {
	return gl.Str(s + "\x00")
}

// ptr returns a pointer to the first byte of data, nil for empty data.
func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func (functions) ActiveTexture(texture uint32)        { gl.ActiveTexture(texture) }
func (functions) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (functions) BindBuffer(target, buffer uint32)    { gl.BindBuffer(target, buffer) }
func (functions) BindBufferBase(target, index, buffer uint32) {
	gl.BindBufferBase(target, index, buffer)
}
func (functions) BindFramebuffer(target, framebuffer uint32) {
	gl.BindFramebuffer(target, framebuffer)
}
func (functions) BindRenderbuffer(target, renderbuffer uint32) {
	gl.BindRenderbuffer(target, renderbuffer)
}
func (functions) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }
func (functions) BindVertexArray(array uint32)       { gl.BindVertexArray(array) }
func (functions) BlendFunc(sfactor, dfactor uint32)  { gl.BlendFunc(sfactor, dfactor) }

func (functions) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter uint32) {
	gl.BlitFramebuffer(int32(srcX0), int32(srcY0), int32(srcX1), int32(srcY1),
		int32(dstX0), int32(dstY0), int32(dstX1), int32(dstY1), mask, filter)
}

func (functions) BufferData(target uint32, size int, data []byte, usage uint32) {
	gl.BufferData(target, size, ptr(data), usage)
}

func (functions) BufferSubData(target uint32, offset int, data []byte) {
	gl.BufferSubData(target, offset, len(data), ptr(data))
}

func (functions) CheckFramebufferStatus(target uint32) uint32 {
	return gl.CheckFramebufferStatus(target)
}
func (functions) Clear(mask uint32)              { gl.Clear(mask) }
func (functions) ClearColor(r, g, b, a float32)  { gl.ClearColor(r, g, b, a) }
func (functions) CompileShader(shader uint32)    { gl.CompileShader(shader) }
func (functions) CreateProgram() uint32          { return gl.CreateProgram() }
func (functions) CreateShader(typ uint32) uint32 { return gl.CreateShader(typ) }

func (functions) DeleteBuffer(buffer uint32)           { gl.DeleteBuffers(1, &buffer) }
func (functions) DeleteFramebuffer(framebuffer uint32) { gl.DeleteFramebuffers(1, &framebuffer) }
func (functions) DeleteProgram(program uint32)         { gl.DeleteProgram(program) }
func (functions) DeleteRenderbuffer(renderbuffer uint32) {
	gl.DeleteRenderbuffers(1, &renderbuffer)
}
func (functions) DeleteShader(shader uint32)        { gl.DeleteShader(shader) }
func (functions) DeleteTexture(texture uint32)      { gl.DeleteTextures(1, &texture) }
func (functions) DeleteVertexArray(array uint32)    { gl.DeleteVertexArrays(1, &array) }
func (functions) Disable(capability uint32)         { gl.Disable(capability) }
func (functions) DisableVertexAttribArray(i uint32) { gl.DisableVertexAttribArray(i) }
func (functions) Enable(capability uint32)          { gl.Enable(capability) }
func (functions) EnableVertexAttribArray(i uint32)  { gl.EnableVertexAttribArray(i) }
func (functions) DrawArrays(mode uint32, first, count int) {
	gl.DrawArrays(mode, int32(first), int32(count))
}

func (functions) DrawElements(mode uint32, count int, typ uint32, offset int) {
	gl.DrawElements(mode, int32(count), typ, gl.PtrOffset(offset))
}

func (functions) DrawElementsInstanced(mode uint32, count int, typ uint32, offset, instances int) {
	gl.DrawElementsInstanced(mode, int32(count), typ, gl.PtrOffset(offset), int32(instances))
}

func (functions) FramebufferRenderbuffer(target, attachment, renderbufferTarget, renderbuffer uint32) {
	gl.FramebufferRenderbuffer(target, attachment, renderbufferTarget, renderbuffer)
}

func (functions) FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int) {
	gl.FramebufferTexture2D(target, attachment, texTarget, texture, int32(level))
}

func (functions) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (functions) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (functions) GenRenderbuffer() uint32 {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return id
}

func (functions) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (functions) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

const maxNameLength = 256

func (functions) GetActiveAttrib(program, index uint32) (string, int, uint32) {
	var (
		length, size int32
		typ          uint32
		name         [maxNameLength]uint8
	)
	gl.GetActiveAttrib(program, index, maxNameLength, &length, &size, &typ, &name[0])
	return string(name[:length]), int(size), typ
}

func (functions) GetActiveUniform(program, index uint32) (string, int, uint32) {
	var (
		length, size int32
		typ          uint32
		name         [maxNameLength]uint8
	)
	gl.GetActiveUniform(program, index, maxNameLength, &length, &size, &typ, &name[0])
	return string(name[:length]), int(size), typ
}

func (functions) GetActiveUniformBlockName(program, index uint32) string {
	var (
		length int32
		name   [maxNameLength]uint8
	)
	gl.GetActiveUniformBlockName(program, index, maxNameLength, &length, &name[0])
	return string(name[:length])
}

func (functions) GetActiveUniformBlocki(program, index, pname uint32) int {
	var v int32
	gl.GetActiveUniformBlockiv(program, index, pname, &v)
	return int(v)
}

func (functions) GetAttribLocation(program uint32, name string) int {
	return int(gl.GetAttribLocation(program, cstr(name)))
}

func (functions) GetError() uint32 { return gl.GetError() }

func (functions) GetInteger(pname uint32) int {
	var v int32
	gl.GetIntegerv(pname, &v)
	return int(v)
}

func (functions) GetIntegeri(pname, index uint32) int {
	var v int32
	gl.GetIntegeri_v(pname, index, &v)
	return int(v)
}

func (functions) GetProgramInfoLog(program uint32) string {
	var n int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(program, n, nil, gl.Str(log))
	return log
}

func (functions) GetProgrami(program, pname uint32) int {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return int(v)
}

func (functions) GetShaderInfoLog(shader uint32) string {
	var n int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n+1))
	gl.GetShaderInfoLog(shader, n, nil, gl.Str(log))
	return log
}

func (functions) GetShaderi(shader, pname uint32) int {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return int(v)
}

func (functions) GetString(name uint32) string {
	s := gl.GetString(name)
	if s == nil {
		return ""
	}
	return gl.GoStr(s)
}

func (functions) GetStringi(name, index uint32) string {
	s := gl.GetStringi(name, index)
	if s == nil {
		return ""
	}
	return gl.GoStr(s)
}

func (functions) GetUniformBlockIndex(program uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(program, cstr(name))
}

func (functions) GetUniformLocation(program uint32, name string) int {
	return int(gl.GetUniformLocation(program, cstr(name)))
}

func (functions) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (functions) PixelStorei(pname uint32, param int) { gl.PixelStorei(pname, int32(param)) }

func (functions) ReadPixels(x, y, width, height int, format, typ uint32, dst []byte) {
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), format, typ, ptr(dst))
}

func (functions) RenderbufferStorage(target, internalFormat uint32, width, height int) {
	gl.RenderbufferStorage(target, internalFormat, int32(width), int32(height))
}

func (functions) ShaderSource(shader uint32, src string) {
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
}

func (functions) TexImage2D(target uint32, level int, internalFormat uint32, width, height int, format, typ uint32, data []byte) {
	gl.TexImage2D(target, int32(level), int32(internalFormat), int32(width), int32(height), 0,
		format, typ, ptr(data))
}

func (functions) TexParameteri(target, pname uint32, param int) {
	gl.TexParameteri(target, pname, int32(param))
}

func (functions) TexSubImage2D(target uint32, level, x, y, width, height int, format, typ uint32, data []byte) {
	gl.TexSubImage2D(target, int32(level), int32(x), int32(y), int32(width), int32(height),
		format, typ, ptr(data))
}

func (functions) Uniform1f(location int, v float32) { gl.Uniform1f(int32(location), v) }
func (functions) Uniform1i(location int, v int)     { gl.Uniform1i(int32(location), int32(v)) }
func (functions) Uniform2f(location int, v0, v1 float32) {
	gl.Uniform2f(int32(location), v0, v1)
}
func (functions) Uniform3f(location int, v0, v1, v2 float32) {
	gl.Uniform3f(int32(location), v0, v1, v2)
}
func (functions) Uniform4f(location int, v0, v1, v2, v3 float32) {
	gl.Uniform4f(int32(location), v0, v1, v2, v3)
}

func (functions) UniformBlockBinding(program, index, binding uint32) {
	gl.UniformBlockBinding(program, index, binding)
}

func (functions) UniformMatrix3fv(location int, m [9]float32) {
	gl.UniformMatrix3fv(int32(location), 1, false, &m[0])
}

func (functions) UniformMatrix4fv(location int, m [16]float32) {
	gl.UniformMatrix4fv(int32(location), 1, false, &m[0])
}

func (functions) UseProgram(program uint32) { gl.UseProgram(program) }

func (functions) VertexAttribDivisor(index, divisor uint32) {
	gl.VertexAttribDivisor(index, divisor)
}

func (functions) VertexAttribPointer(index uint32, size int, typ uint32, normalized bool, stride, offset int) {
	gl.VertexAttribPointer(index, int32(size), typ, normalized, int32(stride), gl.PtrOffset(offset))
}

func (functions) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}
