package opengl

import (
	"fmt"
	"unsafe"

	"nodegl/core"
)

// entryPoint is a named GL function. Mandatory ones must resolve for the
// context to come up; the others gate features.
type entryPoint struct {
	name      string
	mandatory bool
}

const (
	mandatory = true
	optional  = false
)

var entryPoints = [...]entryPoint{
	{"ActiveTexture", mandatory},
	{"AttachShader", mandatory},
	{"BeginQuery", optional},
	{"BeginQueryEXT", optional},
	{"BindAttribLocation", mandatory},
	{"BindBuffer", mandatory},
	{"BindBufferBase", optional},
	{"BindBufferRange", optional},
	{"BindFramebuffer", mandatory},
	{"BindImageTexture", optional},
	{"BindRenderbuffer", mandatory},
	{"BindTexture", mandatory},
	{"BindVertexArray", optional},
	{"BlendColor", mandatory},
	{"BlendEquation", mandatory},
	{"BlendEquationSeparate", mandatory},
	{"BlendFunc", mandatory},
	{"BlendFuncSeparate", mandatory},
	{"BlitFramebuffer", optional},
	{"BufferData", mandatory},
	{"BufferSubData", mandatory},
	{"CheckFramebufferStatus", mandatory},
	{"Clear", mandatory},
	{"ClearColor", mandatory},
	{"ClientWaitSync", optional},
	{"ColorMask", mandatory},
	{"CompileShader", mandatory},
	{"CreateProgram", mandatory},
	{"CreateShader", mandatory},
	{"CullFace", mandatory},
	{"DeleteBuffers", mandatory},
	{"DeleteFramebuffers", mandatory},
	{"DeleteProgram", mandatory},
	{"DeleteQueries", optional},
	{"DeleteQueriesEXT", optional},
	{"DeleteRenderbuffers", mandatory},
	{"DeleteShader", mandatory},
	{"DeleteTextures", mandatory},
	{"DeleteVertexArrays", optional},
	{"DepthFunc", mandatory},
	{"DepthMask", mandatory},
	{"DetachShader", mandatory},
	{"Disable", mandatory},
	{"DisableVertexAttribArray", mandatory},
	{"DispatchCompute", optional},
	{"DrawArrays", mandatory},
	{"DrawArraysInstanced", optional},
	{"DrawElements", mandatory},
	{"DrawElementsInstanced", optional},
	{"EGLImageTargetTexture2DOES", optional},
	{"Enable", mandatory},
	{"EnableVertexAttribArray", mandatory},
	{"EndQuery", optional},
	{"EndQueryEXT", optional},
	{"FenceSync", optional},
	{"FramebufferRenderbuffer", mandatory},
	{"FramebufferTexture2D", mandatory},
	{"GenBuffers", mandatory},
	{"GenFramebuffers", mandatory},
	{"GenQueries", optional},
	{"GenQueriesEXT", optional},
	{"GenRenderbuffers", mandatory},
	{"GenTextures", mandatory},
	{"GenVertexArrays", optional},
	{"GenerateMipmap", mandatory},
	{"GetActiveAttrib", mandatory},
	{"GetActiveUniform", mandatory},
	{"GetActiveUniformBlockName", optional},
	{"GetActiveUniformBlockiv", optional},
	{"GetAttachedShaders", mandatory},
	{"GetAttribLocation", mandatory},
	{"GetBooleanv", mandatory},
	{"GetError", mandatory},
	{"GetIntegerv", mandatory},
	{"GetInternalformativ", optional},
	{"GetProgramInfoLog", mandatory},
	{"GetProgramInterfaceiv", optional},
	{"GetProgramResourceIndex", optional},
	{"GetProgramResourceLocation", optional},
	{"GetProgramResourceName", optional},
	{"GetProgramResourceiv", optional},
	{"GetProgramiv", mandatory},
	{"GetQueryObjectui64v", optional},
	{"GetQueryObjectui64vEXT", optional},
	{"GetRenderbufferParameteriv", mandatory},
	{"GetShaderInfoLog", mandatory},
	{"GetShaderSource", mandatory},
	{"GetShaderiv", mandatory},
	{"GetString", mandatory},
	{"GetStringi", optional},
	{"GetUniformBlockIndex", optional},
	{"GetUniformLocation", mandatory},
	{"GetUniformiv", mandatory},
	{"InvalidateFramebuffer", optional},
	{"LinkProgram", mandatory},
	{"MemoryBarrier", optional},
	{"PolygonMode", optional},
	{"ReadPixels", mandatory},
	{"ReleaseShaderCompiler", optional},
	{"RenderbufferStorage", mandatory},
	{"RenderbufferStorageMultisample", optional},
	{"ShaderBinary", optional},
	{"ShaderSource", mandatory},
	{"StencilFunc", mandatory},
	{"StencilFuncSeparate", mandatory},
	{"StencilMask", mandatory},
	{"StencilMaskSeparate", mandatory},
	{"StencilOp", mandatory},
	{"StencilOpSeparate", mandatory},
	{"TexImage2D", mandatory},
	{"TexImage3D", optional},
	{"TexParameteri", mandatory},
	{"TexStorage2D", optional},
	{"TexStorage3D", optional},
	{"TexSubImage2D", mandatory},
	{"TexSubImage3D", optional},
	{"Uniform1f", mandatory},
	{"Uniform1fv", mandatory},
	{"Uniform1i", mandatory},
	{"Uniform1iv", mandatory},
	{"Uniform2f", mandatory},
	{"Uniform2fv", mandatory},
	{"Uniform2i", mandatory},
	{"Uniform2iv", mandatory},
	{"Uniform3f", mandatory},
	{"Uniform3fv", mandatory},
	{"Uniform3i", mandatory},
	{"Uniform3iv", mandatory},
	{"Uniform4f", mandatory},
	{"Uniform4fv", mandatory},
	{"Uniform4i", mandatory},
	{"Uniform4iv", mandatory},
	{"UniformBlockBinding", optional},
	{"UniformMatrix2fv", mandatory},
	{"UniformMatrix3fv", mandatory},
	{"UniformMatrix4fv", mandatory},
	{"UseProgram", mandatory},
	{"VertexAttribDivisor", optional},
	{"VertexAttribPointer", mandatory},
	{"Viewport", mandatory},
	{"WaitSync", optional},
}

// FuncTable records which entry points the platform loader resolved.
type FuncTable map[string]bool

// Has reports whether every named entry point resolved.
func (t FuncTable) Has(names ...string) bool {
	for _, name := range names {
		if !t[name] {
			return false
		}
	}
	return true
}

// loadFunctions resolves every known entry point through getProcAddress.
func loadFunctions(getProcAddress func(name string) unsafe.Pointer) (FuncTable, error) {
	table := make(FuncTable, len(entryPoints))
	for _, ep := range entryPoints {
		ptr := getProcAddress("gl" + ep.name)
		if ptr == nil {
			if ep.mandatory {
				return nil, fmt.Errorf("%w: could not find core function: gl%s", core.ErrCapability, ep.name)
			}
			continue
		}
		table[ep.name] = true
	}
	return table, nil
}

// EntryPointNames lists every entry point the engine knows about.
func EntryPointNames() []string {
	names := make([]string, len(entryPoints))
	for i, ep := range entryPoints {
		names[i] = ep.name
	}
	return names
}
