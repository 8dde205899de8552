package opengl

import (
	"strings"
)

// Feature is a bitset of optional GL capabilities confirmed on a context.
type Feature uint64

const (
	FeatureVertexArrayObject Feature = 1 << iota
	FeatureTexture3D
	FeatureTextureStorage
	FeatureComputeShader
	FeatureProgramInterfaceQuery
	FeatureShaderImageLoadStore
	FeatureShaderStorageBufferObject
	FeatureFramebufferObject
	FeatureInternalformatQuery
	FeaturePackedDepthStencil
	FeatureTimerQuery
	FeatureEXTDisjointTimerQuery
	FeatureDrawInstanced
	FeatureInstancedArray
	FeatureUniformBufferObject
	FeatureInvalidateSubdata
	FeatureOESEGLExternalImage
	FeatureDepthTexture
	FeatureRGB8RGBA8
	FeatureOESEGLImage
	FeatureSync
	FeatureYUVTarget
)

// Has reports whether every bit of want is set.
func (f Feature) Has(want Feature) bool {
	return f&want == want
}

func (f Feature) String() string {
	var names []string
	for _, d := range FeatureDescriptors {
		if f.Has(d.Flag) {
			names = append(names, d.Name)
		}
	}
	return strings.Join(names, " ")
}

// FeatureDescriptor describes how a feature is detected. Versions are
// encoded as major*100 + minor*10; zero means the API has no core version
// providing it.
type FeatureDescriptor struct {
	Name         string
	Flag         Feature
	Version      int
	ESVersion    int
	Extensions   []string
	ESExtensions []string
	Funcs        []string
}

// FeatureDescriptors is the capability table. It is never mutated.
var FeatureDescriptors = []FeatureDescriptor{
	{
		Name:         "vertex_array_object",
		Flag:         FeatureVertexArrayObject,
		Version:      300,
		ESVersion:    300,
		Extensions:   []string{"GL_ARB_vertex_array_object"},
		ESExtensions: []string{"GL_OES_vertex_array_object"},
		Funcs:        []string{"GenVertexArrays", "BindVertexArray", "DeleteVertexArrays"},
	}, {
		Name:      "texture3d",
		Flag:      FeatureTexture3D,
		Version:   200,
		ESVersion: 300,
		Funcs:     []string{"TexImage3D", "TexSubImage3D"},
	}, {
		Name:      "texture_storage",
		Flag:      FeatureTextureStorage,
		Version:   420,
		ESVersion: 310,
		Funcs:     []string{"TexStorage2D", "TexStorage3D"},
	}, {
		Name:       "compute_shader",
		Flag:       FeatureComputeShader,
		Version:    430,
		ESVersion:  310,
		Extensions: []string{"GL_ARB_compute_shader"},
		Funcs:      []string{"DispatchCompute", "MemoryBarrier"},
	}, {
		Name:       "program_interface_query",
		Flag:       FeatureProgramInterfaceQuery,
		Version:    430,
		ESVersion:  310,
		Extensions: []string{"GL_ARB_program_interface_query"},
		Funcs: []string{
			"GetProgramResourceIndex",
			"GetProgramResourceiv",
			"GetProgramResourceLocation",
			"GetProgramInterfaceiv",
			"GetProgramResourceName",
		},
	}, {
		Name:       "shader_image_load_store",
		Flag:       FeatureShaderImageLoadStore,
		Version:    420,
		ESVersion:  310,
		Extensions: []string{"GL_ARB_shader_image_load_store"},
		Funcs:      []string{"BindImageTexture"},
	}, {
		Name:       "shader_storage_buffer_object",
		Flag:       FeatureShaderStorageBufferObject,
		Version:    430,
		ESVersion:  310,
		Extensions: []string{"GL_ARB_shader_storage_buffer_object"},
	}, {
		Name:       "framebuffer_object",
		Flag:       FeatureFramebufferObject,
		Version:    300,
		ESVersion:  300,
		Extensions: []string{"ARB_framebuffer_object"},
		Funcs:      []string{"RenderbufferStorageMultisample", "BlitFramebuffer"},
	}, {
		Name:       "internalformat_query",
		Flag:       FeatureInternalformatQuery,
		Version:    420,
		ESVersion:  300,
		Extensions: []string{"ARB_internalformat_query"},
		Funcs:      []string{"GetInternalformativ"},
	}, {
		Name:         "packed_depth_stencil",
		Flag:         FeaturePackedDepthStencil,
		Version:      300,
		ESVersion:    300,
		ESExtensions: []string{"GL_OES_packed_depth_stencil"},
	}, {
		Name:       "timer_query",
		Flag:       FeatureTimerQuery,
		Version:    330,
		Extensions: []string{"ARB_timer_query"},
	}, {
		Name:         "ext_disjoint_timer_query",
		Flag:         FeatureEXTDisjointTimerQuery,
		ESExtensions: []string{"GL_EXT_disjoint_timer_query"},
		Funcs: []string{
			"BeginQueryEXT",
			"EndQueryEXT",
			"GenQueriesEXT",
			"DeleteQueriesEXT",
			"GetQueryObjectui64vEXT",
		},
	}, {
		Name:      "draw_instanced",
		Flag:      FeatureDrawInstanced,
		Version:   310,
		ESVersion: 300,
		Funcs:     []string{"DrawElementsInstanced", "DrawArraysInstanced"},
	}, {
		Name:      "instanced_array",
		Flag:      FeatureInstancedArray,
		Version:   330,
		ESVersion: 300,
		Funcs:     []string{"VertexAttribDivisor"},
	}, {
		Name:       "uniform_buffer_object",
		Flag:       FeatureUniformBufferObject,
		Version:    310,
		ESVersion:  300,
		Extensions: []string{"GL_ARB_uniform_buffer_object"},
		Funcs: []string{
			"GetUniformBlockIndex",
			"UniformBlockBinding",
			"GetActiveUniformBlockName",
			"GetActiveUniformBlockiv",
		},
	}, {
		Name:       "invalidate_subdata",
		Flag:       FeatureInvalidateSubdata,
		Version:    430,
		ESVersion:  300,
		Extensions: []string{"GL_ARB_invalidate_subdata"},
		Funcs:      []string{"InvalidateFramebuffer"},
	}, {
		Name:         "oes_egl_external_image",
		Flag:         FeatureOESEGLExternalImage,
		ESExtensions: []string{"GL_OES_EGL_image_external", "GL_OES_EGL_image_external_essl3"},
		Funcs:        []string{"EGLImageTargetTexture2DOES"},
	}, {
		Name:         "depth_texture",
		Flag:         FeatureDepthTexture,
		Version:      300,
		ESVersion:    300,
		ESExtensions: []string{"GL_OES_depth_texture"},
	}, {
		Name:         "rgb8_rgba8",
		Flag:         FeatureRGB8RGBA8,
		Version:      300,
		ESVersion:    300,
		ESExtensions: []string{"GL_OES_rgb8_rgba8"},
	}, {
		Name:         "oes_egl_image",
		Flag:         FeatureOESEGLImage,
		Extensions:   []string{"GL_OES_EGL_image"},
		ESExtensions: []string{"GL_OES_EGL_image"},
		Funcs:        []string{"EGLImageTargetTexture2DOES"},
	}, {
		Name:       "sync",
		Flag:       FeatureSync,
		Version:    320,
		ESVersion:  300,
		Extensions: []string{"ARB_sync"},
		Funcs:      []string{"FenceSync", "ClientWaitSync", "WaitSync"},
	}, {
		Name:         "yuv_target",
		Flag:         FeatureYUVTarget,
		ESExtensions: []string{"GL_EXT_YUV_target"},
	},
}

// Env is the environment a feature predicate is evaluated against.
type Env struct {
	ES           bool
	Major, Minor int
	// HasExtension reports whether the driver advertises an extension.
	HasExtension func(name string) bool
	Funcs        FuncTable
}

func (e Env) version() int {
	return e.Major*100 + e.Minor*10
}

// Enabled evaluates the descriptor's predicate: (version met OR every
// extension present) AND every entry point resolved. The second result is
// false when the descriptor does not apply to the API at all.
func (d FeatureDescriptor) Enabled(env Env) (enabled, applicable bool) {
	version, extensions := d.Version, d.Extensions
	if env.ES {
		version, extensions = d.ESVersion, d.ESExtensions
	}
	if version == 0 && len(extensions) == 0 {
		return false, false
	}

	if version == 0 || env.version() < version {
		if len(extensions) == 0 || env.HasExtension == nil {
			return false, true
		}
		for _, ext := range extensions {
			if !env.HasExtension(ext) {
				return false, true
			}
		}
	}
	return env.Funcs.Has(d.Funcs...), true
}

// Probe returns the union of every enabled feature.
func Probe(env Env) Feature {
	var features Feature
	for _, d := range FeatureDescriptors {
		if ok, _ := d.Enabled(env); ok {
			features |= d.Flag
		}
	}
	return features
}

// HasExtensionToken reports whether name appears as a whole token in a
// space separated extension string.
func HasExtensionToken(extensions, name string) bool {
	if name == "" {
		return false
	}
	for _, tok := range strings.Fields(extensions) {
		if tok == name {
			return true
		}
	}
	return false
}
