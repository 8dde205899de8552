package opengl

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/core"
)

func extensions(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func allFuncs() FuncTable {
	t := make(FuncTable)
	for _, name := range EntryPointNames() {
		t[name] = true
	}
	return t
}

func TestFeatureEnabledByVersion(t *testing.T) {
	d := FeatureDescriptor{
		Name:       "fixture",
		Flag:       FeatureSync,
		Version:    320,
		Extensions: []string{"GL_ARB_sync"},
		Funcs:      []string{"FenceSync"},
	}

	ok, applicable := d.Enabled(Env{Major: 3, Minor: 2, Funcs: FuncTable{"FenceSync": true}})
	assert.True(t, applicable)
	assert.True(t, ok)

	ok, _ = d.Enabled(Env{Major: 3, Minor: 1, Funcs: FuncTable{"FenceSync": true}})
	assert.False(t, ok, "version below the floor and no extension")
}

func TestFeatureEnabledByExtensions(t *testing.T) {
	d := FeatureDescriptor{
		Name:       "fixture",
		Flag:       FeatureComputeShader,
		Version:    430,
		Extensions: []string{"GL_ARB_a", "GL_ARB_b"},
	}
	env := Env{Major: 3, Minor: 3, Funcs: FuncTable{}}

	env.HasExtension = extensions("GL_ARB_a", "GL_ARB_b")
	ok, _ := d.Enabled(env)
	assert.True(t, ok)

	env.HasExtension = extensions("GL_ARB_a")
	ok, _ = d.Enabled(env)
	assert.False(t, ok, "every extension is required")
}

func TestFeatureRequiresEntryPoints(t *testing.T) {
	d := FeatureDescriptor{
		Name:    "fixture",
		Flag:    FeatureDrawInstanced,
		Version: 310,
		Funcs:   []string{"DrawElementsInstanced", "DrawArraysInstanced"},
	}
	env := Env{Major: 4, Minor: 6, Funcs: FuncTable{"DrawElementsInstanced": true}}
	ok, applicable := d.Enabled(env)
	assert.True(t, applicable)
	assert.False(t, ok)

	env.Funcs["DrawArraysInstanced"] = true
	ok, _ = d.Enabled(env)
	assert.True(t, ok)
}

func TestFeatureNotApplicable(t *testing.T) {
	d := FeatureDescriptor{
		Name:         "fixture",
		Flag:         FeatureYUVTarget,
		ESExtensions: []string{"GL_EXT_YUV_target"},
	}
	ok, applicable := d.Enabled(Env{Major: 4, Minor: 6, Funcs: allFuncs()})
	assert.False(t, applicable)
	assert.False(t, ok)

	ok, applicable = d.Enabled(Env{ES: true, Major: 3, HasExtension: extensions("GL_EXT_YUV_target")})
	assert.True(t, applicable)
	assert.True(t, ok)
}

func TestFeatureESUsesESFields(t *testing.T) {
	d := FeatureDescriptor{
		Name:         "fixture",
		Flag:         FeatureVertexArrayObject,
		Version:      300,
		ESVersion:    300,
		Extensions:   []string{"GL_ARB_vertex_array_object"},
		ESExtensions: []string{"GL_OES_vertex_array_object"},
	}
	env := Env{ES: true, Major: 2, HasExtension: extensions("GL_ARB_vertex_array_object")}
	ok, _ := d.Enabled(env)
	assert.False(t, ok, "desktop extension must not satisfy GLES")

	env.HasExtension = extensions("GL_OES_vertex_array_object")
	ok, _ = d.Enabled(env)
	assert.True(t, ok)
}

// Every descriptor of the table follows the predicate against a grid of
// fabricated environments.
func TestProbeMatchesPredicate(t *testing.T) {
	envs := []Env{
		{Major: 3, Minor: 0, Funcs: allFuncs()},
		{Major: 3, Minor: 3, Funcs: allFuncs()},
		{Major: 4, Minor: 6, Funcs: allFuncs()},
		{Major: 4, Minor: 6, Funcs: FuncTable{}},
		{ES: true, Major: 2, Funcs: allFuncs(), HasExtension: extensions("GL_OES_vertex_array_object", "GL_OES_depth_texture")},
		{ES: true, Major: 3, Minor: 1, Funcs: allFuncs()},
	}
	for _, env := range envs {
		features := Probe(env)
		for _, d := range FeatureDescriptors {
			version, exts := d.Version, d.Extensions
			if env.ES {
				version, exts = d.ESVersion, d.ESExtensions
			}
			versionOK := version != 0 && env.Major*100+env.Minor*10 >= version
			extOK := len(exts) > 0 && env.HasExtension != nil
			for _, e := range exts {
				if env.HasExtension == nil || !env.HasExtension(e) {
					extOK = false
				}
			}
			want := (versionOK || extOK) && env.Funcs.Has(d.Funcs...)
			assert.Equal(t, want, features.Has(d.Flag), "%s on es=%v %d.%d", d.Name, env.ES, env.Major, env.Minor)
		}
	}
}

func TestProbeDesktop33(t *testing.T) {
	features := Probe(Env{Major: 3, Minor: 3, Funcs: allFuncs()})
	assert.True(t, features.Has(FeatureVertexArrayObject|FeatureFramebufferObject|FeatureInstancedArray))
	assert.False(t, features.Has(FeatureComputeShader))
	assert.False(t, features.Has(FeatureShaderStorageBufferObject))
}

func TestFeatureString(t *testing.T) {
	assert.Equal(t, "", Feature(0).String())
	assert.Equal(t, "vertex_array_object framebuffer_object",
		(FeatureFramebufferObject | FeatureVertexArrayObject).String())
}

func TestDescriptorsAreUnique(t *testing.T) {
	seen := Feature(0)
	for _, d := range FeatureDescriptors {
		assert.False(t, seen.Has(d.Flag), d.Name)
		seen |= d.Flag
	}
	assert.Len(t, FeatureDescriptors, 22)
}

func TestHasExtensionToken(t *testing.T) {
	all := "GL_OES_depth_texture GL_OES_depth_texture_cube_map  GL_EXT_YUV_target"
	assert.True(t, HasExtensionToken(all, "GL_OES_depth_texture"))
	assert.True(t, HasExtensionToken(all, "GL_EXT_YUV_target"))
	assert.False(t, HasExtensionToken(all, "GL_OES_depth"), "prefix is not a match")
	assert.False(t, HasExtensionToken(all, ""))
}

var stub byte

func TestLoadFunctions(t *testing.T) {
	resolveAll := func(string) unsafe.Pointer { return unsafe.Pointer(&stub) }
	table, err := loadFunctions(resolveAll)
	require.NoError(t, err)
	assert.True(t, table.Has("Clear", "BlitFramebuffer"))

	withoutOptional := func(name string) unsafe.Pointer {
		if name == "glBlitFramebuffer" {
			return nil
		}
		return unsafe.Pointer(&stub)
	}
	table, err = loadFunctions(withoutOptional)
	require.NoError(t, err)
	assert.False(t, table.Has("BlitFramebuffer"))
	assert.True(t, table.Has("Clear"))

	withoutMandatory := func(name string) unsafe.Pointer {
		if name == "glClear" {
			return nil
		}
		return unsafe.Pointer(&stub)
	}
	_, err = loadFunctions(withoutMandatory)
	assert.True(t, errors.Is(err, core.ErrCapability))
	assert.Contains(t, err.Error(), "glClear")
}

func TestChoosePlatform(t *testing.T) {
	cases := map[string]core.Platform{
		"linux":   core.PlatformGLX,
		"freebsd": core.PlatformGLX,
		"darwin":  core.PlatformNSGL,
		"ios":     core.PlatformEAGL,
		"android": core.PlatformEGL,
		"windows": core.PlatformWGL,
	}
	for goos, want := range cases {
		got, err := choosePlatform(core.PlatformAuto, goos)
		require.NoError(t, err, goos)
		assert.Equal(t, want, got, goos)
	}

	got, err := choosePlatform(core.PlatformEGL, "linux")
	require.NoError(t, err)
	assert.Equal(t, core.PlatformEGL, got)

	_, err = choosePlatform(core.PlatformAuto, "plan9")
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestChooseAPI(t *testing.T) {
	assert.Equal(t, core.APIOpenGLES, chooseAPI(core.APIAuto, "android"))
	assert.Equal(t, core.APIOpenGLES, chooseAPI(core.APIAuto, "ios"))
	assert.Equal(t, core.APIOpenGL, chooseAPI(core.APIAuto, "linux"))
	assert.Equal(t, core.APIOpenGLES, chooseAPI(core.APIOpenGLES, "linux"))
}

func TestFlipRows(t *testing.T) {
	src := []byte{1, 1, 2, 2, 3, 3}
	dst := make([]byte, len(src))
	FlipRows(dst, src, 2, 3)
	assert.Equal(t, []byte{3, 3, 2, 2, 1, 1}, dst)
}
