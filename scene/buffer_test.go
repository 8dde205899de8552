package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/core"
	"nodegl/internal/opengl"
	"nodegl/internal/opengl/gltest"
)

func TestBufferValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, pack(1, 2, 3), 0o644))

	tests := []struct {
		name   string
		class  string
		params map[string]any
		err    error
	}{
		{"data and filename", "BufferFloat", map[string]any{"data": pack(1), "filename": path}, core.ErrValidation},
		{"size mismatch", "BufferFloat", map[string]any{"data": pack(1, 2, 3), "count": 100}, core.ErrValidation},
		{"stride mismatch", "BufferVec2", map[string]any{"data": pack(1, 2, 3), "stride": 8}, core.ErrValidation},
		{"interval without count", "BufferFloat", map[string]any{"data": pack(1, 2), "update_interval": Rational{1, 1}}, core.ErrValidation},
		{"interval without data", "BufferFloat", map[string]any{"count": 2, "update_interval": Rational{1, 1}}, core.ErrValidation},
		{"partial chunk", "BufferFloat", map[string]any{"data": pack(1, 2, 3), "count": 2, "update_interval": Rational{1, 1}}, core.ErrValidation},
		{"empty dynamic data", "BufferFloat", map[string]any{"data": []byte{}, "count": 2, "update_interval": Rational{1, 1}}, core.ErrValidation},
		{"partial file chunk", "BufferFloat", map[string]any{"filename": path, "count": 2, "update_interval": Rational{1, 1}}, core.ErrValidation},
		{"negative count", "BufferFloat", map[string]any{"count": -1}, core.ErrValidation},
		{"missing file", "BufferFloat", map[string]any{"filename": filepath.Join(t.TempDir(), "nope")}, core.ErrIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newContext(t, gltest.Desktop())
			b := create(t, tt.class, tt.params)
			err := ctx.SetScene(b)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestBufferLayout(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())

	n := create(t, "BufferVec3", map[string]any{"data": pack(1, 2, 3, 4, 5, 6)})
	require.NoError(t, ctx.SetScene(n))
	b, _ := implOf[*buffer](n)
	assert.Equal(t, 2, b.count)
	assert.Equal(t, 12, b.stride)
	assert.Equal(t, 24, b.chunkSize)

	n = create(t, "BufferMat4", map[string]any{"count": 3})
	require.NoError(t, ctx.SetScene(n))
	b, _ = implOf[*buffer](n)
	assert.Equal(t, 3, b.count)
	assert.Len(t, b.chunk, 3*64, "zeroed storage")

	n = create(t, "BufferFloat", map[string]any{"data": make([]byte, 400), "count": 100, "stride": 4})
	require.NoError(t, ctx.SetScene(n))
	b, _ = implOf[*buffer](n)
	assert.Equal(t, 100, b.count)
	assert.Equal(t, 400, b.chunkSize)

	n = create(t, "BufferUShort", nil)
	require.NoError(t, ctx.SetScene(n))
	b, _ = implOf[*buffer](n)
	assert.Equal(t, 1, b.count)
}

func TestBufferStaticFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, pack(1, 2, 3, 4), 0o644))

	ctx, _ := newContext(t, gltest.Desktop())
	n := create(t, "BufferVec2", map[string]any{"filename": path})
	require.NoError(t, ctx.SetScene(n))
	b, _ := implOf[*buffer](n)
	assert.Equal(t, 2, b.count)
	assert.Equal(t, pack(1, 2, 3, 4), b.chunk)
	assert.Nil(t, b.file, "static files are closed after reading")
}

func TestBufferDynamicChunks(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	n := create(t, "BufferFloat", map[string]any{
		"data":            pack(0, 1, 2, 3, 4, 5),
		"count":           2,
		"update_interval": Rational{1, 1},
	})
	require.NoError(t, ctx.SetScene(n))
	b, _ := implOf[*buffer](n)

	for _, tt := range []struct {
		t    float64
		want []byte
	}{
		{0, pack(0, 1)},
		{1.5, pack(2, 3)},
		{2, pack(4, 5)},
		{10, pack(4, 5)},
		{-3, pack(0, 1)},
	} {
		require.NoError(t, ctx.Draw(tt.t))
		assert.Equal(t, tt.want, b.chunk, "t=%g", tt.t)
		assert.Equal(t, 2, b.count)
	}
}

func TestBufferDynamicFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.bin")
	require.NoError(t, os.WriteFile(path, pack(0, 1, 2, 3, 4, 5), 0o644))

	ctx, _ := newContext(t, gltest.Desktop())
	n := create(t, "BufferVec2", map[string]any{
		"filename":        path,
		"count":           1,
		"update_interval": Rational{1, 2},
	})
	require.NoError(t, ctx.SetScene(n))
	b, _ := implOf[*buffer](n)
	require.NotNil(t, b.file)
	assert.Equal(t, pack(0, 1), b.chunk)

	require.NoError(t, ctx.Draw(0.5))
	assert.Equal(t, pack(2, 3), b.chunk)

	require.NoError(t, os.Truncate(path, 8))
	err := ctx.Draw(1)
	assert.ErrorIs(t, err, core.ErrIO)
	assert.Equal(t, pack(2, 3), b.chunk, "the previous chunk is kept")

	require.NoError(t, ctx.SetScene(nil))
	assert.Nil(t, b.file)
}

func TestBufferTimeRemap(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	kf := func(at, v float64) *Node {
		return create(t, "AnimKeyFrameFloat", map[string]any{"time": at, "value": v})
	}
	anim := create(t, "AnimatedFloat", map[string]any{"keyframes": []*Node{kf(0, 1), kf(10, 21)}})
	n := create(t, "BufferFloat", map[string]any{
		"data":            pack(0, 1, 2, 3),
		"count":           1,
		"update_interval": Rational{1, 1},
		"time_anim":       anim,
	})
	require.NoError(t, ctx.SetScene(n))
	b, _ := implOf[*buffer](n)

	require.NoError(t, ctx.Draw(0))
	assert.Equal(t, pack(0), b.chunk)
	require.NoError(t, ctx.Draw(1), "remapped to 3, 2 seconds after the initial seek")
	assert.Equal(t, pack(2), b.chunk)
}

func TestBufferSharedAllocation(t *testing.T) {
	ctx, gl := newContext(t, gltest.Desktop())
	before := gl.LiveBuffers()

	vertices := create(t, "BufferVec3", map[string]any{"data": pack(1, -1, 0, 0, 1, 0, -1, -1, 0)})
	geom := create(t, "Geometry", map[string]any{"vertices": vertices})
	r1 := create(t, "Render", map[string]any{"geometry": geom})
	r2 := create(t, "Render", map[string]any{"geometry": geom})
	root := create(t, "Group", map[string]any{"children": []*Node{r1, r2}})
	require.NoError(t, ctx.SetScene(root))

	assert.Equal(t, before+2, gl.LiveBuffers(), "vertices and generated indices, once each")
	b, _ := implOf[*buffer](vertices)
	assert.Equal(t, 2, b.refs)

	require.NoError(t, ctx.SetScene(nil))
	assert.Equal(t, before, gl.LiveBuffers())
	assert.Nil(t, b.gpu)
}

func TestBufferDynamicUpload(t *testing.T) {
	ctx, gl := newContext(t, gltest.Desktop())
	vertices := create(t, "BufferVec3", map[string]any{
		"data":            pack(0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3),
		"count":           2,
		"update_interval": Rational{1, 1},
		"usage":           "dynamic_draw",
	})
	geom := create(t, "Geometry", map[string]any{"vertices": vertices, "topology": "lines"})
	require.NoError(t, ctx.SetScene(create(t, "Render", map[string]any{"geometry": geom})))
	b, _ := implOf[*buffer](vertices)
	assert.Equal(t, uint32(opengl.DYNAMIC_DRAW), b.gpu.Usage)

	require.NoError(t, ctx.Draw(0))
	assert.Zero(t, gl.Count("BufferSubData"))

	require.NoError(t, ctx.Draw(1))
	assert.Equal(t, 1, gl.Count("BufferSubData"))
	assert.Equal(t, pack(2, 2, 2, 3, 3, 3), gl.Buffers[b.gpu.ID])

	require.NoError(t, ctx.Draw(1.5))
	assert.Equal(t, 1, gl.Count("BufferSubData"), "same chunk, no upload")
}
