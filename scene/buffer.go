package scene

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"nodegl/core"
	"nodegl/internal/opengl"
)

// bufferFormat is the element layout of a buffer class.
type bufferFormat struct {
	comps    int
	compSize int
	glType   uint32
}

func (f bufferFormat) size() int { return f.comps * f.compSize }

var bufferFormats = map[string]bufferFormat{
	"BufferByte":   {1, 1, opengl.BYTE},
	"BufferBVec2":  {2, 1, opengl.BYTE},
	"BufferBVec3":  {3, 1, opengl.BYTE},
	"BufferBVec4":  {4, 1, opengl.BYTE},
	"BufferInt":    {1, 4, opengl.INT},
	"BufferIVec2":  {2, 4, opengl.INT},
	"BufferIVec3":  {3, 4, opengl.INT},
	"BufferIVec4":  {4, 4, opengl.INT},
	"BufferShort":  {1, 2, opengl.SHORT},
	"BufferSVec2":  {2, 2, opengl.SHORT},
	"BufferSVec3":  {3, 2, opengl.SHORT},
	"BufferSVec4":  {4, 2, opengl.SHORT},
	"BufferUByte":  {1, 1, opengl.UNSIGNED_BYTE},
	"BufferUBVec2": {2, 1, opengl.UNSIGNED_BYTE},
	"BufferUBVec3": {3, 1, opengl.UNSIGNED_BYTE},
	"BufferUBVec4": {4, 1, opengl.UNSIGNED_BYTE},
	"BufferUInt":   {1, 4, opengl.UNSIGNED_INT},
	"BufferUIVec2": {2, 4, opengl.UNSIGNED_INT},
	"BufferUIVec3": {3, 4, opengl.UNSIGNED_INT},
	"BufferUIVec4": {4, 4, opengl.UNSIGNED_INT},
	"BufferUShort": {1, 2, opengl.UNSIGNED_SHORT},
	"BufferUSVec2": {2, 2, opengl.UNSIGNED_SHORT},
	"BufferUSVec3": {3, 2, opengl.UNSIGNED_SHORT},
	"BufferUSVec4": {4, 2, opengl.UNSIGNED_SHORT},
	"BufferFloat":  {1, 4, opengl.FLOAT},
	"BufferVec2":   {2, 4, opengl.FLOAT},
	"BufferVec3":   {3, 4, opengl.FLOAT},
	"BufferVec4":   {4, 4, opengl.FLOAT},
	"BufferMat4":   {16, 4, opengl.FLOAT},
}

var bufferUsages = map[string]uint32{
	"stream_draw":  opengl.STREAM_DRAW,
	"stream_read":  opengl.STREAM_READ,
	"stream_copy":  opengl.STREAM_COPY,
	"static_draw":  opengl.STATIC_DRAW,
	"static_read":  opengl.STATIC_READ,
	"static_copy":  opengl.STATIC_COPY,
	"dynamic_draw": opengl.DYNAMIC_DRAW,
	"dynamic_read": opengl.DYNAMIC_READ,
	"dynamic_copy": opengl.DYNAMIC_COPY,
}

var bufferParams = []Param{
	{Name: "count", Type: ParamInt, Default: 0, Desc: "number of elements per chunk"},
	{Name: "data", Type: ParamData, Desc: "raw buffer content"},
	{Name: "filename", Type: ParamString, Desc: "file holding the raw buffer content"},
	{Name: "stride", Type: ParamInt, Default: 0, Desc: "distance in bytes between two elements"},
	{Name: "usage", Type: ParamSelect, Default: "static_draw", Choices: []string{
		"stream_draw", "stream_read", "stream_copy",
		"static_draw", "static_read", "static_copy",
		"dynamic_draw", "dynamic_read", "dynamic_copy",
	}, Desc: "usage hint passed to the GPU"},
	{Name: "update_interval", Type: ParamRational, Default: Rational{0, 1},
		Desc: "seconds between two chunks, zero for a static buffer"},
	{Name: "time_anim", Type: ParamNode, Classes: []string{"AnimatedFloat"},
		Desc: "remaps the time used to select the chunk"},
}

func init() {
	for name, format := range bufferFormats {
		register(&Class{
			Name:   name,
			Params: bufferParams,
			new:    func() any { return &buffer{format: format} },
		})
	}
}

// Buffer class groups accepted by other nodes.
var (
	attributeClasses   = []string{"BufferFloat", "BufferVec2", "BufferVec3", "BufferVec4", "BufferMat4"}
	uvBufferClasses    = []string{"BufferFloat", "BufferVec2", "BufferVec3"}
	indexBufferClasses = []string{"BufferUShort", "BufferUInt"}
)

func bufferClasses() []string {
	return slices.Sorted(maps.Keys(bufferFormats))
}

// buffer holds the CPU side of a buffer node and, while referenced by a
// pipeline, its GPU copy.
//
// A dynamic buffer splits its data in chunks of count elements and exposes
// the chunk selected by the current time. File-backed dynamic buffers keep
// the file open and read one chunk at a time.
type buffer struct {
	format bufferFormat

	count     int
	stride    int
	dataSize  int
	chunkSize int
	data      []byte
	chunk     []byte
	offset    int
	dynamic   bool
	interval  Rational
	usage     uint32
	filename  string
	file      *os.File

	gpu      *opengl.Buffer
	refs     int
	uploaded int
}

func (b *buffer) init(n *Node) error {
	b.reset()

	filename := n.Str("filename")
	hasData, hasFile := n.IsSet("data"), filename != ""
	if hasData && hasFile {
		return fmt.Errorf("%w: data and filename cannot be set at the same time", core.ErrValidation)
	}

	b.interval = n.Rational("update_interval")
	b.dynamic = b.interval.Num != 0
	count := n.Int("count")
	if b.dynamic && count == 0 {
		return fmt.Errorf("%w: update_interval requires count to be set", core.ErrValidation)
	}
	if b.dynamic && !hasData && !hasFile {
		return fmt.Errorf("%w: update_interval requires data or filename to be set", core.ErrValidation)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", core.ErrValidation, count)
	}

	b.stride = n.Int("stride")
	if b.stride == 0 {
		b.stride = b.format.size()
	}
	if b.stride < 0 {
		return fmt.Errorf("%w: negative stride %d", core.ErrValidation, b.stride)
	}
	b.usage = bufferUsages[n.Str("usage")]

	switch {
	case hasData:
		return b.initFromData(n.Data("data"), count)
	case hasFile:
		return b.initFromFile(filename, count)
	default:
		return b.initFromCount(count)
	}
}

// layout sets count and chunk size from the total data size.
func (b *buffer) layout(count int) error {
	if b.dynamic {
		b.count = count
		b.chunkSize = count * b.stride
		if b.chunkSize == 0 || b.dataSize%b.chunkSize != 0 {
			return fmt.Errorf("%w: data size (%d) is not a multiple of chunk size (%d)",
				core.ErrValidation, b.dataSize, b.chunkSize)
		}
		if b.dataSize < b.chunkSize {
			return fmt.Errorf("%w: data size (%d) is smaller than chunk size (%d)",
				core.ErrValidation, b.dataSize, b.chunkSize)
		}
		return nil
	}
	if count == 0 {
		count = b.dataSize / b.stride
	}
	if b.dataSize != count*b.stride {
		return fmt.Errorf("%w: element count (%d) and data stride (%d) do not match data size (%d)",
			core.ErrValidation, count, b.stride, b.dataSize)
	}
	b.count = count
	b.chunkSize = b.dataSize
	return nil
}

func (b *buffer) initFromData(data []byte, count int) error {
	b.dataSize = len(data)
	if err := b.layout(count); err != nil {
		return err
	}
	b.data = data
	b.chunk = data[:b.chunkSize]
	return nil
}

func (b *buffer) initFromFile(filename string, count int) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	b.dataSize = int(fi.Size())
	if err := b.layout(count); err != nil {
		f.Close()
		return err
	}

	b.chunk = make([]byte, b.chunkSize)
	if _, err := io.ReadFull(f, b.chunk); err != nil {
		f.Close()
		return fmt.Errorf("%w: could not read %s: %v", core.ErrIO, filename, err)
	}
	b.filename = filename
	if b.dynamic {
		b.file = f
	} else {
		f.Close()
	}
	return nil
}

func (b *buffer) initFromCount(count int) error {
	if count == 0 {
		count = 1
	}
	b.count = count
	b.dataSize = count * b.stride
	b.chunkSize = b.dataSize
	b.data = make([]byte, b.dataSize)
	b.chunk = b.data
	return nil
}

// update selects the chunk for time t, remapped through time_anim when
// set. A failed read keeps the previous chunk.
func (b *buffer) update(n *Node, t float64) error {
	if !b.dynamic {
		return nil
	}

	rt := t
	if anim := n.Child("time_anim"); anim != nil {
		if a, ok := implOf[*animated](anim); ok && len(a.frames) > 0 {
			kf0 := a.frames[0]
			initialSeek := kf0.scalar
			if len(a.frames) == 1 {
				rt = t - kf0.time
			} else {
				if err := anim.Update(t); err != nil {
					return err
				}
				rt = a.scalar
			}
			if rt < initialSeek {
				return fmt.Errorf("%w: invalid remapped time %g (initial seek %g)", core.ErrValidation, rt, initialSeek)
			}
			rt -= initialSeek
		}
	}

	i := int(rt*float64(b.interval.Den)/float64(b.interval.Num) + 1e-6)
	offset := i * b.chunkSize
	if end := b.dataSize - b.chunkSize; offset > end {
		offset = end
	}
	if offset < 0 {
		offset = 0
	}
	if offset == b.offset {
		return nil
	}

	if b.file != nil {
		chunk := make([]byte, b.chunkSize)
		if _, err := b.file.Seek(int64(offset), io.SeekStart); err != nil {
			return fmt.Errorf("%w: could not seek %s: %v", core.ErrIO, b.filename, err)
		}
		if _, err := io.ReadFull(b.file, chunk); err != nil {
			return fmt.Errorf("%w: could not read %s: %v", core.ErrIO, b.filename, err)
		}
		b.chunk = chunk
	} else {
		b.chunk = b.data[offset : offset+b.chunkSize]
	}
	b.offset = offset
	return nil
}

func (b *buffer) uninit(n *Node) {
	if b.gpu != nil {
		core.Logger().Warn("buffer released while still in use", "node", n.label, "refs", b.refs)
		b.gpu.Release()
	}
	b.reset()
}

func (b *buffer) reset() {
	if b.file != nil {
		if err := b.file.Close(); err != nil {
			core.Logger().Error("could not close buffer file", "file", b.filename, "error", err)
		}
	}
	*b = buffer{format: b.format}
}

// acquire takes a GPU usage reference on a buffer node, allocating the GPU
// buffer on the first one.
func acquire(n *Node) error {
	b, ok := implOf[*buffer](n)
	if !ok {
		return fmt.Errorf("%w: %s is not a buffer", core.ErrValidation, n.label)
	}
	if b.refs == 0 {
		gl, err := glOf(n)
		if err != nil {
			return err
		}
		b.gpu = opengl.NewBuffer(gl.GL(), b.chunkSize, b.chunk, b.usage)
		b.uploaded = b.offset
	}
	b.refs++
	return nil
}

// release drops a GPU usage reference; the last one frees the GPU buffer.
func release(n *Node) {
	b, ok := implOf[*buffer](n)
	if !ok || b.refs == 0 {
		return
	}
	b.refs--
	if b.refs == 0 {
		b.gpu.Release()
		b.gpu = nil
	}
}

// upload pushes the current chunk of a dynamic buffer to the GPU unless
// that chunk is already there.
func upload(n *Node) {
	b, ok := implOf[*buffer](n)
	if !ok || b.gpu == nil || !b.dynamic || b.uploaded == b.offset {
		return
	}
	b.gpu.Upload(b.chunk)
	b.uploaded = b.offset
}

func glOf(n *Node) (*opengl.Context, error) {
	if n.ctx == nil {
		return nil, fmt.Errorf("%w: %s is not attached", core.ErrValidation, n.label)
	}
	gl := n.ctx.GL()
	if gl == nil {
		return nil, fmt.Errorf("%w: %s requires an OpenGL backend", core.ErrUnsupported, n.label)
	}
	return gl, nil
}
