package opengl

// Buffer is a GL buffer object.
type Buffer struct {
	ID    uint32
	Size  int
	Usage uint32

	gl Functions
}

// NewBuffer allocates size bytes, initialized from data when non-nil.
func NewBuffer(f Functions, size int, data []byte, usage uint32) *Buffer {
	b := &Buffer{ID: f.GenBuffer(), Size: size, Usage: usage, gl: f}
	f.BindBuffer(ARRAY_BUFFER, b.ID)
	f.BufferData(ARRAY_BUFFER, size, data, usage)
	f.BindBuffer(ARRAY_BUFFER, 0)
	return b
}

// Upload writes data at the start of the buffer, growing it if needed.
func (b *Buffer) Upload(data []byte) {
	b.gl.BindBuffer(ARRAY_BUFFER, b.ID)
	if len(data) > b.Size {
		b.Size = len(data)
		b.gl.BufferData(ARRAY_BUFFER, b.Size, data, b.Usage)
	} else {
		b.gl.BufferSubData(ARRAY_BUFFER, 0, data)
	}
	b.gl.BindBuffer(ARRAY_BUFFER, 0)
}

// Release frees the buffer. It is safe on a nil or released buffer.
func (b *Buffer) Release() {
	if b == nil || b.ID == 0 {
		return
	}
	b.gl.DeleteBuffer(b.ID)
	b.ID = 0
}
