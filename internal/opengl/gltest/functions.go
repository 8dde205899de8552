package gltest

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"nodegl/internal/opengl"
)

// DrawCall is a recorded draw.
type DrawCall struct {
	Mode      uint32
	First     int
	Count     int
	Type      uint32
	Instances int
	Program   uint32
	// Indexed is false for DrawArrays.
	Indexed bool
}

// AttribPointer is a recorded VertexAttribPointer call.
type AttribPointer struct {
	Index  uint32
	Size   int
	Type   uint32
	Stride int
	Offset int
	Buffer uint32
}

// Var is an introspected shader variable.
type Var struct {
	Name     string
	Type     uint32
	Size     int
	Location int
}

// Program is a fake program object.
type Program struct {
	Shaders    []uint32
	Linked     bool
	Attributes []Var
	Uniforms   []Var
	UBOs       []string
	SSBOs      []string
	Bindings   map[string]int
}

type shader struct {
	typ      uint32
	src      string
	compiled bool
}

// Functions is an in-memory opengl.Functions. All methods are safe for
// concurrent use.
type Functions struct {
	env *Env

	mu    sync.Mutex
	calls []string
	next  uint32
	err   uint32

	Buffers      map[uint32][]byte
	Textures     map[uint32]*TextureObject
	Framebuffers map[uint32]uint32
	VertexArrays map[uint32]bool
	Programs     map[uint32]*Program
	shaders      map[uint32]*shader

	bound        map[uint32]uint32
	program      uint32
	vao          uint32
	Uniforms     map[int][]float32
	Pointers     map[uint32]AttribPointer
	Divisors     map[uint32]uint32
	Enabled      map[uint32]bool
	Draws        []DrawCall
	ViewportRect [4]int
	ClearValue   [4]float32
}

// TextureObject is a fake texture with RGBA8 storage.
type TextureObject struct {
	Width, Height int
	Format        uint32
	Data          []byte
	Params        map[uint32]int
}

func NewFunctions(env *Env) *Functions {
	return &Functions{
		env:          env,
		Buffers:      make(map[uint32][]byte),
		Textures:     make(map[uint32]*TextureObject),
		Framebuffers: make(map[uint32]uint32),
		VertexArrays: make(map[uint32]bool),
		Programs:     make(map[uint32]*Program),
		shaders:      make(map[uint32]*shader),
		bound:        make(map[uint32]uint32),
		Uniforms:     make(map[int][]float32),
		Pointers:     make(map[uint32]AttribPointer),
		Divisors:     make(map[uint32]uint32),
		Enabled:      make(map[uint32]bool),
	}
}

type plainFunctions struct{ opengl.Functions }

func (f *Functions) withoutProgramInterface() opengl.Functions {
	return plainFunctions{f}
}

func (f *Functions) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *Functions) gen() uint32 {
	f.next++
	return f.next
}

// Count returns how many times the named method was called.
func (f *Functions) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Calls returns the recorded method names in call order.
func (f *Functions) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Reset forgets recorded calls and draws.
func (f *Functions) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.Draws = nil
}

// SetError makes the next GetError return code.
func (f *Functions) SetError(code uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = code
}

// LiveBuffers returns the number of buffers not yet deleted.
func (f *Functions) LiveBuffers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Buffers)
}

// DrawCalls returns the recorded draws.
func (f *Functions) DrawCalls() []DrawCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DrawCall(nil), f.Draws...)
}

// Uniform returns the last value written at location.
func (f *Functions) Uniform(location int) []float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Uniforms[location]
}

// ── Buffers ───────────────────────────────────────────────────────────────────

func (f *Functions) GenBuffer() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenBuffer")
	id := f.gen()
	f.Buffers[id] = nil
	return id
}

func (f *Functions) DeleteBuffer(buffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteBuffer")
	delete(f.Buffers, buffer)
}

func (f *Functions) BindBuffer(target, buffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindBuffer")
	f.bound[target] = buffer
}

func (f *Functions) BindBufferBase(target, index, buffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindBufferBase")
}

func (f *Functions) BufferData(target uint32, size int, data []byte, usage uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BufferData")
	id := f.bound[target]
	if id == 0 {
		f.err = opengl.INVALID_OPERATION
		return
	}
	buf := make([]byte, size)
	copy(buf, data)
	f.Buffers[id] = buf
}

func (f *Functions) BufferSubData(target uint32, offset int, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BufferSubData")
	buf := f.Buffers[f.bound[target]]
	if offset+len(data) > len(buf) {
		f.err = opengl.INVALID_VALUE
		return
	}
	copy(buf[offset:], data)
}

// ── Textures and framebuffers ─────────────────────────────────────────────────

func (f *Functions) GenTexture() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenTexture")
	id := f.gen()
	f.Textures[id] = &TextureObject{Params: make(map[uint32]int)}
	return id
}

func (f *Functions) DeleteTexture(texture uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTexture")
	delete(f.Textures, texture)
}

func (f *Functions) ActiveTexture(texture uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ActiveTexture")
}

func (f *Functions) BindTexture(target, texture uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindTexture")
	f.bound[target] = texture
}

func (f *Functions) TexParameteri(target, pname uint32, param int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TexParameteri")
	if t := f.Textures[f.bound[target]]; t != nil {
		t.Params[pname] = param
	}
}

func (f *Functions) PixelStorei(pname uint32, param int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PixelStorei")
}

func (f *Functions) TexImage2D(target uint32, level int, internalFormat uint32, width, height int, format, typ uint32, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TexImage2D")
	t := f.Textures[f.bound[target]]
	if t == nil {
		f.err = opengl.INVALID_OPERATION
		return
	}
	t.Width, t.Height, t.Format = width, height, format
	t.Data = make([]byte, width*height*4)
	copy(t.Data, data)
}

func (f *Functions) TexSubImage2D(target uint32, level, x, y, width, height int, format, typ uint32, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TexSubImage2D")
	if t := f.Textures[f.bound[target]]; t != nil {
		copy(t.Data, data)
	}
}

func (f *Functions) GenFramebuffer() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenFramebuffer")
	id := f.gen()
	f.Framebuffers[id] = 0
	return id
}

func (f *Functions) DeleteFramebuffer(framebuffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteFramebuffer")
	delete(f.Framebuffers, framebuffer)
}

func (f *Functions) BindFramebuffer(target, framebuffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindFramebuffer")
	switch target {
	case opengl.FRAMEBUFFER:
		f.bound[opengl.READ_FRAMEBUFFER] = framebuffer
		f.bound[opengl.DRAW_FRAMEBUFFER] = framebuffer
	default:
		f.bound[target] = framebuffer
	}
}

func (f *Functions) FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FramebufferTexture2D")
	if target == opengl.FRAMEBUFFER {
		target = opengl.DRAW_FRAMEBUFFER
	}
	f.Framebuffers[f.bound[target]] = texture
}

func (f *Functions) CheckFramebufferStatus(target uint32) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CheckFramebufferStatus")
	if target == opengl.FRAMEBUFFER {
		target = opengl.DRAW_FRAMEBUFFER
	}
	if f.Framebuffers[f.bound[target]] == 0 {
		return 0
	}
	return opengl.FRAMEBUFFER_COMPLETE
}

func (f *Functions) GenRenderbuffer() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenRenderbuffer")
	return f.gen()
}

func (f *Functions) DeleteRenderbuffer(renderbuffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteRenderbuffer")
}

func (f *Functions) BindRenderbuffer(target, renderbuffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindRenderbuffer")
}

func (f *Functions) RenderbufferStorage(target, internalFormat uint32, width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RenderbufferStorage")
}

func (f *Functions) FramebufferRenderbuffer(target, attachment, renderbufferTarget, renderbuffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FramebufferRenderbuffer")
}

// readRows returns the framebuffer content, bottom row first.
func (f *Functions) readRows(fb uint32, width, height int) []byte {
	out := make([]byte, width*height*4)
	if fb != 0 {
		if t := f.Textures[f.Framebuffers[fb]]; t != nil {
			copy(out, t.Data)
		}
		return out
	}
	if f.env.Pixel == nil {
		return out
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := f.env.Pixel(x, y)
			copy(out[(y*width+x)*4:], p[:])
		}
	}
	return out
}

func (f *Functions) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BlitFramebuffer")

	w, h := srcX1-srcX0, srcY1-srcY0
	src := f.readRows(f.bound[opengl.READ_FRAMEBUFFER], w, h)
	dst := f.Textures[f.Framebuffers[f.bound[opengl.DRAW_FRAMEBUFFER]]]
	if dst == nil {
		f.err = opengl.INVALID_FRAMEBUFFER_OPERATION
		return
	}
	linesize := w * 4
	flip := dstY0 > dstY1
	for row := 0; row < h; row++ {
		d := row
		if flip {
			d = h - 1 - row
		}
		copy(dst.Data[d*linesize:(d+1)*linesize], src[row*linesize:(row+1)*linesize])
	}
}

func (f *Functions) ReadPixels(x, y, width, height int, format, typ uint32, dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReadPixels")
	copy(dst, f.readRows(f.bound[opengl.READ_FRAMEBUFFER], width, height))
}

// ── State ─────────────────────────────────────────────────────────────────────

func (f *Functions) BlendFunc(sfactor, dfactor uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BlendFunc")
}

func (f *Functions) Clear(mask uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Clear")
}

func (f *Functions) ClearColor(r, g, b, a float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearColor")
	f.ClearValue = [4]float32{r, g, b, a}
}

func (f *Functions) Viewport(x, y, width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Viewport")
	f.ViewportRect = [4]int{x, y, width, height}
}

func (f *Functions) Enable(capability uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Enable")
	f.Enabled[capability] = true
}

func (f *Functions) Disable(capability uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Disable")
	f.Enabled[capability] = false
}

func (f *Functions) GetError() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.err
	f.err = opengl.NO_ERROR
	return err
}

func (f *Functions) GetInteger(pname uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch pname {
	case opengl.MAJOR_VERSION:
		return f.env.Major
	case opengl.MINOR_VERSION:
		return f.env.Minor
	case opengl.NUM_EXTENSIONS:
		return len(f.env.Extensions)
	case opengl.MAX_TEXTURE_IMAGE_UNITS:
		return 16
	}
	return 0
}

func (f *Functions) GetIntegeri(pname, index uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetIntegeri")
	if pname == opengl.MAX_COMPUTE_WORK_GROUP_COUNT {
		return 65535
	}
	return 0
}

func (f *Functions) GetString(name uint32) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch name {
	case opengl.VERSION:
		if f.env.Version != "" {
			return f.env.Version
		}
		if f.env.ES {
			return fmt.Sprintf("OpenGL ES %d.%d fake", f.env.Major, f.env.Minor)
		}
		return fmt.Sprintf("%d.%d fake", f.env.Major, f.env.Minor)
	case opengl.EXTENSIONS:
		return strings.Join(f.env.Extensions, " ")
	}
	return ""
}

func (f *Functions) GetStringi(name, index uint32) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == opengl.EXTENSIONS && int(index) < len(f.env.Extensions) {
		return f.env.Extensions[index]
	}
	return ""
}

// ── Vertex arrays and draws ───────────────────────────────────────────────────

func (f *Functions) GenVertexArray() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenVertexArray")
	id := f.gen()
	f.VertexArrays[id] = true
	return id
}

func (f *Functions) DeleteVertexArray(array uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteVertexArray")
	delete(f.VertexArrays, array)
}

func (f *Functions) BindVertexArray(array uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindVertexArray")
	f.vao = array
}

func (f *Functions) EnableVertexAttribArray(index uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("EnableVertexAttribArray")
}

func (f *Functions) DisableVertexAttribArray(index uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DisableVertexAttribArray")
}

func (f *Functions) VertexAttribPointer(index uint32, size int, typ uint32, normalized bool, stride, offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("VertexAttribPointer")
	f.Pointers[index] = AttribPointer{
		Index:  index,
		Size:   size,
		Type:   typ,
		Stride: stride,
		Offset: offset,
		Buffer: f.bound[opengl.ARRAY_BUFFER],
	}
}

func (f *Functions) VertexAttribDivisor(index, divisor uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("VertexAttribDivisor")
	f.Divisors[index] = divisor
}

func (f *Functions) DrawArrays(mode uint32, first, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DrawArrays")
	f.Draws = append(f.Draws, DrawCall{Mode: mode, First: first, Count: count, Program: f.program})
}

func (f *Functions) DrawElements(mode uint32, count int, typ uint32, offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DrawElements")
	f.Draws = append(f.Draws, DrawCall{Mode: mode, Count: count, Type: typ, Program: f.program, Indexed: true})
}

func (f *Functions) DrawElementsInstanced(mode uint32, count int, typ uint32, offset, instances int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DrawElementsInstanced")
	f.Draws = append(f.Draws, DrawCall{
		Mode:      mode,
		Count:     count,
		Type:      typ,
		Instances: instances,
		Program:   f.program,
		Indexed:   true,
	})
}

// ── Shaders and programs ──────────────────────────────────────────────────────

var (
	attribRe  = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(?:in|attribute)\s+(\w+)\s+(\w+)\s*;`)
	uniformRe = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?uniform\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*(\[\s*(\d+)\s*\])?\s*;`)
	uboRe     = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(([^)]*)\)\s*)?uniform\s+(\w+)\s*\{`)
	ssboRe    = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(([^)]*)\)\s*)?buffer\s+(\w+)\s*\{`)
	bindingRe = regexp.MustCompile(`binding\s*=\s*(\d+)`)
)

var glslTypes = map[string]uint32{
	"float":     opengl.FLOAT,
	"vec2":      opengl.FLOAT_VEC2,
	"vec3":      opengl.FLOAT_VEC3,
	"vec4":      opengl.FLOAT_VEC4,
	"int":       opengl.INT,
	"mat3":      opengl.FLOAT_MAT3,
	"mat4":      opengl.FLOAT_MAT4,
	"sampler2D": opengl.SAMPLER_2D,
}

func (f *Functions) CreateShader(typ uint32) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateShader")
	id := f.gen()
	f.shaders[id] = &shader{typ: typ}
	return id
}

func (f *Functions) ShaderSource(id uint32, src string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ShaderSource")
	if s := f.shaders[id]; s != nil {
		s.src = src
	}
}

func (f *Functions) CompileShader(id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CompileShader")
	if s := f.shaders[id]; s != nil {
		s.compiled = !f.env.CompileFail && strings.TrimSpace(s.src) != ""
	}
}

func (f *Functions) GetShaderi(id, pname uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.shaders[id]
	switch pname {
	case opengl.COMPILE_STATUS:
		if s != nil && s.compiled {
			return opengl.TRUE
		}
		return opengl.FALSE
	}
	return 0
}

func (f *Functions) GetShaderInfoLog(id uint32) string {
	return "0:1(1): error: syntax error\n"
}

func (f *Functions) DeleteShader(id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteShader")
	delete(f.shaders, id)
}

func (f *Functions) CreateProgram() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateProgram")
	id := f.gen()
	f.Programs[id] = &Program{Bindings: make(map[string]int)}
	return id
}

func (f *Functions) AttachShader(program, id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AttachShader")
	if p := f.Programs[program]; p != nil {
		p.Shaders = append(p.Shaders, id)
	}
}

// LinkProgram introspects the attached sources: vertex inputs become
// attributes, uniforms get sequential locations.
func (f *Functions) LinkProgram(program uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LinkProgram")
	p := f.Programs[program]
	if p == nil {
		return
	}

	location := 0
	uniformLocation := 0
	seen := make(map[string]bool)
	for _, id := range p.Shaders {
		s := f.shaders[id]
		if s == nil || !s.compiled {
			return
		}
		if s.typ == opengl.VERTEX_SHADER {
			for _, m := range attribRe.FindAllStringSubmatch(s.src, -1) {
				typ := glslTypes[m[1]]
				p.Attributes = append(p.Attributes, Var{Name: m[2], Type: typ, Size: 1, Location: location})
				if typ == opengl.FLOAT_MAT4 {
					location += 4
				} else {
					location++
				}
			}
		}
		for _, m := range uniformRe.FindAllStringSubmatch(s.src, -1) {
			name := m[2]
			if seen[name] {
				continue
			}
			seen[name] = true
			size := 1
			if m[4] != "" {
				fmt.Sscanf(m[4], "%d", &size)
				name += "[0]"
			}
			p.Uniforms = append(p.Uniforms, Var{Name: name, Type: glslTypes[m[1]], Size: size, Location: uniformLocation})
			uniformLocation += size
		}
		for _, m := range uboRe.FindAllStringSubmatch(s.src, -1) {
			p.UBOs = append(p.UBOs, m[2])
			p.Bindings[m[2]] = parseBinding(m[1])
		}
		for _, m := range ssboRe.FindAllStringSubmatch(s.src, -1) {
			p.SSBOs = append(p.SSBOs, m[2])
			p.Bindings[m[2]] = parseBinding(m[1])
		}
	}
	p.Linked = true
}

func parseBinding(layout string) int {
	m := bindingRe.FindStringSubmatch(layout)
	if m == nil {
		return 0
	}
	var b int
	fmt.Sscanf(m[1], "%d", &b)
	return b
}

func (f *Functions) GetProgrami(program, pname uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.Programs[program]
	if p == nil {
		return 0
	}
	switch pname {
	case opengl.LINK_STATUS:
		if p.Linked {
			return opengl.TRUE
		}
		return opengl.FALSE
	case opengl.ACTIVE_ATTRIBUTES:
		return len(p.Attributes)
	case opengl.ACTIVE_UNIFORMS:
		return len(p.Uniforms)
	case opengl.ACTIVE_UNIFORM_BLOCKS:
		return len(p.UBOs)
	}
	return 0
}

func (f *Functions) GetProgramInfoLog(program uint32) string {
	return "error: linking failed \n"
}

func (f *Functions) DeleteProgram(program uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteProgram")
	delete(f.Programs, program)
}

func (f *Functions) UseProgram(program uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UseProgram")
	f.program = program
}

func (f *Functions) GetActiveAttrib(program, index uint32) (string, int, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.Programs[program].Attributes[index]
	return v.Name, v.Size, v.Type
}

func (f *Functions) GetActiveUniform(program, index uint32) (string, int, uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.Programs[program].Uniforms[index]
	return v.Name, v.Size, v.Type
}

func (f *Functions) GetAttribLocation(program uint32, name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.Programs[program].Attributes {
		if v.Name == name {
			return v.Location
		}
	}
	return -1
}

func (f *Functions) GetUniformLocation(program uint32, name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.Programs[program].Uniforms {
		if v.Name == name || strings.TrimSuffix(v.Name, "[0]") == name {
			return v.Location
		}
	}
	return -1
}

func (f *Functions) GetActiveUniformBlockName(program, index uint32) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Programs[program].UBOs[index]
}

func (f *Functions) GetUniformBlockIndex(program uint32, name string) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.Programs[program].UBOs {
		if n == name {
			return uint32(i)
		}
	}
	return opengl.INVALID_INDEX
}

func (f *Functions) GetActiveUniformBlocki(program, index, pname uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.Programs[program]
	if pname == opengl.UNIFORM_BLOCK_BINDING && int(index) < len(p.UBOs) {
		return p.Bindings[p.UBOs[index]]
	}
	return 0
}

func (f *Functions) UniformBlockBinding(program, index, binding uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UniformBlockBinding")
}

func (f *Functions) GetProgramInterfacei(program, iface, pname uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if iface == opengl.SHADER_STORAGE_BLOCK && pname == opengl.ACTIVE_RESOURCES {
		return len(f.Programs[program].SSBOs)
	}
	return 0
}

func (f *Functions) GetProgramResourceName(program, iface, index uint32) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Programs[program].SSBOs[index]
}

func (f *Functions) GetProgramResourcei(program, iface, index, prop uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.Programs[program]
	if prop == opengl.BUFFER_BINDING {
		return p.Bindings[p.SSBOs[index]]
	}
	return 0
}

// ── Uniforms ──────────────────────────────────────────────────────────────────

func (f *Functions) setUniform(name string, location int, v ...float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(name)
	f.Uniforms[location] = v
}

func (f *Functions) Uniform1f(location int, v float32) { f.setUniform("Uniform1f", location, v) }
func (f *Functions) Uniform1i(location int, v int)     { f.setUniform("Uniform1i", location, float32(v)) }
func (f *Functions) Uniform2f(location int, v0, v1 float32) {
	f.setUniform("Uniform2f", location, v0, v1)
}
func (f *Functions) Uniform3f(location int, v0, v1, v2 float32) {
	f.setUniform("Uniform3f", location, v0, v1, v2)
}
func (f *Functions) Uniform4f(location int, v0, v1, v2, v3 float32) {
	f.setUniform("Uniform4f", location, v0, v1, v2, v3)
}
func (f *Functions) UniformMatrix3fv(location int, m [9]float32) {
	f.setUniform("UniformMatrix3fv", location, m[:]...)
}
func (f *Functions) UniformMatrix4fv(location int, m [16]float32) {
	f.setUniform("UniformMatrix4fv", location, m[:]...)
}
