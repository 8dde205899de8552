package opengl

// GL enums used by the engine. Values are shared by desktop GL and GLES.
const (
	NO_ERROR                      = 0x0
	INVALID_ENUM                  = 0x0500
	INVALID_VALUE                 = 0x0501
	INVALID_OPERATION             = 0x0502
	OUT_OF_MEMORY                 = 0x0505
	INVALID_FRAMEBUFFER_OPERATION = 0x0506

	FALSE = 0
	TRUE  = 1

	VERSION        = 0x1F02
	EXTENSIONS     = 0x1F03
	NUM_EXTENSIONS = 0x821D
	MAJOR_VERSION  = 0x821B
	MINOR_VERSION  = 0x821C

	MAX_TEXTURE_IMAGE_UNITS      = 0x8872
	MAX_COMPUTE_WORK_GROUP_COUNT = 0x91BE
	MAX_VERTEX_ATTRIBS           = 0x8869
	UNPACK_ALIGNMENT             = 0x0CF5
	PACK_ALIGNMENT               = 0x0D05
	COLOR_BUFFER_BIT             = 0x00004000
	DEPTH_BUFFER_BIT             = 0x00000100
	STENCIL_BUFFER_BIT           = 0x00000400
	BLEND                        = 0x0BE2
	SRC_ALPHA                    = 0x0302
	ONE_MINUS_SRC_ALPHA          = 0x0303
	DEPTH_TEST                   = 0x0B71

	POINTS         = 0x0000
	LINES          = 0x0001
	LINE_LOOP      = 0x0002
	LINE_STRIP     = 0x0003
	TRIANGLES      = 0x0004
	TRIANGLE_STRIP = 0x0005
	TRIANGLE_FAN   = 0x0006

	BYTE           = 0x1400
	UNSIGNED_BYTE  = 0x1401
	SHORT          = 0x1402
	UNSIGNED_SHORT = 0x1403
	INT            = 0x1404
	UNSIGNED_INT   = 0x1405
	FLOAT          = 0x1406

	FLOAT_VEC2 = 0x8B50
	FLOAT_VEC3 = 0x8B51
	FLOAT_VEC4 = 0x8B52
	INT_VEC2   = 0x8B53
	FLOAT_MAT3 = 0x8B5B
	FLOAT_MAT4 = 0x8B5C
	SAMPLER_2D = 0x8B5E

	ARRAY_BUFFER          = 0x8892
	ELEMENT_ARRAY_BUFFER  = 0x8893
	UNIFORM_BUFFER        = 0x8A11
	SHADER_STORAGE_BUFFER = 0x90D2
	STREAM_DRAW           = 0x88E0
	STREAM_READ           = 0x88E1
	STREAM_COPY           = 0x88E2
	STATIC_DRAW           = 0x88E4
	STATIC_READ           = 0x88E5
	STATIC_COPY           = 0x88E6
	DYNAMIC_DRAW          = 0x88E8
	DYNAMIC_READ          = 0x88E9
	DYNAMIC_COPY          = 0x88EA

	VERTEX_SHADER   = 0x8B31
	FRAGMENT_SHADER = 0x8B30
	COMPILE_STATUS  = 0x8B81
	LINK_STATUS     = 0x8B82
	INFO_LOG_LENGTH = 0x8B84

	ACTIVE_UNIFORMS       = 0x8B86
	ACTIVE_ATTRIBUTES     = 0x8B89
	ACTIVE_UNIFORM_BLOCKS = 0x8A36
	UNIFORM_BLOCK_BINDING = 0x8A3F
	INVALID_INDEX         = 0xFFFFFFFF

	SHADER_STORAGE_BLOCK = 0x92E6
	ACTIVE_RESOURCES     = 0x92F5
	BUFFER_BINDING       = 0x9302

	TEXTURE_2D         = 0x0DE1
	TEXTURE0           = 0x84C0
	TEXTURE_MAG_FILTER = 0x2800
	TEXTURE_MIN_FILTER = 0x2801
	TEXTURE_WRAP_S     = 0x2802
	TEXTURE_WRAP_T     = 0x2803
	NEAREST            = 0x2600
	LINEAR             = 0x2601
	REPEAT             = 0x2901
	CLAMP_TO_EDGE      = 0x812F
	MIRRORED_REPEAT    = 0x8370

	RED             = 0x1903
	RG              = 0x8227
	RGBA            = 0x1908
	RGBA8           = 0x8058
	LUMINANCE       = 0x1909
	LUMINANCE_ALPHA = 0x190A

	FRAMEBUFFER          = 0x8D40
	READ_FRAMEBUFFER     = 0x8CA8
	DRAW_FRAMEBUFFER     = 0x8CA9
	RENDERBUFFER         = 0x8D41
	COLOR_ATTACHMENT0    = 0x8CE0
	FRAMEBUFFER_COMPLETE = 0x8CD5
)

// Functions is the GL entry point surface used by the engine. Object names
// are plain uint32 handles; zero is the null object.
type Functions interface {
	ActiveTexture(texture uint32)
	AttachShader(program, shader uint32)
	BindBuffer(target, buffer uint32)
	BindBufferBase(target, index, buffer uint32)
	BindFramebuffer(target, framebuffer uint32)
	BindRenderbuffer(target, renderbuffer uint32)
	BindTexture(target, texture uint32)
	BindVertexArray(array uint32)
	BlendFunc(sfactor, dfactor uint32)
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter uint32)
	BufferData(target uint32, size int, data []byte, usage uint32)
	BufferSubData(target uint32, offset int, data []byte)
	CheckFramebufferStatus(target uint32) uint32
	Clear(mask uint32)
	ClearColor(r, g, b, a float32)
	CompileShader(shader uint32)
	CreateProgram() uint32
	CreateShader(typ uint32) uint32
	DeleteBuffer(buffer uint32)
	DeleteFramebuffer(framebuffer uint32)
	DeleteProgram(program uint32)
	DeleteRenderbuffer(renderbuffer uint32)
	DeleteShader(shader uint32)
	DeleteTexture(texture uint32)
	DeleteVertexArray(array uint32)
	Disable(capability uint32)
	DisableVertexAttribArray(index uint32)
	DrawArrays(mode uint32, first, count int)
	DrawElements(mode uint32, count int, typ uint32, offset int)
	DrawElementsInstanced(mode uint32, count int, typ uint32, offset, instances int)
	Enable(capability uint32)
	EnableVertexAttribArray(index uint32)
	FramebufferRenderbuffer(target, attachment, renderbufferTarget, renderbuffer uint32)
	FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int)
	GenBuffer() uint32
	GenFramebuffer() uint32
	GenRenderbuffer() uint32
	GenTexture() uint32
	GenVertexArray() uint32
	GetActiveAttrib(program, index uint32) (name string, size int, typ uint32)
	GetActiveUniform(program, index uint32) (name string, size int, typ uint32)
	GetActiveUniformBlockName(program, index uint32) string
	GetActiveUniformBlocki(program, index, pname uint32) int
	GetAttribLocation(program uint32, name string) int
	GetError() uint32
	GetInteger(pname uint32) int
	GetIntegeri(pname, index uint32) int
	GetProgramInfoLog(program uint32) string
	GetProgrami(program, pname uint32) int
	GetShaderInfoLog(shader uint32) string
	GetShaderi(shader, pname uint32) int
	GetString(name uint32) string
	GetStringi(name, index uint32) string
	GetUniformBlockIndex(program uint32, name string) uint32
	GetUniformLocation(program uint32, name string) int
	LinkProgram(program uint32)
	PixelStorei(pname uint32, param int)
	ReadPixels(x, y, width, height int, format, typ uint32, dst []byte)
	RenderbufferStorage(target, internalFormat uint32, width, height int)
	ShaderSource(shader uint32, src string)
	TexImage2D(target uint32, level int, internalFormat uint32, width, height int, format, typ uint32, data []byte)
	TexParameteri(target, pname uint32, param int)
	TexSubImage2D(target uint32, level, x, y, width, height int, format, typ uint32, data []byte)
	Uniform1f(location int, v float32)
	Uniform1i(location int, v int)
	Uniform2f(location int, v0, v1 float32)
	Uniform3f(location int, v0, v1, v2 float32)
	Uniform4f(location int, v0, v1, v2, v3 float32)
	UniformBlockBinding(program, index, binding uint32)
	UniformMatrix3fv(location int, m [9]float32)
	UniformMatrix4fv(location int, m [16]float32)
	UseProgram(program uint32)
	VertexAttribDivisor(index, divisor uint32)
	VertexAttribPointer(index uint32, size int, typ uint32, normalized bool, stride, offset int)
	Viewport(x, y, width, height int)
}

// ProgramInterface is implemented by drivers exposing the GL 4.3 / GLES 3.1
// program interface queries. Shader storage blocks are only introspected
// through it.
type ProgramInterface interface {
	GetProgramInterfacei(program, iface, pname uint32) int
	GetProgramResourceName(program, iface, index uint32) string
	GetProgramResourcei(program, iface, index, prop uint32) int
}
