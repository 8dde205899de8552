package opengl

import (
	"fmt"
	"strings"

	"nodegl/core"
)

// UniformInfo is an active uniform of a linked program.
type UniformInfo struct {
	Location int
	Size     int
	Type     uint32
}

// AttributeInfo is an active vertex attribute of a linked program.
type AttributeInfo struct {
	Location int
	Size     int
	Type     uint32
}

// BlockInfo is a uniform or shader storage block.
type BlockInfo struct {
	// Type is UNIFORM_BUFFER or SHADER_STORAGE_BUFFER.
	Type    uint32
	Binding int
}

// LoadProgram compiles and links a vertex/fragment pair.
func LoadProgram(f Functions, vertex, fragment string) (uint32, error) {
	vert, err := compileShader(f, vertex, VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(f, fragment, FRAGMENT_SHADER)
	if err != nil {
		f.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := f.CreateProgram()
	f.AttachShader(prog, vert)
	f.AttachShader(prog, frag)
	f.LinkProgram(prog)
	f.DeleteShader(vert)
	f.DeleteShader(frag)

	if f.GetProgrami(prog, LINK_STATUS) == FALSE {
		log := trimLog(f.GetProgramInfoLog(prog))
		f.DeleteProgram(prog)
		return 0, fmt.Errorf("%w: could not link shader: %s", core.ErrValidation, log)
	}
	return prog, nil
}

func compileShader(f Functions, src string, shaderType uint32) (uint32, error) {
	shader := f.CreateShader(shaderType)
	f.ShaderSource(shader, src)
	f.CompileShader(shader)

	if f.GetShaderi(shader, COMPILE_STATUS) == FALSE {
		log := trimLog(f.GetShaderInfoLog(shader))
		f.DeleteShader(shader)
		return 0, fmt.Errorf("%w: could not compile shader: %s", core.ErrValidation, log)
	}
	return shader, nil
}

func trimLog(log string) string {
	return strings.TrimRight(log, " \r\n\x00")
}

// ProbeUniforms maps every active uniform name to its location. Array
// uniforms are keyed without their "[0]" suffix.
func ProbeUniforms(label string, f Functions, program uint32) map[string]UniformInfo {
	n := f.GetProgrami(program, ACTIVE_UNIFORMS)
	uniforms := make(map[string]UniformInfo, n)
	for i := 0; i < n; i++ {
		name, size, typ := f.GetActiveUniform(program, uint32(i))
		if idx := strings.IndexByte(name, '['); idx >= 0 {
			name = name[:idx]
		}
		info := UniformInfo{Location: f.GetUniformLocation(program, name), Size: size, Type: typ}
		core.Logger().Debug("uniform", "node", label, "index", i+1, "count", n,
			"name", name, "location", info.Location, "size", size, "type", fmt.Sprintf("0x%x", typ))
		uniforms[name] = info
	}
	return uniforms
}

// ProbeAttributes maps every active attribute name to its location.
func ProbeAttributes(label string, f Functions, program uint32) map[string]AttributeInfo {
	n := f.GetProgrami(program, ACTIVE_ATTRIBUTES)
	attributes := make(map[string]AttributeInfo, n)
	for i := 0; i < n; i++ {
		name, size, typ := f.GetActiveAttrib(program, uint32(i))
		info := AttributeInfo{Location: f.GetAttribLocation(program, name), Size: size, Type: typ}
		core.Logger().Debug("attribute", "node", label, "index", i+1, "count", n,
			"name", name, "location", info.Location, "size", size, "type", fmt.Sprintf("0x%x", typ))
		attributes[name] = info
	}
	return attributes
}

// ProbeBufferBlocks lists uniform blocks when the context supports them,
// then shader storage blocks when program interface queries are available
// too.
func ProbeBufferBlocks(label string, ctx *Context, program uint32) map[string]BlockInfo {
	blocks := make(map[string]BlockInfo)
	if !ctx.Features.Has(FeatureUniformBufferObject) {
		return blocks
	}
	f := ctx.GL()

	n := f.GetProgrami(program, ACTIVE_UNIFORM_BLOCKS)
	for i := 0; i < n; i++ {
		name := f.GetActiveUniformBlockName(program, uint32(i))
		index := f.GetUniformBlockIndex(program, name)
		binding := f.GetActiveUniformBlocki(program, index, UNIFORM_BLOCK_BINDING)
		f.UniformBlockBinding(program, index, uint32(binding))
		core.Logger().Debug("ubo", "node", label, "index", i+1, "count", n, "name", name, "binding", binding)
		blocks[name] = BlockInfo{Type: UNIFORM_BUFFER, Binding: binding}
	}

	if !ctx.Features.Has(FeatureProgramInterfaceQuery | FeatureShaderStorageBufferObject) {
		return blocks
	}
	piq, ok := f.(ProgramInterface)
	if !ok {
		return blocks
	}

	n = piq.GetProgramInterfacei(program, SHADER_STORAGE_BLOCK, ACTIVE_RESOURCES)
	for i := 0; i < n; i++ {
		name := piq.GetProgramResourceName(program, SHADER_STORAGE_BLOCK, uint32(i))
		binding := piq.GetProgramResourcei(program, SHADER_STORAGE_BLOCK, uint32(i), BUFFER_BINDING)
		core.Logger().Debug("ssbo", "node", label, "index", i+1, "count", n, "name", name, "binding", binding)
		blocks[name] = BlockInfo{Type: SHADER_STORAGE_BUFFER, Binding: binding}
	}
	return blocks
}
