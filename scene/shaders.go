package scene

import (
	"nodegl/internal/opengl"
)

// shader holds the two GLSL flavors of a stage: modern for GLSL 1.30+ and
// ES 3.0+, legacy for ES 2.0 and older desktop contexts.
type shader struct {
	modern string
	legacy string
}

// source prefixes the flavor matching ctx with its version directive.
func (s shader) source(ctx *opengl.Context) string {
	version := ctx.Major*100 + ctx.Minor*10
	switch {
	case ctx.ES() && version >= 300:
		return "#version 300 es\nprecision highp float;\n" + s.modern
	case ctx.ES():
		return "#version 100\nprecision highp float;\n" + s.legacy
	case version >= 330:
		return "#version 330\n" + s.modern
	default:
		return "#version 130\n" + s.modern
	}
}

var defaultVertex = shader{
	modern: `in vec4 ngl_position;
in vec2 ngl_uvcoord;
in vec3 ngl_normal;
uniform mat4 ngl_modelview_matrix;
uniform mat4 ngl_projection_matrix;
uniform mat3 ngl_normal_matrix;
out vec2 var_uvcoord;
out vec3 var_normal;
void main()
{
    gl_Position = ngl_projection_matrix * ngl_modelview_matrix * ngl_position;
    var_uvcoord = ngl_uvcoord;
    var_normal = ngl_normal_matrix * ngl_normal;
}
`,
	legacy: `attribute vec4 ngl_position;
attribute vec2 ngl_uvcoord;
attribute vec3 ngl_normal;
uniform mat4 ngl_modelview_matrix;
uniform mat4 ngl_projection_matrix;
uniform mat3 ngl_normal_matrix;
varying vec2 var_uvcoord;
varying vec3 var_normal;
void main()
{
    gl_Position = ngl_projection_matrix * ngl_modelview_matrix * ngl_position;
    var_uvcoord = ngl_uvcoord;
    var_normal = ngl_normal_matrix * ngl_normal;
}
`,
}

var defaultFragment = shader{
	modern: `in vec2 var_uvcoord;
out vec4 frag_color;
void main()
{
    frag_color = vec4(var_uvcoord, 0.0, 1.0);
}
`,
	legacy: `varying vec2 var_uvcoord;
void main()
{
    gl_FragColor = vec4(var_uvcoord, 0.0, 1.0);
}
`,
}

var textVertex = shader{
	modern: `in vec4 position;
in vec2 uvcoord;
uniform mat4 modelview_matrix;
uniform mat4 projection_matrix;
out vec2 var_tex_coord;
void main()
{
    gl_Position = projection_matrix * modelview_matrix * position;
    var_tex_coord = uvcoord;
}
`,
	legacy: `attribute vec4 position;
attribute vec2 uvcoord;
uniform mat4 modelview_matrix;
uniform mat4 projection_matrix;
varying vec2 var_tex_coord;
void main()
{
    gl_Position = projection_matrix * modelview_matrix * position;
    var_tex_coord = uvcoord;
}
`,
}

var textFragment = shader{
	modern: `in vec2 var_tex_coord;
uniform sampler2D tex;
out vec4 frag_color;
void main()
{
    frag_color = texture(tex, var_tex_coord);
}
`,
	legacy: `varying vec2 var_tex_coord;
uniform sampler2D tex;
void main()
{
    gl_FragColor = texture2D(tex, var_tex_coord);
}
`,
}
