package io

import (
	"bufio"
	"fmt"
	stdio "io"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"

	"nodegl/core"
	"nodegl/scene"
)

// objVertex is one distinct "v/vt/vn" triple of a face.
type objVertex struct {
	pos, uv, normal int
}

// ReadOBJ parses Wavefront OBJ data into a single mesh. Faces are fan
// triangulated and identical face vertices are shared. Groups, objects
// and materials are ignored. Texture coordinates and normals are kept only
// when every face vertex has them.
func ReadOBJ(r stdio.Reader, name string) (*scene.Mesh, error) {
	var positions, normals [][3]float32
	var uvs [][2]float32

	var verts []objVertex
	vertexMap := make(map[string]uint32)
	var indices []uint32

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "v", "vn":
			v, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %v", core.ErrValidation, name, lineNo, err)
			}
			if parts[0] == "v" {
				positions = append(positions, [3]float32(v))
			} else {
				normals = append(normals, [3]float32(v))
			}
		case "vt":
			v, err := parseFloats(parts[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %v", core.ErrValidation, name, lineNo, err)
			}
			uvs = append(uvs, [2]float32(v))
		case "f":
			if len(parts) < 4 {
				return nil, fmt.Errorf("%w: %s:%d: face with %d vertices", core.ErrValidation, name, lineNo, len(parts)-1)
			}
			face := make([]uint32, 0, len(parts)-1)
			for _, ref := range parts[1:] {
				if idx, ok := vertexMap[ref]; ok {
					face = append(face, idx)
					continue
				}
				v, err := parseFaceVertex(ref, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("%w: %s:%d: %v", core.ErrValidation, name, lineNo, err)
				}
				idx := uint32(len(verts))
				verts = append(verts, v)
				vertexMap[ref] = idx
				face = append(face, idx)
			}
			for i := 2; i < len(face); i++ {
				indices = append(indices, face[0], face[i-1], face[i])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrIO, name, err)
	}
	if len(verts) == 0 {
		return nil, fmt.Errorf("%w: %s: no faces", core.ErrValidation, name)
	}

	m := &scene.Mesh{Name: name, Indices: indices}
	withUVs, withNormals := true, true
	for _, v := range verts {
		withUVs = withUVs && v.uv >= 0
		withNormals = withNormals && v.normal >= 0
	}
	for _, v := range verts {
		p := positions[v.pos]
		m.Positions = append(m.Positions, p[0], p[1], p[2])
		if withUVs {
			m.UVs = append(m.UVs, uvs[v.uv][0], uvs[v.uv][1])
		}
		if withNormals {
			n := normals[v.normal]
			m.Normals = append(m.Normals, n[0], n[1], n[2])
		}
	}
	return m, nil
}

// LoadOBJ reads an OBJ file and returns a Geometry node holding its mesh.
func LoadOBJ(path string) (*scene.Node, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	defer f.Close()

	m, err := ReadOBJ(f, path)
	if err != nil {
		return nil, err
	}
	return m.Node()
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFaceVertex resolves a "v", "v/vt", "v//vn" or "v/vt/vn" reference to
// zero-based indices. Negative OBJ indices count back from the last
// element read so far. Missing components are -1.
func parseFaceVertex(ref string, npos, nuv, nnormal int) (objVertex, error) {
	v := objVertex{pos: -1, uv: -1, normal: -1}
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return v, fmt.Errorf("bad face vertex %q", ref)
	}
	targets := []*int{&v.pos, &v.uv, &v.normal}
	counts := []int{npos, nuv, nnormal}
	for i, s := range parts {
		if s == "" {
			if i == 0 {
				return v, fmt.Errorf("face vertex %q has no position", ref)
			}
			continue
		}
		idx, err := strconv.Atoi(s)
		if err != nil {
			return v, fmt.Errorf("bad face vertex %q: %v", ref, err)
		}
		if idx < 0 {
			idx = counts[i] + idx + 1
		}
		if idx <= 0 || idx > counts[i] {
			return v, fmt.Errorf("face vertex %q: index %s out of range", ref, s)
		}
		*targets[i] = idx - 1
	}
	return v, nil
}
