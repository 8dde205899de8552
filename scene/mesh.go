package scene

import (
	"fmt"
	"slices"

	"nodegl/core"
)

// Mesh is CPU-side vertex data ready to become a Geometry node.
type Mesh struct {
	Name      string
	Positions []float32 // xyz triplets
	UVs       []float32 // uv pairs
	Normals   []float32 // xyz triplets
	Indices   []uint32
	// Topology is a Geometry topology name; empty means triangles.
	Topology string
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

func (m *Mesh) validate() error {
	nv := m.VertexCount()
	switch {
	case len(m.Positions)%3 != 0:
		return fmt.Errorf("%w: mesh %s: positions are not xyz triplets", core.ErrValidation, m.Name)
	case m.UVs != nil && len(m.UVs) != nv*2:
		return fmt.Errorf("%w: mesh %s: %d uv pairs for %d vertices", core.ErrValidation, m.Name, len(m.UVs)/2, nv)
	case m.Normals != nil && len(m.Normals) != nv*3:
		return fmt.Errorf("%w: mesh %s: %d normals for %d vertices", core.ErrValidation, m.Name, len(m.Normals)/3, nv)
	}
	for _, i := range m.Indices {
		if int(i) >= nv {
			return fmt.Errorf("%w: mesh %s: index %d out of range", core.ErrValidation, m.Name, i)
		}
	}
	return nil
}

// Node builds a Geometry node holding the mesh data. Indices that fit in
// 16 bits are stored in a BufferUShort.
func (m *Mesh) Node() (*Node, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	params := make(map[string]any)
	var owned []*Node
	defer func() {
		for _, b := range owned {
			b.Unref()
		}
	}()
	add := func(param, class string, data any) error {
		b, err := Create(class, map[string]any{"data": data})
		if err != nil {
			return err
		}
		owned = append(owned, b)
		params[param] = b
		return nil
	}

	if err := add("vertices", "BufferVec3", m.Positions); err != nil {
		return nil, err
	}
	if m.UVs != nil {
		if err := add("uvcoords", "BufferVec2", m.UVs); err != nil {
			return nil, err
		}
	}
	if m.Normals != nil {
		if err := add("normals", "BufferVec3", m.Normals); err != nil {
			return nil, err
		}
	}
	if m.Indices != nil {
		if err := add("indices", indexClass(m.Indices), packIndices(m.Indices)); err != nil {
			return nil, err
		}
	}
	if m.Topology != "" {
		params["topology"] = m.Topology
	}

	n, err := Create("Geometry", params)
	if err != nil {
		return nil, err
	}
	if m.Name != "" {
		n.SetLabel(m.Name)
	}
	return n, nil
}

func indexClass(indices []uint32) string {
	if len(indices) == 0 || slices.Max(indices) <= 0xffff {
		return "BufferUShort"
	}
	return "BufferUInt"
}

func packIndices(indices []uint32) any {
	if indexClass(indices) == "BufferUInt" {
		return indices
	}
	short := make([]uint16, len(indices))
	for i, v := range indices {
		short[i] = uint16(v)
	}
	return short
}
