package io

import (
	"bytes"
	"errors"
	"fmt"
	stdio "io"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"nodegl/core"
	"nodegl/scene"
)

// SceneFile is the top level of a scene description. Nodes declares
// labeled nodes that parameters can reference with {ref: label}; Root is
// the node handed to the context.
//
//	nodes:
//	  - label: quad
//	    class: Quad
//	root:
//	  class: Render
//	  params:
//	    geometry: {ref: quad}
type SceneFile struct {
	Nodes []NodeDecl `yaml:"nodes"`
	Root  NodeDecl   `yaml:"root"`
}

// NodeDecl declares one node. Exactly one of Class, Ref, OBJ or GLTF is
// set: Class builds a node through scene.Create, Ref names a labeled
// declaration, OBJ loads a Geometry and GLTF loads a whole glTF scene.
type NodeDecl struct {
	Class  string               `yaml:"class"`
	Label  string               `yaml:"label"`
	Ref    string               `yaml:"ref"`
	OBJ    string               `yaml:"obj"`
	GLTF   string               `yaml:"gltf"`
	Params map[string]yaml.Node `yaml:"params"`
}

// LoadScene reads a YAML (or JSON) scene description and builds its root
// node. Relative file names are resolved against the directory of path.
// The returned node holds one reference owned by the caller.
func LoadScene(path string) (*scene.Node, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	root, err := decodeScene(bytes.NewReader(data), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", path, err)
	}
	return root, nil
}

// DecodeScene builds the root node of a scene description read from r.
// Relative file names are resolved against the working directory.
func DecodeScene(r stdio.Reader) (*scene.Node, error) {
	return decodeScene(r, "")
}

func decodeScene(r stdio.Reader, dir string) (*scene.Node, error) {
	var f SceneFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, stdio.EOF) {
			return nil, fmt.Errorf("%w: empty scene", core.ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}

	b := &builder{
		dir:      dir,
		decls:    make(map[string]*NodeDecl, len(f.Nodes)),
		built:    make(map[string]*scene.Node),
		building: make(map[string]bool),
	}
	for i := range f.Nodes {
		d := &f.Nodes[i]
		if d.Label == "" {
			return nil, fmt.Errorf("%w: declaration %d has no label", core.ErrValidation, i)
		}
		if _, dup := b.decls[d.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", core.ErrValidation, d.Label)
		}
		b.decls[d.Label] = d
	}

	root, err := b.node(&f.Root)
	if err == nil {
		root.Ref()
	}
	b.release()
	if err != nil {
		return nil, err
	}
	return root, nil
}

// builder owns one reference on every node it creates until the root is
// complete; the graph keeps its own references through parameters.
type builder struct {
	dir      string
	decls    map[string]*NodeDecl
	built    map[string]*scene.Node
	building map[string]bool
	owned    []*scene.Node
}

func (b *builder) release() {
	for _, n := range b.owned {
		n.Unref()
	}
	b.owned = nil
}

func (b *builder) node(d *NodeDecl) (*scene.Node, error) {
	set := 0
	for _, s := range []string{d.Class, d.Ref, d.OBJ, d.GLTF} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: a node needs exactly one of class, ref, obj or gltf", core.ErrValidation)
	}
	if d.Ref != "" {
		return b.ref(d.Ref)
	}

	var n *scene.Node
	var err error
	switch {
	case d.OBJ != "":
		n, err = LoadOBJ(b.path(d.OBJ))
	case d.GLTF != "":
		n, err = scene.LoadGLTF(b.path(d.GLTF), nil)
	default:
		n, err = b.create(d)
	}
	if err != nil {
		return nil, err
	}
	b.owned = append(b.owned, n)
	if d.Label != "" {
		n.SetLabel(d.Label)
	}
	return n, nil
}

func (b *builder) ref(label string) (*scene.Node, error) {
	if n, ok := b.built[label]; ok {
		return n, nil
	}
	d, ok := b.decls[label]
	if !ok {
		return nil, fmt.Errorf("%w: unknown reference %q", core.ErrValidation, label)
	}
	if b.building[label] {
		return nil, fmt.Errorf("%w: reference cycle through %q", core.ErrValidation, label)
	}
	b.building[label] = true
	defer delete(b.building, label)

	n, err := b.node(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	b.built[label] = n
	return n, nil
}

func (b *builder) create(d *NodeDecl) (*scene.Node, error) {
	params := make(map[string]any, len(d.Params))
	for name, y := range d.Params {
		v, err := b.value(&y)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", d.Class, name, err)
		}
		if s, ok := v.(string); ok && name == "filename" {
			v = b.path(s)
		}
		params[name] = v
	}
	return scene.Create(d.Class, params)
}

// value converts a parameter value. Mappings holding a class, ref, obj or
// gltf key are nodes; other mappings are node dictionaries.
func (b *builder) value(y *yaml.Node) (any, error) {
	switch y.Kind {
	case yaml.AliasNode:
		return b.value(y.Alias)
	case yaml.ScalarNode:
		if y.ShortTag() == "!!null" {
			return nil, nil
		}
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", core.ErrValidation, y.Line, err)
		}
		return v, nil
	case yaml.SequenceNode:
		out := make([]any, len(y.Content))
		for i, c := range y.Content {
			v, err := b.value(c)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.MappingNode:
		if isNodeDecl(y) {
			var d NodeDecl
			if err := y.Decode(&d); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", core.ErrValidation, y.Line, err)
			}
			return b.node(&d)
		}
		out := make(map[string]any, len(y.Content)/2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			v, err := b.value(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[y.Content[i].Value] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: line %d: unexpected yaml node", core.ErrValidation, y.Line)
}

func isNodeDecl(y *yaml.Node) bool {
	for i := 0; i < len(y.Content); i += 2 {
		switch y.Content[i].Value {
		case "class", "ref", "obj", "gltf":
			return true
		}
	}
	return false
}

func (b *builder) path(p string) string {
	if expanded, err := homedir.Expand(p); err == nil {
		p = expanded
	}
	if b.dir != "" && !filepath.IsAbs(p) {
		p = filepath.Join(b.dir, p)
	}
	return p
}
