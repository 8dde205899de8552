package scene

import (
	"fmt"
	"maps"
	"slices"
)

// Class describes a node class: its name, its parameter schema and the
// constructor of its private state. Classes are registered at package
// initialization and never change afterwards.
type Class struct {
	Name   string
	Params []Param

	new func() any
}

// Param looks up a parameter of the schema by name.
func (c *Class) Param(name string) (*Param, bool) {
	for i := range c.Params {
		if c.Params[i].Name == name {
			return &c.Params[i], true
		}
	}
	return nil, false
}

var classes = make(map[string]*Class)

func register(c *Class) {
	if _, dup := classes[c.Name]; dup {
		panic(fmt.Sprintf("scene: class %s registered twice", c.Name))
	}
	seen := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		if seen[p.Name] {
			panic(fmt.Sprintf("scene: class %s declares %s twice", c.Name, p.Name))
		}
		seen[p.Name] = true
	}
	classes[c.Name] = c
}

// LookupClass returns the class registered under name.
func LookupClass(name string) (*Class, bool) {
	c, ok := classes[name]
	return c, ok
}

// ClassNames lists every registered class, sorted.
func ClassNames() []string {
	return slices.Sorted(maps.Keys(classes))
}
