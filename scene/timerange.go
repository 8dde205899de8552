package scene

import (
	"fmt"
	"sort"

	"nodegl/core"
)

var rangeModeClasses = []string{"TimeRangeModeCont", "TimeRangeModeNoop", "TimeRangeModeOnce"}

func init() {
	register(&Class{
		Name: "TimeRangeModeCont",
		Params: []Param{
			{Name: "start_time", Type: ParamFloat, Constructor: true, Desc: "time at which the child starts being updated and drawn"},
		},
		new: func() any { return &rangeMode{} },
	})
	register(&Class{
		Name: "TimeRangeModeNoop",
		Params: []Param{
			{Name: "start_time", Type: ParamFloat, Constructor: true, Desc: "time at which the child stops being drawn"},
		},
		new: func() any { return &rangeMode{} },
	})
	register(&Class{
		Name: "TimeRangeModeOnce",
		Params: []Param{
			{Name: "start_time", Type: ParamFloat, Constructor: true},
			{Name: "render_time", Type: ParamFloat, Constructor: true, Desc: "single time the child is updated at"},
		},
		new: func() any { return &rangeMode{} },
	})
	register(&Class{
		Name: "TimeRangeFilter",
		Params: []Param{
			{Name: "child", Type: ParamNode, Constructor: true},
			{Name: "ranges", Type: ParamNodeList, Classes: rangeModeClasses, Desc: "range modes sorted by start time"},
		},
		new: func() any { return &timeRangeFilter{current: -1} },
	})
}

type rangeMode struct {
	updated bool
}

// timeRangeFilter restricts when its child is active. Before the first
// range and inside noop ranges the child is inactive; inside once ranges
// it is updated a single time, at the render time of the range.
type timeRangeFilter struct {
	current int
	drawme  bool
}

func (f *timeRangeFilter) init(n *Node) error {
	ranges := n.List("ranges")
	for i := 1; i < len(ranges); i++ {
		prev, cur := ranges[i-1].Float("start_time"), ranges[i].Float("start_time")
		if cur < prev {
			return fmt.Errorf("%w: time ranges must be sorted (%g after %g)", core.ErrValidation, cur, prev)
		}
	}
	f.current = -1
	f.drawme = false
	for _, r := range ranges {
		r.impl.(*rangeMode).updated = false
	}
	return nil
}

// rangeAt returns the index of the last range starting at or before t, -1
// when t is before every range.
func rangeAt(ranges []*Node, t float64) int {
	return sort.Search(len(ranges), func(i int) bool { return ranges[i].Float("start_time") > t }) - 1
}

func (f *timeRangeFilter) visit(n *Node, active bool, t float64) error {
	ranges := n.List("ranges")
	childActive := active
	if len(ranges) > 0 {
		i := rangeAt(ranges, t)
		if i != f.current {
			for j, r := range ranges {
				if j != i {
					r.impl.(*rangeMode).updated = false
				}
			}
			f.current = i
		}
		if i < 0 || ranges[i].class.Name == "TimeRangeModeNoop" {
			childActive = false
		}
	}
	return n.Child("child").Visit(childActive, t)
}

func (f *timeRangeFilter) update(n *Node, t float64) error {
	f.drawme = false
	child := n.Child("child")
	ranges := n.List("ranges")
	if len(ranges) == 0 {
		f.drawme = true
		return child.Update(t)
	}
	if f.current < 0 {
		return nil
	}
	r := ranges[f.current]
	switch r.class.Name {
	case "TimeRangeModeNoop":
		return nil
	case "TimeRangeModeOnce":
		mode := r.impl.(*rangeMode)
		if !mode.updated {
			if err := child.Update(r.Float("render_time")); err != nil {
				return err
			}
			mode.updated = true
		}
	default:
		if err := child.Update(t); err != nil {
			return err
		}
	}
	f.drawme = true
	return nil
}

func (f *timeRangeFilter) draw(n *Node) error {
	if !f.drawme {
		return nil
	}
	return n.Child("child").Draw()
}
