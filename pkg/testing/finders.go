package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/widgets"
)

// Finder locates nodes in the reconciled trees.
type Finder interface {
	// Evaluate returns the identities of all matching nodes in tree order.
	Evaluate(components *core.ComponentTree, elements *core.ElementTree) []core.ID
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	ids    []core.ID
	finder Finder
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() core.ID {
	if len(r.ids) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.describe()))
	}
	return r.ids[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) core.ID {
	if index < 0 || index >= len(r.ids) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.ids), r.describe()))
	}
	return r.ids[index]
}

// All returns all matches in tree order.
func (r FinderResult) All() []core.ID {
	return r.ids
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.ids)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.ids) > 0
}

// nodeFinder matches component nodes, with access to the element payload
// of element-backed nodes.
type nodeFinder struct {
	match func(n *core.ComponentNode, el core.Element) bool
	desc  string
}

func (f *nodeFinder) Evaluate(components *core.ComponentTree, elements *core.ElementTree) []core.ID {
	var out []core.ID
	for i := 0; i < components.Len(); i++ {
		n := components.At(i)
		var el core.Element
		if n.Element {
			if en, ok := elements.Lookup(n.ID); ok {
				el = en.Element
			}
		}
		if f.match(n, el) {
			out = append(out, n.ID)
		}
	}
	return out
}

func (f *nodeFinder) Description() string {
	return f.desc
}

// ByTag returns a finder that matches nodes whose type tag is tag: the
// component tag, or the element type name.
func ByTag(tag string) Finder {
	return &nodeFinder{
		match: func(n *core.ComponentNode, _ core.Element) bool { return n.Tag == tag },
		desc:  fmt.Sprintf("ByTag(%q)", tag),
	}
}

// ByKey returns a finder that matches nodes carrying key.
func ByKey(key string) Finder {
	return &nodeFinder{
		match: func(n *core.ComponentNode, _ core.Element) bool { return n.Key == key },
		desc:  fmt.Sprintf("ByKey(%q)", key),
	}
}

// ByID returns a finder that matches the node with the given identity.
func ByID(id core.ID) Finder {
	return &nodeFinder{
		match: func(n *core.ComponentNode, _ core.Element) bool { return n.ID == id },
		desc:  fmt.Sprintf("ByID(%d)", id),
	}
}

// ByType returns a finder that matches element nodes whose element is of
// type T.
func ByType[T core.Element]() Finder {
	want := reflect.TypeFor[T]()
	return &nodeFinder{
		match: func(_ *core.ComponentNode, el core.Element) bool {
			return el != nil && reflect.TypeOf(el) == want
		},
		desc: fmt.Sprintf("ByType(%s)", want),
	}
}

// ByText returns a finder that matches [widgets.Text] elements with exact
// content.
func ByText(text string) Finder {
	return &nodeFinder{
		match: func(_ *core.ComponentNode, el core.Element) bool {
			t, ok := el.(widgets.Text)
			return ok && t.Content == text
		},
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByTextContaining returns a finder that matches [widgets.Text] elements
// containing substring.
func ByTextContaining(substring string) Finder {
	return &nodeFinder{
		match: func(_ *core.ComponentNode, el core.Element) bool {
			t, ok := el.(widgets.Text)
			return ok && strings.Contains(t.Content, substring)
		},
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

// ByPredicate returns a finder that matches nodes satisfying fn. el is nil
// for component nodes.
func ByPredicate(fn func(n *core.ComponentNode, el core.Element) bool) Finder {
	return &nodeFinder{match: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds nodes matching 'matching' below nodes matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(components *core.ComponentTree, elements *core.ElementTree) []core.ID {
	ancestors := make(core.IDSet)
	for _, id := range f.of.Evaluate(components, elements) {
		ancestors[id] = struct{}{}
	}
	if len(ancestors) == 0 {
		return nil
	}
	var out []core.ID
	for _, id := range f.matching.Evaluate(components, elements) {
		if hasAncestor(components, id, ancestors) {
			out = append(out, id)
		}
	}
	return out
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches nodes satisfying 'matching' that
// are strict descendants of nodes matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds nodes matching 'matching' above nodes matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(components *core.ComponentTree, elements *core.ElementTree) []core.ID {
	var out []core.ID
	descendants := f.of.Evaluate(components, elements)
	for _, id := range f.matching.Evaluate(components, elements) {
		self := core.IDSet{id: struct{}{}}
		for _, d := range descendants {
			if hasAncestor(components, d, self) {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches nodes satisfying 'matching' that
// are strict ancestors of nodes matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

// hasAncestor walks parent links from id looking for a member of set.
func hasAncestor(components *core.ComponentTree, id core.ID, set core.IDSet) bool {
	n, ok := components.Lookup(id)
	for ok && n.Parent != 0 {
		if set.Has(n.Parent) {
			return true
		}
		n, ok = components.Lookup(n.Parent)
	}
	return false
}
