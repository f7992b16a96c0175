package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/fiber/pkg/errors"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

// testBox is a minimal container element.
type testBox struct{}

func (b testBox) TypeName() string                            { return "box" }
func (b testBox) Clone() Element                              { return b }
func (b testBox) Style() Style                                { return Style{} }
func (b testBox) DefaultState() any                           { return &boxState{} }
func (b testBox) Draw(rendering.Renderer, graphics.Rect, any) {}

type boxState struct {
	scroll float64
}

// testText is a minimal text element.
type testText struct {
	content string
}

func (t testText) TypeName() string                            { return "text" }
func (t testText) Clone() Element                              { return t }
func (t testText) Style() Style                                { return Style{} }
func (t testText) DefaultState() any                           { return nil }
func (t testText) Draw(rendering.Renderer, graphics.Rect, any) {}

func box(children ...*Node) *Node { return Elem(testBox{}, children...) }
func text(s string) *Node         { return Elem(testText{content: s}) }

// order returns the identities of tree in creation order.
func order(tree *ComponentTree) []ID {
	out := make([]ID, 0, tree.Len())
	for i := range tree.Nodes {
		out = append(out, tree.Nodes[i].ID)
	}
	return out
}

type harness struct {
	owner *BuildOwner
}

func newHarness() *harness {
	return &harness{owner: NewBuildOwner(NewIDAllocator())}
}

func (h *harness) pass(root *Node) []ID {
	h.owner.Rebuild(root)
	return order(h.owner.Tree())
}

func TestReconcile_AssignsIDsInCreationOrder(t *testing.T) {
	h := newHarness()
	got := h.pass(box(text("Foo"), text("Bar")))
	if diff := cmp.Diff([]ID{1, 2, 3}, got); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	elements := h.owner.ElementTree()
	if elements.Len() != 3 {
		t.Fatalf("element tree has %d nodes, want 3", elements.Len())
	}
	root := elements.Root()
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}
	if got := elements.At(root.Children[0]).Element.(testText).content; got != "Foo" {
		t.Errorf("first child = %q, want Foo", got)
	}
}

func TestReconcile_IdempotentWithoutChanges(t *testing.T) {
	h := newHarness()
	view := func() *Node {
		return box(box(text("a"), text("b")), text("c"), box())
	}
	first := h.pass(view())
	second := h.pass(view())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("identities changed across identical passes (-first +second):\n%s", diff)
	}
	if last := h.owner.IDs().Last(); last != ID(len(first)) {
		t.Errorf("allocator minted %d ids, want %d", last, len(first))
	}
}

func TestReconcile_PositionalStabilityAcrossContentChange(t *testing.T) {
	h := newHarness()
	first := h.pass(box(text("one"), text("two")))
	second := h.pass(box(text("uno"), text("dos")))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same-type content change should keep ids (-first +second):\n%s", diff)
	}
}

func TestReconcile_TypeChangeMintsFreshIdentity(t *testing.T) {
	h := newHarness()
	first := h.pass(box(text("x"), text("y")))
	second := h.pass(box(box(text("nested")), text("y")))

	if first[0] != second[0] {
		t.Errorf("root id changed: %d -> %d", first[0], second[0])
	}
	if second[1] == first[1] {
		t.Errorf("type change at position 0 kept id %d", first[1])
	}
	if second[1] <= first[2] {
		t.Errorf("new id %d should be freshly minted (> %d)", second[1], first[2])
	}
	if h.owner.ElementStates().Has(first[1]) {
		t.Error("state for the replaced text node should be collected")
	}
}

func TestReconcile_TypeChangeDiscardsSubtree(t *testing.T) {
	h := newHarness()
	inner := Stateful("inner", func() int { return 0 },
		func(n *int, _ any, _ []*Node, _ ID) *Node { return text("inner") }, nil)

	first := h.pass(box(box(Comp(inner, nil))))
	innerID := first[2]
	*StateAs[int]("inner", mustGet(t, h.owner.ComponentStates(), innerID)) = 41

	// Swap the middle container for a component wrapper: the subtree below
	// must not inherit the old inner state even though it looks the same.
	wrapper := Stateless("wrapper", func(_ any, children []*Node) *Node { return box(children...) })
	second := h.pass(box(Comp(wrapper, nil, Comp(inner, nil))))

	for _, id := range second[1:] {
		if id == innerID {
			t.Fatalf("inner component reused id %d under a different parent type", innerID)
		}
	}
	if h.owner.ComponentStates().Has(innerID) {
		t.Error("old inner state should be collected")
	}
}

func TestReconcile_KeyOverridesPosition(t *testing.T) {
	h := newHarness()
	h.pass(box(text("moved").WithKey("k"), text("plain")))
	tree := h.owner.Tree()
	keyedID := tree.Root().ChildrenByKey["k"]
	plainID := tree.At(tree.Root().Children[1]).ID

	h.pass(box(text("plain"), text("moved").WithKey("k")))
	tree = h.owner.Tree()
	if got := tree.Root().ChildrenByKey["k"]; got != keyedID {
		t.Errorf("keyed node id = %d, want %d", got, keyedID)
	}
	front := tree.At(tree.Root().Children[0]).ID
	if front == keyedID {
		t.Errorf("unkeyed node at the old position took the keyed id %d", keyedID)
	}
	if front == plainID {
		t.Errorf("unkeyed node should not match positionally across a reorder, got %d", plainID)
	}
}

func TestReconcile_KeyedComponentKeepsStateWhenReordered(t *testing.T) {
	h := newHarness()
	item := Stateful("item", func() string { return "" },
		func(s *string, props any, _ []*Node, _ ID) *Node {
			if *s == "" {
				*s = props.(string)
			}
			return text(*s)
		}, nil)

	list := func(keys ...string) *Node {
		children := make([]*Node, 0, len(keys))
		for _, k := range keys {
			children = append(children, Comp(item, k).WithKey(k))
		}
		return box(children...)
	}

	h.pass(list("a", "b", "c"))
	before := h.owner.Tree().Root().ChildrenByKey

	h.pass(list("c", "a", "b"))
	after := h.owner.Tree().Root().ChildrenByKey
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("keyed ids changed across reorder (-before +after):\n%s", diff)
	}
	for key, id := range after {
		if got := *StateAs[string]("item", mustGet(t, h.owner.ComponentStates(), id)); got != key {
			t.Errorf("state for key %q = %q", key, got)
		}
	}
}

func TestReconcile_UnkeyedNeverMatchByKey(t *testing.T) {
	h := newHarness()
	first := h.pass(box(text("a"), text("b")))
	// Inserting at the front shifts positions: unkeyed siblings match by
	// index, so the first two keep ids and the third is new.
	second := h.pass(box(text("new"), text("a"), text("b")))
	if second[1] != first[1] || second[2] != first[2] {
		t.Errorf("positional ids = %v, want prefix of %v", second, first)
	}
	if second[3] <= first[2] {
		t.Errorf("appended node should get a fresh id, got %d", second[3])
	}
}

func TestReconcile_ConcreteScenarioRemovesFoo(t *testing.T) {
	h := newHarness()
	if diff := cmp.Diff([]ID{1, 2, 3}, h.pass(box(text("Foo"), text("Bar")))); diff != "" {
		t.Fatalf("first pass ids (-want +got):\n%s", diff)
	}

	// Unkeyed: "Bar" slides into position 0 and takes that slot's identity.
	got := h.pass(box(text("Bar")))
	if diff := cmp.Diff([]ID{1, 2}, got); diff != "" {
		t.Errorf("second pass ids (-want +got):\n%s", diff)
	}
	if h.owner.ElementStates().Has(3) {
		t.Error("identity 3 should be collected")
	}
}

func TestReconcile_ConcreteScenarioKeyed(t *testing.T) {
	h := newHarness()
	h.pass(box(text("Foo").WithKey("foo"), text("Bar").WithKey("bar")))
	got := h.pass(box(text("Bar").WithKey("bar")))
	if diff := cmp.Diff([]ID{1, 3}, got); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
	states := h.owner.ElementStates()
	if states.Has(2) {
		t.Error("state for removed Foo should be collected")
	}
	if !states.Has(1) || !states.Has(3) {
		t.Error("state for surviving nodes should be retained")
	}
}

func TestReconcile_GarbageCollectionKeepsSurvivingState(t *testing.T) {
	h := newHarness()
	h.pass(box(box(), box()))
	states := h.owner.ElementStates()
	root := mustGet(t, states, 1)
	kept := mustGet(t, states, 2)
	kept.(*boxState).scroll = 12

	h.pass(box(box()))
	if states.Has(3) {
		t.Error("removed node state should be collected")
	}
	if got := mustGet(t, states, 2); got != kept {
		t.Error("surviving state should be the same object")
	}
	if got := mustGet(t, states, 1); got != root {
		t.Error("root state should be the same object")
	}
	if kept.(*boxState).scroll != 12 {
		t.Error("surviving state value changed")
	}
}

func TestReconcile_ComponentStatePersists(t *testing.T) {
	h := newHarness()
	counter := Stateful("counter", func() int { return 5 },
		func(n *int, _ any, _ []*Node, _ ID) *Node { return text("n") },
		func(n *int, ev Event) Update { *n++; return Stop() })

	h.pass(box(Comp(counter, nil)))
	id := h.owner.Tree().At(1).ID
	state := mustGet(t, h.owner.ComponentStates(), id)
	if got := *StateAs[int]("counter", state); got != 5 {
		t.Fatalf("default state = %d, want 5", got)
	}
	h.owner.Tree().At(1).Update(state, KeyEvent{})

	h.pass(box(Comp(counter, nil)))
	if got := *StateAs[int]("counter", mustGet(t, h.owner.ComponentStates(), id)); got != 6 {
		t.Errorf("state after update = %d, want 6", got)
	}
}

func TestReconcile_ComponentHasSingleChild(t *testing.T) {
	h := newHarness()
	wrapper := Stateless("wrapper", func(_ any, children []*Node) *Node { return box(children...) })
	h.pass(Comp(wrapper, nil, text("a"), text("b")))

	tree := h.owner.Tree()
	root := tree.Root()
	if root.Tag != "wrapper" || root.Element {
		t.Fatalf("root = %+v, want component wrapper", root)
	}
	if len(root.Children) != 1 {
		t.Fatalf("component has %d children, want 1", len(root.Children))
	}
	inner := tree.At(root.Children[0])
	if inner.Parent != root.ID || len(inner.Children) != 2 {
		t.Errorf("inner = %+v", inner)
	}
	// The element tree skips components.
	if got := h.owner.ElementTree().Len(); got != 3 {
		t.Errorf("element tree has %d nodes, want 3", got)
	}
}

func TestReconcile_DefaultTagIsViewFunctionName(t *testing.T) {
	c := &Component{View: namedView}
	if got := c.TagName(); !strings.HasSuffix(got, "core.namedView") {
		t.Errorf("TagName() = %q", got)
	}
}

func namedView(any, any, []*Node, ID) *Node { return nil }

func TestReconcile_DuplicateKeysPanic(t *testing.T) {
	h := newHarness()
	defer func() {
		if r := recover(); !errors.IsContract(r) {
			t.Fatalf("recovered %v, want contract violation", r)
		}
	}()
	h.pass(box(text("a").WithKey("dup"), text("b").WithKey("dup")))
}

func TestReconcile_MissingViewPanics(t *testing.T) {
	h := newHarness()
	defer func() {
		if r := recover(); !errors.IsContract(r) {
			t.Fatalf("recovered %v, want contract violation", r)
		}
	}()
	h.pass(Comp(&Component{Tag: "broken"}, nil))
}

func TestReconcile_WrongStateTypePanics(t *testing.T) {
	h := newHarness()
	c := Stateful("typed", func() int { return 0 },
		func(n *int, _ any, _ []*Node, _ ID) *Node { return text("") }, nil)
	c.DefaultState = func() any { return "not an int" }
	defer func() {
		if r := recover(); !errors.IsContract(r) {
			t.Fatalf("recovered %v, want contract violation", r)
		}
	}()
	h.pass(Comp(c, nil))
}

type captureViewErrors struct {
	errors.LogHandler
	views []*errors.ViewError
}

func (c *captureViewErrors) HandleViewError(err *errors.ViewError) {
	c.views = append(c.views, err)
}

func TestReconcile_ViewPanicRendersNothing(t *testing.T) {
	handler := &captureViewErrors{}
	errors.SetHandler(handler)
	defer errors.SetHandler(nil)

	h := newHarness()
	bad := Stateless("bad", func(any, []*Node) *Node { panic("boom") })
	h.pass(box(Comp(bad, nil), text("after")))

	if len(handler.views) != 1 || handler.views[0].Tag != "bad" {
		t.Fatalf("view errors = %+v", handler.views)
	}
	if got := h.owner.ElementTree().Len(); got != 2 {
		t.Errorf("element tree has %d nodes, want 2", got)
	}
}

func TestReconcile_DeepTreeDoesNotRecurse(t *testing.T) {
	const depth = 50000
	node := text("leaf")
	for i := 0; i < depth; i++ {
		node = box(node)
	}
	h := newHarness()
	if got := len(h.pass(node)); got != depth+1 {
		t.Errorf("tree has %d nodes, want %d", got, depth+1)
	}
}

func TestReconcile_NilRootProducesEmptyTrees(t *testing.T) {
	h := newHarness()
	h.pass(box(text("a")))
	h.pass(nil)
	if h.owner.Tree().Len() != 0 || h.owner.ElementTree().Len() != 0 {
		t.Error("expected empty trees")
	}
	if h.owner.ElementStates().Len() != 0 {
		t.Errorf("expected all state collected, %d left", h.owner.ElementStates().Len())
	}
}

func mustGet(t *testing.T, s *Store, id ID) any {
	t.Helper()
	v, ok := s.Get(id)
	if !ok {
		t.Fatalf("no state for id %d", id)
	}
	return v
}
