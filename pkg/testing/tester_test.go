package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/widgets"
)

type todoState struct {
	Items []string
}

func todoApp() *core.Node {
	todo := core.Stateful("todo",
		func() todoState { return todoState{} },
		func(s *todoState, _ any, _ []*core.Node, _ core.ID) *core.Node {
			children := []*core.Node{
				core.Elem(widgets.TextInput{Width: 20, ClearOnSubmit: true}),
				core.Elem(widgets.Text{Content: fmt.Sprintf("items: %d", len(s.Items))}),
			}
			for _, item := range s.Items {
				children = append(children, core.Elem(widgets.Text{Content: item}).WithKey(item))
			}
			return core.Elem(widgets.Container{}, children...)
		},
		func(s *todoState, ev core.Event) core.Update {
			if submit, ok := ev.(core.SubmitEvent); ok && submit.Value != "" {
				s.Items = append(s.Items, submit.Value)
				return core.Stop()
			}
			return core.Continue()
		},
	)
	return core.Comp(todo, nil)
}

type loaderState struct {
	Value string
}

func loaderApp(result string) *core.Node {
	loader := core.Stateful("loader",
		func() loaderState { return loaderState{Value: "idle"} },
		func(s *loaderState, _ any, _ []*core.Node, _ core.ID) *core.Node {
			return core.Elem(widgets.Text{Content: "value: " + s.Value})
		},
		func(s *loaderState, ev core.Event) core.Update {
			switch ev := ev.(type) {
			case core.PointerEvent:
				if ev.Phase == core.PointerDown {
					s.Value = "loading"
					return core.StopWith(func(context.Context) (any, error) { return result, nil })
				}
			case core.Message:
				s.Value, _ = ev.Value.(string)
				return core.Stop()
			}
			return core.Continue()
		},
	)
	return core.Comp(loader, nil)
}

func TestNewTester_Defaults(t *testing.T) {
	tester := NewTesterWithT(t)
	if tester.size != (graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight}) {
		t.Errorf("size = %v", tester.size)
	}
	if tester.Frames() != 0 {
		t.Errorf("Frames() = %d before Pump", tester.Frames())
	}
	if tester.Find(ByTag("todo")).Exists() {
		t.Error("expected empty trees before Pump")
	}
}

func TestPump_MountsAndPaints(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Pump(todoApp())

	if tester.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", tester.Frames())
	}
	if diff := cmp.Diff([]string{"items: 0"}, tester.LastFrame().Texts()); diff != "" {
		t.Errorf("texts (-want +got):\n%s", diff)
	}
	if got := len(tester.IDs()); got != 4 {
		t.Errorf("IDs() = %v, want 4 nodes", tester.IDs())
	}
}

func TestEnterText_SubmitKeepsKeyedIdentities(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Pump(todoApp())
	input := ByType[widgets.TextInput]()

	if err := tester.EnterText(input, "milk"); err != nil {
		t.Fatal(err)
	}
	if tester.Focus() != tester.Find(input).First() {
		t.Fatalf("focus = %d, want the text input", tester.Focus())
	}
	tester.PressKey(core.KeyEnter)
	milk := tester.Find(ByText("milk")).First()

	tester.TypeText("eggs")
	tester.PressKey(core.KeyEnter)

	if got := tester.Find(ByText("milk")).First(); got != milk {
		t.Errorf("milk identity changed from %d to %d", milk, got)
	}
	if !tester.Find(ByText("items: 2")).Exists() {
		t.Errorf("expected 'items: 2', frame:\n%s", tester.LastFrame())
	}
	if diff := cmp.Diff([]string{"milk", "eggs"}, StateOf[todoState](t, tester, ByTag("todo")).Items); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
	if text := StateOf[widgets.TextInputState](t, tester, input).Text(); text != "" {
		t.Errorf("input not cleared after submit: %q", text)
	}
}

func TestSettle_AppliesAsyncResults(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Pump(loaderApp("done"))

	if err := tester.Tap(ByTextContaining("value")); err != nil {
		t.Fatal(err)
	}
	if !tester.Find(ByText("value: loading")).Exists() {
		t.Fatalf("expected loading state, frame:\n%s", tester.LastFrame())
	}
	if err := tester.Settle(time.Second); err != nil {
		t.Fatal(err)
	}
	if !tester.Find(ByText("value: done")).Exists() {
		t.Errorf("expected 'value: done', frame:\n%s", tester.LastFrame())
	}
	if err := tester.Settle(time.Second); err != nil {
		t.Errorf("Settle with nothing queued: %v", err)
	}
}

func TestTap_NoMatch(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Pump(todoApp())
	if err := tester.Tap(ByText("missing")); err == nil {
		t.Error("expected error for unmatched finder")
	}
}

func TestSetSize_Resizes(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.Pump(todoApp())
	tester.SetSize(graphics.Size{Width: 30, Height: 5})

	root := tester.Find(ByType[widgets.Container]()).First()
	box, ok := tester.Box(root)
	if !ok {
		t.Fatal("no box for root container")
	}
	if box != graphics.RectFromLTWH(0, 0, 30, 5) {
		t.Errorf("root box = %v, want 30x5", box)
	}
}

func TestScroll_MovesScrollableContainer(t *testing.T) {
	tester := NewTesterWithT(t)
	list := core.Elem(widgets.Container{Height: 2, Overflow: core.OverflowScroll},
		core.Elem(widgets.Text{Content: "a"}),
		core.Elem(widgets.Text{Content: "b"}),
		core.Elem(widgets.Text{Content: "c"}),
	)
	tester.Pump(core.Elem(widgets.Container{}, list))

	scroller := ByPredicate(func(n *core.ComponentNode, el core.Element) bool {
		c, ok := el.(widgets.Container)
		return ok && c.Overflow == core.OverflowScroll
	})
	if err := tester.Scroll(scroller, graphics.Offset{Y: 1}); err != nil {
		t.Fatal(err)
	}
	box, _ := tester.Box(tester.Find(ByText("a")).First())
	if box.Top != -1 {
		t.Errorf("first row top = %v, want -1", box.Top)
	}
	if s := StateOf[widgets.ScrollState](t, tester, scroller); s.Offset != 1 {
		t.Errorf("offset = %v, want 1", s.Offset)
	}
}
