package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/widgets"
)

// UpdateSnapshotsEnv names the environment variable that rewrites golden
// files instead of comparing against them.
const UpdateSnapshotsEnv = "FIBER_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the laid out element tree and the last frame's paint
// commands. Identities are replaced by per-type ordinals so snapshots do not
// depend on how many identities were minted before.
type Snapshot struct {
	Elements   *SnapshotNode `json:"elements"`
	DisplayOps []string      `json:"displayOps,omitempty"`
}

// SnapshotNode is one element in a Snapshot.
type SnapshotNode struct {
	ID       string          `json:"id"`
	Box      [4]float64      `json:"box"`
	Text     string          `json:"text,omitempty"`
	Children []*SnapshotNode `json:"children,omitempty"`
}

// CaptureSnapshot captures the current element tree and last frame.
func (t *Tester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{}
	elements := t.Elements()
	if elements.Len() == 0 {
		return snap
	}
	counter := &typeCounter{}
	nodes := make([]*SnapshotNode, elements.Len())
	for i := range nodes {
		n := elements.At(i)
		nodes[i] = &SnapshotNode{
			ID:   counter.next(n.Element.TypeName()),
			Box:  [4]float64{round2(n.Box.Left), round2(n.Box.Top), round2(n.Box.Width()), round2(n.Box.Height())},
			Text: elementText(n.Element, t.ElementStates(), n.ID),
		}
		if n.Parent >= 0 {
			nodes[n.Parent].Children = append(nodes[n.Parent].Children, nodes[i])
		}
	}
	snap.Elements = nodes[0]
	if frame := t.LastFrame(); frame != nil {
		for _, op := range frame.Ops() {
			snap.DisplayOps = append(snap.DisplayOps, op.String())
		}
	}
	return snap
}

func elementText(el core.Element, states *core.Store, id core.ID) string {
	switch el := el.(type) {
	case widgets.Text:
		return el.Content
	case widgets.TextInput:
		if s, ok := states.Get(id); ok {
			if input, ok := s.(*widgets.TextInputState); ok {
				return input.Text()
			}
		}
	}
	return ""
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When FIBER_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s (-expected +actual)\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff from other to this snapshot, or "" if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return cmp.Diff(strings.Split(string(b), "\n"), strings.Split(string(a), "\n"))
}

// typeCounter assigns stable IDs like "container#0", "container#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
