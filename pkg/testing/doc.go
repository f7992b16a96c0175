// Package testing drives the fiber runtime synchronously for tests.
//
// # Quick Start
//
// Create a tester, pump a root node, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := fibertest.NewTesterWithT(t)
//	    tester.Pump(core.Comp(counter, nil))
//
//	    tester.Tap(fibertest.ByText("+"))
//
//	    if !tester.Find(fibertest.ByText("count: 1")).Exists() {
//	        t.Error("expected 'count: 1'")
//	    }
//	}
//
// Every call runs on the test goroutine: input is dispatched and the
// resulting frame is built before the call returns. Queued asynchronous work
// only runs when [Tester.Settle] is called.
//
// # Snapshot Testing
//
// Capture and compare the laid out element tree and its paint commands:
//
//	tester.CaptureSnapshot().MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	FIBER_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import fibertest "github.com/go-drift/fiber/pkg/testing"
package testing
