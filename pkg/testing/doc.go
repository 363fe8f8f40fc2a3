// Package testing provides a component testing harness for setstate.
//
// # Quick Start
//
// Create a tester, mount a state, and make assertions:
//
//	func TestTitle(t *testing.T) {
//	    tester := drifttest.NewTesterWithT(t)
//	    calls := drifttest.NewRecorder[int]()
//	    s := &titleState{onChange: calls.Func()}
//	    tester.Mount(s)
//
//	    s.count.Set(10)
//	    tester.Pump()
//
//	    if !calls.CalledWith(10) {
//	        t.Error("expected callback with 10")
//	    }
//	}
//
// # Diagnostics
//
// The tester installs a RecordingHandler as the global error handler for
// its lifetime, so warnings such as an invalid change callback can be
// asserted with tester.Handler().Warnings().
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import drifttest "github.com/go-drift/setstate/pkg/testing"
package testing
