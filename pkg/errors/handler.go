package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	handlerMu sync.RWMutex
	handler   ErrorHandler = &LogHandler{}
)

// SetHandler installs the handler every report goes to. Nil restores a
// non-verbose LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	handler = h
	handlerMu.Unlock()
}

func current() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// Report sends err to the installed handler, stamping it if needed.
func Report(err *FiberError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	current().HandleError(err)
}

// ReportViewError sends a recovered view failure to the installed handler.
func ReportViewError(err *ViewError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	current().HandleViewError(err)
}

// Debugf writes a diagnostic line when the handler has a Debug method
// (LogHandler prints it only when Verbose).
func Debugf(format string, args ...any) {
	if d, ok := current().(interface{ Debug(msg string) }); ok {
		d.Debug(fmt.Sprintf(format, args...))
	}
}

// Recover is deferred around code that must not take the caller down. A
// recovered panic is reported as a PanicError and then passed to onPanic,
// which may be nil. Contract violations are re-raised untouched:
//
//	defer errors.Recover("engine.Job", func(r any) { ... })
func Recover(op string, onPanic func(r any)) {
	r := recover()
	if r == nil {
		return
	}
	if IsContract(r) {
		panic(r)
	}
	current().HandlePanic(&PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	})
	if onPanic != nil {
		onPanic(r)
	}
}

// CaptureStack formats the caller's stack, one function and file:line per
// frame, omitting CaptureStack and its immediate caller.
func CaptureStack() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			return sb.String()
		}
	}
}
