package clc

import "github.com/juju/loggo"

// tracer is the shared debug-trace sink for the whole pipeline: scanner
// state transitions, each lookahead the parser pulls and each illegal
// token it skips, and each instruction the code generator emits. It is
// silent unless the caller raises the logger's
// level (the CLI does this behind -d, see cmd/clc).
var tracer = loggo.GetLogger("clc")

func traceScan(format string, args ...interface{}) {
	tracer.Tracef(format, args...)
}

func traceParse(format string, args ...interface{}) {
	tracer.Tracef(format, args...)
}

func traceGen(format string, args ...interface{}) {
	tracer.Tracef(format, args...)
}
