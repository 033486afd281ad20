// Command clc compiles a single source file, writing the scanner,
// parser, and code-generator reports into the current directory.
//
// Usage: clc [-d] [FILE]
//
// FILE defaults to input.txt. Passing -d (or --debug) raises the
// compiler's trace logging to loggo's TRACE level.
package main

import (
	"fmt"
	"os"

	"github.com/juju/loggo"
	"github.com/pborman/getopt"

	"github.com/clc-lang/clc"
)

func main() {
	os.Exit(run())
}

func run() int {
	debug := false
	getopt.BoolVarLong(&debug, "debug", 'd', "enable trace logging")
	getopt.SetParameters("[FILE]")
	getopt.Parse()

	if debug {
		loggo.GetLogger("clc").SetLogLevel(loggo.TRACE)
	}

	path := "input.txt"
	if args := getopt.Args(); len(args) > 0 {
		path = args[0]
	}

	result, err := clc.CompileFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for name, content := range result.Reports() {
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	// Defects in the compiled source land in the report files, not the
	// exit code; a nonzero exit means the compiler itself failed.
	return 0
}
