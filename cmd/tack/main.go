// Tack CLI - the main entry point for running Tack programs
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/tacklang/tack/compiler"
	"github.com/tacklang/tack/compiler/hash"
	"github.com/tacklang/tack/config"
	"github.com/tacklang/tack/pkg/bytecode"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	noColor := flag.Bool("no-color", false, "Disable ANSI color in diagnostics")
	dumpSource := flag.Bool("dump-source", false, "Print numbered source lines before compiling")
	dumpTokens := flag.Bool("dump-tokens", false, "Print the token stream")
	dumpAST := flag.Bool("dump-ast", false, "Print the parsed statement list")
	dumpBytecode := flag.Bool("dump-bytecode", false, "Print the bytecode listing")
	trace := flag.Bool("trace", false, "Trace VM execution")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tack [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the given Tack source file, or starts a REPL with no arguments.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tack                    # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  tack script.tack        # Run a script\n")
		fmt.Fprintf(os.Stderr, "  tack -dump-bytecode script.tack\n")
	}
	flag.Parse()

	cfg, err := config.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// flags override tack.toml
	cfg.Debug.DumpSource = cfg.Debug.DumpSource || *dumpSource
	cfg.Debug.DumpTokens = cfg.Debug.DumpTokens || *dumpTokens
	cfg.Debug.DumpAST = cfg.Debug.DumpAST || *dumpAST
	cfg.Debug.DumpBytecode = cfg.Debug.DumpBytecode || *dumpBytecode
	cfg.Debug.TraceVM = cfg.Debug.TraceVM || *trace
	if *noColor {
		cfg.Output.Color = false
	}
	initColor(cfg.Output.Color)

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	if cfg.Debug.TraceVM {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	args := flag.Args()
	switch len(args) {
	case 0:
		runREPL(cfg)
	case 1:
		if err := runFile(args[0], cfg, *verbose); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "too many arguments")
		flag.Usage()
		os.Exit(2)
	}
}

// runFile reads, compiles and executes a single source file.
func runFile(path string, cfg *config.Config, verbose bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file '%s' does not exist", path)
	}
	if info.Size() >= int64(cfg.Limits.MaxSourceBytes) {
		return fmt.Errorf("input file '%s' is too large (%d bytes, limit %d)", path, info.Size(), cfg.Limits.MaxSourceBytes)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading '%s': %w", path, err)
	}

	if cfg.Debug.DumpSource {
		dumpSourceLines(src)
	}

	if verbose {
		phaseBanner("Scanner")
	}
	tokens, err := compiler.NewScanner(src).Scan()
	if err != nil {
		return err
	}
	if cfg.Debug.DumpTokens {
		fmt.Fprint(os.Stderr, compiler.DumpTokens(tokens))
	}

	if verbose {
		phaseBanner("Parser")
	}
	stmts, err := compiler.Parse(tokens)
	if err != nil {
		return err
	}
	if cfg.Debug.DumpAST {
		fmt.Fprint(os.Stderr, compiler.FormatStmts(stmts))
	}
	if verbose {
		if fp, err := hash.Fingerprint(stmts); err == nil {
			fmt.Fprintf(os.Stderr, "program fingerprint %s\n", cyan(fp))
		}
	}

	if verbose {
		phaseBanner("Codegen")
	}
	chunk, err := compiler.NewCodeGen().Generate(stmts)
	if err != nil {
		return err
	}
	if cfg.Debug.DumpBytecode {
		fmt.Fprint(os.Stderr, chunk.Disassemble(path))
	}

	if verbose {
		phaseBanner("VM")
	}
	vm := bytecode.NewVM()
	vm.MaxSteps = cfg.Limits.MaxSteps
	vm.Trace = cfg.Debug.TraceVM

	status, err := vm.Run(chunk)
	if status != bytecode.StatusOK {
		return fmt.Errorf("VM exited with status %s: %w", status, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "VM exited with status %s\n", green(status.String()))
	}
	return nil
}

// dumpSourceLines prints the source with line numbers before compilation.
func dumpSourceLines(src []byte) {
	fmt.Fprintln(os.Stderr, "================================================================")
	line := 1
	start := 0
	for i := 0; i <= len(src); i++ {
		if i == len(src) || src[i] == '\n' {
			fmt.Fprintf(os.Stderr, "%s %s\n", cyan(fmt.Sprintf("%3d:", line)), src[start:i])
			line++
			start = i + 1
		}
	}
	fmt.Fprintln(os.Stderr, "================================================================")
}

var phaseno = 0

// phaseBanner prints a divider naming the next pipeline phase.
func phaseBanner(name string) {
	phaseno++
	fmt.Fprintf(os.Stderr, "\n----------------------------------------\n Phase %d : %s\n----------------------------------------\n", phaseno, name)
}
