package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `kfe - A Kaleidoscope front end that compiles to LLVM IR

Usage:
    kfe <command> [arguments]

Commands:
    build <file>    Compile a .k file to a textual LLVM IR module (.ll)
    ir <file>       Print the IR of each function as it is compiled
    run <file>      Compile a .k file and evaluate its top-level expressions
    eval <code>     Evaluate inline kfe code
    check <file>    Parse a .k file without generating code
    help            Show this help message

Examples:
    kfe build -o fib.ll fib.k
    kfe run examples/fib.k
    kfe eval 'def sq(x) x*x; sq(12)'
    kfe check -pretty myfile.k

Use "kfe <command> -h" for more information about a command.
`)
}

// driverFlags are the flags shared by every command that generates code.
type driverFlags struct {
	verbose *bool
	debug   *bool
}

func addDriverFlags(fs *flag.FlagSet) driverFlags {
	return driverFlags{
		verbose: fs.Bool("v", false, "Show verbose compilation details"),
		debug:   fs.Bool("debug", false, "Print errors with stack traces"),
	}
}

func (f driverFlags) newDriver() *Driver {
	d := NewDriver()
	d.Diag = os.Stderr
	d.Debug = *f.debug
	d.Color = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if *f.verbose {
		d.Trace = os.Stdout
	}
	return d
}

func parseOneArg(fs *flag.FlagSet, args []string, what string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one %s argument\n", what)
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func readSource(filename string) []byte {
	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return sourceBytes
}

func buildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "Output file path, - for stdout (default: <filename>.ll)")
	triple := fs.String("triple", DefaultTriple(), "Target triple recorded in the module")
	datalayout := fs.String("datalayout", "", "Data layout recorded in the module")
	df := addDriverFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kfe build [-o output] [-triple t] [-datalayout l] [-v] [-debug] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile a .k file to a textual LLVM IR module\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	filename := parseOneArg(fs, args, "file")

	outputFile := *output
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filename, ".k") + ".ll"
	}
	if *df.verbose {
		fmt.Printf("Compiling %s to %s...\n", filename, outputFile)
	}

	d := df.newDriver()
	d.Module.SourceFilename = filename
	d.Module.TargetTriple = *triple
	d.Module.DataLayout = *datalayout
	if err := Compile(readSource(filename), d); err != nil {
		if len(d.Errors) == 0 {
			fmt.Fprintf(os.Stderr, "Compilation failed:\n%v\n", err)
		}
		os.Exit(1)
	}

	text := d.Module.String()
	if outputFile == "-" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing IR file %s: %v\n", outputFile, err)
		os.Exit(1)
	}
	if *df.verbose {
		fmt.Printf("Generated %s (%d functions)\n", outputFile, len(d.Module.Funcs))
	}
}

func irCommand(args []string) {
	fs := flag.NewFlagSet("ir", flag.ExitOnError)
	df := addDriverFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kfe ir [-v] [-debug] <file>\n")
		fmt.Fprintf(os.Stderr, "Print the IR of each function and extern as it is compiled\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	filename := parseOneArg(fs, args, "file")

	d := df.newDriver()
	d.Out = os.Stdout
	exitOnFailure(d, Compile(readSource(filename), d))
}

func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	maxSteps := fs.Int("max-steps", DefaultMaxSteps, "Instruction budget per top-level expression")
	df := addDriverFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kfe run [-v] [-debug] [-max-steps n] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile a .k file and evaluate its top-level expressions\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	filename := parseOneArg(fs, args, "file")

	if *df.verbose {
		fmt.Printf("Running %s...\n", filename)
	}
	runSource(df, readSource(filename), *maxSteps, os.Stdout)
}

func evalCommand(args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	maxSteps := fs.Int("max-steps", DefaultMaxSteps, "Instruction budget per top-level expression")
	df := addDriverFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kfe eval [-v] [-debug] [-max-steps n] <code>\n")
		fmt.Fprintf(os.Stderr, "Evaluate inline kfe code\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	code := parseOneArg(fs, args, "code")

	if *df.verbose {
		fmt.Printf("Evaluating: %s\n", code)
	}
	runSource(df, []byte(code), *maxSteps, os.Stdout)
}

func runSource(df driverFlags, source []byte, maxSteps int, w io.Writer) {
	d := df.newDriver()
	in := NewInterpreter(w)
	in.MaxSteps = maxSteps
	EvaluateTopLevel(d, in, w)
	exitOnFailure(d, Compile(source, d))
}

func exitOnFailure(d *Driver, err error) {
	if err == nil {
		return
	}
	// Lowering failures were already reported by the driver.
	if len(d.Errors) == 0 {
		fmt.Fprintf(os.Stderr, "Compilation failed:\n%v\n", err)
	}
	os.Exit(1)
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print the AST as an s-expression")
	prettyAST := fs.Bool("pretty", false, "Dump the Go representation of the AST")
	scan := fs.Bool("s", false, "Trace scanned tokens")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kfe check [-v] [-pretty] [-s] <file>\n")
		fmt.Fprintf(os.Stderr, "Parse a .k file without generating code\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	filename := parseOneArg(fs, args, "file")

	l := NewLexer(readSource(filename))
	if *scan {
		l.Trace = os.Stdout
	}
	ast, err := NewParser(l).ParseProgram()
	if err != nil {
		fmt.Printf("Parsing errors in %s:\n%v\n", filename, err)
		os.Exit(1)
	}

	fmt.Printf("%s: no errors found\n", filename)
	if *verbose {
		fmt.Printf("AST: %s\n", ToSExpr(ast))
	}
	if *prettyAST {
		pretty.Println(ast)
	}
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		buildCommand(args)
	case "ir":
		irCommand(args)
	case "run":
		runCommand(args)
	case "eval":
		evalCommand(args)
	case "check":
		checkCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
