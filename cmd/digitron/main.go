package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"digitron/pkg/driver"
	"digitron/pkg/errors"
	"digitron/pkg/expr"
	"digitron/pkg/parser"
	"digitron/pkg/source"
	"digitron/pkg/vm"
)

func main() {
	// Define flags
	exprFlag := flag.String("e", "", "Evaluate the given expression and exit")
	inputFlag := flag.Float64("x", 0, "Value bound to the input variable x (used with -e)")
	countFlag := flag.Int("n", driver.ReferenceInputCount, "Number of input values for the benchmark")
	listFlag := flag.Bool("list", false, "Print the reference program table and exit")
	replFlag := flag.Bool("repl", false, "Start an interactive session")

	flag.Parse()

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Usage: digitron [-e \"expression\" [-x value]] [-n count] [-list] [-repl]\n")
		os.Exit(64) // Exit code 64: command line usage error
	}

	switch {
	case *listFlag:
		for i, text := range driver.ReferencePrograms {
			fmt.Printf("%2d  %s\n", i+1, text)
		}
	case *exprFlag != "":
		runExpression(*exprFlag, *inputFlag)
	case *replFlag:
		runRepl()
	default:
		runBenchmark(*countFlag)
	}
}

// runExpression evaluates a single expression provided via the -e flag,
// with x bound to the -x value.
func runExpression(text string, x float64) {
	d := driver.New()
	prog, errs := d.Compile("<eval>", text)
	if len(errs) > 0 {
		errors.DisplayErrors(text, errs)
		os.Exit(70) // Exit code 70: internal software error
	}

	sum, err := d.RunProgram(prog, []float64{x})
	if err != nil {
		color.Red("%s", err)
		os.Exit(70)
	}
	fmt.Printf("%g\n", sum)
}

// runBenchmark compiles the reference program table and evaluates every
// program over the input stream, reporting per-program aggregates and the
// overall fingerprint.
func runBenchmark(count int) {
	d := driver.New()
	if _, errs := d.CompileAll(driver.ReferencePrograms); len(errs) > 0 {
		for _, err := range errs {
			color.Red("%s", err)
		}
		os.Exit(70)
	}
	fmt.Printf("compiled %d programs (%d pool nodes live)\n",
		len(d.Programs()), d.Pool().Live())

	inputs := driver.Inputs(count)
	start := time.Now()
	report, err := d.Run(inputs)
	if err != nil {
		color.Red("%s", err)
		os.Exit(70)
	}
	elapsed := time.Since(start)

	for _, res := range report.Results {
		fmt.Printf("%-12s %22.6f  %s\n", res.Name, res.Sum, res.Source)
	}
	color.Green("total %.6f over %d inputs in %s", report.Total, count, elapsed)
	fmt.Printf("fingerprint %s\n", report.Fingerprint())
}

const (
	historyFile = ".digitron_history"
	promptMain  = "> "
)

// runRepl starts the Read-Eval-Print Loop. Registers persist across lines so
// @store on one line is visible to @load on the next; :reset clears them.
func runRepl() {
	fmt.Println("Digitron (Ctrl+D to exit, :help for commands)")

	ln := newLineReader()
	defer ln.close()

	pool := expr.NewPool(expr.DefaultCapacity)
	env := vm.NewEnvironment()

	for {
		line, ok := ln.prompt(promptMain)
		if !ok {
			fmt.Println("\nGoodbye!")
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			if quit := replCommand(trimmed, env); quit {
				break
			}
			ln.append(line)
			continue
		}

		root, errs := parser.Parse(source.NewReplSource(line), pool)
		if len(errs) > 0 {
			errors.DisplayErrors(line, errs)
			continue
		}

		v, err := vm.Evaluate(pool, root, env)
		pool.Free(root) // One-shot trees go straight back to the pool
		if err != nil {
			color.Red("%s", err)
			continue
		}
		fmt.Printf("%g\n", v)
		ln.append(line)
	}
}

// replCommand handles ':' commands. Returns true when the REPL should exit.
func replCommand(cmd string, env *vm.Environment) bool {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":reset":
		env.Reset()
		fmt.Println("environment reset")
	case ":set":
		if len(fields) != 3 || len(fields[1]) != 1 {
			color.Red("usage: :set <letter> <value>")
			return false
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			color.Red("bad value %q", fields[2])
			return false
		}
		if err := env.BindInput(fields[1][0], value); err != nil {
			color.Red("%s", err)
			return false
		}
		fmt.Printf("%s = %g\n", fields[1], value)
	case ":help":
		fmt.Print(`Commands:
  :set <letter> <value>  Bind an input variable (a-z)
  :reset                 Zero all inputs and registers
  :quit                  Exit
`)
	default:
		fmt.Println("unknown command. Type :help for commands.")
	}
	return false
}
