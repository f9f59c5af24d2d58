package driver

import (
	"fmt"

	"digitron/pkg/errors"
	"digitron/pkg/expr"
	"digitron/pkg/parser"
	"digitron/pkg/source"
	"digitron/pkg/vm"
)

// Program is a compiled expression tree paired with the text it was parsed
// from. Programs are created by Compile, retained for the lifetime of the
// session, and never mutated after parsing.
type Program struct {
	Source *source.SourceFile
	Root   expr.Ref
}

// Digitron is a benchmark session. It owns one node pool and the programs
// compiled from it, and evaluates each program over a stream of input
// values, folding the results into per-program sums.
//
// A session is single-threaded by construction: the pool and the evaluation
// environment are shared mutable state with no locking. Concurrent use needs
// one session per worker.
type Digitron struct {
	pool      *expr.Pool
	inputName byte
	programs  []*Program
}

// Option configures a session.
type Option func(*Digitron)

// WithPoolCapacity sets the node pool capacity. The pool must hold the union
// of all retained programs' nodes at once.
func WithPoolCapacity(capacity int) Option {
	return func(d *Digitron) {
		d.pool = expr.NewPool(capacity)
	}
}

// WithInputName sets the input slot (a-z) the driver binds each input value
// to. The reference programs use 'x'.
func WithInputName(name byte) Option {
	return func(d *Digitron) {
		d.inputName = name
	}
}

// New creates a session with a pool of expr.DefaultCapacity nodes, binding
// inputs to 'x'.
func New(opts ...Option) *Digitron {
	d := &Digitron{
		inputName: 'x',
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.pool == nil {
		d.pool = expr.NewPool(expr.DefaultCapacity)
	}
	return d
}

// Pool exposes the session's node pool (for inspection in tests and tools).
func (d *Digitron) Pool() *expr.Pool {
	return d.pool
}

// Programs returns the programs compiled and retained so far, in order.
func (d *Digitron) Programs() []*Program {
	return d.programs
}

// Compile parses one program text, retaining the tree in the session. On
// failure the pool is left exactly as it was.
func (d *Digitron) Compile(name, text string) (*Program, []errors.DigitronError) {
	sf := source.NewSourceFile(name, text)
	root, errs := parser.Parse(sf, d.pool)
	if len(errs) > 0 {
		return nil, errs
	}
	prog := &Program{Source: sf, Root: root}
	d.programs = append(d.programs, prog)
	return prog, nil
}

// CompileAll compiles every text, naming them program-1, program-2, ...
// The first failing program aborts the batch; programs compiled before it
// stay retained.
func (d *Digitron) CompileAll(texts []string) ([]*Program, []errors.DigitronError) {
	progs := make([]*Program, 0, len(texts))
	for i, text := range texts {
		prog, errs := d.Compile(fmt.Sprintf("program-%d", i+1), text)
		if len(errs) > 0 {
			return nil, errs
		}
		progs = append(progs, prog)
	}
	return progs, nil
}

// Release discards a retained program, returning its nodes to the pool. The
// program must not be evaluated afterwards.
func (d *Digitron) Release(prog *Program) {
	for i, p := range d.programs {
		if p == prog {
			d.programs = append(d.programs[:i], d.programs[i+1:]...)
			break
		}
	}
	d.pool.Free(prog.Root)
	prog.Root = expr.NilRef
}

// RunProgram evaluates one program against every input value in sequence,
// binding each value into a reset environment's input slot, and returns the
// sum of all results. The summation keeps the per-input work observable, so
// nothing can be optimized away.
func (d *Digitron) RunProgram(prog *Program, inputs []float64) (float64, error) {
	env := vm.NewEnvironment()
	var sum float64
	for _, in := range inputs {
		env.Reset()
		if err := env.BindInput(d.inputName, in); err != nil {
			return 0, err
		}
		v, err := vm.Evaluate(d.pool, prog.Root, env)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", prog.Source.Name, err)
		}
		sum += v
	}
	return sum, nil
}

// Run evaluates every retained program over the input stream and returns the
// aggregated report. Any evaluation error is fatal for the run.
func (d *Digitron) Run(inputs []float64) (*Report, error) {
	report := &Report{
		Results: make([]Result, 0, len(d.programs)),
	}
	for _, prog := range d.programs {
		sum, err := d.RunProgram(prog, inputs)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, Result{
			Name:   prog.Source.Name,
			Source: prog.Source.Content,
			Sum:    sum,
		})
		report.Total += sum
	}
	return report, nil
}

// RunReference compiles the reference program table and runs it over the
// reference input stream, reproducing the original benchmark end to end.
func RunReference() (*Report, error) {
	d := New()
	if _, errs := d.CompileAll(ReferencePrograms); len(errs) > 0 {
		return nil, errs[0]
	}
	return d.Run(ReferenceInputs())
}
