package driver

import (
	"testing"
)

// benchInputs is sized well below the reference stream so a single benchmark
// iteration stays cheap; b.N scaling covers the rest.
var benchInputs = Inputs(1000)

func compileBench(b *testing.B, text string) (*Digitron, *Program) {
	b.Helper()
	d := New(WithPoolCapacity(256))
	prog, errs := d.Compile("bench", text)
	if len(errs) > 0 {
		b.Fatalf("compile failed: %v", errs[0])
	}
	return d, prog
}

func BenchmarkEvaluateArithmetic(b *testing.B) {
	d, prog := compileBench(b, "x * x % 23 * 3")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.RunProgram(prog, benchInputs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluateRegisters(b *testing.B) {
	d, prog := compileBench(b, "@store(5, x - 1) / @sqrt(1 + @load(5) * @load(5))")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.RunProgram(prog, benchInputs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	d := New(WithPoolCapacity(256))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		prog, errs := d.Compile("bench", ReferencePrograms[16])
		if len(errs) > 0 {
			b.Fatalf("compile failed: %v", errs[0])
		}
		d.Release(prog)
	}
}

func BenchmarkReferenceSuite(b *testing.B) {
	d := New()
	if _, errs := d.CompileAll(ReferencePrograms); len(errs) > 0 {
		b.Fatalf("compile failed: %v", errs[0])
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Run(benchInputs); err != nil {
			b.Fatal(err)
		}
	}
}
