package driver

// ReferencePrograms is the fixed table of benchmark programs. Each is a
// one-line expression over the single input variable x; several exercise the
// register file through @store/@load.
var ReferencePrograms = []string{
	"1 / 1000 * x * x % 1143 + 4",
	"1 / 1000 * x * x % 1143 + 4 * x / 123 + 17",
	"x * x % 23 * 3",
	"19999 / 10000 * x * x + 5 * x / 51 + 93",
	"0 - 2 * x * x - 2 * x / 23 + 47",
	"x * x % 23 + 114 * x % 19",
	"x * x * x % 37 + x / 53",
	"x * x % 23 + @sqrt(x)",
	"x * x % 127 - 14 * x - x % 17",
	"x * x / @sqrt(x * x + 2 * x + 3) / @sqrt(3 * x * x + 1)",
	"1241051 * x % 11",
	"@sqrt(x) % 14 * 2",
	"@sqrt(x * x % 143)",
	"@sqrt(x * x % 19 - 2 * x % 113 + 371)",
	"x * x * x * @sqrt(x) % 139",
	"x * @sqrt(x) + x / @sqrt(x * x + 1)",
	"0 * @store(1, x * x) + 1 / @sqrt(@load(1) + 1) + @load(1) / 4 / @sqrt(@load(1) + 1)",
	"0 * @store(1, x * x) + 0 * @store(2, 1 + @load(1)) + 1 / @load(2) - @load(1) / @load(2)",
	"@store(5, x - 1) / @sqrt(1 + @load(5) * @load(5))",
}

// ReferenceInputCount is the length of the reference input stream.
const ReferenceInputCount = 50000

// ReferenceInputs returns the reference input stream: the integers
// 0..ReferenceInputCount-1 as floats, in order.
func ReferenceInputs() []float64 {
	return Inputs(ReferenceInputCount)
}

// Inputs returns the first n values of the input stream.
func Inputs(n int) []float64 {
	inputs := make([]float64, n)
	for i := range inputs {
		inputs[i] = float64(i)
	}
	return inputs
}
