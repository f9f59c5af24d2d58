package driver

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/zeebo/blake3"
)

// Result is the aggregate for one program over the whole input stream.
type Result struct {
	Name   string  // Program display name
	Source string  // The program text
	Sum    float64 // Sum of the program's result over every input
}

// Report is the output of a benchmark run: one Result per program plus the
// overall total, used for cross-implementation comparison.
type Report struct {
	Results []Result
	Total   float64
}

// Fingerprint returns a hex-encoded BLAKE3 digest over the bit patterns of
// the per-program sums, in program order. Two implementations agree on the
// fingerprint exactly when they agree on every sum bit for bit.
func (r *Report) Fingerprint() string {
	h := blake3.New()
	var buf [8]byte
	for _, res := range r.Results {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(res.Sum))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
