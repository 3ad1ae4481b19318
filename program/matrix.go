package program

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Matrix is a dense complex matrix destined for a unitary or kraus pragma.
// Only shape is validated here; unitarity and CPTP checks are performed by
// the service when the task is compiled.
type Matrix [][]complex128

func (m Matrix) Dim() int {
	return len(m)
}

func (m Matrix) validate() error {
	n := len(m)
	if n == 0 {
		return fmt.Errorf("matrix is empty")
	}
	if n&(n-1) != 0 {
		return fmt.Errorf("matrix dimension(%d) is not a power of two", n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}
	return nil
}

// qubitSpan returns how many qubits a matrix of this dimension acts on.
func (m Matrix) qubitSpan() int {
	return int(math.Round(math.Log2(float64(len(m)))))
}

func (m Matrix) render() string {
	rows := make([]string, len(m))
	for i, row := range m {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = formatComplex(c)
		}
		rows[i] = "[" + strings.Join(cells, ", ") + "]"
	}
	return "[" + strings.Join(rows, ", ") + "]"
}

// formatComplex renders a complex literal in the pragma grammar of the
// service: "0.5", "0.5im", "0.5 + 0.5im", "0.5 - 0.5im".
func formatComplex(c complex128) string {
	re := real(c)
	im := imag(c)
	switch {
	case im == 0:
		return formatFloat(re)
	case re == 0:
		return formatFloat(im) + "im"
	case im < 0:
		return fmt.Sprintf("%s - %sim", formatFloat(re), formatFloat(-im))
	default:
		return fmt.Sprintf("%s + %sim", formatFloat(re), formatFloat(im))
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func validateProbability(name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%s probability(%g) must be within [0, 1]", name, p)
	}
	return nil
}
