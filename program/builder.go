package program

import (
	"fmt"
	"strings"
)

const (
	versionHeader = "OPENQASM 3.0;"
	includeHeader = `include "stdgates.inc";`
)

// Program is a rendered circuit. The text is an opaque payload from here on;
// the service compiles it, this side only ships it.
type Program struct {
	Text   string
	Qubits int
}

func (p *Program) String() string {
	return p.Text
}

// Builder assembles a circuit line by line and renders it exactly once.
// Errors are sticky so call sites can chain statements and check Build.
type Builder struct {
	qubits   int
	body     []string
	rewiring *RewiringPragma
	results  []*ResultPragma
	verbatim bool
	inBox    bool
	measured bool
	err      error
}

func NewBuilder(qubits int) *Builder {
	b := &Builder{qubits: qubits}
	if qubits <= 0 {
		b.err = fmt.Errorf("program needs at least one qubit, got %d", qubits)
	}
	return b
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) emit(line string) {
	if b.inBox {
		line = "    " + line
	}
	b.body = append(b.body, line)
}

func (b *Builder) checkTargets(stmt string, targets []int) bool {
	if len(targets) == 0 {
		b.fail(fmt.Errorf("%s needs at least one target", stmt))
		return false
	}
	if err := validateTargets(targets, b.qubits); err != nil {
		b.fail(fmt.Errorf("%s: %w", stmt, err))
		return false
	}
	return true
}

// Gate appends a gate statement, e.g. Gate("cz", 0, 1) -> "cz q[0], q[1];".
func (b *Builder) Gate(name string, targets ...int) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail(fmt.Errorf("gate name is empty"))
	}
	if !b.checkTargets("gate "+name, targets) {
		return b
	}
	b.emit(fmt.Sprintf("%s %s;", name, renderTargets(targets)))
	return b
}

// GateP appends a parameterized gate statement,
// e.g. GateP("rz", []float64{0.5}, 0) -> "rz(0.5) q[0];".
func (b *Builder) GateP(name string, params []float64, targets ...int) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail(fmt.Errorf("gate name is empty"))
	}
	if len(params) == 0 {
		return b.Gate(name, targets...)
	}
	if !b.checkTargets("gate "+name, targets) {
		return b
	}
	rendered := make([]string, len(params))
	for i, p := range params {
		rendered[i] = formatFloat(p)
	}
	b.emit(fmt.Sprintf("%s(%s) %s;", name, strings.Join(rendered, ", "), renderTargets(targets)))
	return b
}

func (b *Builder) Barrier(targets ...int) *Builder {
	if b.err != nil {
		return b
	}
	if len(targets) == 0 {
		b.emit("barrier q;")
		return b
	}
	if err := validateTargets(targets, b.qubits); err != nil {
		return b.fail(fmt.Errorf("barrier: %w", err))
	}
	b.emit(fmt.Sprintf("barrier %s;", renderTargets(targets)))
	return b
}

func (b *Builder) Measure(qubit, bit int) *Builder {
	if b.err != nil {
		return b
	}
	if b.inBox {
		return b.fail(fmt.Errorf("measurement is not allowed inside a verbatim box"))
	}
	if qubit < 0 || qubit >= b.qubits {
		return b.fail(fmt.Errorf("measure: qubit q[%d] is out of range [0, %d)", qubit, b.qubits))
	}
	if bit < 0 || bit >= b.qubits {
		return b.fail(fmt.Errorf("measure: bit c[%d] is out of range [0, %d)", bit, b.qubits))
	}
	b.measured = true
	b.emit(fmt.Sprintf("c[%d] = measure q[%d];", bit, qubit))
	return b
}

func (b *Builder) MeasureAll() *Builder {
	if b.err != nil {
		return b
	}
	if b.inBox {
		return b.fail(fmt.Errorf("measurement is not allowed inside a verbatim box"))
	}
	b.measured = true
	b.emit("c = measure q;")
	return b
}

// Verbatim wraps the statements emitted by fill in a verbatim box. The
// service compiles box contents as-is, so gates must be native and targets
// physically connected on the device.
func (b *Builder) Verbatim(fill func(*Builder)) *Builder {
	if b.err != nil {
		return b
	}
	if b.inBox {
		return b.fail(fmt.Errorf("verbatim boxes cannot be nested"))
	}
	b.verbatim = true
	b.emit(pragmaPrefix + " verbatim")
	b.emit("box {")
	b.inBox = true
	fill(b)
	b.inBox = false
	b.emit("}")
	return b
}

// AddPragma validates and places a pragma. Rewiring directives render ahead
// of the declarations, result pragmas after the circuit, everything else
// inline at the current position.
func (b *Builder) AddPragma(p Pragma) *Builder {
	if b.err != nil {
		return b
	}
	if err := p.validate(b.qubits); err != nil {
		return b.fail(err)
	}
	switch pr := p.(type) {
	case *RewiringPragma:
		if b.rewiring != nil {
			return b.fail(fmt.Errorf("rewiring directive is already set to %s", b.rewiring.mode))
		}
		b.rewiring = pr
	case *ResultPragma:
		b.results = append(b.results, pr)
	default:
		if b.inBox {
			return b.fail(fmt.Errorf("%s pragma is not allowed inside a verbatim box",
				p.Capability()))
		}
		b.emit(p.render())
	}
	return b
}

func (b *Builder) Build() (*Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	var sb strings.Builder
	sb.WriteString(versionHeader + "\n")
	sb.WriteString(includeHeader + "\n")
	if b.rewiring != nil {
		sb.WriteString(b.rewiring.render() + "\n")
	}
	sb.WriteString(fmt.Sprintf("qubit[%d] q;\n", b.qubits))
	if b.measured {
		sb.WriteString(fmt.Sprintf("bit[%d] c;\n", b.qubits))
	}
	for _, line := range b.body {
		sb.WriteString(line + "\n")
	}
	for _, r := range b.results {
		sb.WriteString(r.render() + "\n")
	}
	return &Program{Text: sb.String(), Qubits: b.qubits}, nil
}
