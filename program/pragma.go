package program

import (
	"fmt"
	"strings"
)

// pragmaPrefix marks vendor directives embedded in the program text. The
// base language ignores unknown pragmas, so programs stay valid IR for any
// consumer; only the service interprets them.
const pragmaPrefix = "#pragma qubera"

const (
	CapabilityNoise    = "noise"
	CapabilityUnitary  = "unitary"
	CapabilityVerbatim = "verbatim"
	CapabilityRewiring = "rewiring"
)

const (
	ResultExpectation   = "expectation"
	ResultVariance      = "variance"
	ResultSample        = "sample"
	ResultProbability   = "probability"
	ResultAmplitude     = "amplitude"
	ResultStateVector   = "state_vector"
	ResultDensityMatrix = "density_matrix"
)

// RequiresZeroShots reports whether a result type is an exact simulator
// quantity that the service only computes on zero-shot tasks.
func RequiresZeroShots(rtype string) bool {
	switch rtype {
	case ResultStateVector, ResultAmplitude, ResultDensityMatrix:
		return true
	default:
		return false
	}
}

// RequiresShots reports whether a result type needs at least one shot.
func RequiresShots(rtype string) bool {
	return rtype == ResultSample
}

type Pragma interface {
	// Capability is the capability key a device must advertise to accept
	// this pragma. Result pragmas report their result type.
	Capability() string

	render() string
	validate(qubits int) error
}

type NoisePragma struct {
	channel  string
	args     []float64
	matrices []Matrix
	targets  []int
}

func BitFlip(p float64, target int) *NoisePragma {
	return &NoisePragma{channel: "bit_flip", args: []float64{p}, targets: []int{target}}
}

func PhaseFlip(p float64, target int) *NoisePragma {
	return &NoisePragma{channel: "phase_flip", args: []float64{p}, targets: []int{target}}
}

func Depolarizing(p float64, target int) *NoisePragma {
	return &NoisePragma{channel: "depolarizing", args: []float64{p}, targets: []int{target}}
}

func TwoQubitDepolarizing(p float64, target1, target2 int) *NoisePragma {
	return &NoisePragma{
		channel: "two_qubit_depolarizing",
		args:    []float64{p},
		targets: []int{target1, target2},
	}
}

func AmplitudeDamping(gamma float64, target int) *NoisePragma {
	return &NoisePragma{channel: "amplitude_damping", args: []float64{gamma}, targets: []int{target}}
}

func GeneralizedAmplitudeDamping(gamma, p float64, target int) *NoisePragma {
	return &NoisePragma{
		channel: "generalized_amplitude_damping",
		args:    []float64{gamma, p},
		targets: []int{target},
	}
}

func PhaseDamping(gamma float64, target int) *NoisePragma {
	return &NoisePragma{channel: "phase_damping", args: []float64{gamma}, targets: []int{target}}
}

func PauliChannel(px, py, pz float64, target int) *NoisePragma {
	return &NoisePragma{
		channel: "pauli_channel",
		args:    []float64{px, py, pz},
		targets: []int{target},
	}
}

// Kraus attaches an arbitrary noise channel given by its Kraus operators.
// Shape is checked locally; the CPTP condition is validated by the service.
func Kraus(matrices []Matrix, targets ...int) *NoisePragma {
	return &NoisePragma{channel: "kraus", matrices: matrices, targets: targets}
}

func (n *NoisePragma) Capability() string {
	return CapabilityNoise
}

func (n *NoisePragma) render() string {
	var arg string
	if n.channel == "kraus" {
		rendered := make([]string, len(n.matrices))
		for i, m := range n.matrices {
			rendered[i] = m.render()
		}
		arg = strings.Join(rendered, ", ")
	} else {
		parts := make([]string, len(n.args))
		for i, a := range n.args {
			parts[i] = formatFloat(a)
		}
		arg = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%s noise %s(%s) %s", pragmaPrefix, n.channel, arg, renderTargets(n.targets))
}

func (n *NoisePragma) validate(qubits int) error {
	if err := validateTargets(n.targets, qubits); err != nil {
		return fmt.Errorf("noise %s: %w", n.channel, err)
	}
	for _, a := range n.args {
		if err := validateProbability(n.channel, a); err != nil {
			return err
		}
	}
	switch n.channel {
	case "two_qubit_depolarizing":
		if len(n.targets) != 2 {
			return fmt.Errorf("noise %s needs 2 targets, got %d", n.channel, len(n.targets))
		}
	case "pauli_channel":
		if sum := n.args[0] + n.args[1] + n.args[2]; sum > 1 {
			return fmt.Errorf("pauli_channel probabilities sum(%g) must not exceed 1", sum)
		}
	case "kraus":
		return n.validateKraus()
	default:
		if len(n.targets) != 1 {
			return fmt.Errorf("noise %s needs 1 target, got %d", n.channel, len(n.targets))
		}
	}
	return nil
}

func (n *NoisePragma) validateKraus() error {
	if len(n.matrices) == 0 {
		return fmt.Errorf("kraus needs at least one operator")
	}
	dim := n.matrices[0].Dim()
	for i, m := range n.matrices {
		if err := m.validate(); err != nil {
			return fmt.Errorf("kraus operator %d: %w", i, err)
		}
		if m.Dim() != dim {
			return fmt.Errorf("kraus operator %d has dimension %d, want %d", i, m.Dim(), dim)
		}
	}
	span := n.matrices[0].qubitSpan()
	if span > 2 {
		return fmt.Errorf("kraus operators act on %d qubits, at most 2 are accepted", span)
	}
	if span != len(n.targets) {
		return fmt.Errorf("kraus operators act on %d qubits but %d targets are given",
			span, len(n.targets))
	}
	return nil
}

type UnitaryPragma struct {
	matrix  Matrix
	targets []int
}

// Unitary injects an arbitrary unitary as a pragma instead of a gate
// definition. Unitarity itself is checked by the service.
func Unitary(m Matrix, targets ...int) *UnitaryPragma {
	return &UnitaryPragma{matrix: m, targets: targets}
}

func (u *UnitaryPragma) Capability() string {
	return CapabilityUnitary
}

func (u *UnitaryPragma) render() string {
	return fmt.Sprintf("%s unitary(%s) %s", pragmaPrefix, u.matrix.render(), renderTargets(u.targets))
}

func (u *UnitaryPragma) validate(qubits int) error {
	if err := u.matrix.validate(); err != nil {
		return fmt.Errorf("unitary: %w", err)
	}
	if err := validateTargets(u.targets, qubits); err != nil {
		return fmt.Errorf("unitary: %w", err)
	}
	if span := u.matrix.qubitSpan(); span != len(u.targets) {
		return fmt.Errorf("unitary acts on %d qubits but %d targets are given", span, len(u.targets))
	}
	return nil
}

type obsFactor struct {
	pauli  string
	target int
}

// Observable is a tensor product of single-qubit factors used by
// expectation, variance and sample result types.
type Observable struct {
	factors   []obsFactor
	hermitian Matrix
	targets   []int
}

func X(q int) Observable { return Observable{factors: []obsFactor{{"x", q}}} }
func Y(q int) Observable { return Observable{factors: []obsFactor{{"y", q}}} }
func Z(q int) Observable { return Observable{factors: []obsFactor{{"z", q}}} }
func I(q int) Observable { return Observable{factors: []obsFactor{{"i", q}}} }
func H(q int) Observable { return Observable{factors: []obsFactor{{"h", q}}} }

// Hermitian wraps a caller-supplied hermitian matrix as an observable.
// It cannot be tensored with other factors.
func Hermitian(m Matrix, targets ...int) Observable {
	return Observable{hermitian: m, targets: targets}
}

// Tensor combines observables into a product, rendered with "@".
func (o Observable) Tensor(p Observable) Observable {
	return Observable{factors: append(append([]obsFactor{}, o.factors...), p.factors...),
		hermitian: o.hermitian, targets: o.targets}
}

func (o Observable) render() string {
	if o.hermitian != nil {
		return fmt.Sprintf("hermitian(%s) %s", o.hermitian.render(), renderTargets(o.targets))
	}
	parts := make([]string, len(o.factors))
	for i, f := range o.factors {
		parts[i] = fmt.Sprintf("%s(q[%d])", f.pauli, f.target)
	}
	return strings.Join(parts, " @ ")
}

func (o Observable) validate(qubits int) error {
	if o.hermitian != nil {
		if len(o.factors) > 0 {
			return fmt.Errorf("hermitian observable cannot be tensored")
		}
		if err := o.hermitian.validate(); err != nil {
			return fmt.Errorf("hermitian observable: %w", err)
		}
		if span := o.hermitian.qubitSpan(); span != len(o.targets) {
			return fmt.Errorf("hermitian observable acts on %d qubits but %d targets are given",
				span, len(o.targets))
		}
		return validateTargets(o.targets, qubits)
	}
	if len(o.factors) == 0 {
		return fmt.Errorf("observable is empty")
	}
	seen := map[int]bool{}
	for _, f := range o.factors {
		if f.target < 0 || f.target >= qubits {
			return fmt.Errorf("observable target q[%d] is out of range [0, %d)", f.target, qubits)
		}
		if seen[f.target] {
			return fmt.Errorf("observable target q[%d] is used twice", f.target)
		}
		seen[f.target] = true
	}
	return nil
}

type ResultPragma struct {
	rtype   string
	obs     *Observable
	targets []int
	states  []string
}

func Expectation(o Observable) *ResultPragma {
	return &ResultPragma{rtype: ResultExpectation, obs: &o}
}

func Variance(o Observable) *ResultPragma {
	return &ResultPragma{rtype: ResultVariance, obs: &o}
}

func Sample(o Observable) *ResultPragma {
	return &ResultPragma{rtype: ResultSample, obs: &o}
}

// Probability requests the measurement distribution of the given qubits.
// Without targets the full register distribution is returned.
func Probability(targets ...int) *ResultPragma {
	return &ResultPragma{rtype: ResultProbability, targets: targets}
}

func Amplitude(states ...string) *ResultPragma {
	return &ResultPragma{rtype: ResultAmplitude, states: states}
}

func StateVector() *ResultPragma {
	return &ResultPragma{rtype: ResultStateVector}
}

func DensityMatrix(targets ...int) *ResultPragma {
	return &ResultPragma{rtype: ResultDensityMatrix, targets: targets}
}

func (r *ResultPragma) Capability() string {
	return r.rtype
}

func (r *ResultPragma) render() string {
	switch {
	case r.obs != nil:
		return fmt.Sprintf("%s result %s %s", pragmaPrefix, r.rtype, r.obs.render())
	case len(r.states) > 0:
		quoted := make([]string, len(r.states))
		for i, s := range r.states {
			quoted[i] = `"` + s + `"`
		}
		return fmt.Sprintf("%s result %s %s", pragmaPrefix, r.rtype, strings.Join(quoted, ", "))
	case len(r.targets) > 0:
		return fmt.Sprintf("%s result %s %s", pragmaPrefix, r.rtype, renderTargets(r.targets))
	default:
		return fmt.Sprintf("%s result %s", pragmaPrefix, r.rtype)
	}
}

func (r *ResultPragma) validate(qubits int) error {
	switch r.rtype {
	case ResultExpectation, ResultVariance, ResultSample:
		if r.obs == nil {
			return fmt.Errorf("result %s needs an observable", r.rtype)
		}
		return r.obs.validate(qubits)
	case ResultAmplitude:
		if len(r.states) == 0 {
			return fmt.Errorf("result amplitude needs at least one state")
		}
		for _, s := range r.states {
			if len(s) != qubits {
				return fmt.Errorf("amplitude state %q must name all %d qubits", s, qubits)
			}
			for _, c := range s {
				if c != '0' && c != '1' {
					return fmt.Errorf("amplitude state %q is not a binary string", s)
				}
			}
		}
		return nil
	case ResultProbability, ResultDensityMatrix:
		return validateTargets(r.targets, qubits)
	case ResultStateVector:
		return nil
	default:
		return fmt.Errorf("unknown result type %s", r.rtype)
	}
}

type RewiringPragma struct {
	mode string
}

// Rewiring sets the qubit-rewiring strategy the service should apply. The
// strategies themselves live in the remote compiler.
func Rewiring(mode string) *RewiringPragma {
	return &RewiringPragma{mode: mode}
}

const (
	RewiringOff     = "off"
	RewiringNaive   = "naive"
	RewiringPartial = "partial"
)

func (r *RewiringPragma) Capability() string {
	return CapabilityRewiring
}

func (r *RewiringPragma) render() string {
	return fmt.Sprintf("%s rewiring %s", pragmaPrefix, r.mode)
}

func (r *RewiringPragma) validate(int) error {
	switch r.mode {
	case RewiringOff, RewiringNaive, RewiringPartial:
		return nil
	default:
		return fmt.Errorf("unknown rewiring mode %s", r.mode)
	}
}

func renderTargets(targets []int) string {
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = fmt.Sprintf("q[%d]", t)
	}
	return strings.Join(parts, ", ")
}

func validateTargets(targets []int, qubits int) error {
	seen := map[int]bool{}
	for _, t := range targets {
		if t < 0 || t >= qubits {
			return fmt.Errorf("target q[%d] is out of range [0, %d)", t, qubits)
		}
		if seen[t] {
			return fmt.Errorf("target q[%d] is used twice", t)
		}
		seen[t] = true
	}
	return nil
}
