package device

import (
	"fmt"
	"sort"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/qubera-team/qubera-client/core"
	"github.com/qubera-team/qubera-client/program"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type connectivitySpec struct {
	FullyConnected bool             `json:"fully_connected"`
	Adjacency      map[string][]int `json:"adjacency"`
}

// Topology is the coupling graph of a device, resolved from the catalog
// connectivity spec. Used only for pre-submission checks; the remote
// compiler is the authority on placement.
type Topology struct {
	fullyConnected bool
	qubits         int
	adjacency      map[int]map[int]bool
}

func ResolveTopology(di *core.DeviceInfo) (*Topology, error) {
	t := &Topology{
		qubits:    di.MaxQubits,
		adjacency: map[int]map[int]bool{},
	}
	if di.ConnectivitySpecJson == "" {
		// No spec advertised. Simulators have no coupling constraints.
		t.fullyConnected = di.Paradigm != core.ParadigmQPU
		return t, nil
	}
	var spec connectivitySpec
	if err := json.UnmarshalFromString(di.ConnectivitySpecJson, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse the connectivity spec of %s/reason:%s",
			di.DeviceID, err)
	}
	t.fullyConnected = spec.FullyConnected
	for key, neighbors := range spec.Adjacency {
		q, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("connectivity spec of %s has a non-numeric qubit %q",
				di.DeviceID, key)
		}
		for _, n := range neighbors {
			t.addEdge(q, n)
		}
	}
	return t, nil
}

func (t *Topology) addEdge(a, b int) {
	if t.adjacency[a] == nil {
		t.adjacency[a] = map[int]bool{}
	}
	if t.adjacency[b] == nil {
		t.adjacency[b] = map[int]bool{}
	}
	t.adjacency[a][b] = true
	t.adjacency[b][a] = true
}

func (t *Topology) Connected(a, b int) bool {
	if t.fullyConnected {
		return true
	}
	return t.adjacency[a][b]
}

func (t *Topology) Neighbors(q int) []int {
	out := make([]int, 0, len(t.adjacency[q]))
	for n := range t.adjacency[q] {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// IsContiguous reports whether qubits [0, n) form a connected subgraph, the
// precondition for naive rewiring which only relabels within a block.
func (t *Topology) IsContiguous(n int) bool {
	if t.fullyConnected || n <= 1 {
		return true
	}
	visited := map[int]bool{0: true}
	frontier := []int{0}
	for len(frontier) > 0 {
		q := frontier[0]
		frontier = frontier[1:]
		for n2 := range t.adjacency[q] {
			if n2 < n && !visited[n2] {
				visited[n2] = true
				frontier = append(frontier, n2)
			}
		}
	}
	return len(visited) == n
}

// CheckProgram verifies a program summary against a device capability sheet
// before submission. Everything it checks the service checks again; failing
// here just saves a round trip and a rejected-task charge.
func CheckProgram(di *core.DeviceInfo, s *program.Summary, rewiringDisabled bool) error {
	if di.Status != core.Available {
		return fmt.Errorf("device %s is %s", di.DeviceID, di.Status)
	}
	if used := s.MaxQubitIndex + 1; used > di.MaxQubits {
		return fmt.Errorf("program uses %d qubits but device %s has %d",
			used, di.DeviceID, di.MaxQubits)
	}
	for name := range s.Pragmas {
		if !di.SupportsPragma(name) {
			return fmt.Errorf("device %s does not support the %s pragma", di.DeviceID, name)
		}
	}
	for _, rt := range s.ResultTypes {
		if !di.SupportsResultType(rt) {
			return fmt.Errorf("device %s does not support the %s result type", di.DeviceID, rt)
		}
	}
	if s.Verbatim {
		if err := checkNativeGates(di, s.VerbatimGates); err != nil {
			return err
		}
	}

	rewiringOff := rewiringDisabled || s.RewiringMode == program.RewiringOff
	if !rewiringOff && s.RewiringMode != program.RewiringNaive && !s.Verbatim {
		return nil
	}
	topo, err := ResolveTopology(di)
	if err != nil {
		return err
	}
	if rewiringOff || s.Verbatim {
		// Program indices are physical: every two-qubit statement must sit
		// on a coupled pair.
		for _, pair := range s.TwoQubitPairs {
			if !topo.Connected(pair[0], pair[1]) {
				return fmt.Errorf("qubits q[%d] and q[%d] are not connected on device %s",
					pair[0], pair[1], di.DeviceID)
			}
		}
		return nil
	}
	if used := s.MaxQubitIndex + 1; !topo.IsContiguous(used) {
		return fmt.Errorf("device %s has no contiguous block of %d qubits for naive rewiring",
			di.DeviceID, s.MaxQubitIndex+1)
	}
	return nil
}

func checkNativeGates(di *core.DeviceInfo, gates []string) error {
	native := make(map[string]bool, len(di.NativeGates))
	for _, g := range di.NativeGates {
		native[g] = true
	}
	for _, g := range gates {
		if !native[g] {
			return fmt.Errorf("gate %s inside a verbatim box is not native on device %s",
				g, di.DeviceID)
		}
	}
	return nil
}
