//go:build unit
// +build unit

package program

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
)

func TestInspectBellPair(t *testing.T) {
	text := heredoc.Doc(`
		OPENQASM 3.0;
		include "stdgates.inc";
		qubit[2] q;
		bit[2] c;
		h q[0];
		cx q[0], q[1];
		c = measure q;
	`)
	s := Inspect(text)

	assert.Empty(t, s.Pragmas)
	assert.Empty(t, s.ResultTypes)
	assert.False(t, s.Verbatim)
	assert.Equal(t, 1, s.MaxQubitIndex)
	assert.Equal(t, [][2]int{{0, 1}}, s.TwoQubitPairs)
}

func TestInspectPragmas(t *testing.T) {
	text := heredoc.Doc(`
		OPENQASM 3.0;
		include "stdgates.inc";
		#pragma qubera rewiring off
		qubit[3] q;
		h q[0];
		#pragma qubera noise bit_flip(0.1) q[0]
		#pragma qubera noise two_qubit_depolarizing(0.1) q[0], q[2]
		#pragma qubera unitary([[0, 1], [1, 0]]) q[1]
		#pragma qubera result expectation x(q[0]) @ y(q[1])
		#pragma qubera result amplitude "000"
	`)
	s := Inspect(text)

	assert.True(t, s.HasNoise())
	assert.True(t, s.Pragmas[CapabilityUnitary])
	assert.True(t, s.Pragmas[CapabilityRewiring])
	assert.Equal(t, "off", s.RewiringMode)
	assert.Equal(t, []string{"bit_flip", "two_qubit_depolarizing"}, s.NoiseChannels)
	assert.Equal(t, []string{ResultExpectation, ResultAmplitude}, s.ResultTypes)
	assert.True(t, s.HasResultType(ResultAmplitude))
	assert.False(t, s.HasResultType(ResultSample))
	assert.True(t, s.NeedsZeroShots())
	assert.False(t, s.NeedsShots())
	assert.Equal(t, 2, s.MaxQubitIndex)
}

func TestInspectVerbatimBox(t *testing.T) {
	text := heredoc.Doc(`
		OPENQASM 3.0;
		include "stdgates.inc";
		qubit[2] q;
		bit[2] c;
		#pragma qubera verbatim
		box {
		    rz(0.5) q[0];
		    sx q[0];
		    cz q[0], q[1];
		}
		c = measure q;
	`)
	s := Inspect(text)

	assert.True(t, s.Verbatim)
	assert.Equal(t, []string{"rz", "sx", "cz"}, s.VerbatimGates)
	assert.Equal(t, [][2]int{{0, 1}}, s.TwoQubitPairs)
}

func TestInspectBuiltProgram(t *testing.T) {
	b := NewBuilder(2)
	b.Gate("h", 0)
	b.Gate("cx", 0, 1)
	b.AddPragma(Sample(Z(0)))
	b.MeasureAll()
	p, err := b.Build()
	assert.Nil(t, err)

	s := Inspect(p.Text)
	assert.Equal(t, []string{ResultSample}, s.ResultTypes)
	assert.True(t, s.NeedsShots())
	assert.Equal(t, 1, s.MaxQubitIndex)
}

func TestInspectIgnoresCommentsAndBlankLines(t *testing.T) {
	text := "// bell pair\n\nh q[0];\n"
	s := Inspect(text)
	assert.Equal(t, 0, s.MaxQubitIndex)
	assert.Empty(t, s.TwoQubitPairs)
}

func TestScanQubitIndices(t *testing.T) {
	assert.Equal(t, []int{0, 12}, scanQubitIndices("cx q[0], q[12];"))
	assert.Nil(t, scanQubitIndices("barrier;"))
	assert.Nil(t, scanQubitIndices("freq[3] = 1;"))
}
