package program

import (
	"strconv"
	"strings"
)

// Summary is a lexical sketch of a program, enough for pre-submission device
// checks. It is not a parse: the service owns the real grammar, this side
// only scans its own rendered lines.
type Summary struct {
	// Pragmas holds the capability keys seen: noise, unitary, verbatim,
	// rewiring. Result types are listed separately.
	Pragmas       map[string]bool
	ResultTypes   []string
	NoiseChannels []string
	Verbatim      bool
	RewiringMode  string
	// TwoQubitPairs lists the target pairs of two-qubit gate statements,
	// used for connectivity checks when rewiring is off.
	TwoQubitPairs [][2]int
	// VerbatimGates lists gate names used inside verbatim boxes; these must
	// be native on the device.
	VerbatimGates []string
	MaxQubitIndex int
}

func (s *Summary) HasNoise() bool {
	return s.Pragmas[CapabilityNoise]
}

func (s *Summary) HasResultType(rtype string) bool {
	for _, rt := range s.ResultTypes {
		if rt == rtype {
			return true
		}
	}
	return false
}

// NeedsZeroShots reports whether any requested result type forces shots==0.
func (s *Summary) NeedsZeroShots() bool {
	for _, rt := range s.ResultTypes {
		if RequiresZeroShots(rt) {
			return true
		}
	}
	return false
}

// NeedsShots reports whether any requested result type forces shots>0.
func (s *Summary) NeedsShots() bool {
	for _, rt := range s.ResultTypes {
		if RequiresShots(rt) {
			return true
		}
	}
	return false
}

// Inspect scans program text line by line and summarizes the vendor pragmas
// and gate statements it finds.
func Inspect(text string) *Summary {
	s := &Summary{
		Pragmas:       map[string]bool{},
		MaxQubitIndex: -1,
	}
	inBox := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || strings.HasPrefix(line, "//"):
			continue
		case strings.HasPrefix(line, pragmaPrefix):
			s.scanPragma(strings.TrimSpace(strings.TrimPrefix(line, pragmaPrefix)))
		case line == "box {" || strings.HasPrefix(line, "box{"):
			inBox = true
		case line == "}":
			inBox = false
		default:
			s.scanStatement(line, inBox)
		}
	}
	return s
}

func (s *Summary) scanPragma(rest string) {
	directive, args, _ := strings.Cut(rest, " ")
	switch {
	case directive == CapabilityVerbatim:
		s.Pragmas[CapabilityVerbatim] = true
		s.Verbatim = true
	case directive == CapabilityRewiring:
		s.Pragmas[CapabilityRewiring] = true
		s.RewiringMode = strings.TrimSpace(args)
	case directive == "result":
		rtype, _, _ := strings.Cut(strings.TrimSpace(args), " ")
		s.ResultTypes = append(s.ResultTypes, rtype)
	case strings.HasPrefix(directive, CapabilityNoise):
		s.Pragmas[CapabilityNoise] = true
		channel, _, _ := strings.Cut(strings.TrimSpace(args), "(")
		s.NoiseChannels = append(s.NoiseChannels, channel)
	case strings.HasPrefix(directive, CapabilityUnitary):
		s.Pragmas[CapabilityUnitary] = true
	}
}

func (s *Summary) scanStatement(line string, inBox bool) {
	targets := scanQubitIndices(line)
	for _, t := range targets {
		if t > s.MaxQubitIndex {
			s.MaxQubitIndex = t
		}
	}

	// Declarations, includes and measurements are not gates.
	head := line
	if i := strings.IndexAny(line, " ("); i >= 0 {
		head = line[:i]
	}
	switch head {
	case "OPENQASM", "include", "qubit", "bit", "barrier", "measure":
		return
	}
	if strings.HasPrefix(head, "qubit[") || strings.HasPrefix(head, "bit[") ||
		strings.HasPrefix(head, "c[") || head == "c" {
		return
	}

	if inBox {
		s.VerbatimGates = append(s.VerbatimGates, head)
	}
	if len(targets) == 2 {
		s.TwoQubitPairs = append(s.TwoQubitPairs, [2]int{targets[0], targets[1]})
	}
}

// scanQubitIndices extracts every q[i] reference in a line, in order.
func scanQubitIndices(line string) []int {
	var out []int
	for i := 0; i+2 < len(line); i++ {
		if line[i] != 'q' || line[i+1] != '[' {
			continue
		}
		if i > 0 && isIdentChar(line[i-1]) {
			continue
		}
		end := strings.IndexByte(line[i+2:], ']')
		if end < 0 {
			break
		}
		n, err := strconv.Atoi(line[i+2 : i+2+end])
		if err == nil {
			out = append(out, n)
		}
		i += end + 2
	}
	return out
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
