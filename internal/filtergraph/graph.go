// Package filtergraph models ffmpeg filter graphs as ordered stages with
// labeled pads and serializes them into the textual form accepted by
// -vf and -filter_complex.
package filtergraph

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Static errors for graph validation.
var (
	// ErrEmptyGraph is returned when a graph has no stages.
	ErrEmptyGraph = errors.New("filtergraph: graph has no stages")
	// ErrInvalidName is returned when a filter name, option key or pad label contains unsupported characters.
	ErrInvalidName = errors.New("filtergraph: invalid name")
	// ErrDuplicateLabel is returned when two stages produce the same pad label.
	ErrDuplicateLabel = errors.New("filtergraph: duplicate pad label")
	// ErrUnknownPad is returned when a stage references a label no earlier stage produced.
	ErrUnknownPad = errors.New("filtergraph: unknown pad")
	// ErrPadReused is returned when a labeled pad is consumed more than once.
	ErrPadReused = errors.New("filtergraph: pad consumed more than once")
	// ErrDanglingPad is returned when a labeled pad is produced but never consumed.
	ErrDanglingPad = errors.New("filtergraph: pad produced but never consumed")
	// ErrUnknownInput is returned when a stage references a raw input index that was not declared.
	ErrUnknownInput = errors.New("filtergraph: input index out of range")
	// ErrBrokenChain is returned when a stage with an unlabeled output is not followed by a stage that accepts it.
	ErrBrokenChain = errors.New("filtergraph: unlabeled output has no consumer")
	// ErrUnconnected is returned when a non-source stage has no input to read from.
	ErrUnconnected = errors.New("filtergraph: stage has no input")
	// ErrNoFinalOutput is returned when the last stage labels its output instead of leaving it for the muxer.
	ErrNoFinalOutput = errors.New("filtergraph: final stage output must be unlabeled")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// sourceFilters generate frames without reading an input pad.
var sourceFilters = map[string]bool{
	"color":    true,
	"nullsrc":  true,
	"testsrc":  true,
	"testsrc2": true,
}

// Pad references a connection point between stages. A pad is either a
// label produced by an earlier stage or the index of a declared input.
type Pad struct {
	label string
	index int
	input bool
}

// Label returns a pad reference to a labeled stage output.
func Label(name string) Pad {
	return Pad{label: name}
}

// Input returns a pad reference to the raw input stream at index i.
func Input(i int) Pad {
	return Pad{index: i, input: true}
}

// IsInput reports whether the pad refers to a declared input.
func (p Pad) IsInput() bool {
	return p.input
}

// String renders the pad in filtergraph syntax, e.g. "[avatar]" or "[0]".
func (p Pad) String() string {
	if p.input {
		return "[" + strconv.Itoa(p.index) + "]"
	}
	return "[" + p.label + "]"
}

// Param is a single filter option. An empty Key renders a positional value.
type Param struct {
	Key   string
	Value string
}

// String returns a key=value option.
func String(key, value string) Param {
	return Param{Key: key, Value: value}
}

// Int returns a key=value option with an integer value.
func Int(key string, value int) Param {
	return Param{Key: key, Value: strconv.Itoa(value)}
}

// Positional returns an option rendered without a key.
func Positional(value string) Param {
	return Param{Value: value}
}

// Stage is one filter invocation. Stages without outputs feed the next
// stage directly when that stage declares no inputs.
type Stage struct {
	Inputs  []Pad
	Filter  string
	Params  []Param
	Outputs []Pad
}

// Graph is an ordered sequence of stages reading from Inputs declared streams.
type Graph struct {
	Inputs int
	Stages []Stage
}

// Simple reports whether the graph is a single-input linear chain that
// can be passed to -vf instead of -filter_complex.
func (g Graph) Simple() bool {
	if g.Inputs != 1 {
		return false
	}
	for _, s := range g.Stages {
		if len(s.Inputs) > 0 || len(s.Outputs) > 0 {
			return false
		}
	}
	return true
}

// Validate checks that the graph is well formed and every pad is connected.
func (g Graph) Validate() error {
	if len(g.Stages) == 0 {
		return ErrEmptyGraph
	}

	// produced tracks labels and whether they have been consumed.
	produced := make(map[string]bool)

	for i, s := range g.Stages {
		if !namePattern.MatchString(s.Filter) {
			return fmt.Errorf("%w: filter %q at stage %d", ErrInvalidName, s.Filter, i)
		}
		for _, p := range s.Params {
			if p.Key != "" && !namePattern.MatchString(p.Key) {
				return fmt.Errorf("%w: option %q of %s", ErrInvalidName, p.Key, s.Filter)
			}
		}

		chained := i > 0 && len(g.Stages[i-1].Outputs) == 0
		if len(s.Inputs) == 0 && !chained && !sourceFilters[s.Filter] {
			if i != 0 || g.Inputs < 1 {
				return fmt.Errorf("%w: %s at stage %d", ErrUnconnected, s.Filter, i)
			}
		}
		if chained && len(s.Inputs) > 0 {
			return fmt.Errorf("%w: %s at stage %d", ErrBrokenChain, g.Stages[i-1].Filter, i-1)
		}

		for _, in := range s.Inputs {
			if in.input {
				if in.index < 0 || in.index >= g.Inputs {
					return fmt.Errorf("%w: %s in %s", ErrUnknownInput, in, s.Filter)
				}
				continue
			}
			consumed, ok := produced[in.label]
			if !ok {
				return fmt.Errorf("%w: %s in %s", ErrUnknownPad, in, s.Filter)
			}
			if consumed {
				return fmt.Errorf("%w: %s", ErrPadReused, in)
			}
			produced[in.label] = true
		}

		for _, out := range s.Outputs {
			if out.input || !namePattern.MatchString(out.label) {
				return fmt.Errorf("%w: output %s of %s", ErrInvalidName, out, s.Filter)
			}
			if _, dup := produced[out.label]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateLabel, out)
			}
			produced[out.label] = false
		}
	}

	if len(g.Stages[len(g.Stages)-1].Outputs) != 0 {
		return ErrNoFinalOutput
	}
	for label, consumed := range produced {
		if !consumed {
			return fmt.Errorf("%w: [%s]", ErrDanglingPad, label)
		}
	}
	return nil
}

// String serializes the graph. Option values are escaped for both the
// option parser and the graph parser, so arbitrary values are safe.
func (g Graph) String() string {
	var b strings.Builder
	for i, s := range g.Stages {
		if i > 0 {
			if len(g.Stages[i-1].Outputs) == 0 {
				b.WriteByte(',')
			} else {
				b.WriteByte(';')
			}
		}
		writeStage(&b, s)
	}
	return b.String()
}

func writeStage(b *strings.Builder, s Stage) {
	for _, p := range s.Inputs {
		b.WriteString(p.String())
	}
	b.WriteString(s.Filter)
	for i, p := range s.Params {
		if i == 0 {
			b.WriteByte('=')
		} else {
			b.WriteByte(':')
		}
		if p.Key != "" {
			b.WriteString(p.Key)
			b.WriteByte('=')
		}
		b.WriteString(EscapeValue(p.Value))
	}
	for _, p := range s.Outputs {
		b.WriteString(p.String())
	}
}

// EscapeValue escapes an option value for embedding in a filtergraph
// description. The first level protects the value from the filter option
// parser, the second from the graph parser.
func EscapeValue(v string) string {
	return escape(escape(v, `\':`), `\'[],;`)
}

func escape(v, special string) string {
	if !strings.ContainsAny(v, special) {
		return v
	}
	var b strings.Builder
	b.Grow(len(v) + 8)
	for _, r := range v {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
