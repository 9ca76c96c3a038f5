package engine

import (
	"fmt"

	"github.com/maauso/avatarkit/internal/filtergraph"
)

// globalArgs precede every invocation.
var globalArgs = []string{
	"-hide_banner",
	"-nostdin",
	"-loglevel", "error", // stderr is captured into ExecError
	"-y", // names are operation scoped; overwrite leftovers from a crashed run
}

// Command is one engine invocation: declared inputs in order, a filter
// graph reading them and the output file it produces.
type Command struct {
	Inputs []string
	Graph  filtergraph.Graph
	Output string
}

// Args validates the command and assembles the engine argument vector.
// The serialized graph is always passed as a single argument.
func (c Command) Args() ([]string, error) {
	if len(c.Inputs) != c.Graph.Inputs {
		return nil, fmt.Errorf("%w: %d inputs, graph reads %d", ErrInputMismatch, len(c.Inputs), c.Graph.Inputs)
	}
	if c.Output == "" {
		return nil, ErrNoOutput
	}
	if err := c.Graph.Validate(); err != nil {
		return nil, err
	}

	args := make([]string, 0, len(globalArgs)+2*len(c.Inputs)+3)
	args = append(args, globalArgs...)
	for _, in := range c.Inputs {
		args = append(args, "-i", in)
	}

	flag := "-filter_complex"
	if c.Graph.Simple() {
		flag = "-vf"
	}
	args = append(args, flag, c.Graph.String(), c.Output)

	return args, nil
}
