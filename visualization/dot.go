package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/anggasct/trafficlight/pkg/clock"
	"github.com/anggasct/trafficlight/pkg/core"
)

// PhaseSource is anything that reports a current phase, such as a light
type PhaseSource interface {
	CurrentPhase() core.Phase
}

// DOTGenerator generates Graphviz DOT format representations of a light
type DOTGenerator struct {
	source  PhaseSource
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	Name             string
	ShowIntervals    bool
	HighlightCurrent bool
	RankDirection    string // "TB", "LR", "BT", "RL"
	NodeShape        string
	MinInterval      time.Duration
	MaxInterval      time.Duration
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		Name:             "TrafficLight",
		ShowIntervals:    true,
		HighlightCurrent: true,
		RankDirection:    "LR",
		NodeShape:        "circle",
		MinInterval:      clock.DefaultMinInterval,
		MaxInterval:      clock.DefaultMaxInterval,
	}
}

// NewDOTGenerator creates a new DOT generator. source may be nil, in which
// case no phase is highlighted
func NewDOTGenerator(source PhaseSource, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		source:  source,
		options: opts,
	}
}

var phaseColors = map[core.Phase]string{
	core.Red:   "tomato",
	core.Green: "palegreen",
}

// Generate creates a DOT representation of the light
func (g *DOTGenerator) Generate() (string, error) {
	if g.options.MaxInterval < g.options.MinInterval {
		return "", fmt.Errorf("invalid interval range %s..%s", g.options.MinInterval, g.options.MaxInterval)
	}

	var dot strings.Builder

	name := g.options.Name
	if name == "" {
		name = "TrafficLight"
	}
	fmt.Fprintf(&dot, "digraph %q {\n", name)
	fmt.Fprintf(&dot, "  rankdir=%s;\n", g.options.RankDirection)
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generateStates(&dot)
	g.generateTransitions(&dot)

	dot.WriteString("}\n")

	return dot.String(), nil
}

func (g *DOTGenerator) generateStates(dot *strings.Builder) {
	dot.WriteString("  // States\n")
	dot.WriteString("  \"__start\" [shape=point];\n")

	var current core.Phase = -1
	if g.source != nil && g.options.HighlightCurrent {
		current = g.source.CurrentPhase()
	}

	for _, phase := range []core.Phase{core.Red, core.Green} {
		label := phase.String()
		if phase == core.Red {
			label += "\\n(initial)"
		}
		penwidth := 1
		if phase == current {
			label += "\\n(current)"
			penwidth = 3
		}
		fmt.Fprintf(dot, "  %q [shape=%s style=\"filled\" fillcolor=%s penwidth=%d label=\"%s\"];\n",
			phase.String(), g.options.NodeShape, phaseColors[phase], penwidth, label)
	}
	dot.WriteString("\n")
}

func (g *DOTGenerator) generateTransitions(dot *strings.Builder) {
	dot.WriteString("  // Transitions\n")
	fmt.Fprintf(dot, "  \"__start\" -> %q;\n", core.Red.String())

	label := ""
	if g.options.ShowIntervals {
		label = fmt.Sprintf(" [label=\"after %d-%dms\"]",
			g.options.MinInterval.Milliseconds(), g.options.MaxInterval.Milliseconds())
	}
	for _, from := range []core.Phase{core.Red, core.Green} {
		fmt.Fprintf(dot, "  %q -> %q%s;\n", from.String(), from.Toggle().String(), label)
	}
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// SVGGenerator generates SVG representations by calling Graphviz
type SVGGenerator struct {
	dotGenerator *DOTGenerator
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator(source PhaseSource, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(source, options...),
	}
}

// Generate creates an SVG representation of the light
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

// GenerateSVG is a convenience wrapper around SVGGenerator
func (g *DOTGenerator) GenerateSVG() (string, error) {
	svgGen := &SVGGenerator{dotGenerator: g}
	return svgGen.Generate()
}
