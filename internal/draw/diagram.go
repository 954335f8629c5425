package draw

import "regexp"

// DiagramKind picks the sub-style of a line inside a fenced block.
type DiagramKind int

// Diagram kinds, matched in this order.
const (
	DiagramGeneric DiagramKind = iota
	DiagramNodes
	DiagramArrows
	DiagramConnectors
)

func (k DiagramKind) String() string {
	switch k {
	case DiagramNodes:
		return "nodes"
	case DiagramArrows:
		return "arrows"
	case DiagramConnectors:
		return "connectors"
	}
	return "generic"
}

var (
	nodeRe      = regexp.MustCompile(`\[[^\[\]]+\]|\(\s*[A-Za-z0-9_]{1,12}\s*\)`)
	arrowRe     = regexp.MustCompile(`-+>|<-+|=+>|<=+|[→←↑↓↔⇒⇐]`)
	connectorRe = regexp.MustCompile(`[|/\\+─│┌┐└┘├┤┬┴┼═║]`)
)

// ClassifyDiagram returns the sub-style of one diagram line. It is a visual
// heuristic only.
func ClassifyDiagram(line string) DiagramKind {
	switch {
	case nodeRe.MatchString(line):
		return DiagramNodes
	case arrowRe.MatchString(line):
		return DiagramArrows
	case connectorRe.MatchString(line):
		return DiagramConnectors
	}
	return DiagramGeneric
}
