package graph

import (
	"fmt"
	"sort"
	"strings"
)

// DrawMermaid renders the graph as a Mermaid flowchart.
func (g *StateGraph[S]) DrawMermaid() string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	if g.entryPoint != "" {
		sb.WriteString("    START([\"START\"])\n")
		sb.WriteString(fmt.Sprintf("    START --> %s\n", g.entryPoint))
	}

	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", name, name))
	}

	for _, edge := range g.edges {
		if edge.To == END {
			sb.WriteString(fmt.Sprintf("    %s --> END([\"END\"])\n", edge.From))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", edge.From, edge.To))
	}

	return sb.String()
}
