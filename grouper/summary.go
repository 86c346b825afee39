package grouper

import (
	"fmt"
	"strings"
)

const (
	datasetHeader = "Dataset"
	yearsHeader   = "Years Available"
)

// Summary renders dataset names and their year coverage as aligned columns.
func (g *Grouper) Summary() string {
	width := len(datasetHeader)
	for _, n := range g.names {
		width = max(width, len(n))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s %s\n", width, datasetHeader, yearsHeader)
	fmt.Fprintf(&sb, "%s %s\n", strings.Repeat("-", width), strings.Repeat("-", len(yearsHeader)))
	for _, n := range g.names {
		fmt.Fprintf(&sb, "%-*s (%s)\n", width, n, strings.Join(g.datasets[n].YearsOfData(), ", "))
	}
	return sb.String()
}
