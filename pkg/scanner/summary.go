package scanner

import (
	"fmt"
	"strings"
)

// Summary renders the per-depth scan report and returns it along with the
// total file count. It is a pure function over the result; callers decide
// where the report goes.
func Summary(result *Result) (string, int) {
	var b strings.Builder

	b.WriteString("\n" + strings.Repeat("=", 60) + "\n")
	b.WriteString("SCAN RESULTS\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&b, "%-8s%-15s%-15s%-15s\n", "Depth", "Categories", "Images", "Cumulative")
	b.WriteString(strings.Repeat("-", 53) + "\n")

	totalFiles := 0
	cumulative := 0

	for depth := 0; depth <= result.MaxDepth(); depth++ {
		numCats := result.CategoriesByDepth[depth]
		numFiles := len(result.FilesByDepth[depth])
		totalFiles += numFiles
		cumulative += numFiles
		fmt.Fprintf(&b, "%-8d%-15d%-15d%-15d\n", depth, numCats, numFiles, cumulative)
	}

	b.WriteString(strings.Repeat("-", 53) + "\n")
	fmt.Fprintf(&b, "%-8s%-15d%-15d\n", "TOTAL", result.TotalCategories(), totalFiles)

	if result.Truncated > 0 {
		fmt.Fprintf(&b, "\nWarning: %d listing(s) were truncated by request failures.\n", result.Truncated)
	}

	return b.String(), totalFiles
}
