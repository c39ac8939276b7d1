package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeFiles(n int) []FileEntry {
	files := make([]FileEntry, n)
	for i := range files {
		files[i] = FileEntry{Category: "C", Title: "File:x.jpg"}
	}
	return files
}

func TestSummaryCumulativeCounts(t *testing.T) {
	result := &Result{
		FilesByDepth: map[int][]FileEntry{
			0: makeFiles(2),
			1: makeFiles(3),
			3: makeFiles(5),
		},
		CategoriesByDepth: map[int]int{
			0: 1,
			1: 2,
			2: 4,
			3: 1,
		},
	}

	report, total := Summary(result)

	assert.Equal(t, 10, total)

	// One row per depth 0..3 plus the aggregate row, cumulative running 2,5,5,10
	assert.Contains(t, report, "SCAN RESULTS")
	lines := strings.Split(report, "\n")
	var rows []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "=") || strings.HasPrefix(trimmed, "-") {
			continue
		}
		rows = append(rows, trimmed)
	}

	// Header, 4 depth rows, TOTAL row
	assert.Len(t, rows, 7)

	assert.Equal(t, []string{"0", "1", "2", "2"}, strings.Fields(rows[2]))
	assert.Equal(t, []string{"1", "2", "3", "5"}, strings.Fields(rows[3]))
	assert.Equal(t, []string{"2", "4", "0", "5"}, strings.Fields(rows[4]))
	assert.Equal(t, []string{"3", "1", "5", "10"}, strings.Fields(rows[5]))
	assert.Equal(t, []string{"TOTAL", "8", "10"}, strings.Fields(rows[6]))
}

func TestSummaryEmptyResult(t *testing.T) {
	result := &Result{
		FilesByDepth:      map[int][]FileEntry{},
		CategoriesByDepth: map[int]int{},
	}

	report, total := Summary(result)

	assert.Equal(t, 0, total)
	// Depth 0 row is still emitted for an empty scan
	assert.Contains(t, report, "0       0              0              0")
}

func TestSummaryTruncationWarning(t *testing.T) {
	result := &Result{
		FilesByDepth:      map[int][]FileEntry{0: makeFiles(1)},
		CategoriesByDepth: map[int]int{0: 1},
		Truncated:         2,
	}

	report, _ := Summary(result)
	assert.Contains(t, report, "2 listing(s) were truncated")
}
