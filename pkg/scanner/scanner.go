package scanner

import (
	"context"

	"wcmirror/pkg/commons"
	"wcmirror/pkg/logger"
	"wcmirror/pkg/ui"
)

// FileEntry is an image file discovered during the scan, recorded with the
// category it was found in and its raw page title.
type FileEntry struct {
	Category string
	Title    string
}

// Result holds everything a scan pass discovered, bucketed by depth from the
// root category.
type Result struct {
	// FilesByDepth maps depth to image files discovered at that depth, in
	// traversal order.
	FilesByDepth map[int][]FileEntry

	// CategoriesByDepth maps depth to the number of categories visited there.
	CategoriesByDepth map[int]int

	// Truncated counts enumerations that returned partial listings after
	// exhausting their retry budget.
	Truncated int
}

// MaxDepth returns the deepest level present in either map, or 0 when the
// result is empty.
func (r *Result) MaxDepth() int {
	max := 0
	for depth := range r.FilesByDepth {
		if depth > max {
			max = depth
		}
	}
	for depth := range r.CategoriesByDepth {
		if depth > max {
			max = depth
		}
	}
	return max
}

// TotalFiles returns the number of files across all depths
func (r *Result) TotalFiles() int {
	total := 0
	for _, files := range r.FilesByDepth {
		total += len(files)
	}
	return total
}

// TotalCategories returns the number of categories visited across all depths
func (r *Result) TotalCategories() int {
	total := 0
	for _, count := range r.CategoriesByDepth {
		total += count
	}
	return total
}

// MemberLister enumerates the members of a category. Satisfied by
// *commons.Client.
type MemberLister interface {
	ListCategoryMembers(ctx context.Context, category string, memberType commons.MemberType) ([]commons.CategoryMember, bool, error)
}

// Scanner walks a category tree breadth-first, collecting image files by depth
type Scanner struct {
	client MemberLister
	logger logger.Logger

	// Quiet suppresses the ephemeral per-category status line
	Quiet bool
}

// New creates a Scanner over the given member lister
func New(client MemberLister, log logger.Logger) *Scanner {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scanner{
		client: client,
		logger: log,
	}
}

// frontierEntry pairs a category with the depth it was discovered at
type frontierEntry struct {
	category string
	depth    int
}

// Scan traverses the category tree rooted at rootCategory with a FIFO
// frontier. Each category is processed at most once, at the depth of its
// first dequeue. Subcategory expansion stops at maxDepth; file collection
// does not, so categories sitting at the depth bound still contribute their
// own files.
//
// The only error returned is context cancellation; enumeration failures
// degrade to partial listings counted in Result.Truncated.
func (s *Scanner) Scan(ctx context.Context, rootCategory string, maxDepth int) (*Result, error) {
	result := &Result{
		FilesByDepth:      make(map[int][]FileEntry),
		CategoriesByDepth: make(map[int]int),
	}

	frontier := []frontierEntry{{category: rootCategory, depth: 0}}
	visited := make(map[string]bool)

	s.logger.InfoWithFields("scanning category tree", map[string]interface{}{
		"root":      rootCategory,
		"max_depth": maxDepth,
	})

	for len(frontier) > 0 {
		entry := frontier[0]
		frontier = frontier[1:]

		if visited[entry.category] || entry.depth > maxDepth {
			continue
		}
		visited[entry.category] = true

		result.CategoriesByDepth[entry.depth]++
		if !s.Quiet {
			ui.StatusLine("Scanning: %s (depth %d)", entry.category, entry.depth)
		}

		if entry.depth < maxDepth {
			subcats, complete, err := s.client.ListCategoryMembers(ctx, entry.category, commons.MemberTypeSubcat)
			if err != nil {
				return result, err
			}
			if !complete {
				result.Truncated++
			}
			for _, subcat := range subcats {
				frontier = append(frontier, frontierEntry{
					category: commons.StripCategoryPrefix(subcat.Title),
					depth:    entry.depth + 1,
				})
			}
		}

		files, complete, err := s.client.ListCategoryMembers(ctx, entry.category, commons.MemberTypeFile)
		if err != nil {
			return result, err
		}
		if !complete {
			result.Truncated++
		}
		for _, file := range files {
			if commons.IsImageTitle(file.Title) {
				result.FilesByDepth[entry.depth] = append(result.FilesByDepth[entry.depth], FileEntry{
					Category: entry.category,
					Title:    file.Title,
				})
			}
		}
	}

	if !s.Quiet {
		ui.ClearStatusLine()
	}

	s.logger.InfoWithFields("scan complete", map[string]interface{}{
		"categories": result.TotalCategories(),
		"files":      result.TotalFiles(),
		"truncated":  result.Truncated,
	})

	return result, nil
}
