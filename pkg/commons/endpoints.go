package commons

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// CategoryPrefix is the namespace prefix on category page titles
	CategoryPrefix = "Category:"

	// FilePrefix is the namespace prefix on file page titles
	FilePrefix = "File:"
)

// CategoryMembersURL constructs the API URL for one page of a category
// member listing. An empty cont requests the first page.
func CategoryMembersURL(apiURL, category string, memberType MemberType, limit int, cont string) string {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "categorymembers")
	params.Set("cmtitle", CategoryPrefix+category)
	params.Set("cmtype", string(memberType))
	params.Set("cmlimit", strconv.Itoa(limit))
	params.Set("cmcontinue", cont)
	params.Set("format", "json")

	return fmt.Sprintf("%s?%s", apiURL, params.Encode())
}

// FilePathURL constructs the canonical per-file resource URL. The server
// redirects it to the actual binary, so the file name is encoded as a single
// path segment.
func FilePathURL(base, fileName string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), url.PathEscape(fileName))
}

// StripCategoryPrefix removes the Category: namespace prefix from a title
func StripCategoryPrefix(title string) string {
	return strings.TrimPrefix(title, CategoryPrefix)
}

// StripFilePrefix removes the File: namespace prefix from a title
func StripFilePrefix(title string) string {
	return strings.TrimPrefix(title, FilePrefix)
}
