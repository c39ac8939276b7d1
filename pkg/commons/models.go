package commons

import "regexp"

// MemberType selects which kind of category members to enumerate
type MemberType string

const (
	// MemberTypeFile selects file pages
	MemberTypeFile MemberType = "file"
	// MemberTypeSubcat selects subcategory pages
	MemberTypeSubcat MemberType = "subcat"
)

// CategoryMember is a single record from the categorymembers listing
type CategoryMember struct {
	PageID int    `json:"pageid"`
	NS     int    `json:"ns"`
	Title  string `json:"title"`
	Type   string `json:"type"`
}

// categoryMembersResponse is the wire shape of an action=query response
type categoryMembersResponse struct {
	BatchComplete string             `json:"batchcomplete"`
	Continue      *continueToken     `json:"continue,omitempty"`
	Query         categoryMembersSet `json:"query"`
}

type continueToken struct {
	CmContinue string `json:"cmcontinue"`
	Continue   string `json:"continue"`
}

type categoryMembersSet struct {
	CategoryMembers []CategoryMember `json:"categorymembers"`
}

// imageExtensions matches the image file titles worth mirroring
var imageExtensions = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)

// IsImageTitle reports whether a file title carries an allowed image extension
func IsImageTitle(title string) bool {
	return imageExtensions.MatchString(title)
}
