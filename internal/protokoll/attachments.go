package protokoll

import (
	"fachschaft-protokolle/internal/models"
	"fmt"
	"sort"
)

// AttachmentLink is an attachment as seen by the markup: its display name,
// absolute URL and sort order.
type AttachmentLink struct {
	Name      string
	URL       string
	SortOrder int
}

// AttachmentLinks converts attachment records into links using urlOf to
// build the absolute URL of each stored file.
func AttachmentLinks(attachments []models.Attachment, urlOf func(file string) string) []AttachmentLink {
	links := make([]AttachmentLink, 0, len(attachments))
	for _, a := range attachments {
		links = append(links, AttachmentLink{Name: a.Name, URL: urlOf(a.File), SortOrder: a.SortOrder})
	}
	return links
}

// ResolveAttachment returns the txt2tags link "[<name> <url>]" of the
// attachment at the given 1-based position. Positions are derived from the
// sort order on every call.
func ResolveAttachment(attachments []AttachmentLink, index int) (string, error) {
	ordered := make([]AttachmentLink, len(attachments))
	copy(ordered, attachments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	if index < 1 || index > len(ordered) {
		return "", fmt.Errorf("no attachment with number %d", index)
	}
	a := ordered[index-1]
	return fmt.Sprintf("[%s %s]", a.Name, a.URL), nil
}
