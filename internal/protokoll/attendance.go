package protokoll

import (
	"fachschaft-protokolle/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"sort"
	"strings"
)

const (
	attendanceHeader = "Anwesend:"
	nobodyPresent    = "niemand anwesend"
)

// AttendanceRenderer formats the attendee list of a meeting.
type AttendanceRenderer struct {
	// Language selects the collation used to sort names.
	Language language.Tag
}

// namesLister implements [collate.Lister] for a slice of names.
type namesLister []string

func (l namesLister) Len() int {
	return len(l)
}

func (l namesLister) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

func (l namesLister) Bytes(i int) []byte {
	return []byte(l[i])
}

// Render returns the attendance block and whether the committee tracks
// attendance at all. Without tracking the block is empty.
func (r AttendanceRenderer) Render(mt models.MeetingType, attendees []models.Attendee) (string, bool) {
	if !mt.AttendanceEnabled {
		return "", false
	}

	// a collator keeps internal buffers and must not be shared between goroutines
	c := collate.New(r.Language)

	var b strings.Builder
	b.WriteString(attendanceHeader)
	b.WriteString("\n")
	b.WriteString(r.names(c, attendees, func(models.Attendee) bool { return true }))

	if mt.AttendanceWithFunc {
		functions := make([]models.Function, len(mt.Functions))
		copy(functions, mt.Functions)
		sort.SliceStable(functions, func(i, j int) bool {
			if functions[i].SortOrder != functions[j].SortOrder {
				return functions[i].SortOrder < functions[j].SortOrder
			}
			return c.CompareString(functions[i].Name, functions[j].Name) < 0
		})

		for _, f := range functions {
			b.WriteString("\n\n")
			b.WriteString(f.Label())
			b.WriteString(":\n")
			b.WriteString(r.names(c, attendees, func(a models.Attendee) bool { return a.HasFunction(f.ID) }))
		}
	}

	return b.String(), true
}

func (r AttendanceRenderer) names(c *collate.Collator, attendees []models.Attendee, include func(models.Attendee) bool) string {
	var names namesLister
	for _, a := range attendees {
		if include(a) {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return nobodyPresent
	}
	c.Sort(names)
	return strings.Join(names, ", ")
}
