package protokoll_test

import (
	"fachschaft-protokolle/internal/models"
	"fachschaft-protokolle/internal/protokoll"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
	"testing"
)

func TestAttendanceRender(t *testing.T) {
	kasse := models.Function{Model: models.Model{ID: 1}, Name: "Kassenwart", PluralName: "Kassenwarte", SortOrder: 1}
	rat := models.Function{Model: models.Model{ID: 2}, Name: "Fachschaftsrat", PluralName: "Fachschaftsräte", SortOrder: 0}
	gast := models.Function{Model: models.Model{ID: 3}, Name: "Gast", SortOrder: 2}

	attendees := []models.Attendee{
		{Name: "Zoë", Functions: []models.Function{rat}},
		{Name: "Ärne", Functions: []models.Function{rat, kasse}},
		{Name: "Bernd"},
	}

	tests := []struct {
		name      string
		mt        models.MeetingType
		attendees []models.Attendee
		expected  string
		enabled   bool
	}{
		{
			name:     "attendance disabled",
			mt:       models.MeetingType{AttendanceEnabled: false},
			expected: "",
		},
		{
			name:      "sorted names",
			mt:        models.MeetingType{AttendanceEnabled: true},
			attendees: attendees,
			expected:  "Anwesend:\nÄrne, Bernd, Zoë",
			enabled:   true,
		},
		{
			name:     "nobody present",
			mt:       models.MeetingType{AttendanceEnabled: true},
			expected: "Anwesend:\nniemand anwesend",
			enabled:  true,
		},
		{
			name: "grouped by function",
			mt: models.MeetingType{
				AttendanceEnabled:  true,
				AttendanceWithFunc: true,
				Functions:          []models.Function{gast, kasse, rat},
			},
			attendees: attendees,
			expected: "Anwesend:\nÄrne, Bernd, Zoë\n\n" +
				"Fachschaftsräte:\nÄrne, Zoë\n\n" +
				"Kassenwarte:\nÄrne\n\n" +
				"Gast:\nniemand anwesend",
			enabled: true,
		},
	}

	r := protokoll.AttendanceRenderer{Language: language.German}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enabled := r.Render(tt.mt, tt.attendees)
			if enabled != tt.enabled {
				t.Errorf("expected enabled=%v, got %v", tt.enabled, enabled)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
