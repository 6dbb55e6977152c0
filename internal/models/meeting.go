package models

import "time"

// MeetingType is a committee ("Gremium") owning meetings and their settings.
// The ID is a slug and becomes part of every storage path.
type MeetingType struct {
	ID                   string     `gorm:"primaryKey;size:50" json:"id"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
	Name                 string     `gorm:"not null" json:"name"`
	MailingList          string     `json:"mailingList"`
	ApproveRequired      bool       `gorm:"not null;default:true" json:"approveRequired"`
	AttendanceEnabled    bool       `gorm:"not null;default:true" json:"attendanceEnabled"`
	AttendanceWithFunc   bool       `gorm:"not null;default:false" json:"attendanceWithFunc"`
	CustomTemplate       string     `json:"customTemplate"`
	MotionTag            bool       `gorm:"not null;default:false" json:"motionTag"`
	PointOfOrderTag      bool       `gorm:"not null;default:false" json:"pointOfOrderTag"`
	ProtokollAttachments bool       `gorm:"not null;default:false" json:"protokollAttachments"`
	PadEnabled           bool       `gorm:"not null;default:false" json:"padEnabled"`
	Functions            []Function `json:"functions"`
}

// Function is a role inside a committee, e.g. "Kassenwart".
type Function struct {
	Model
	MeetingTypeID string `gorm:"not null;index;size:50" json:"meetingTypeId"`
	Name          string `gorm:"not null" json:"name"`
	PluralName    string `json:"pluralName"`
	SortOrder     int    `gorm:"not null;default:0" json:"sortOrder"`
}

// Label returns the plural label if one is defined.
func (f Function) Label() string {
	if len(f.PluralName) > 0 {
		return f.PluralName
	}
	return f.Name
}

type Meeting struct {
	Model
	MeetingTypeID string        `gorm:"not null;index;size:50" json:"meetingTypeId"`
	MeetingType   MeetingType   `json:"meetingType"`
	Title         string        `json:"title"`
	Time          time.Time     `gorm:"not null" json:"time"`
	Room          string        `json:"room"`
	ChairName     string        `json:"chairName"`
	Imported      bool          `gorm:"not null;default:false" json:"imported"`
	PadName       string        `json:"padName"`
	MinuteTakers  []MinuteTaker `json:"minuteTakers"`
	Attendees     []Attendee    `json:"attendees"`
	Tops          []Top         `json:"tops"`
}

// MinuteTaker is a person writing the minutes of a meeting.
type MinuteTaker struct {
	Model
	MeetingID uint   `gorm:"not null;index" json:"meetingId"`
	Name      string `gorm:"not null" json:"name"`
}

// Top is an agenda item ("Tagesordnungspunkt").
type Top struct {
	Model
	MeetingID   uint   `gorm:"not null;index" json:"meetingId"`
	TopID       int    `gorm:"not null" json:"topId"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
}

// Attendee is a meeting-scoped record of a present participant together with
// the functions the person held at that time.
type Attendee struct {
	Model
	MeetingID uint       `gorm:"not null;index" json:"meetingId"`
	Name      string     `gorm:"not null" json:"name"`
	Functions []Function `gorm:"many2many:attendee_functions" json:"functions"`
}

// HasFunction reports whether the attendee held the function with the given id.
func (a Attendee) HasFunction(functionID uint) bool {
	for _, f := range a.Functions {
		if f.ID == functionID {
			return true
		}
	}
	return false
}
