package models

import "time"

// Protokoll holds the minutes of exactly one meeting.
//
// T2T is the storage relative path of the markup source. All generated
// artifacts share its stem and differ only by extension.
type Protokoll struct {
	Model
	MeetingID      uint       `gorm:"not null;uniqueIndex" json:"meetingId"`
	Meeting        Meeting    `json:"-"`
	Begin          string     `gorm:"size:5" json:"begin"`
	End            string     `gorm:"size:5" json:"end"`
	Approved       bool       `gorm:"not null;default:false" json:"approved"`
	Published      bool       `gorm:"not null;default:false" json:"published"`
	T2T            string     `gorm:"column:t2t;not null" json:"t2t"`
	FileLastEdited *time.Time `json:"fileLastEdited"`
}

// Attachment is a file attached to the minutes of a meeting. Its position in
// the markup is derived from SortOrder on every render and never stored.
type Attachment struct {
	Model
	MeetingID   uint   `gorm:"not null;index" json:"meetingId"`
	Name        string `gorm:"not null" json:"name"`
	File        string `gorm:"not null" json:"file"`
	ContentType string `json:"contentType"`
	SortOrder   int    `gorm:"not null;default:0" json:"sortOrder"`
}

func (Protokoll) TableName() string {
	return "protokolle"
}

func (Attachment) TableName() string {
	return "protokoll_attachments"
}
