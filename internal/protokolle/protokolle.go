package protokolle

import (
	"context"
	"errors"
	"fachschaft-protokolle/internal/database"
	"fachschaft-protokolle/internal/logging"
	"fachschaft-protokolle/internal/models"
	"fachschaft-protokolle/internal/pad"
	"fachschaft-protokolle/internal/protokoll"
	"fmt"
	"slices"
	"time"
)

// Artifact describes one generated output of a Protokoll.
type Artifact struct {
	Format    string `json:"format"`
	Available bool   `json:"available"`
	URL       string `json:"url"`
}

// Info is the state of the minutes of a meeting.
type Info struct {
	Protokoll models.Protokoll `json:"protokoll"`
	Title     string           `json:"title"`
	Artifacts []Artifact       `json:"artifacts"`
}

// Sources lists the sources an author may generate from.
type Sources struct {
	Available []protokoll.SourceKind `json:"available"`
	Preferred protokoll.SourceKind   `json:"preferred"`
	PadID     string                 `json:"padId,omitempty"`
	// PadError is set when the pad could not be reached.
	PadError string `json:"padError,omitempty"`
}

// PadName is the name of the pad holding the minutes of a meeting.
func PadName(meeting models.Meeting) string {
	if len(meeting.PadName) > 0 {
		return meeting.PadName
	}
	return fmt.Sprintf("protokoll_%d", meeting.ID)
}

// padID resolves the group pad of a meeting. The group is keyed by committee.
func (pc *Controller) padID(ctx context.Context, meeting models.Meeting) (string, error) {
	if !meeting.MeetingType.PadEnabled {
		return "", pad.ErrDisabled
	}
	group, err := pc.Pad.CreateGroupIfNotExistsFor(ctx, meeting.MeetingTypeID)
	if err != nil {
		return "", err
	}
	return pad.PadID(group, PadName(meeting)), nil
}

// sources computes the available and preferred sources. Pad failures only
// remove the pad from the offer.
func (pc *Controller) sources(ctx context.Context, meeting models.Meeting, existing *models.Protokoll) Sources {
	var s Sources
	var padEdited, fileEdited *time.Time

	padID, err := pc.padID(ctx, meeting)
	if err == nil {
		var edited time.Time
		edited, err = pc.Pad.GetLastEdited(ctx, padID)
		if err == nil {
			padEdited = &edited
			s.PadID = padID
		}
	}
	if err != nil && !errors.Is(err, pad.ErrDisabled) {
		pc.LogWarnf(logging.GetLogTypePad(), "pad of meeting %d unavailable: %v", meeting.ID, err)
		s.PadError = "Das Pad ist derzeit nicht erreichbar."
	}

	if existing != nil {
		fileEdited = existing.FileLastEdited
	}
	s.Available = protokoll.AvailableSources(existing != nil, padEdited != nil)
	s.Preferred = protokoll.PreferredSource(padEdited, fileEdited)
	return s
}

// offered reports whether kind is among the available sources.
func (s Sources) offered(kind protokoll.SourceKind) bool {
	return slices.Contains(s.Available, kind)
}

// syncPad writes the stored source back to the pad after a generation from
// another source. Failures are logged only.
func (pc *Controller) syncPad(ctx context.Context, meeting models.Meeting, p *models.Protokoll) {
	padID, err := pc.padID(ctx, meeting)
	if errors.Is(err, pad.ErrDisabled) {
		return
	}
	if err == nil {
		var text []byte
		text, err = pc.Storage.Read(p.T2T)
		if err == nil {
			err = pc.Pad.SetText(ctx, padID, string(text))
		}
	}
	if err != nil {
		pc.LogWarnf(logging.GetLogTypePad(), "updating pad of meeting %d failed: %v", meeting.ID, err)
	}
}

func (pc *Controller) info(meeting models.Meeting, p models.Protokoll) Info {
	artifacts := make([]Artifact, 0, len(protokoll.ArtifactExtensions))
	for _, ext := range protokoll.ArtifactExtensions {
		artifacts = append(artifacts, Artifact{
			Format:    ext,
			Available: pc.Storage.Exists(protokoll.ArtifactPath(p.T2T, ext)),
			URL:       downloadPath(meeting.ID, ext),
		})
	}
	return Info{
		Protokoll: p,
		Title:     protokoll.Title(meeting, p.Approved),
		Artifacts: artifacts,
	}
}

func downloadPath(meetingID uint, format string) string {
	return fmt.Sprintf("/meetings/%d/protokoll/download/%s", meetingID, format)
}

// PublicPath is the unauthenticated URL path of a published artifact.
func PublicPath(meetingID uint, format string) string {
	return fmt.Sprintf("/public/meetings/%d/protokoll/%s", meetingID, format)
}

// findProtokoll loads the Protokoll of a meeting. found is false if there is none.
func (pc *Controller) findProtokoll(ctx context.Context, meetingID uint) (p models.Protokoll, found bool, err error) {
	err = pc.FindProtokollByMeetingId(ctx, meetingID, &p)
	if errors.Is(err, database.ErrRecordNotFound) {
		return p, false, nil
	}
	if err != nil {
		return p, false, err
	}
	return p, true, nil
}

func isFormat(format string) bool {
	return slices.Contains(protokoll.ArtifactExtensions, format)
}
