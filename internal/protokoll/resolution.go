package protokoll

import (
	"context"
	"fachschaft-protokolle/internal/models"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// SourceKind names a markup source.
type SourceKind string

const (
	SourceUpload   SourceKind = "upload"
	SourcePad      SourceKind = "pad"
	SourceFile     SourceKind = "file"
	SourceTemplate SourceKind = "template"
)

// SourceChoice selects where the markup of a generation run comes from.
// The variants are UploadSource, PadSource, FileSource and TemplateSource.
type SourceChoice interface {
	Kind() SourceKind
	isSourceChoice()
}

// UploadSource is a file uploaded with the request.
type UploadSource struct {
	Filename string
	Data     []byte
}

// PadSource is the current text of a collaborative pad.
type PadSource struct {
	PadID string
}

// FileSource is the previously stored markup file.
type FileSource struct{}

// TemplateSource is the blank committee template.
type TemplateSource struct{}

func (UploadSource) Kind() SourceKind   { return SourceUpload }
func (PadSource) Kind() SourceKind      { return SourcePad }
func (FileSource) Kind() SourceKind     { return SourceFile }
func (TemplateSource) Kind() SourceKind { return SourceTemplate }

func (UploadSource) isSourceChoice()   {}
func (PadSource) isSourceChoice()      {}
func (FileSource) isSourceChoice()     {}
func (TemplateSource) isSourceChoice() {}

// PreferredSource picks the default source: the pad if it was edited after
// the file, else the file if it was ever edited, else the blank template.
func PreferredSource(padEdited, fileEdited *time.Time) SourceKind {
	if padEdited != nil && (fileEdited == nil || padEdited.After(*fileEdited)) {
		return SourcePad
	}
	if fileEdited != nil {
		return SourceFile
	}
	return SourceTemplate
}

// AvailableSources lists the sources that can be offered. Upload is only
// offered while the meeting has no Protokoll yet.
func AvailableSources(hasProtokoll, padAvailable bool) []SourceKind {
	var kinds []SourceKind
	if !hasProtokoll {
		kinds = append(kinds, SourceUpload)
	}
	if padAvailable {
		kinds = append(kinds, SourcePad)
	}
	if hasProtokoll {
		kinds = append(kinds, SourceFile)
	}
	return append(kinds, SourceTemplate)
}

// PadReader reads the text of a pad.
type PadReader interface {
	GetText(ctx context.Context, padID string) (string, error)
}

// SourceResolver reads the bytes of a SourceChoice.
type SourceResolver struct {
	Pad       PadReader
	Storage   Storage
	Templates TemplateLoader
}

// Resolve returns the raw markup for choice. existing is the stored
// Protokoll or nil.
func (r *SourceResolver) Resolve(ctx context.Context, choice SourceChoice, meeting models.Meeting, existing *models.Protokoll) ([]byte, error) {
	switch c := choice.(type) {
	case UploadSource:
		if len(c.Data) == 0 {
			return nil, fmt.Errorf("%w: empty upload %q", ErrNoSource, c.Filename)
		}
		return c.Data, nil
	case PadSource:
		if r.Pad == nil || len(c.PadID) == 0 {
			return nil, fmt.Errorf("%w: no pad", ErrNoSource)
		}
		text, err := r.Pad.GetText(ctx, c.PadID)
		if err != nil {
			return nil, fmt.Errorf("%w: reading pad %s: %v", ErrNoSource, c.PadID, err)
		}
		return []byte(text), nil
	case FileSource:
		if existing == nil || len(existing.T2T) == 0 {
			return nil, fmt.Errorf("%w: no stored file", ErrNoSource)
		}
		b, err := r.Storage.Read(existing.T2T)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrNoSource, existing.T2T, err)
		}
		return b, nil
	case TemplateSource:
		text, err := BlankTemplate(r.Templates, meeting)
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	case nil:
		return nil, fmt.Errorf("%w: no source selected", ErrNoSource)
	default:
		panic(fmt.Sprintf("unhandled source choice %T", choice))
	}
}

// BlankContext is the data of a blank source template.
type BlankContext struct {
	Gremium string
	Datum   string
	Sitzung string
	Tops    []models.Top
}

// BlankTemplate renders the blank markup source of a meeting listing its TOPs.
func BlankTemplate(templates TemplateLoader, meeting models.Meeting) (string, error) {
	raw, err := templates.BlankTemplate(meeting.MeetingTypeID)
	if err != nil {
		return "", err
	}
	t, err := template.New("vorlage").Option("missingkey=error").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing blank template of %q: %w", meeting.MeetingTypeID, err)
	}

	var b strings.Builder
	err = t.Execute(&b, BlankContext{
		Gremium: meeting.MeetingType.Name,
		Datum:   meeting.Time.Format("02.01.2006"),
		Sitzung: MeetingReference(meeting),
		Tops:    meeting.Tops,
	})
	if err != nil {
		return "", fmt.Errorf("executing blank template of %q: %w", meeting.MeetingTypeID, err)
	}
	return b.String(), nil
}
