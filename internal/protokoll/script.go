package protokoll

import (
	"errors"
	"fachschaft-protokolle/internal/models"
	"fmt"
	"golang.org/x/text/language"
	"strings"
	"text/template"
)

// seeMinutes replaces chair and minute takers of imported meetings.
const seeMinutes = "siehe Protokoll"

const preliminaryPrefix = "Vorläufiges "

// Assembler turns a markup source into a complete txt2tags script.
type Assembler struct {
	Tags       *TagRegistry
	Templates  TemplateLoader
	Attendance AttendanceRenderer
}

// NewAssembler returns an Assembler sorting attendee names in German order.
func NewAssembler(tags *TagRegistry, templates TemplateLoader) *Assembler {
	return &Assembler{
		Tags:       tags,
		Templates:  templates,
		Attendance: AttendanceRenderer{Language: language.German},
	}
}

// ScriptInput is everything a script is built from.
type ScriptInput struct {
	Meeting     models.Meeting
	Begin       string
	End         string
	Approved    bool
	Source      string
	Attachments []AttachmentLink
}

// ScriptContext is the data of the outer script template.
type ScriptContext struct {
	Title           string
	Gremium         string
	Datum           string
	Sitzung         string
	Raum            string
	Beginn          string
	Ende            string
	Sitzungsleitung string
	Protokollant    string
	Anwesenheit     string
	Body            string
}

// NewRenderContext collects the values placeholders and tags read during
// rendering of the body.
func NewRenderContext(meeting models.Meeting, attachments []AttachmentLink) *RenderContext {
	rc := &RenderContext{
		Sitzungsleitung: meeting.ChairName,
		Sitzung:         MeetingReference(meeting),
		Attachments:     attachments,
	}
	if meeting.Imported {
		rc.Sitzungsleitung = seeMinutes
		rc.Protokollant = seeMinutes
	} else {
		names := make([]string, 0, len(meeting.MinuteTakers))
		for _, mt := range meeting.MinuteTakers {
			names = append(names, mt.Name)
		}
		rc.Protokollant = strings.Join(names, ", ")
	}
	return rc
}

// MeetingReference names a meeting in running text, e.g. "Fachschaftsrat am 02.01.2006".
func MeetingReference(meeting models.Meeting) string {
	name := meeting.Title
	if len(name) == 0 {
		name = meeting.MeetingType.Name
	}
	return name + " am " + meeting.Time.Format("02.01.2006")
}

// RenderBody filters the source, rewrites bracket tags and resolves them.
func (a *Assembler) RenderBody(source string, meeting models.Meeting, attachments []AttachmentLink) (string, error) {
	filtered, err := FilterLines(source)
	if err != nil {
		return "", err
	}

	features := Features{
		Motion:       meeting.MeetingType.MotionTag,
		PointOfOrder: meeting.MeetingType.PointOfOrderTag,
	}
	normalized := a.Tags.Normalize(filtered, features)

	rc := NewRenderContext(meeting, attachments)
	t, err := template.New("protokoll").
		Delims(ActionLeft, ActionRight).
		Option("missingkey=error").
		Funcs(a.Tags.FuncMap(rc)).
		Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
	}

	var b strings.Builder
	if err := t.Execute(&b, rc); err != nil {
		var tagErr *TagError
		if errors.As(err, &tagErr) {
			return "", tagErr
		}
		return "", fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
	}
	return b.String(), nil
}

// Assemble renders the body and merges it into the committee's script
// template. Identical input yields identical output.
func (a *Assembler) Assemble(in ScriptInput) (string, error) {
	body, err := a.RenderBody(in.Source, in.Meeting, in.Attachments)
	if err != nil {
		return "", err
	}

	mt := in.Meeting.MeetingType
	raw, err := a.Templates.ScriptTemplate(mt.CustomTemplate)
	if err != nil {
		return "", err
	}
	t, err := template.New("script").Option("missingkey=error").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing script template %q: %w", mt.CustomTemplate, err)
	}

	rc := NewRenderContext(in.Meeting, in.Attachments)
	attendance, _ := a.Attendance.Render(mt, in.Meeting.Attendees)
	ctx := ScriptContext{
		Title:           Title(in.Meeting, in.Approved),
		Gremium:         mt.Name,
		Datum:           in.Meeting.Time.Format("02.01.2006"),
		Sitzung:         rc.Sitzung,
		Raum:            in.Meeting.Room,
		Beginn:          in.Begin,
		Ende:            in.End,
		Sitzungsleitung: rc.Sitzungsleitung,
		Protokollant:    rc.Protokollant,
		Anwesenheit:     attendance,
		Body:            body,
	}

	var b strings.Builder
	if err := t.Execute(&b, ctx); err != nil {
		return "", fmt.Errorf("executing script template %q: %w", mt.CustomTemplate, err)
	}
	return b.String(), nil
}

// Title is the document title, marked preliminary until approved.
func Title(meeting models.Meeting, approved bool) string {
	title := "Protokoll: " + MeetingReference(meeting)
	if !approved {
		title = preliminaryPrefix + title
	}
	return title
}
