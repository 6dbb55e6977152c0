package protokoll

import (
	"context"
	"errors"
	"fachschaft-protokolle/internal/database"
	"fachschaft-protokolle/internal/environment"
	"fachschaft-protokolle/internal/logging"
	"fachschaft-protokolle/internal/models"
	"fmt"
	"github.com/samborkent/uuidv7"
	"time"
)

// State is the position of a generation run in the Protokoll state machine.
type State string

const (
	StateNoProtokoll           State = "NoProtokoll"
	StateSourceResolved        State = "SourceResolved"
	StateScriptAssembled       State = "ScriptAssembled"
	StateArtifactsGenerated    State = "ArtifactsGenerated"
	StateTemplateSyntaxError   State = "TemplateSyntaxError"
	StateForbiddenCommandError State = "ForbiddenCommandError"
	StateEncodingError         State = "EncodingError"
	StateToolchainError        State = "ToolchainError"
	StateToolchainFatal        State = "ToolchainFatal"
)

// Failed reports whether the run ended in a failure state.
func (s State) Failed() bool {
	switch s {
	case StateTemplateSyntaxError, StateForbiddenCommandError, StateEncodingError, StateToolchainError, StateToolchainFatal:
		return true
	}
	return false
}

// GenerateRequest starts a generation run for one meeting.
type GenerateRequest struct {
	MeetingID uint
	Begin     string
	End       string
	Approved  bool
	Source    SourceChoice
}

// GenerationResult is the outcome of a run. Message is shown to the author
// for recoverable failures.
type GenerationResult struct {
	RunID     string            `json:"runId"`
	State     State             `json:"state"`
	Message   string            `json:"message,omitempty"`
	Created   bool              `json:"created"`
	Protokoll *models.Protokoll `json:"protokoll,omitempty"`
}

// Generator runs the Protokoll pipeline: resolve the source, assemble the
// script, build the artifacts and persist the record.
type Generator struct {
	*environment.Env
	Storage   Storage
	Sources   *SourceResolver
	Assembler *Assembler
	Driver    *Driver
	Now       func() time.Time
	NewRunID  func() string
}

// NewGenerator wires a Generator with the wall clock and uuidv7 run ids.
func NewGenerator(env *environment.Env, storage Storage, sources *SourceResolver, assembler *Assembler, driver *Driver) *Generator {
	return &Generator{
		Env:       env,
		Storage:   storage,
		Sources:   sources,
		Assembler: assembler,
		Driver:    driver,
		Now:       time.Now,
		NewRunID: func() string {
			return uuidv7.New().String()
		},
	}
}

// Generate runs the pipeline. Content errors and recognised toolchain
// diagnostics are reported in the result; the returned error is reserved
// for fatal conditions. On every failure the Protokoll record and its files
// are removed.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerationResult, error) {
	result := &GenerationResult{RunID: g.NewRunID(), State: StateNoProtokoll}
	logType := logging.GetLogTypeProtokoll(req.MeetingID, result.RunID)

	var meeting models.Meeting
	if err := g.FindMeetingById(ctx, req.MeetingID, &meeting); err != nil {
		return nil, fmt.Errorf("loading meeting %d: %w", req.MeetingID, err)
	}

	var p models.Protokoll
	err := g.FindProtokollByMeetingId(ctx, meeting.ID, &p)
	switch {
	case errors.Is(err, database.ErrRecordNotFound):
		result.Created = true
		p = models.Protokoll{
			MeetingID: meeting.ID,
			T2T:       SourcePath(meeting.MeetingTypeID, meeting.Time),
		}
	case err != nil:
		return nil, fmt.Errorf("loading protokoll of meeting %d: %w", meeting.ID, err)
	}

	var existing *models.Protokoll
	if !result.Created {
		existing = &p
	}
	raw, err := g.Sources.Resolve(ctx, req.Source, meeting, existing)
	if err != nil {
		g.LogWarnf(logType, "no source for meeting %d: %v", meeting.ID, err)
		result.Message = "Es konnte keine Quelle für das Protokoll gelesen werden."
		return result, nil
	}
	result.State = StateSourceResolved
	g.LogInfof(logType, "generating protokoll for meeting %d from %s", meeting.ID, req.Source.Kind())

	p.Begin = req.Begin
	p.End = req.End
	p.Approved = req.Approved || !meeting.MeetingType.ApproveRequired
	// only approved minutes stay public
	if result.Created || !p.Approved {
		p.Published = false
	}

	source, err := DecodeSource(raw)
	if err != nil {
		return g.fail(ctx, logType, result, &p, StateEncodingError, "Das Protokoll muss UTF-8-kodiert sein.", err)
	}

	var attachments []models.Attachment
	if meeting.MeetingType.ProtokollAttachments {
		if err := g.FindAttachmentsByMeetingId(ctx, meeting.ID, &attachments); err != nil {
			return nil, fmt.Errorf("loading attachments of meeting %d: %w", meeting.ID, err)
		}
	}

	script, err := g.Assembler.Assemble(ScriptInput{
		Meeting:     meeting,
		Begin:       p.Begin,
		End:         p.End,
		Approved:    p.Approved,
		Source:      source,
		Attachments: AttachmentLinks(attachments, g.Storage.AbsoluteURL),
	})
	if err != nil {
		var forbidden *ForbiddenCommandError
		switch {
		case errors.As(err, &forbidden):
			msg := fmt.Sprintf("Zeile %d enthält einen nicht erlaubten Befehl: %s", forbidden.Line, forbidden.Text)
			return g.fail(ctx, logType, result, &p, StateForbiddenCommandError, msg, err)
		case errors.Is(err, ErrTemplateSyntax):
			return g.fail(ctx, logType, result, &p, StateTemplateSyntaxError, "Syntaxfehler im Protokoll: "+syntaxDetail(err), err)
		}
		g.discard(ctx, logType, &p)
		return nil, fmt.Errorf("assembling script of meeting %d: %w", meeting.ID, err)
	}
	result.State = StateScriptAssembled

	if err := g.Storage.Write(p.T2T, []byte(source)); err != nil {
		g.discard(ctx, logType, &p)
		return nil, fmt.Errorf("writing %s: %w", p.T2T, err)
	}
	edited := g.Now()
	p.FileLastEdited = &edited

	if err := g.Driver.Build(ctx, script, g.Storage.Path(Stem(p.T2T))); err != nil {
		if diagnostic, ok := ClassifyDiagnostic(err); ok {
			return g.fail(ctx, logType, result, &p, StateToolchainError, diagnostic, err)
		}
		result.State = StateToolchainFatal
		g.LogErrorf(logType, "toolchain failed for meeting %d: %v", meeting.ID, err)
		g.discard(ctx, logType, &p)
		return result, err
	}

	if err := g.SaveProtokoll(ctx, &p); err != nil {
		g.discard(ctx, logType, &p)
		return nil, fmt.Errorf("saving protokoll of meeting %d: %w", meeting.ID, err)
	}

	result.State = StateArtifactsGenerated
	result.Protokoll = &p
	g.LogInfof(logType, "generated %s", Stem(p.T2T))
	return result, nil
}

func (g *Generator) fail(ctx context.Context, logType []any, result *GenerationResult, p *models.Protokoll, state State, msg string, cause error) (*GenerationResult, error) {
	g.LogWarnf(logType, "%s: %v", state, cause)
	result.State = state
	result.Message = msg
	g.discard(ctx, logType, p)
	return result, nil
}

// discard removes a Protokoll after a failed run. Cleanup errors are only logged.
func (g *Generator) discard(ctx context.Context, logType []any, p *models.Protokoll) {
	if err := g.Delete(ctx, p); err != nil {
		g.LogErrorf(logType, "cleaning up %s: %v", p.T2T, err)
	}
}

// Delete removes the source, all artifacts and intermediates and the record.
func (g *Generator) Delete(ctx context.Context, p *models.Protokoll) error {
	var errs []error
	if len(p.T2T) > 0 {
		for _, f := range AllFiles(p.T2T) {
			if err := g.Storage.Remove(f); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if p.ID != 0 {
		if err := g.DeleteProtokollById(ctx, p.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// syntaxDetail returns the message of a tag error or the template error text.
func syntaxDetail(err error) string {
	var tagErr *TagError
	if errors.As(err, &tagErr) {
		return tagErr.Error()
	}
	return err.Error()
}
