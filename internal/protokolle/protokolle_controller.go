package protokolle

import (
	"errors"
	"fachschaft-protokolle/internal/api"
	"fachschaft-protokolle/internal/database"
	"fachschaft-protokolle/internal/environment"
	"fachschaft-protokolle/internal/locking"
	"fachschaft-protokolle/internal/logging"
	"fachschaft-protokolle/internal/mail"
	"fachschaft-protokolle/internal/middlewares"
	"fachschaft-protokolle/internal/models"
	"fachschaft-protokolle/internal/pad"
	"fachschaft-protokolle/internal/protokoll"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxSourceSize limits uploaded markup sources.
const maxSourceSize = 2 << 20

// Api defines the HTTP endpoints for the minutes of a meeting.
type Api interface {
	GetProtokoll(c *gin.Context)
	GetSources(c *gin.Context)
	Generate(c *gin.Context)
	Delete(c *gin.Context)
	Approve(c *gin.Context)
	Publish(c *gin.Context)
	Unpublish(c *gin.Context)
	GetTemplate(c *gin.Context)
	OpenPad(c *gin.Context)
	SendMail(c *gin.Context)
	GetHtml(c *gin.Context)
	Download(c *gin.Context)
	PublicDownload(c *gin.Context)

	GetAttachments(c *gin.Context)
	UploadAttachment(c *gin.Context)
	DeleteAttachment(c *gin.Context)
	ReorderAttachments(c *gin.Context)
}

// Controller serves the minutes of meetings.
//
// @Summary Protokoll controller
type Controller struct {
	*environment.Env
	Generator *protokoll.Generator
	Storage   protokoll.Storage
	Templates protokoll.TemplateLoader
	Pad       pad.Client
	Mail      mail.Sender
	Locker    locking.Locker
	Sanitizer *bluemonday.Policy
	// MailFrom is the sender address of minutes mails.
	MailFrom string
	// SiteURL is prepended to public links in mails.
	SiteURL string
	// PadURL is the browser facing base URL of the pad service.
	PadURL             string
	PadSessionDuration time.Duration
	Now                func() time.Time
}

// ensure Controller implements Api
var _ Api = &Controller{}

type generateBody struct {
	Begin    string `mapstructure:"begin"`
	End      string `mapstructure:"end"`
	Approved bool   `mapstructure:"approved"`
	Source   string `mapstructure:"source"`
}

func logType(meetingID uint) []any {
	return logging.GetLogType("protokolle", strconv.FormatUint(uint64(meetingID), 10))
}

// meeting loads the meeting named by the path parameter "id". It aborts
// the request and returns false if that fails.
func (pc *Controller) meeting(c *gin.Context) (models.Meeting, bool) {
	var meeting models.Meeting

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("invalid meeting id %q", c.Param("id")))
		return meeting, false
	}

	err = pc.FindMeetingById(c.Request.Context(), uint(id), &meeting)
	switch {
	case errors.Is(err, database.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponsef("meeting %d not found", id))
		return meeting, false
	case err != nil:
		pc.LogErrorf(logType(uint(id)), "loading meeting: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error loading meeting"))
		return meeting, false
	}
	return meeting, true
}

// protokoll loads the minutes of meeting and aborts with 404 if there are none.
func (pc *Controller) protokoll(c *gin.Context, meeting models.Meeting) (models.Protokoll, bool) {
	p, found, err := pc.findProtokoll(c.Request.Context(), meeting.ID)
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "loading protokoll: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error loading protokoll"))
		return p, false
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponsef("meeting %d has no protokoll", meeting.ID))
		return p, false
	}
	return p, true
}

// lock takes the generation lock of a meeting. It aborts with 409 if a run is in progress.
func (pc *Controller) lock(c *gin.Context, meeting models.Meeting) (func(), bool) {
	release, err := pc.Locker.Acquire(c.Request.Context(), fmt.Sprintf("protokoll:%d", meeting.ID))
	if errors.Is(err, locking.ErrLocked) {
		c.AbortWithStatusJSON(http.StatusConflict, api.NewErrorResponse("Das Protokoll wird gerade bearbeitet."))
		return nil, false
	}
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "acquiring lock: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error acquiring lock"))
		return nil, false
	}
	return release, true
}

// GetProtokoll returns the record and the artifact links of the minutes.
//
// @ID getProtokoll
// @Summary Get the minutes of a meeting
// @Tags protokolle
// @Router /meetings/{id}/protokoll [get]
// @Success 200 {object} api.RestJsonResponse{data=protokolle.Info}
// @Failure 404 {object} api.RestJsonErrorResponse
func (pc *Controller) GetProtokoll(c *gin.Context) {
	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	p, ok := pc.protokoll(c, meeting)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", pc.info(meeting, p)))
}

// GetSources returns the sources available for the next generation run.
//
// @ID getProtokollSources
// @Tags protokolle
// @Router /meetings/{id}/protokoll/sources [get]
// @Success 200 {object} api.RestJsonResponse{data=protokolle.Sources}
func (pc *Controller) GetSources(c *gin.Context) {
	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	p, found, err := pc.findProtokoll(c.Request.Context(), meeting.ID)
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "loading protokoll: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error loading protokoll"))
		return
	}
	var existing *models.Protokoll
	if found {
		existing = &p
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", pc.sources(c.Request.Context(), meeting, existing)))
}

// Generate creates or regenerates the minutes. It accepts a json body
// {"data": {"begin", "end", "approved", "source"}} or a multipart form with
// the same fields and the uploaded source in "file".
//
// @ID generateProtokoll
// @Summary Generate the minutes of a meeting
// @Tags protokolle
// @Router /meetings/{id}/protokoll [post]
// @Success 200 {object} api.RestJsonResponse{data=protokoll.GenerationResult}
// @Success 201 {object} api.RestJsonResponse{data=protokoll.GenerationResult}
// @Failure 409 {object} api.RestJsonErrorResponse
// @Failure 422 {object} api.RestJsonResponse{data=protokoll.GenerationResult}
func (pc *Controller) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}

	body, upload, err := readGenerateRequest(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse(err.Error()))
		return
	}
	for _, t := range []string{body.Begin, body.End} {
		if err := validateTime(t); err != nil {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse(err.Error()))
			return
		}
	}

	release, ok := pc.lock(c, meeting)
	if !ok {
		return
	}
	defer release()

	p, found, err := pc.findProtokoll(ctx, meeting.ID)
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "loading protokoll: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error loading protokoll"))
		return
	}
	var existing *models.Protokoll
	if found {
		existing = &p
	}

	sources := pc.sources(ctx, meeting, existing)
	choice, err := sourceChoice(body.Source, upload, sources)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse(err.Error()))
		return
	}

	pc.generate(c, meeting, protokoll.GenerateRequest{
		MeetingID: meeting.ID,
		Begin:     body.Begin,
		End:       body.End,
		Approved:  body.Approved,
		Source:    choice,
	})
}

// generate runs the pipeline and writes the response. The caller holds the lock.
func (pc *Controller) generate(c *gin.Context, meeting models.Meeting, req protokoll.GenerateRequest) {
	ctx := c.Request.Context()

	result, err := pc.Generator.Generate(ctx, req)
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "generation failed: %v", err)
		msg := "Beim Erzeugen des Protokolls ist ein interner Fehler aufgetreten."
		if result != nil && result.State == protokoll.StateToolchainFatal {
			msg = "Das Protokoll konnte nicht gesetzt werden."
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewGenericResponse(api.Error, msg, result))
		return
	}
	if result.State != protokoll.StateArtifactsGenerated {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewGenericResponse(api.Error, result.Message, result))
		return
	}

	if req.Source.Kind() != protokoll.SourcePad {
		pc.syncPad(ctx, meeting, result.Protokoll)
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, api.NewGenericResponse(api.Success, "Das Protokoll wurde erzeugt.", result))
}

func readGenerateRequest(c *gin.Context) (generateBody, *protokoll.UploadSource, error) {
	var body generateBody

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		body.Begin = c.PostForm("begin")
		body.End = c.PostForm("end")
		body.Source = c.PostForm("source")
		if v := c.PostForm("approved"); len(v) > 0 {
			approved, err := strconv.ParseBool(v)
			if err != nil {
				return body, nil, fmt.Errorf("invalid value for approved: %q", v)
			}
			body.Approved = approved
		}

		header, err := c.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return body, nil, nil
		}
		if err != nil {
			return body, nil, fmt.Errorf("error reading upload: %v", err)
		}
		f, err := header.Open()
		if err != nil {
			return body, nil, fmt.Errorf("error reading upload: %v", err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxSourceSize+1))
		if err != nil {
			return body, nil, fmt.Errorf("error reading upload: %v", err)
		}
		if len(data) > maxSourceSize {
			return body, nil, errors.New("Die hochgeladene Datei ist zu groß.")
		}
		if len(body.Source) == 0 {
			body.Source = string(protokoll.SourceUpload)
		}
		return body, &protokoll.UploadSource{Filename: header.Filename, Data: data}, nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return body, nil, fmt.Errorf("error reading request body: %v", err)
	}
	if len(raw) == 0 {
		return body, nil, nil
	}
	request := api.GenericRequest{}
	if err := request.Load(raw); err != nil {
		return body, nil, fmt.Errorf("error loading request data: %v", err)
	}
	if err := request.DecodeDataTo(&body); err != nil {
		return body, nil, fmt.Errorf("error decoding request data: %v", err)
	}
	return body, nil, nil
}

func validateTime(s string) error {
	if len(s) == 0 {
		return nil
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	return nil
}

// sourceChoice maps the requested source name onto a SourceChoice. An empty
// name selects the preferred source.
func sourceChoice(name string, upload *protokoll.UploadSource, sources Sources) (protokoll.SourceChoice, error) {
	kind := protokoll.SourceKind(name)
	if len(name) == 0 {
		kind = sources.Preferred
	}
	if !sources.offered(kind) {
		return nil, fmt.Errorf("Die Quelle %q ist nicht verfügbar.", kind)
	}

	switch kind {
	case protokoll.SourceUpload:
		if upload == nil {
			return nil, errors.New("Es wurde keine Datei hochgeladen.")
		}
		return *upload, nil
	case protokoll.SourcePad:
		return protokoll.PadSource{PadID: sources.PadID}, nil
	case protokoll.SourceFile:
		return protokoll.FileSource{}, nil
	case protokoll.SourceTemplate:
		return protokoll.TemplateSource{}, nil
	}
	return nil, fmt.Errorf("unknown source %q", name)
}

// Delete removes the minutes together with all generated files.
//
// @ID deleteProtokoll
// @Tags protokolle
// @Router /meetings/{id}/protokoll [delete]
// @Success 200 {object} api.RestJsonResponse
func (pc *Controller) Delete(c *gin.Context) {
	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	release, ok := pc.lock(c, meeting)
	if !ok {
		return
	}
	defer release()

	p, ok := pc.protokoll(c, meeting)
	if !ok {
		return
	}
	if err := pc.Generator.Delete(c.Request.Context(), &p); err != nil {
		pc.LogErrorf(logType(meeting.ID), "deleting protokoll: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error deleting protokoll"))
		return
	}
	pc.LogInfof(logType(meeting.ID), "deleted %s", p.T2T)
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "Das Protokoll wurde gelöscht.", nil))
}

// Approve marks the minutes as approved and regenerates them from the stored file.
//
// @ID approveProtokoll
// @Tags protokolle
// @Router /meetings/{id}/protokoll/approve [post]
// @Success 200 {object} api.RestJsonResponse{data=protokoll.GenerationResult}
func (pc *Controller) Approve(c *gin.Context) {
	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	release, ok := pc.lock(c, meeting)
	if !ok {
		return
	}
	defer release()

	p, ok := pc.protokoll(c, meeting)
	if !ok {
		return
	}
	if p.Approved {
		c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "Das Protokoll ist bereits genehmigt.", pc.info(meeting, p)))
		return
	}

	pc.generate(c, meeting, protokoll.GenerateRequest{
		MeetingID: meeting.ID,
		Begin:     p.Begin,
		End:       p.End,
		Approved:  true,
		Source:    protokoll.FileSource{},
	})
}

// Publish makes approved minutes publicly downloadable.
//
// @ID publishProtokoll
// @Tags protokolle
// @Router /meetings/{id}/protokoll/publish [post]
// @Success 200 {object} api.RestJsonResponse{data=protokolle.Info}
// @Failure 422 {object} api.RestJsonErrorResponse
func (pc *Controller) Publish(c *gin.Context) {
	pc.setPublished(c, true)
}

// Unpublish withdraws the minutes from public access.
//
// @ID unpublishProtokoll
// @Tags protokolle
// @Router /meetings/{id}/protokoll/publish [delete]
func (pc *Controller) Unpublish(c *gin.Context) {
	pc.setPublished(c, false)
}

func (pc *Controller) setPublished(c *gin.Context, published bool) {
	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	p, ok := pc.protokoll(c, meeting)
	if !ok {
		return
	}
	if published && !p.Approved {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Nur genehmigte Protokolle können veröffentlicht werden."))
		return
	}

	p.Published = published
	if err := pc.SaveProtokoll(c.Request.Context(), &p); err != nil {
		pc.LogErrorf(logType(meeting.ID), "saving protokoll: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error saving protokoll"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", pc.info(meeting, p)))
}

// GetTemplate downloads the blank markup source of a meeting.
//
// @ID getProtokollTemplate
// @Tags protokolle
// @Router /meetings/{id}/protokoll/template [get]
// @Produce plain
func (pc *Controller) GetTemplate(c *gin.Context) {
	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	text, err := protokoll.BlankTemplate(pc.Templates, meeting)
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "rendering blank template: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error rendering template"))
		return
	}
	filename := protokoll.Filename(protokoll.SourcePath(meeting.MeetingTypeID, meeting.Time)) + "." + protokoll.SourceExtension
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

type padSession struct {
	PadID     string    `json:"padId"`
	SessionID string    `json:"sessionId"`
	URL       string    `json:"url"`
	Expires   time.Time `json:"expires"`
}

// OpenPad creates the pad of a meeting if necessary and opens a session for
// the current user. The session id is also set as the "sessionID" cookie.
//
// @ID openProtokollPad
// @Tags protokolle
// @Router /meetings/{id}/protokoll/pad [post]
// @Success 200 {object} api.RestJsonResponse{data=protokolle.padSession}
// @Failure 502 {object} api.RestJsonErrorResponse
func (pc *Controller) OpenPad(c *gin.Context) {
	ctx := c.Request.Context()

	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	if !meeting.MeetingType.PadEnabled {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Für dieses Gremium ist kein Pad aktiviert."))
		return
	}
	claims, ok := middlewares.CurrentClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, api.NewErrorResponse("no claims"))
		return
	}

	padFailed := func(err error) {
		pc.LogWarnf(logging.GetLogTypePad(), "opening pad of meeting %d failed: %v", meeting.ID, err)
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse("Das Pad ist derzeit nicht erreichbar."))
	}

	group, err := pc.Pad.CreateGroupIfNotExistsFor(ctx, meeting.MeetingTypeID)
	if err != nil {
		padFailed(err)
		return
	}

	initial, err := pc.initialPadText(c, meeting)
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "rendering pad text: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error rendering pad text"))
		return
	}
	padID, err := pc.Pad.CreateGroupPad(ctx, group, PadName(meeting), initial)
	if err != nil {
		padFailed(err)
		return
	}

	author, err := pc.Pad.CreateAuthorIfNotExistsFor(ctx, claims.Username, claims.Username)
	if err != nil {
		padFailed(err)
		return
	}
	expires := pc.Now().Add(pc.PadSessionDuration)
	session, err := pc.Pad.CreateSession(ctx, group, author, expires)
	if err != nil {
		padFailed(err)
		return
	}

	c.SetCookie("sessionID", session, int(pc.PadSessionDuration.Seconds()), "/", "", false, false)
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", padSession{
		PadID:     padID,
		SessionID: session,
		URL:       strings.TrimRight(pc.PadURL, "/") + "/p/" + padID,
		Expires:   expires,
	}))
}

// initialPadText is the stored source if there is one, else the blank template.
func (pc *Controller) initialPadText(c *gin.Context, meeting models.Meeting) (string, error) {
	p, found, err := pc.findProtokoll(c.Request.Context(), meeting.ID)
	if err != nil {
		return "", err
	}
	if found {
		if b, err := pc.Storage.Read(p.T2T); err == nil {
			source, err := protokoll.DecodeSource(b)
			if err == nil {
				return source, nil
			}
		}
	}
	return protokoll.BlankTemplate(pc.Templates, meeting)
}

// SendMail sends the text version of published minutes to the committee's mailing list.
//
// @ID mailProtokoll
// @Tags protokolle
// @Router /meetings/{id}/protokoll/mail [post]
// @Success 200 {object} api.RestJsonResponse
// @Failure 422 {object} api.RestJsonErrorResponse
// @Failure 502 {object} api.RestJsonErrorResponse
func (pc *Controller) SendMail(c *gin.Context) {
	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	p, ok := pc.protokoll(c, meeting)
	if !ok {
		return
	}
	if len(meeting.MeetingType.MailingList) == 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Für dieses Gremium ist keine Mailingliste eingetragen."))
		return
	}
	if !p.Published {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Das Protokoll muss zuerst veröffentlicht werden."))
		return
	}

	text, err := pc.Storage.Read(protokoll.ArtifactPath(p.T2T, "txt"))
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "reading txt artifact: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error reading protokoll text"))
		return
	}

	url := strings.TrimRight(pc.SiteURL, "/") + PublicPath(meeting.ID, "pdf")
	msg, err := protokoll.MailContent(meeting, p, string(text), url, pc.MailFrom)
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "rendering mail: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error rendering mail"))
		return
	}
	if err := pc.Mail.Send(c.Request.Context(), msg); err != nil {
		pc.LogErrorf(logging.GetLogTypeMail(), "sending minutes of meeting %d: %v", meeting.ID, err)
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse("Die Mail konnte nicht versendet werden."))
		return
	}
	pc.LogInfof(logging.GetLogTypeMail(), "sent minutes of meeting %d to %s", meeting.ID, msg.To)
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "Die Mail wurde versendet.", nil))
}

// GetHtml returns the sanitised HTML version of the minutes.
//
// @ID getProtokollHtml
// @Tags protokolle
// @Router /meetings/{id}/protokoll/html [get]
// @Produce html
func (pc *Controller) GetHtml(c *gin.Context) {
	pc.serveArtifact(c, "html", false)
}

// Download returns one artifact of the minutes.
//
// @ID downloadProtokoll
// @Tags protokolle
// @Router /meetings/{id}/protokoll/download/{format} [get]
// @Param format path string true "html, txt or pdf"
func (pc *Controller) Download(c *gin.Context) {
	pc.serveArtifact(c, c.Param("format"), false)
}

// PublicDownload returns one artifact of published minutes without authentication.
//
// @ID publicDownloadProtokoll
// @Tags public
// @Router /public/meetings/{id}/protokoll/{format} [get]
func (pc *Controller) PublicDownload(c *gin.Context) {
	pc.serveArtifact(c, c.Param("format"), true)
}

func (pc *Controller) serveArtifact(c *gin.Context, format string, publishedOnly bool) {
	if !isFormat(format) {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("unknown format %q", format))
		return
	}
	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	p, ok := pc.protokoll(c, meeting)
	if !ok {
		return
	}
	if publishedOnly && !p.Published {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponsef("meeting %d has no protokoll", meeting.ID))
		return
	}

	file := protokoll.ArtifactPath(p.T2T, format)
	if !pc.Storage.Exists(file) {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponsef("%s not generated", format))
		return
	}

	switch format {
	case "html":
		b, err := pc.Storage.Read(file)
		if err != nil {
			pc.LogErrorf(logType(meeting.ID), "reading %s: %v", file, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error reading protokoll"))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", pc.Sanitizer.SanitizeBytes(b))
	case "txt":
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.File(pc.Storage.Path(file))
	default:
		c.FileAttachment(pc.Storage.Path(file), protokoll.Filename(file)+"."+format)
	}
}
