package protokolle

import (
	"errors"
	"fachschaft-protokolle/internal/api"
	"fachschaft-protokolle/internal/database"
	"fachschaft-protokolle/internal/models"
	"fachschaft-protokolle/internal/protokoll"
	"fachschaft-protokolle/internal/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// maxAttachmentSize limits uploaded attachments.
const maxAttachmentSize = 20 << 20

// AttachmentTypes are the content types accepted for attachments.
var AttachmentTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/gif",
	"text/plain",
	"application/vnd.oasis.opendocument.text",
	"application/vnd.oasis.opendocument.spreadsheet",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// AttachmentInfo is an attachment together with the index used by the
// attachment tag.
type AttachmentInfo struct {
	models.Attachment
	Index int    `json:"index"`
	URL   string `json:"url"`
}

type reorderBody struct {
	Order []uint `mapstructure:"order"`
}

// allowedType returns the detected content type of data if it is accepted.
func allowedType(data []byte) (string, bool) {
	m := mimetype.Detect(data)
	for _, t := range AttachmentTypes {
		if m.Is(t) {
			return t, true
		}
	}
	return m.String(), false
}

// attachmentsEnabled aborts with 422 if the committee does not use attachments.
func attachmentsEnabled(c *gin.Context, meeting models.Meeting) bool {
	if !meeting.MeetingType.ProtokollAttachments {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Für dieses Gremium sind keine Anhänge aktiviert."))
		return false
	}
	return true
}

func (pc *Controller) attachmentInfos(attachments []models.Attachment) []AttachmentInfo {
	infos := make([]AttachmentInfo, 0, len(attachments))
	for i, a := range attachments {
		infos = append(infos, AttachmentInfo{Attachment: a, Index: i + 1, URL: pc.Storage.URL(a.File)})
	}
	return infos
}

// GetAttachments lists the attachments of a meeting in tag order.
//
// @ID getProtokollAttachments
// @Tags attachments
// @Router /meetings/{id}/protokoll/attachments [get]
// @Success 200 {object} api.RestJsonResponse{data=[]protokolle.AttachmentInfo}
func (pc *Controller) GetAttachments(c *gin.Context) {
	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}

	var attachments []models.Attachment
	if err := pc.FindAttachmentsByMeetingId(c.Request.Context(), meeting.ID, &attachments); err != nil {
		pc.LogErrorf(logType(meeting.ID), "loading attachments: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error loading attachments"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", pc.attachmentInfos(attachments)))
}

// UploadAttachment stores the multipart field "file" as new last attachment.
// The optional field "name" overrides the display name.
//
// @ID uploadProtokollAttachment
// @Tags attachments
// @Router /meetings/{id}/protokoll/attachments [post]
// @Success 201 {object} api.RestJsonResponse{data=protokolle.AttachmentInfo}
// @Failure 415 {object} api.RestJsonErrorResponse
func (pc *Controller) UploadAttachment(c *gin.Context) {
	ctx := c.Request.Context()

	meeting, ok := pc.meeting(c)
	if !ok || !attachmentsEnabled(c, meeting) {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error reading upload: %v", err))
		return
	}
	f, err := header.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error reading upload: %v", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxAttachmentSize+1))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error reading upload: %v", err))
		return
	}
	if len(data) > maxAttachmentSize {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, api.NewErrorResponse("Der Anhang ist zu groß."))
		return
	}
	contentType, ok := allowedType(data)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, api.NewErrorResponsef("Dateityp %s ist als Anhang nicht erlaubt.", contentType))
		return
	}

	var attachments []models.Attachment
	if err := pc.FindAttachmentsByMeetingId(ctx, meeting.ID, &attachments); err != nil {
		pc.LogErrorf(logType(meeting.ID), "loading attachments: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error loading attachments"))
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if len(name) == 0 {
		name = header.Filename
	}

	n := len(attachments) + 1
	file := protokoll.AttachmentPath(meeting.MeetingTypeID, meeting.Time, n, header.Filename)
	for pc.Storage.Exists(file) {
		n++
		file = protokoll.AttachmentPath(meeting.MeetingTypeID, meeting.Time, n, header.Filename)
	}
	if err := pc.Storage.Write(file, data); err != nil {
		pc.LogErrorf(logType(meeting.ID), "writing %s: %v", file, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error storing attachment"))
		return
	}

	attachment := models.Attachment{
		MeetingID:   meeting.ID,
		Name:        name,
		File:        file,
		ContentType: contentType,
		SortOrder:   len(attachments),
	}
	if err := pc.CreateAttachment(ctx, &attachment); err != nil {
		pc.LogErrorf(logType(meeting.ID), "saving attachment: %v", err)
		_ = pc.Storage.Remove(file)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error saving attachment"))
		return
	}

	pc.LogInfof(logType(meeting.ID), "stored attachment %s", file)
	c.JSON(http.StatusCreated, api.NewGenericResponse(api.Success, "", AttachmentInfo{
		Attachment: attachment,
		Index:      len(attachments) + 1,
		URL:        pc.Storage.URL(file),
	}))
}

// DeleteAttachment removes an attachment and closes the gap in the sort order.
//
// @ID deleteProtokollAttachment
// @Tags attachments
// @Router /meetings/{id}/protokoll/attachments/{aid} [delete]
// @Success 200 {object} api.RestJsonResponse{data=[]protokolle.AttachmentInfo}
func (pc *Controller) DeleteAttachment(c *gin.Context) {
	ctx := c.Request.Context()

	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}
	aid, err := strconv.ParseUint(c.Param("aid"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("invalid attachment id %q", c.Param("aid")))
		return
	}

	var attachment models.Attachment
	err = pc.FindAttachmentById(ctx, uint(aid), &attachment)
	if errors.Is(err, database.ErrRecordNotFound) || (err == nil && attachment.MeetingID != meeting.ID) {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponsef("attachment %d not found", aid))
		return
	}
	if err != nil {
		pc.LogErrorf(logType(meeting.ID), "loading attachment: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error loading attachment"))
		return
	}

	if err := pc.DeleteAttachmentById(ctx, attachment.ID); err != nil {
		pc.LogErrorf(logType(meeting.ID), "deleting attachment: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error deleting attachment"))
		return
	}
	if err := pc.Storage.Remove(attachment.File); err != nil {
		pc.LogWarnf(logType(meeting.ID), "removing %s: %v", attachment.File, err)
	}

	var remaining []models.Attachment
	if err := pc.FindAttachmentsByMeetingId(ctx, meeting.ID, &remaining); err != nil {
		pc.LogErrorf(logType(meeting.ID), "loading attachments: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error loading attachments"))
		return
	}
	for i := range remaining {
		remaining[i].SortOrder = i
	}
	if err := pc.UpdateAttachmentSortOrders(ctx, remaining); err != nil {
		pc.LogErrorf(logType(meeting.ID), "renumbering attachments: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error saving attachment order"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", pc.attachmentInfos(remaining)))
}

// ReorderAttachments sets the order of all attachments of a meeting. It
// expects {"data": {"order": [<attachment id>, ...]}} naming every attachment once.
//
// @ID reorderProtokollAttachments
// @Tags attachments
// @Router /meetings/{id}/protokoll/attachments/order [put]
// @Success 200 {object} api.RestJsonResponse{data=[]protokolle.AttachmentInfo}
// @Failure 422 {object} api.RestJsonErrorResponse
func (pc *Controller) ReorderAttachments(c *gin.Context) {
	ctx := c.Request.Context()

	meeting, ok := pc.meeting(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("error reading request body: %v", err))
		return
	}
	request := api.GenericRequest{}
	var body reorderBody
	if err := request.Load(raw); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error loading request data: %v", err))
		return
	}
	if err := request.DecodeDataTo(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("error decoding request data: %v", err))
		return
	}

	var attachments []models.Attachment
	if err := pc.FindAttachmentsByMeetingId(ctx, meeting.ID, &attachments); err != nil {
		pc.LogErrorf(logType(meeting.ID), "loading attachments: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error loading attachments"))
		return
	}

	byID := utils.SliceToMap(attachments, func(a models.Attachment) uint { return a.ID })
	if len(body.Order) != len(attachments) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("order must name every attachment exactly once"))
		return
	}
	ordered := make([]models.Attachment, 0, len(body.Order))
	for i, id := range body.Order {
		a, ok := byID[id]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("order must name every attachment exactly once"))
			return
		}
		delete(byID, id)
		a.SortOrder = i
		ordered = append(ordered, a)
	}

	if err := pc.UpdateAttachmentSortOrders(ctx, ordered); err != nil {
		pc.LogErrorf(logType(meeting.ID), "saving attachment order: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("error saving attachment order"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", pc.attachmentInfos(ordered)))
}
