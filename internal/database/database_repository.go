package database

import (
	"context"
	"fachschaft-protokolle/internal/models"
	"gorm.io/gorm"
)

// Repository defines data access methods for meetings, minutes (Protokolle),
// their attachments and user login credentials.
//
// @Summary Interface for Protokoll data storage operations
type Repository interface {

	// FindUserLoginCredentials fetches the user record with the specified username.
	//
	// Param username path string true "Username"
	FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error

	// FindMeetingById fetches a meeting together with its committee, the committee's functions,
	// minute takers, attendees (with their functions) and agenda items.
	//
	// Param id path uint true "Meeting ID"
	FindMeetingById(ctx context.Context, id uint, meeting *models.Meeting) error

	// FindProtokollByMeetingId fetches the Protokoll of a meeting.
	// Returns ErrRecordNotFound if the meeting has no Protokoll yet.
	FindProtokollByMeetingId(ctx context.Context, meetingId uint, protokoll *models.Protokoll) error

	// SaveProtokoll inserts or updates a Protokoll record.
	SaveProtokoll(ctx context.Context, protokoll *models.Protokoll) error

	// DeleteProtokollById deletes the Protokoll record with the given ID.
	DeleteProtokollById(ctx context.Context, id uint) error

	// FindAttachmentsByMeetingId fetches the attachments of a meeting ordered by sort order.
	FindAttachmentsByMeetingId(ctx context.Context, meetingId uint, attachments *[]models.Attachment) error

	FindAttachmentById(ctx context.Context, id uint, attachment *models.Attachment) error

	CreateAttachment(ctx context.Context, attachment *models.Attachment) error

	DeleteAttachmentById(ctx context.Context, id uint) error

	// UpdateAttachmentSortOrders writes the sort order of all given attachments in one transaction.
	UpdateAttachmentSortOrders(ctx context.Context, attachments []models.Attachment) error
}

// NullRepository is a no-op implementation of the Repository interface.
// Useful for testing or default wiring when no database operations are required.
type NullRepository struct{}

func (n *NullRepository) FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error {
	return nil
}

func (n *NullRepository) FindMeetingById(ctx context.Context, id uint, meeting *models.Meeting) error {
	return nil
}

func (n *NullRepository) FindProtokollByMeetingId(ctx context.Context, meetingId uint, protokoll *models.Protokoll) error {
	return ErrRecordNotFound
}

func (n *NullRepository) SaveProtokoll(ctx context.Context, protokoll *models.Protokoll) error {
	return nil
}

func (n *NullRepository) DeleteProtokollById(ctx context.Context, id uint) error {
	return nil
}

func (n *NullRepository) FindAttachmentsByMeetingId(ctx context.Context, meetingId uint, attachments *[]models.Attachment) error {
	return nil
}

func (n *NullRepository) FindAttachmentById(ctx context.Context, id uint, attachment *models.Attachment) error {
	return ErrRecordNotFound
}

func (n *NullRepository) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	return nil
}

func (n *NullRepository) DeleteAttachmentById(ctx context.Context, id uint) error {
	return nil
}

func (n *NullRepository) UpdateAttachmentSortOrders(ctx context.Context, attachments []models.Attachment) error {
	return nil
}

// ensure NullRepository implements Repository
var _ Repository = &NullRepository{}

// GormRepository provides a GORM-based implementation of the Repository interface.
type GormRepository struct {
	*gorm.DB
}

// ensure GormRepository implements Repository
var _ Repository = &GormRepository{}

func (g *GormRepository) FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error {
	return g.DB.
		WithContext(ctx).
		Model(models.User{}).
		Where("username = ?", username).
		Take(user).
		Error
}

func (g *GormRepository) FindMeetingById(ctx context.Context, id uint, meeting *models.Meeting) error {
	return g.DB.
		WithContext(ctx).
		Preload("MeetingType.Functions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, name")
		}).
		Preload("MinuteTakers").
		Preload("Attendees.Functions").
		Preload("Tops", func(db *gorm.DB) *gorm.DB {
			return db.Order("top_id")
		}).
		First(meeting, id).
		Error
}

func (g *GormRepository) FindProtokollByMeetingId(ctx context.Context, meetingId uint, protokoll *models.Protokoll) error {
	return g.DB.
		WithContext(ctx).
		Where("meeting_id = ?", meetingId).
		Take(protokoll).
		Error
}

func (g *GormRepository) SaveProtokoll(ctx context.Context, protokoll *models.Protokoll) error {
	return g.DB.
		WithContext(ctx).
		Omit("Meeting").
		Save(protokoll).
		Error
}

func (g *GormRepository) DeleteProtokollById(ctx context.Context, id uint) error {
	return g.DB.
		WithContext(ctx).
		Exec("DELETE FROM protokolle WHERE id = ?", id).
		Error
}

func (g *GormRepository) FindAttachmentsByMeetingId(ctx context.Context, meetingId uint, attachments *[]models.Attachment) error {
	return g.DB.
		WithContext(ctx).
		Where("meeting_id = ?", meetingId).
		Order("sort_order").
		Find(attachments).
		Error
}

func (g *GormRepository) FindAttachmentById(ctx context.Context, id uint, attachment *models.Attachment) error {
	return g.DB.
		WithContext(ctx).
		Where("id = ?", id).
		Take(attachment).
		Error
}

func (g *GormRepository) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	return g.DB.
		WithContext(ctx).
		Create(attachment).
		Error
}

func (g *GormRepository) DeleteAttachmentById(ctx context.Context, id uint) error {
	return g.DB.
		WithContext(ctx).
		Exec("DELETE FROM protokoll_attachments WHERE id = ?", id).
		Error
}

func (g *GormRepository) UpdateAttachmentSortOrders(ctx context.Context, attachments []models.Attachment) error {
	return g.DB.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			for _, a := range attachments {
				err := tx.
					Model(&models.Attachment{}).
					Where("id = ?", a.ID).
					Update("sort_order", a.SortOrder).
					Error
				if err != nil {
					return err
				}
			}
			return nil
		})
}
