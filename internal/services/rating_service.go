package services

import (
	"errors"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"gorm.io/gorm"
)

type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

func (s *RatingService) Create(senderID uint, req *dto.CreateRatingRequest) (*models.Rating, error) {
	var receiver models.User
	if err := s.db.First(&receiver, "id = ?", req.ReceiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	var announcement models.Announcement
	if err := s.db.First(&announcement, "id = ?", req.AnnouncementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}

	rating := models.Rating{
		Note:           req.Note,
		Comment:        req.Comment,
		SenderID:       senderID,
		ReceiverID:     req.ReceiverID,
		AnnouncementID: req.AnnouncementID,
	}
	if err := s.db.Create(&rating).Error; err != nil {
		return nil, err
	}
	return s.Find(rating.ID)
}

func (s *RatingService) Find(id uint) (*models.Rating, error) {
	var rating models.Rating
	err := s.db.
		Preload("Sender").
		Preload("Receiver").
		Preload("Announcement").
		First(&rating, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}

// ForUser pages through ratings received by a user, newest first.
func (s *RatingService) ForUser(userID uint, page, limit int) (dto.Page[models.Rating], error) {
	page, limit = normalizePaging(page, limit)
	query := s.db.Model(&models.Rating{}).Where("receiver_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return dto.Page[models.Rating]{}, err
	}
	var ratings []models.Rating
	err := query.
		Preload("Sender").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&ratings).Error
	if err != nil {
		return dto.Page[models.Rating]{}, err
	}
	return dto.NewPage(ratings, total, page, limit), nil
}

// ForAnnouncement pages through ratings attached to an announcement.
func (s *RatingService) ForAnnouncement(announcementID uint, page, limit int) (dto.Page[models.Rating], error) {
	page, limit = normalizePaging(page, limit)
	query := s.db.Model(&models.Rating{}).Where("announcement_id = ?", announcementID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return dto.Page[models.Rating]{}, err
	}
	var ratings []models.Rating
	err := query.
		Preload("Sender").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&ratings).Error
	if err != nil {
		return dto.Page[models.Rating]{}, err
	}
	return dto.NewPage(ratings, total, page, limit), nil
}

func (s *RatingService) Delete(id uint) error {
	rating, err := s.Find(id)
	if err != nil {
		return err
	}
	return s.db.Delete(rating).Error
}
