package services

import (
	"errors"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnnouncementService manages listings and their multi-criteria search.
type AnnouncementService struct {
	db *gorm.DB
}

func NewAnnouncementService(db *gorm.DB) *AnnouncementService {
	return &AnnouncementService{db: db}
}

func (s *AnnouncementService) Create(userID uint, req *dto.CreateAnnouncementRequest) (*models.Announcement, error) {
	var category models.Category
	if err := s.db.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if req.CommunityID != nil {
		var community models.Community
		if err := s.db.First(&community, "id = ?", *req.CommunityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommunityNotFound
			}
			return nil, err
		}
	}

	announcement := models.Announcement{
		Title:       req.Title,
		Description: req.Description,
		Type:        models.AnnouncementType(req.Type),
		Images:      datatypes.JSONSlice[string](req.Images),
		CategoryID:  req.CategoryID,
		UserID:      userID,
		CommunityID: req.CommunityID,
	}
	if err := s.db.Create(&announcement).Error; err != nil {
		return nil, err
	}
	return s.Find(announcement.ID)
}

func (s *AnnouncementService) Find(id uint) (*models.Announcement, error) {
	var announcement models.Announcement
	err := s.db.
		Preload("Category").
		Preload("User").
		Preload("Community").
		Preload("Ratings").
		First(&announcement, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return &announcement, nil
}

func (s *AnnouncementService) Update(id uint, req *dto.UpdateAnnouncementRequest) (*models.Announcement, error) {
	announcement, err := s.Find(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.CommunityID != nil {
		updates["community_id"] = *req.CommunityID
	}
	if req.Images != nil {
		updates["images"] = datatypes.JSONSlice[string](*req.Images)
	}
	if len(updates) == 0 {
		return announcement, nil
	}
	if err := s.db.Model(announcement).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Find(id)
}

// SetPublished toggles listing visibility.
func (s *AnnouncementService) SetPublished(id uint, published bool) (*models.Announcement, error) {
	announcement, err := s.Find(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(announcement).Update("is_published", published).Error; err != nil {
		return nil, err
	}
	announcement.IsPublished = published
	return announcement, nil
}

func (s *AnnouncementService) Delete(id uint) error {
	announcement, err := s.Find(id)
	if err != nil {
		return err
	}
	return s.db.Select("Ratings").Delete(announcement).Error
}

// Search applies every non-zero filter from the query and returns one page of
// matches, newest first.
func (s *AnnouncementService) Search(q *dto.SearchAnnouncementsQuery) (dto.Page[models.Announcement], error) {
	page, limit := normalizePaging(q.Page, q.Limit)
	query := s.db.Model(&models.Announcement{})

	if q.Keyword != "" {
		pattern := "%" + q.Keyword + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if q.CategoryID != 0 {
		query = query.Where("category_id = ?", q.CategoryID)
	}
	if q.IsPublished != nil {
		query = query.Where("is_published = ?", *q.IsPublished)
	}
	if q.UserID != 0 {
		query = query.Where("user_id = ?", q.UserID)
	}
	if q.CommunityID != 0 {
		query = query.Where("community_id = ?", q.CommunityID)
	}
	if q.CreatedAtMin != nil {
		query = query.Where("created_at >= ?", *q.CreatedAtMin)
	}
	if q.CreatedAtMax != nil {
		query = query.Where("created_at <= ?", *q.CreatedAtMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return dto.Page[models.Announcement]{}, err
	}
	var announcements []models.Announcement
	err := query.
		Preload("Category").
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&announcements).Error
	if err != nil {
		return dto.Page[models.Announcement]{}, err
	}
	return dto.NewPage(announcements, total, page, limit), nil
}
