package services

import (
	"errors"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"gorm.io/gorm"
)

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Create records an abuse report. The target reference matching the declared
// type must be present and point at an existing row.
func (s *ReportService) Create(authorID uint, req *dto.CreateReportRequest) (*models.Report, error) {
	targetType := models.ReportTargetType(req.TargetType)
	switch targetType {
	case models.ReportTargetUser:
		if req.TargetUserID == nil {
			return nil, ErrReportTargetMissing
		}
		var user models.User
		if err := s.db.First(&user, "id = ?", *req.TargetUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	case models.ReportTargetAnnouncement:
		if req.TargetAnnouncementID == nil {
			return nil, ErrReportTargetMissing
		}
		var announcement models.Announcement
		if err := s.db.First(&announcement, "id = ?", *req.TargetAnnouncementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAnnouncementNotFound
			}
			return nil, err
		}
	default:
		return nil, ErrReportTargetMissing
	}

	report := models.Report{
		TargetType:  targetType,
		AuthorID:    authorID,
		Reason:      req.Reason,
		Description: req.Description,
	}
	if targetType == models.ReportTargetUser {
		report.TargetUserID = req.TargetUserID
	} else {
		report.TargetAnnouncementID = req.TargetAnnouncementID
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, err
	}
	return s.Find(report.ID)
}

func (s *ReportService) Find(id uint) (*models.Report, error) {
	var report models.Report
	err := s.db.
		Preload("Author").
		Preload("TargetUser").
		Preload("TargetAnnouncement").
		First(&report, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// List pages through reports for moderation review, optionally filtered by
// target type.
func (s *ReportService) List(targetType string, page, limit int) (dto.Page[models.Report], error) {
	page, limit = normalizePaging(page, limit)
	query := s.db.Model(&models.Report{})
	if targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return dto.Page[models.Report]{}, err
	}
	var reports []models.Report
	err := query.
		Preload("Author").
		Preload("TargetUser").
		Preload("TargetAnnouncement").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return dto.Page[models.Report]{}, err
	}
	return dto.NewPage(reports, total, page, limit), nil
}

func (s *ReportService) Delete(id uint) error {
	report, err := s.Find(id)
	if err != nil {
		return err
	}
	return s.db.Delete(report).Error
}
