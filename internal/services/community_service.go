package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/okaz-app/okaz-backend/internal/config"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/mail"
	"github.com/okaz-app/okaz-backend/internal/models"
	"gorm.io/gorm"
)

// CommunityService owns community lifecycle and both membership workflows:
// user-initiated applications and creator-initiated email invitations.
type CommunityService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer mail.Mailer
}

func NewCommunityService(db *gorm.DB, cfg *config.Config, mailer mail.Mailer) *CommunityService {
	return &CommunityService{db: db, cfg: cfg, mailer: mailer}
}

// Create records a new community in PENDING status with the creator as its
// first member. Validation is a separate administrative step.
func (s *CommunityService) Create(ctx context.Context, creator *models.User, req *dto.CreateCommunityRequest) (*models.Community, error) {
	slug := models.Slugify(req.Name)
	community := models.Community{
		Name:        req.Name,
		Slug:        &slug,
		Description: req.Description,
		Status:      models.CommunityPending,
		Logo:        req.Logo,
		CreatedByID: creator.ID,
		CityID:      req.CityID,
		CountryID:   req.CountryID,
		Members:     []models.User{*creator},
	}
	if err := s.db.Create(&community).Error; err != nil {
		return nil, err
	}
	if err := s.mailer.SendCommunityPending(ctx, creator.Email, community.Name, creator.FullName); err != nil {
		slog.Error("community pending email failed", "error", err, "community_id", community.ID)
	}
	return s.Find(community.ID)
}

func (s *CommunityService) Find(id uint) (*models.Community, error) {
	var community models.Community
	err := s.db.
		Preload("CreatedBy").
		Preload("City.Country").
		Preload("Country").
		First(&community, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	return &community, nil
}

// List returns a page of communities, optionally filtered by status.
func (s *CommunityService) List(status string, page, limit int) (dto.Page[models.Community], error) {
	page, limit = normalizePaging(page, limit)
	query := s.db.Model(&models.Community{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return dto.Page[models.Community]{}, err
	}
	var communities []models.Community
	err := query.
		Preload("CreatedBy").
		Preload("City.Country").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&communities).Error
	if err != nil {
		return dto.Page[models.Community]{}, err
	}
	return dto.NewPage(communities, total, page, limit), nil
}

func (s *CommunityService) Update(id uint, req *dto.UpdateCommunityRequest) (*models.Community, error) {
	community, err := s.Find(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		slug := models.Slugify(*req.Name)
		updates["name"] = *req.Name
		updates["slug"] = slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Logo != nil {
		updates["logo"] = *req.Logo
	}
	if req.CityID != nil {
		updates["city_id"] = *req.CityID
	}
	if req.CountryID != nil {
		updates["country_id"] = *req.CountryID
	}
	if len(updates) == 0 {
		return community, nil
	}
	if err := s.db.Model(community).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Find(id)
}

// SetStatus moves a community to VALIDATED or REJECTED.
func (s *CommunityService) SetStatus(id uint, status models.CommunityStatus) (*models.Community, error) {
	community, err := s.Find(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(community).Update("status", status).Error; err != nil {
		return nil, err
	}
	community.Status = status
	return community, nil
}

func (s *CommunityService) Delete(id uint) error {
	community, err := s.Find(id)
	if err != nil {
		return err
	}
	return s.db.Delete(community).Error
}

// Members returns a page of a community's members.
func (s *CommunityService) Members(id uint, page, limit int) (dto.Page[models.User], error) {
	if _, err := s.Find(id); err != nil {
		return dto.Page[models.User]{}, err
	}
	page, limit = normalizePaging(page, limit)

	base := s.db.Model(&models.User{}).
		Joins("JOIN communities_members cm ON cm.user_id = users.id").
		Where("cm.community_id = ?", id)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return dto.Page[models.User]{}, err
	}
	var members []models.User
	err := base.
		Order("users.full_name").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&members).Error
	if err != nil {
		return dto.Page[models.User]{}, err
	}
	return dto.NewPage(members, total, page, limit), nil
}

func (s *CommunityService) isMember(communityID, userID uint) (bool, error) {
	var count int64
	err := s.db.Table("communities_members").
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *CommunityService) addMember(communityID, userID uint) error {
	return s.db.Model(&models.Community{ID: communityID}).
		Association("Members").
		Append(&models.User{ID: userID})
}

// Apply creates a PENDING membership application. Any existing application
// for the pair blocks a new one, whatever its status.
func (s *CommunityService) Apply(ctx context.Context, user *models.User, communityID uint) (*models.CommunityApplication, error) {
	community, err := s.Find(communityID)
	if err != nil {
		return nil, err
	}
	member, err := s.isMember(communityID, user.ID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, ErrAlreadyMember
	}
	var existing models.CommunityApplication
	err = s.db.Where("user_id = ? AND community_id = ?", user.ID, communityID).First(&existing).Error
	if err == nil {
		return nil, ErrApplicationExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	application := models.CommunityApplication{
		UserID:      user.ID,
		CommunityID: communityID,
		Status:      models.ApplicationPending,
	}
	if err := s.db.Create(&application).Error; err != nil {
		return nil, err
	}
	if err := s.mailer.SendApplicationPending(ctx, user.Email, community.Name, user.FullName); err != nil {
		slog.Error("application pending email failed", "error", err, "application_id", application.ID)
	}
	return s.findApplication(application.ID)
}

func (s *CommunityService) findApplication(id uint) (*models.CommunityApplication, error) {
	var application models.CommunityApplication
	err := s.db.
		Preload("User").
		Preload("Community.CreatedBy").
		First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

// Applications lists a community's applications, optionally filtered by status.
func (s *CommunityService) Applications(communityID uint, status string, page, limit int) (dto.Page[models.CommunityApplication], error) {
	if _, err := s.Find(communityID); err != nil {
		return dto.Page[models.CommunityApplication]{}, err
	}
	page, limit = normalizePaging(page, limit)
	query := s.db.Model(&models.CommunityApplication{}).Where("community_id = ?", communityID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return dto.Page[models.CommunityApplication]{}, err
	}
	var applications []models.CommunityApplication
	err := query.
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&applications).Error
	if err != nil {
		return dto.Page[models.CommunityApplication]{}, err
	}
	return dto.NewPage(applications, total, page, limit), nil
}

// AcceptApplication moves a PENDING application to ACCEPTED and adds the
// applicant to the member list. Applications already resolved stay untouched.
func (s *CommunityService) AcceptApplication(ctx context.Context, applicationID uint) (*models.CommunityApplication, error) {
	application, err := s.findApplication(applicationID)
	if err != nil {
		return nil, err
	}
	if application.Status != models.ApplicationPending {
		return nil, ErrApplicationResolved
	}

	member, err := s.isMember(application.CommunityID, application.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		if err := s.addMember(application.CommunityID, application.UserID); err != nil {
			return nil, err
		}
	}
	if err := s.db.Model(application).Update("status", models.ApplicationAccepted).Error; err != nil {
		return nil, err
	}
	application.Status = models.ApplicationAccepted
	if err := s.mailer.SendApplicationAccepted(ctx, application.User.Email, application.Community.Name, application.User.FullName); err != nil {
		slog.Error("application accepted email failed", "error", err, "application_id", application.ID)
	}
	return application, nil
}

// RejectApplication moves a PENDING application to REJECTED.
func (s *CommunityService) RejectApplication(ctx context.Context, applicationID uint) (*models.CommunityApplication, error) {
	application, err := s.findApplication(applicationID)
	if err != nil {
		return nil, err
	}
	if application.Status != models.ApplicationPending {
		return nil, ErrApplicationResolved
	}
	if err := s.db.Model(application).Update("status", models.ApplicationRejected).Error; err != nil {
		return nil, err
	}
	application.Status = models.ApplicationRejected
	if err := s.mailer.SendApplicationRejected(ctx, application.User.Email, application.Community.Name, application.User.FullName); err != nil {
		slog.Error("application rejected email failed", "error", err, "application_id", application.ID)
	}
	return application, nil
}

// Invite creates a PENDING invitation carrying a fresh single-use token and
// emails it to the invitee.
func (s *CommunityService) Invite(ctx context.Context, inviter *models.User, communityID uint, email string) (*models.CommunityInvitation, error) {
	community, err := s.Find(communityID)
	if err != nil {
		return nil, err
	}
	var invitee models.User
	err = s.db.Where("email = ?", email).First(&invitee).Error
	if err == nil {
		member, err := s.isMember(communityID, invitee.ID)
		if err != nil {
			return nil, err
		}
		if member {
			return nil, ErrAlreadyMember
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	invitation := models.CommunityInvitation{
		Email:       email,
		Token:       uuid.NewString(),
		Status:      models.InvitationPending,
		CommunityID: communityID,
		InvitedByID: &inviter.ID,
		ExpiresAt:   time.Now().Add(s.cfg.InvitationTTL),
	}
	if err := s.db.Create(&invitation).Error; err != nil {
		return nil, err
	}
	if err := s.mailer.SendCommunityInvitation(ctx, email, community.Name, invitation.Token); err != nil {
		slog.Error("invitation email failed", "error", err, "invitation_id", invitation.ID)
	}
	invitation.Community = *community
	return &invitation, nil
}

// Invitations lists a community's invitations. Rows past their expiry are
// reported with their effective status but only persisted as EXPIRED when a
// redemption attempt observes them.
func (s *CommunityService) Invitations(communityID uint, page, limit int) (dto.Page[models.CommunityInvitation], error) {
	if _, err := s.Find(communityID); err != nil {
		return dto.Page[models.CommunityInvitation]{}, err
	}
	page, limit = normalizePaging(page, limit)
	query := s.db.Model(&models.CommunityInvitation{}).Where("community_id = ?", communityID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return dto.Page[models.CommunityInvitation]{}, err
	}
	var invitations []models.CommunityInvitation
	err := query.
		Preload("InvitedBy").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invitations).Error
	if err != nil {
		return dto.Page[models.CommunityInvitation]{}, err
	}
	now := time.Now()
	for i := range invitations {
		invitations[i].Status = invitations[i].EffectiveStatus(now)
	}
	return dto.NewPage(invitations, total, page, limit), nil
}

func (s *CommunityService) findInvitationByToken(token string) (*models.CommunityInvitation, error) {
	var invitation models.CommunityInvitation
	err := s.db.
		Preload("Community").
		First(&invitation, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// AcceptInvitation redeems a token for the given user. A PENDING row past its
// expiry is persisted as EXPIRED here and the redemption fails.
func (s *CommunityService) AcceptInvitation(user *models.User, token string) (*models.CommunityInvitation, error) {
	invitation, err := s.findInvitationByToken(token)
	if err != nil {
		return nil, err
	}
	switch invitation.EffectiveStatus(time.Now()) {
	case models.InvitationExpired:
		if invitation.Status == models.InvitationPending {
			if err := s.db.Model(invitation).Update("status", models.InvitationExpired).Error; err != nil {
				return nil, err
			}
			invitation.Status = models.InvitationExpired
		}
		return nil, ErrInvitationExpired
	case models.InvitationPending:
	default:
		return nil, ErrInvitationNotPending
	}

	member, err := s.isMember(invitation.CommunityID, user.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		if err := s.addMember(invitation.CommunityID, user.ID); err != nil {
			return nil, err
		}
	}
	if err := s.db.Model(invitation).Update("status", models.InvitationAccepted).Error; err != nil {
		return nil, err
	}
	invitation.Status = models.InvitationAccepted
	return invitation, nil
}

// RejectInvitation declines a token. Expiry is observed the same way as on
// acceptance.
func (s *CommunityService) RejectInvitation(token string) (*models.CommunityInvitation, error) {
	invitation, err := s.findInvitationByToken(token)
	if err != nil {
		return nil, err
	}
	switch invitation.EffectiveStatus(time.Now()) {
	case models.InvitationExpired:
		if invitation.Status == models.InvitationPending {
			if err := s.db.Model(invitation).Update("status", models.InvitationExpired).Error; err != nil {
				return nil, err
			}
			invitation.Status = models.InvitationExpired
		}
		return nil, ErrInvitationExpired
	case models.InvitationPending:
	default:
		return nil, ErrInvitationNotPending
	}
	if err := s.db.Model(invitation).Update("status", models.InvitationRejected).Error; err != nil {
		return nil, err
	}
	invitation.Status = models.InvitationRejected
	return invitation, nil
}
