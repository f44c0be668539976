package services

import (
	"testing"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReportTargetDispatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	author := seedUser(t, db, "author@example.com", "password123")
	offender := seedUser(t, db, "offender@example.com", "password123")
	category := seedCategory(t, db, "Tools")
	announcement := seedAnnouncement(t, NewAnnouncementService(db), offender.ID, category.ID, "Sketchy drill", models.AnnouncementProduct)

	report, err := svc.Create(author.ID, &dto.CreateReportRequest{
		TargetType:   "USER",
		TargetUserID: &offender.ID,
		Reason:       "spam",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportTargetUser, report.TargetType)
	require.NotNil(t, report.TargetUser)
	assert.Equal(t, offender.ID, report.TargetUser.ID)
	assert.Nil(t, report.TargetAnnouncementID)

	report, err = svc.Create(author.ID, &dto.CreateReportRequest{
		TargetType:           "ANNOUNCEMENT",
		TargetAnnouncementID: &announcement.ID,
		Reason:               "misleading",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportTargetAnnouncement, report.TargetType)
	require.NotNil(t, report.TargetAnnouncement)

	// The reference matching the declared type must be set.
	_, err = svc.Create(author.ID, &dto.CreateReportRequest{
		TargetType:           "USER",
		TargetAnnouncementID: &announcement.ID,
		Reason:               "spam",
	})
	assert.ErrorIs(t, err, ErrReportTargetMissing)

	_, err = svc.Create(author.ID, &dto.CreateReportRequest{
		TargetType:   "ANNOUNCEMENT",
		TargetUserID: &offender.ID,
		Reason:       "spam",
	})
	assert.ErrorIs(t, err, ErrReportTargetMissing)

	missing := uint(9999)
	_, err = svc.Create(author.ID, &dto.CreateReportRequest{
		TargetType:   "USER",
		TargetUserID: &missing,
		Reason:       "spam",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
