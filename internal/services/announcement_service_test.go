package services

import (
	"fmt"
	"testing"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

func seedAnnouncement(t *testing.T, svc *AnnouncementService, userID, categoryID uint, title string, kind models.AnnouncementType) *models.Announcement {
	t.Helper()
	announcement, err := svc.Create(userID, &dto.CreateAnnouncementRequest{
		Title:       title,
		Description: "some description for " + title,
		Type:        string(kind),
		CategoryID:  categoryID,
	})
	require.NoError(t, err)
	return announcement
}

func TestCreateAnnouncementValidatesReferences(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnouncementService(db)
	user := seedUser(t, db, "seller@example.com", "password123")
	category := seedCategory(t, db, "Tools")

	announcement := seedAnnouncement(t, svc, user.ID, category.ID, "Ladder for rent", models.AnnouncementProduct)
	assert.False(t, announcement.IsPublished)
	assert.Equal(t, category.ID, announcement.Category.ID)

	_, err := svc.Create(user.ID, &dto.CreateAnnouncementRequest{
		Title:       "Broken",
		Description: "no such category",
		Type:        "PRODUCT",
		CategoryID:  9999,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	missing := uint(9999)
	_, err = svc.Create(user.ID, &dto.CreateAnnouncementRequest{
		Title:       "Broken",
		Description: "no such community",
		Type:        "PRODUCT",
		CategoryID:  category.ID,
		CommunityID: &missing,
	})
	assert.ErrorIs(t, err, ErrCommunityNotFound)
}

func TestPublishToggle(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnouncementService(db)
	user := seedUser(t, db, "seller@example.com", "password123")
	category := seedCategory(t, db, "Tools")
	announcement := seedAnnouncement(t, svc, user.ID, category.ID, "Drill", models.AnnouncementProduct)

	published, err := svc.SetPublished(announcement.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	unpublished, err := svc.SetPublished(announcement.ID, false)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublished)
}

func TestSearchFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnouncementService(db)
	alice := seedUser(t, db, "alice@example.com", "password123")
	bob := seedUser(t, db, "bob@example.com", "password123")
	tools := seedCategory(t, db, "Tools")
	lessons := seedCategory(t, db, "Lessons")

	drill := seedAnnouncement(t, svc, alice.ID, tools.ID, "Cordless drill", models.AnnouncementProduct)
	seedAnnouncement(t, svc, alice.ID, lessons.ID, "Guitar lessons", models.AnnouncementService)
	seedAnnouncement(t, svc, bob.ID, tools.ID, "Hammer drill", models.AnnouncementProduct)
	_, err := svc.SetPublished(drill.ID, true)
	require.NoError(t, err)

	byKeyword, err := svc.Search(&dto.SearchAnnouncementsQuery{Keyword: "drill"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byKeyword.Meta.TotalItems)

	byType, err := svc.Search(&dto.SearchAnnouncementsQuery{Type: "SERVICE"})
	require.NoError(t, err)
	require.Len(t, byType.Items, 1)
	assert.Equal(t, "Guitar lessons", byType.Items[0].Title)

	byCategory, err := svc.Search(&dto.SearchAnnouncementsQuery{CategoryID: tools.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byCategory.Meta.TotalItems)

	byUser, err := svc.Search(&dto.SearchAnnouncementsQuery{UserID: bob.ID})
	require.NoError(t, err)
	require.Len(t, byUser.Items, 1)
	assert.Equal(t, "Hammer drill", byUser.Items[0].Title)

	publishedOnly := true
	byPublished, err := svc.Search(&dto.SearchAnnouncementsQuery{IsPublished: &publishedOnly})
	require.NoError(t, err)
	require.Len(t, byPublished.Items, 1)
	assert.Equal(t, drill.ID, byPublished.Items[0].ID)

	// Filters combine.
	combined, err := svc.Search(&dto.SearchAnnouncementsQuery{Keyword: "drill", UserID: alice.ID})
	require.NoError(t, err)
	require.Len(t, combined.Items, 1)
	assert.Equal(t, drill.ID, combined.Items[0].ID)

	none, err := svc.Search(&dto.SearchAnnouncementsQuery{Keyword: "tractor"})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
	assert.EqualValues(t, 0, none.Meta.TotalItems)
}

func TestSearchPaginationMeta(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnouncementService(db)
	user := seedUser(t, db, "seller@example.com", "password123")
	category := seedCategory(t, db, "Tools")
	for i := 0; i < 7; i++ {
		seedAnnouncement(t, svc, user.ID, category.ID, fmt.Sprintf("Item %d", i), models.AnnouncementProduct)
	}

	page, err := svc.Search(&dto.SearchAnnouncementsQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 2, page.Meta.CurrentPage)
	assert.Equal(t, 3, page.Meta.ItemsPerPage)
	assert.EqualValues(t, 7, page.Meta.TotalItems)
	assert.Equal(t, 3, page.Meta.TotalPages)

	last, err := svc.Search(&dto.SearchAnnouncementsQuery{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
}

func TestUpdateAnnouncement(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnouncementService(db)
	user := seedUser(t, db, "seller@example.com", "password123")
	tools := seedCategory(t, db, "Tools")
	lessons := seedCategory(t, db, "Lessons")
	announcement := seedAnnouncement(t, svc, user.ID, tools.ID, "Drill", models.AnnouncementProduct)

	title := "Heavy duty drill"
	images := []string{"https://cdn.example.com/drill.jpg"}
	updated, err := svc.Update(announcement.ID, &dto.UpdateAnnouncementRequest{
		Title:      &title,
		CategoryID: &lessons.ID,
		Images:     &images,
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, lessons.ID, updated.Category.ID)
	require.Len(t, updated.Images, 1)

	badCategory := uint(9999)
	_, err = svc.Update(announcement.ID, &dto.UpdateAnnouncementRequest{CategoryID: &badCategory})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestDeleteAnnouncementRemovesRatings(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnouncementService(db)
	seller := seedUser(t, db, "seller@example.com", "password123")
	buyer := seedUser(t, db, "buyer@example.com", "password123")
	category := seedCategory(t, db, "Tools")
	announcement := seedAnnouncement(t, svc, seller.ID, category.ID, "Drill", models.AnnouncementProduct)

	rating := models.Rating{
		Note:           5,
		SenderID:       buyer.ID,
		ReceiverID:     seller.ID,
		AnnouncementID: announcement.ID,
	}
	require.NoError(t, db.Create(&rating).Error)

	require.NoError(t, svc.Delete(announcement.ID))
	_, err := svc.Find(announcement.ID)
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Rating{}).Where("announcement_id = ?", announcement.ID).Count(&count).Error)
	assert.Zero(t, count)
}
