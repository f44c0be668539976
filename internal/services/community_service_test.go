package services

import (
	"context"
	"testing"
	"time"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/mail"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCommunityService(db *gorm.DB) *CommunityService {
	return NewCommunityService(db, testConfig(), mail.Noop{})
}

type sentMail struct {
	kind string
	to   string
}

// recordingMailer captures recipients per template for assertions.
type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) record(kind, to string) error {
	m.sent = append(m.sent, sentMail{kind: kind, to: to})
	return nil
}

func (m *recordingMailer) last() sentMail {
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *recordingMailer) SendOTP(_ context.Context, to, _ string) error {
	return m.record("otp", to)
}

func (m *recordingMailer) SendResendOTP(_ context.Context, to, _ string) error {
	return m.record("resend_otp", to)
}

func (m *recordingMailer) SendCommunityPending(_ context.Context, to, _, _ string) error {
	return m.record("community_pending", to)
}

func (m *recordingMailer) SendApplicationPending(_ context.Context, to, _, _ string) error {
	return m.record("application_pending", to)
}

func (m *recordingMailer) SendApplicationAccepted(_ context.Context, to, _, _ string) error {
	return m.record("application_accepted", to)
}

func (m *recordingMailer) SendApplicationRejected(_ context.Context, to, _, _ string) error {
	return m.record("application_rejected", to)
}

func (m *recordingMailer) SendCommunityInvitation(_ context.Context, to, _, _ string) error {
	return m.record("invitation", to)
}

func seedCommunity(t *testing.T, svc *CommunityService, creator *models.User) *models.Community {
	t.Helper()
	community, err := svc.Create(context.Background(), creator, &dto.CreateCommunityRequest{
		Name:        "Garden Exchange",
		Description: "Swap tools and seeds",
	})
	require.NoError(t, err)
	return community
}

func TestCreateCommunityPendingWithCreatorAsMember(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")

	community := seedCommunity(t, svc, creator)
	assert.Equal(t, models.CommunityPending, community.Status)
	require.NotNil(t, community.Slug)
	assert.Equal(t, "garden-exchange", *community.Slug)

	member, err := svc.isMember(community.ID, creator.ID)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestCommunityStatusAndSoftDelete(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")
	community := seedCommunity(t, svc, creator)

	validated, err := svc.SetStatus(community.ID, models.CommunityValidated)
	require.NoError(t, err)
	assert.Equal(t, models.CommunityValidated, validated.Status)

	require.NoError(t, svc.Delete(community.ID))
	_, err = svc.Find(community.ID)
	assert.ErrorIs(t, err, ErrCommunityNotFound)

	// Soft delete: the row survives with a deleted_at marker.
	var raw models.Community
	require.NoError(t, db.Unscoped().First(&raw, "id = ?", community.ID).Error)
	assert.True(t, raw.DeletedAt.Valid)
}

func TestApplyBlockedByAnyExistingApplication(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")
	applicant := seedUser(t, db, "applicant@example.com", "password123")
	community := seedCommunity(t, svc, creator)
	ctx := context.Background()

	application, err := svc.Apply(ctx, applicant, community.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, application.Status)

	_, err = svc.Apply(ctx, applicant, community.ID)
	assert.ErrorIs(t, err, ErrApplicationExists)

	// Rejection is terminal and still blocks reapplying.
	_, err = svc.RejectApplication(ctx, application.ID)
	require.NoError(t, err)
	_, err = svc.Apply(ctx, applicant, community.ID)
	assert.ErrorIs(t, err, ErrApplicationExists)
}

func TestMembershipMailsGoToTheRightInbox(t *testing.T) {
	db := newTestDB(t)
	mailer := &recordingMailer{}
	svc := NewCommunityService(db, testConfig(), mailer)
	creator := seedUser(t, db, "creator@example.com", "password123")
	applicant := seedUser(t, db, "applicant@example.com", "password123")
	community := seedCommunity(t, svc, creator)
	require.Equal(t, sentMail{kind: "community_pending", to: creator.Email}, mailer.last())
	ctx := context.Background()

	// The pending notice goes to the applicant, not the creator.
	application, err := svc.Apply(ctx, applicant, community.ID)
	require.NoError(t, err)
	assert.Equal(t, sentMail{kind: "application_pending", to: applicant.Email}, mailer.last())

	_, err = svc.AcceptApplication(ctx, application.ID)
	require.NoError(t, err)
	assert.Equal(t, sentMail{kind: "application_accepted", to: applicant.Email}, mailer.last())

	invitation, err := svc.Invite(ctx, creator, community.ID, "outsider@example.com")
	require.NoError(t, err)
	require.NotNil(t, invitation)
	assert.Equal(t, sentMail{kind: "invitation", to: "outsider@example.com"}, mailer.last())
}

func TestApplyAsMemberConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")
	community := seedCommunity(t, svc, creator)

	_, err := svc.Apply(context.Background(), creator, community.ID)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestAcceptApplicationAddsMemberOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")
	applicant := seedUser(t, db, "applicant@example.com", "password123")
	community := seedCommunity(t, svc, creator)
	ctx := context.Background()

	application, err := svc.Apply(ctx, applicant, community.ID)
	require.NoError(t, err)

	accepted, err := svc.AcceptApplication(ctx, application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, accepted.Status)

	member, err := svc.isMember(community.ID, applicant.ID)
	require.NoError(t, err)
	assert.True(t, member)

	// Terminal: a resolved application cannot be resolved again.
	_, err = svc.AcceptApplication(ctx, application.ID)
	assert.ErrorIs(t, err, ErrApplicationResolved)
	_, err = svc.RejectApplication(ctx, application.ID)
	assert.ErrorIs(t, err, ErrApplicationResolved)
}

func TestRejectApplicationDoesNotAddMember(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")
	applicant := seedUser(t, db, "applicant@example.com", "password123")
	community := seedCommunity(t, svc, creator)
	ctx := context.Background()

	application, err := svc.Apply(ctx, applicant, community.ID)
	require.NoError(t, err)

	rejected, err := svc.RejectApplication(ctx, application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, rejected.Status)

	member, err := svc.isMember(community.ID, applicant.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestInviteAndAcceptInvitation(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")
	invitee := seedUser(t, db, "invitee@example.com", "password123")
	community := seedCommunity(t, svc, creator)
	ctx := context.Background()

	invitation, err := svc.Invite(ctx, creator, community.ID, invitee.Email)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationPending, invitation.Status)
	assert.NotEmpty(t, invitation.Token)

	accepted, err := svc.AcceptInvitation(invitee, invitation.Token)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationAccepted, accepted.Status)

	member, err := svc.isMember(community.ID, invitee.ID)
	require.NoError(t, err)
	assert.True(t, member)

	// Single use.
	_, err = svc.AcceptInvitation(invitee, invitation.Token)
	assert.ErrorIs(t, err, ErrInvitationNotPending)

	_, err = svc.AcceptInvitation(invitee, "no-such-token")
	assert.ErrorIs(t, err, ErrInvitationNotFound)

	// A member's email cannot be invited again.
	_, err = svc.Invite(ctx, creator, community.ID, invitee.Email)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestExpiredInvitationPersistedLazily(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")
	invitee := seedUser(t, db, "invitee@example.com", "password123")
	community := seedCommunity(t, svc, creator)
	ctx := context.Background()

	invitation, err := svc.Invite(ctx, creator, community.ID, invitee.Email)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.CommunityInvitation{}).
		Where("id = ?", invitation.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	// No sweep runs: the row still says PENDING until someone redeems it.
	var before models.CommunityInvitation
	require.NoError(t, db.First(&before, "id = ?", invitation.ID).Error)
	assert.Equal(t, models.InvitationPending, before.Status)

	_, err = svc.AcceptInvitation(invitee, invitation.Token)
	assert.ErrorIs(t, err, ErrInvitationExpired)

	var after models.CommunityInvitation
	require.NoError(t, db.First(&after, "id = ?", invitation.ID).Error)
	assert.Equal(t, models.InvitationExpired, after.Status)

	member, err := svc.isMember(community.ID, invitee.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestRejectInvitation(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")
	community := seedCommunity(t, svc, creator)
	ctx := context.Background()

	invitation, err := svc.Invite(ctx, creator, community.ID, "outsider@example.com")
	require.NoError(t, err)

	rejected, err := svc.RejectInvitation(invitation.Token)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationRejected, rejected.Status)

	_, err = svc.RejectInvitation(invitation.Token)
	assert.ErrorIs(t, err, ErrInvitationNotPending)
}

func TestMembersPagination(t *testing.T) {
	db := newTestDB(t)
	svc := newCommunityService(db)
	creator := seedUser(t, db, "creator@example.com", "password123")
	community := seedCommunity(t, svc, creator)

	for i := 0; i < 11; i++ {
		member := seedUser(t, db, string(rune('a'+i))+"-member@example.com", "password123")
		require.NoError(t, svc.addMember(community.ID, member.ID))
	}

	page, err := svc.Members(community.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.EqualValues(t, 12, page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)

	rest, err := svc.Members(community.ID, 2, 10)
	require.NoError(t, err)
	assert.Len(t, rest.Items, 2)

	_, err = svc.Members(9999, 1, 10)
	assert.ErrorIs(t, err, ErrCommunityNotFound)
}
