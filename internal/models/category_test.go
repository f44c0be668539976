package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Tools", "tools"},
		{"spaces become hyphens", "Home & Garden", "home-garden"},
		{"whitespace runs collapse", "a   b\tc", "a-b-c"},
		{"strips accents and symbols", "Café+Bar!", "cafbar"},
		{"collapses dashes", "a - b", "a-b"},
		{"digits survive", "Top 10 Deals", "top-10-deals"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}

func TestInvitationEffectiveStatus(t *testing.T) {
	now := time.Now()
	pending := CommunityInvitation{Status: InvitationPending, ExpiresAt: now.Add(time.Hour)}
	assert.Equal(t, InvitationPending, pending.EffectiveStatus(now))

	stale := CommunityInvitation{Status: InvitationPending, ExpiresAt: now.Add(-time.Minute)}
	assert.Equal(t, InvitationExpired, stale.EffectiveStatus(now))
	// EffectiveStatus never mutates the row.
	assert.Equal(t, InvitationPending, stale.Status)

	// Terminal statuses are unaffected by the clock.
	accepted := CommunityInvitation{Status: InvitationAccepted, ExpiresAt: now.Add(-time.Hour)}
	assert.Equal(t, InvitationAccepted, accepted.EffectiveStatus(now))
}
