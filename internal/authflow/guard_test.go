package authflow

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		phase  Phase
		screen Screen
		want   Verdict
	}{
		{
			name:   "loading suppresses rendering everywhere",
			phase:  PhaseLoading,
			screen: ScreenInbox,
			want:   Verdict{Wait: true},
		},
		{
			name:   "loading suppresses even public screens",
			phase:  PhaseLoading,
			screen: ScreenLogin,
			want:   Verdict{Wait: true},
		},
		{
			name:   "unauthenticated user may see login",
			phase:  PhaseUnauthenticated,
			screen: ScreenLogin,
			want:   Verdict{Allow: true},
		},
		{
			name:   "unauthenticated user may see signup",
			phase:  PhaseUnauthenticated,
			screen: ScreenSignup,
			want:   Verdict{Allow: true},
		},
		{
			name:   "unauthenticated user may land on the callback screen",
			phase:  PhaseUnauthenticated,
			screen: ScreenAuthCallback,
			want:   Verdict{Allow: true},
		},
		{
			name:   "unauthenticated user is sent to login from the inbox",
			phase:  PhaseUnauthenticated,
			screen: ScreenInbox,
			want:   Verdict{RedirectTo: ScreenLogin},
		},
		{
			name:   "unauthenticated user is sent to login from verify",
			phase:  PhaseUnauthenticated,
			screen: ScreenVerify,
			want:   Verdict{RedirectTo: ScreenLogin},
		},
		{
			name:   "unverified user is pinned to verify",
			phase:  PhaseUnverified,
			screen: ScreenInbox,
			want:   Verdict{RedirectTo: ScreenVerify},
		},
		{
			name:   "unverified user may stay on verify",
			phase:  PhaseUnverified,
			screen: ScreenVerify,
			want:   Verdict{Allow: true},
		},
		{
			name:   "unverified user is pushed off login",
			phase:  PhaseUnverified,
			screen: ScreenLogin,
			want:   Verdict{RedirectTo: ScreenVerify},
		},
		{
			name:   "unverified user may finish the callback screen",
			phase:  PhaseUnverified,
			screen: ScreenAuthCallback,
			want:   Verdict{Allow: true},
		},
		{
			name:   "verified user is pushed off login",
			phase:  PhaseVerified,
			screen: ScreenLogin,
			want:   Verdict{RedirectTo: ScreenInbox},
		},
		{
			name:   "verified user is pushed off signup",
			phase:  PhaseVerified,
			screen: ScreenSignup,
			want:   Verdict{RedirectTo: ScreenInbox},
		},
		{
			name:   "verified user is pushed off verify",
			phase:  PhaseVerified,
			screen: ScreenVerify,
			want:   Verdict{RedirectTo: ScreenInbox},
		},
		{
			name:   "verified user may use the inbox",
			phase:  PhaseVerified,
			screen: ScreenInbox,
			want:   Verdict{Allow: true},
		},
		{
			name:   "verified user may use notes",
			phase:  PhaseVerified,
			screen: ScreenNotes,
			want:   Verdict{Allow: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Decide(tt.phase, tt.screen)); diff != "" {
				t.Errorf("Decide() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoute_FollowsRedirectsToASettledScreen(t *testing.T) {
	tests := []struct {
		name   string
		phase  Phase
		screen Screen
		want   Screen
	}{
		{
			name:   "unauthenticated inbox lands on login",
			phase:  PhaseUnauthenticated,
			screen: ScreenInbox,
			want:   ScreenLogin,
		},
		{
			name:   "unverified login lands on verify",
			phase:  PhaseUnverified,
			screen: ScreenLogin,
			want:   ScreenVerify,
		},
		{
			name:   "verified verify lands on the inbox",
			phase:  PhaseVerified,
			screen: ScreenVerify,
			want:   ScreenInbox,
		},
		{
			name:   "allowed screens stay put",
			phase:  PhaseVerified,
			screen: ScreenInbox,
			want:   ScreenInbox,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screen, verdict := Route(tt.phase, tt.screen)
			assert.Equal(t, tt.want, screen)
			assert.False(t, verdict.Wait)
			assert.Empty(t, verdict.RedirectTo)
		})
	}
}
