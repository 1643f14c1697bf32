// Package authflow holds the decision logic of the authentication flow:
// which users must verify a phone number, which screen may render, and the
// two-step OTP workflow. Decisions are pure; effects live in the TUI.
package authflow

import (
	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/config"
	"github.com/pulseinbox/inbox-cli/internal/session"
)

// Gate decides whether an authenticated user must complete phone-number
// verification before using the product. The policy is explicit
// configuration, never inferred from which profile fields happen to be set.
type Gate struct {
	policy config.VerificationPolicy
}

// NewGate creates a Gate with the configured policy.
func NewGate(cfg *config.AuthConfig) Gate {
	return Gate{policy: cfg.PhoneVerification}
}

// NeedsVerification reports whether user is blocked on verification.
func (g Gate) NeedsVerification(user *api.User) bool {
	if user == nil {
		return false
	}
	if user.IsTwilioVerified {
		return false
	}
	switch g.policy {
	case config.PolicyIfNumberSet:
		return user.TwilioNumber != ""
	default:
		return true
	}
}

// Phase is the route guard's view of the session.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseUnauthenticated
	PhaseUnverified
	PhaseVerified
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseUnverified:
		return "authenticated_unverified"
	case PhaseVerified:
		return "authenticated_verified"
	default:
		return "unknown"
	}
}

// PhaseOf maps a session snapshot through the gate into a guard phase.
func (g Gate) PhaseOf(snap session.Snapshot) Phase {
	switch {
	case snap.Loading:
		return PhaseLoading
	case !snap.Authenticated:
		return PhaseUnauthenticated
	case g.NeedsVerification(snap.User):
		return PhaseUnverified
	default:
		return PhaseVerified
	}
}
