package authflow

// Screen names one of the client's screens for routing purposes.
type Screen string

const (
	ScreenLogin        Screen = "login"
	ScreenSignup       Screen = "signup"
	ScreenAuthCallback Screen = "auth"
	ScreenVerify       Screen = "verify"
	ScreenInbox        Screen = "inbox"
	ScreenNotes        Screen = "notes"
)

// publicScreens may render without a session.
var publicScreens = map[Screen]bool{
	ScreenLogin:        true,
	ScreenSignup:       true,
	ScreenAuthCallback: true,
}

// Verdict is the route guard's decision for one (phase, screen) pair.
// Exactly one of Wait/Allow/redirect applies: Wait suppresses all output
// until the phase settles, otherwise the screen renders or RedirectTo names
// the screen to switch to first.
type Verdict struct {
	Wait       bool
	Allow      bool
	RedirectTo Screen
}

// Decide evaluates the redirect policy. It must run on every phase or
// screen change before anything renders; rendering a protected screen
// optimistically while a redirect is pending is a defect.
func Decide(phase Phase, screen Screen) Verdict {
	switch phase {
	case PhaseLoading:
		return Verdict{Wait: true}

	case PhaseUnauthenticated:
		if !publicScreens[screen] {
			return Verdict{RedirectTo: ScreenLogin}
		}
		return Verdict{Allow: true}

	case PhaseUnverified:
		// The callback screen performs its own one-time redirect.
		if screen != ScreenVerify && screen != ScreenAuthCallback {
			return Verdict{RedirectTo: ScreenVerify}
		}
		return Verdict{Allow: true}

	case PhaseVerified:
		if screen == ScreenLogin || screen == ScreenSignup || screen == ScreenVerify {
			return Verdict{RedirectTo: ScreenInbox}
		}
		return Verdict{Allow: true}

	default:
		return Verdict{RedirectTo: ScreenLogin}
	}
}

// Route follows Decide until it settles on a screen, starting from screen.
// The decision table has no cycles, so this terminates in at most two hops.
func Route(phase Phase, screen Screen) (Screen, Verdict) {
	for i := 0; i < 3; i++ {
		verdict := Decide(phase, screen)
		if verdict.RedirectTo == "" {
			return screen, verdict
		}
		screen = verdict.RedirectTo
	}
	return screen, Verdict{Allow: true}
}
