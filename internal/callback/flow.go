// Package callback receives the external identity provider's redirect.
// The web front-end had an /auth page reading ?token= from the URL; the
// terminal client stands up a loopback HTTP server for the same contract.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pulseinbox/inbox-cli/internal/config"
	"github.com/pulseinbox/inbox-cli/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// shutdownTimeout is the maximum time to wait for the loopback server to
// drain after the redirect arrived.
const shutdownTimeout = 5 * time.Second

// ErrNoToken means the provider redirected back without a token.
var ErrNoToken = errors.New("callback: redirect carried no token")

// Flow runs one browser-based authentication round trip.
type Flow struct {
	addr string
	open func(url string) error
}

// NewFlow creates a Flow listening on the configured loopback address.
func NewFlow(cfg *config.AuthConfig) *Flow {
	return &Flow{addr: cfg.CallbackAddr, open: openBrowser}
}

type outcome struct {
	token string
	err   error
}

// Run opens authURL in the user's browser and waits until the backend
// redirects to the loopback address with ?token=, the context is canceled,
// or the redirect arrives without a token. The caller persists the token
// and resolves the session; Run only transports it.
func (f *Flow) Run(ctx context.Context, authURL string) (string, error) {
	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return "", fmt.Errorf("callback: listen on %s: %w", f.addr, err)
	}

	results := make(chan outcome, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if token == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "<html><body><p>Sign-in failed: no token received. You can close this tab.</p></body></html>")
			select {
			case results <- outcome{err: ErrNoToken}:
			default:
			}
			return
		}
		fmt.Fprint(w, "<html><body><p>Signed in. You can close this tab and return to the terminal.</p></body></html>")
		select {
		case results <- outcome{token: token}:
		default:
		}
	})

	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server error", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("waiting for auth callback",
		zap.String("addr", f.addr),
		zap.String("auth_url", authURL),
	)
	if err := f.open(authURL); err != nil {
		// The flow still works if the user opens the URL by hand.
		logger.Warn("failed to open browser", zap.Error(err))
	}

	select {
	case res := <-results:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Module provides the auth callback flow
var Module = fx.Module("callback",
	fx.Provide(
		NewFlow,
	),
)
