package authflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/config"
	"github.com/pulseinbox/inbox-cli/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a minimal in-memory stand-in for the verification
// endpoints. Requesting a code stores it; verifying with the right code
// marks the profile verified.
type fakeBackend struct {
	mu       sync.Mutex
	code     string
	number   string
	verified bool
	requests int
}

func (b *fakeBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.requests++

		switch r.URL.Path {
		case "/auth/session":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]any{
					"id":               "u1",
					"email":            "a@b.c",
					"twilioNumber":     b.number,
					"isTwilioVerified": b.verified,
				},
			})

		case "/auth/request-twilio-otp":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			b.code = "123456"
			b.number = body["twilioNumber"]
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "OTP sent via WhatsApp"})

		case "/auth/verify-twilio-otp":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["otp"] != b.code {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid OTP"})
				return
			}
			b.verified = true
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Twilio number verified"})

		case "/auth/update-twilio-number":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			b.number = body["twilioNumber"]
			b.verified = true
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Twilio number updated"})

		case "/auth/remove-twilio-number":
			b.number = ""
			b.verified = false
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Twilio number removed"})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (b *fakeBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

func newWorkflowFixture(t *testing.T, requireCreds bool, user *api.User) (*Workflow, *session.Store, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	store := session.NewStore(&config.AuthConfig{
		TokenFile: filepath.Join(t.TempDir(), "token"),
	})
	store.SetSession("tok-1", user)

	client := api.NewClient(api.ClientParams{
		Config: &config.APIConfig{BaseURL: srv.URL},
		Tokens: store,
	})
	resolver := session.NewResolver(store, client)

	workflow := NewWorkflow(WorkflowParams{
		Config:   &config.AuthConfig{ProviderCredentialsRequired: requireCreds},
		Client:   client,
		Resolver: resolver,
		Store:    store,
	})
	return workflow, store, backend
}

func completeCreds() *api.TwilioCredentials {
	return &api.TwilioCredentials{
		AccountSID:   "AC1",
		AuthToken:    "secret",
		SMSFrom:      "+100",
		WhatsAppFrom: "+200",
	}
}

func TestWorkflow_RequestCodeValidation(t *testing.T) {
	tests := []struct {
		name         string
		requireCreds bool
		user         *api.User
		number       string
		creds        *api.TwilioCredentials
		wantMessage  string
	}{
		{
			name:        "empty number",
			user:        &api.User{ID: "u1"},
			number:      "",
			wantMessage: MsgNumberRequired,
		},
		{
			name:         "missing credentials on first-time setup",
			requireCreds: true,
			user:         &api.User{ID: "u1"},
			number:       "+15551234567",
			creds:        nil,
			wantMessage:  MsgCredentialsMissing,
		},
		{
			name:         "partial credentials on first-time setup",
			requireCreds: true,
			user:         &api.User{ID: "u1"},
			number:       "+15551234567",
			creds:        &api.TwilioCredentials{AccountSID: "AC1"},
			wantMessage:  MsgCredentialsMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workflow, _, backend := newWorkflowFixture(t, tt.requireCreds, tt.user)

			res := workflow.RequestCode(context.Background(), tt.number, tt.creds)

			assert.False(t, res.OK)
			assert.Equal(t, tt.wantMessage, res.Message)
			// Validation failures never reach the network.
			assert.Zero(t, backend.requestCount())
			assert.Equal(t, StepNumber, workflow.Step())
		})
	}
}

func TestWorkflow_RequestCodeAdvancesToCodeStep(t *testing.T) {
	workflow, _, _ := newWorkflowFixture(t, true, &api.User{ID: "u1"})

	res := workflow.RequestCode(context.Background(), "+15551234567", completeCreds())

	require.True(t, res.OK)
	assert.Equal(t, "OTP sent via WhatsApp", res.Message)
	assert.Equal(t, StepCode, workflow.Step())
	assert.Equal(t, "+15551234567", workflow.Number())
}

func TestWorkflow_CredentialsNotRequiredWhenNumberExists(t *testing.T) {
	user := &api.User{ID: "u1", TwilioNumber: "+15551234567"}
	workflow, _, _ := newWorkflowFixture(t, true, user)

	res := workflow.RequestCode(context.Background(), "+15551234567", nil)

	assert.True(t, res.OK)
	assert.Equal(t, StepCode, workflow.Step())
}

func TestWorkflow_VerifyCode(t *testing.T) {
	t.Run("empty code fails locally", func(t *testing.T) {
		workflow, _, backend := newWorkflowFixture(t, false, &api.User{ID: "u1"})
		require.True(t, workflow.RequestCode(context.Background(), "+15551234567", nil).OK)
		before := backend.requestCount()

		res := workflow.VerifyCode(context.Background(), "")

		assert.False(t, res.OK)
		assert.Equal(t, MsgOTPRequired, res.Message)
		assert.Equal(t, before, backend.requestCount())
		assert.Equal(t, StepCode, workflow.Step())
	})

	t.Run("wrong code keeps the workflow in the code step", func(t *testing.T) {
		workflow, _, _ := newWorkflowFixture(t, false, &api.User{ID: "u1"})
		require.True(t, workflow.RequestCode(context.Background(), "+15551234567", nil).OK)

		res := workflow.VerifyCode(context.Background(), "999999")

		assert.False(t, res.OK)
		assert.Equal(t, "Invalid OTP", res.Message)
		assert.Equal(t, StepCode, workflow.Step())
	})

	t.Run("correct code verifies and refreshes the session", func(t *testing.T) {
		workflow, store, _ := newWorkflowFixture(t, false, &api.User{ID: "u1"})
		require.True(t, workflow.RequestCode(context.Background(), "+15551234567", nil).OK)

		res := workflow.VerifyCode(context.Background(), "123456")

		require.True(t, res.OK)
		assert.Equal(t, "Twilio number verified", res.Message)
		assert.Equal(t, StepVerified, workflow.Step())

		snap := store.Snapshot()
		require.NotNil(t, snap.User)
		assert.True(t, snap.User.IsTwilioVerified)
		assert.Equal(t, "+15551234567", snap.User.TwilioNumber)
	})
}

func TestWorkflow_ChangeNumberAbandonsTheCode(t *testing.T) {
	workflow, _, backend := newWorkflowFixture(t, false, &api.User{ID: "u1"})
	require.True(t, workflow.RequestCode(context.Background(), "+15551234567", nil).OK)
	before := backend.requestCount()

	workflow.ChangeNumber()

	// Purely local: the undelivered code expires on its own.
	assert.Equal(t, StepNumber, workflow.Step())
	assert.Empty(t, workflow.Number())
	assert.Equal(t, before, backend.requestCount())
}

func TestWorkflow_ChangeNumberOnlyAppliesInCodeStep(t *testing.T) {
	workflow, _, _ := newWorkflowFixture(t, false, &api.User{ID: "u1"})

	workflow.ChangeNumber()

	assert.Equal(t, StepNumber, workflow.Step())
}

func TestWorkflow_VerifyCodeRequiresPendingCode(t *testing.T) {
	workflow, _, backend := newWorkflowFixture(t, false, &api.User{ID: "u1"})

	res := workflow.VerifyCode(context.Background(), "123456")

	// No code was requested, so the attempt fails locally.
	assert.False(t, res.OK)
	assert.Equal(t, MsgRequestFirst, res.Message)
	assert.Zero(t, backend.requestCount())
	assert.Equal(t, StepNumber, workflow.Step())
}

func TestWorkflow_UpdateNumber(t *testing.T) {
	t.Run("empty number fails locally", func(t *testing.T) {
		user := &api.User{ID: "u1", TwilioNumber: "+15551234567", IsTwilioVerified: true}
		workflow, _, backend := newWorkflowFixture(t, false, user)

		res := workflow.UpdateNumber(context.Background(), "", nil)

		assert.False(t, res.OK)
		assert.Equal(t, MsgNumberRequired, res.Message)
		assert.Zero(t, backend.requestCount())
	})

	t.Run("replaces the number and refreshes the session", func(t *testing.T) {
		user := &api.User{ID: "u1", TwilioNumber: "+15551234567", IsTwilioVerified: true}
		workflow, store, _ := newWorkflowFixture(t, false, user)

		res := workflow.UpdateNumber(context.Background(), "+15559876543", nil)

		require.True(t, res.OK)
		assert.Equal(t, "Twilio number updated", res.Message)

		snap := store.Snapshot()
		require.NotNil(t, snap.User)
		assert.Equal(t, "+15559876543", snap.User.TwilioNumber)
	})
}

func TestWorkflow_RemoveNumberRefreshesSession(t *testing.T) {
	user := &api.User{ID: "u1", TwilioNumber: "+15551234567", IsTwilioVerified: true}
	workflow, store, _ := newWorkflowFixture(t, false, user)

	res := workflow.RemoveNumber(context.Background())

	require.True(t, res.OK)
	assert.Equal(t, "Twilio number removed", res.Message)

	snap := store.Snapshot()
	require.NotNil(t, snap.User)
	assert.False(t, snap.User.IsTwilioVerified)
	assert.Empty(t, snap.User.TwilioNumber)
}

func TestWorkflow_ConcurrentSubmissionFailsFast(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "OTP sent via WhatsApp"})
	}))
	t.Cleanup(srv.Close)

	store := session.NewStore(&config.AuthConfig{
		TokenFile: filepath.Join(t.TempDir(), "token"),
	})
	store.SetSession("tok-1", &api.User{ID: "u1"})
	client := api.NewClient(api.ClientParams{
		Config: &config.APIConfig{BaseURL: srv.URL},
		Tokens: store,
	})
	workflow := NewWorkflow(WorkflowParams{
		Config:   &config.AuthConfig{},
		Client:   client,
		Resolver: session.NewResolver(store, client),
		Store:    store,
	})

	done := make(chan Result, 1)
	go func() { done <- workflow.RequestCode(context.Background(), "+15551234567", nil) }()
	<-entered

	res := workflow.RequestCode(context.Background(), "+15551234567", nil)
	assert.False(t, res.OK)
	assert.Equal(t, MsgBusy, res.Message)

	close(release)
	first := <-done
	assert.True(t, first.OK)
}

func TestWorkflow_ResetReturnsToNumberStep(t *testing.T) {
	workflow, _, _ := newWorkflowFixture(t, false, &api.User{ID: "u1"})
	require.True(t, workflow.RequestCode(context.Background(), "+15551234567", nil).OK)
	require.True(t, workflow.VerifyCode(context.Background(), "123456").OK)

	workflow.Reset()

	assert.Equal(t, StepNumber, workflow.Step())
	assert.Empty(t, workflow.Number())
}
