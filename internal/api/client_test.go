package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulseinbox/inbox-cli/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Credential() string { return string(s) }

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientParams{
		Config: &config.APIConfig{BaseURL: srv.URL},
		Tokens: staticTokens(token),
	})
}

func TestClient_BearerHeader(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantHeader string
	}{
		{
			name:       "token attached on authenticated calls",
			token:      "tok-123",
			wantHeader: "Bearer tok-123",
		},
		{
			name:       "no header without a token",
			token:      "",
			wantHeader: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.token, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantHeader, r.Header.Get("Authorization"))
				_ = json.NewEncoder(w).Encode(map[string]any{
					"user": map[string]any{"id": "u1", "email": "a@b.c"},
				})
			})

			user, err := client.ResolveSession(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "u1", user.ID)
		})
	}
}

func TestClient_LoginUnauthenticatedRequest(t *testing.T) {
	client := newTestClient(t, "tok-123", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		// Login happens before a session exists, so no bearer header.
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.c", body["email"])
		assert.Equal(t, "secret", body["password"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "fresh-token",
			"user":  map[string]any{"id": "u1", "email": "a@b.c"},
		})
	})

	grant, err := client.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", grant.Token)
	require.NotNil(t, grant.User)
	assert.Equal(t, "u1", grant.User.ID)
}

func TestClient_SignupOptionalTwilioNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
	}{
		{name: "number included when supplied", number: "+15551234567"},
		{name: "number omitted when empty", number: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				if tt.number != "" {
					assert.Equal(t, tt.number, body["twilioNumber"])
				} else {
					assert.NotContains(t, body, "twilioNumber")
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"token": "fresh-token",
					"user":  map[string]any{"id": "u1", "email": "a@b.c"},
				})
			})

			_, err := client.Signup(context.Background(), SignupParams{
				Name:         "Ada",
				Email:        "a@b.c",
				Password:     "secret",
				TwilioNumber: tt.number,
			})
			require.NoError(t, err)
		})
	}
}

func TestClient_LoginRejectsIncompleteGrant(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "t"})
	})

	_, err := client.Login(context.Background(), "a@b.c", "secret")
	assert.Error(t, err)
}

func TestClient_ErrorDecoding(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "server message is preserved",
			status:      http.StatusBadRequest,
			body:        `{"message":"Invalid OTP"}`,
			wantMessage: "Invalid OTP",
		},
		{
			name:        "bare rejection has no message",
			status:      http.StatusUnauthorized,
			body:        ``,
			wantMessage: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ResolveSession(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(&Error{StatusCode: 401}))
	assert.True(t, IsUnauthorized(&Error{StatusCode: 403}))
	assert.False(t, IsUnauthorized(&Error{StatusCode: 500}))
	assert.False(t, IsUnauthorized(errors.New("dial tcp: refused")))
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{
			name:     "server wording wins",
			err:      &Error{StatusCode: 400, Message: "Invalid OTP"},
			fallback: "Failed to verify OTP.",
			want:     "Invalid OTP",
		},
		{
			name:     "bare rejection falls back to the operation message",
			err:      &Error{StatusCode: 500},
			fallback: "Failed to verify OTP.",
			want:     "Failed to verify OTP.",
		},
		{
			name:     "transport failure uses the generic message",
			err:      errors.New("dial tcp: refused"),
			fallback: "Failed to verify OTP.",
			want:     UnexpectedErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FailureMessage(tt.err, tt.fallback))
		})
	}
}

func TestClient_VerifyOTPBody(t *testing.T) {
	tests := []struct {
		name     string
		creds    *TwilioCredentials
		wantKeys []string
		dropKeys []string
	}{
		{
			name: "credentials flattened into the body",
			creds: &TwilioCredentials{
				AccountSID:   "AC1",
				AuthToken:    "secret",
				SMSFrom:      "+100",
				WhatsAppFrom: "+200",
			},
			wantKeys: []string{"twilioNumber", "otp", "accountSid", "authToken", "smsFrom", "whatsappFrom"},
		},
		{
			name:     "nil credentials omitted",
			creds:    nil,
			wantKeys: []string{"twilioNumber", "otp"},
			dropKeys: []string{"accountSid", "authToken"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				for _, key := range tt.wantKeys {
					assert.Contains(t, body, key)
				}
				for _, key := range tt.dropKeys {
					assert.NotContains(t, body, key)
				}
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Twilio number verified"})
			})

			msg, err := client.VerifyTwilioOTP(context.Background(), "+15551234567", "123456", tt.creds)
			require.NoError(t, err)
			assert.Equal(t, "Twilio number verified", msg)
		})
	}
}
