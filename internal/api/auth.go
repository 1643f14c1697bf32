package api

import (
	"context"
	"fmt"
	"net/http"
)

// ResolveSession exchanges the current credential for a fresh profile.
func (c *Client) ResolveSession(ctx context.Context) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/session", true, nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("session response had no user")
	}
	return out.User, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*SessionGrant, error) {
	body := map[string]string{"email": email, "password": password}
	var grant SessionGrant
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, body, &grant); err != nil {
		return nil, err
	}
	if grant.Token == "" || grant.User == nil {
		return nil, fmt.Errorf("login response missing token or user")
	}
	return &grant, nil
}

// Signup creates an account and returns its first session.
func (c *Client) Signup(ctx context.Context, params SignupParams) (*SessionGrant, error) {
	var grant SessionGrant
	if err := c.do(ctx, http.MethodPost, "/auth/signup", false, params, &grant); err != nil {
		return nil, err
	}
	if grant.Token == "" || grant.User == nil {
		return nil, fmt.Errorf("signup response missing token or user")
	}
	return &grant, nil
}

type otpRequest struct {
	TwilioNumber string `json:"twilioNumber"`
}

type otpVerifyRequest struct {
	TwilioNumber string `json:"twilioNumber"`
	OTP          string `json:"otp"`
	*TwilioCredentials
}

type messageResponse struct {
	Message string `json:"message"`
}

// RequestTwilioOTP asks the backend to deliver a one-time code to number
// over the chat channel. Returns the server's confirmation message.
func (c *Client) RequestTwilioOTP(ctx context.Context, number string) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/auth/request-twilio-otp", true, otpRequest{TwilioNumber: number}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// VerifyTwilioOTP confirms ownership of number with the delivered code.
// creds may be nil when the account already has provider credentials.
func (c *Client) VerifyTwilioOTP(ctx context.Context, number, otp string, creds *TwilioCredentials) (string, error) {
	var out messageResponse
	body := otpVerifyRequest{TwilioNumber: number, OTP: otp, TwilioCredentials: creds}
	if err := c.do(ctx, http.MethodPost, "/auth/verify-twilio-otp", true, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

type updateNumberRequest struct {
	TwilioNumber string `json:"twilioNumber"`
	*TwilioCredentials
}

// UpdateTwilioNumber replaces the stored number and provider configuration.
func (c *Client) UpdateTwilioNumber(ctx context.Context, number string, creds *TwilioCredentials) (string, error) {
	var out messageResponse
	body := updateNumberRequest{TwilioNumber: number, TwilioCredentials: creds}
	if err := c.do(ctx, http.MethodPut, "/auth/update-twilio-number", true, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// RemoveTwilioNumber clears the stored number and its verification flag.
func (c *Client) RemoveTwilioNumber(ctx context.Context) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/remove-twilio-number", true, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
