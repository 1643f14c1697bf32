package authflow

import (
	"context"
	"sync"

	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/config"
	"github.com/pulseinbox/inbox-cli/internal/logger"
	"github.com/pulseinbox/inbox-cli/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Step is the OTP workflow's position within one verification attempt.
type Step int

const (
	// StepNumber is the initial step: choosing the number to verify.
	StepNumber Step = iota
	// StepCode means a code was delivered and awaits confirmation.
	StepCode
	// StepVerified is terminal: the number is confirmed.
	StepVerified
)

// Result is the outcome of one workflow operation. Message is safe to show
// to the user as-is: it is either the server's wording or a fixed fallback.
type Result struct {
	OK      bool
	Message string
}

// Validation and fallback messages. Server-supplied messages take
// precedence over the fallbacks.
const (
	MsgNumberRequired     = "Please enter your Twilio number."
	MsgOTPRequired        = "Please enter the OTP."
	MsgRequestFirst       = "Please request an OTP first."
	MsgCredentialsMissing = "Please fill in all Twilio credentials."
	MsgBusy               = "Another request is in progress."
	MsgRequestFailed      = "Failed to request OTP."
	MsgVerifyFailed       = "Failed to verify OTP."
	MsgUpdateFailed       = "Failed to update Twilio number."
	MsgRemoveFailed       = "Failed to remove Twilio number."
)

// Workflow drives the two-step request/verify flow for one verification
// attempt. It never lets an error escape: every failure comes back as a
// Result carrying a displayable message, and the workflow remains in a
// well-defined step.
type Workflow struct {
	mu       sync.Mutex
	client   *api.Client
	resolver *session.Resolver
	store    *session.Store

	requireCreds bool

	step   Step
	number string
	creds  *api.TwilioCredentials
	busy   bool
}

type WorkflowParams struct {
	fx.In

	Config   *config.AuthConfig
	Client   *api.Client
	Resolver *session.Resolver
	Store    *session.Store
}

// NewWorkflow creates a Workflow in the number step.
func NewWorkflow(params WorkflowParams) *Workflow {
	return &Workflow{
		client:       params.Client,
		resolver:     params.Resolver,
		store:        params.Store,
		requireCreds: params.Config.ProviderCredentialsRequired,
	}
}

// Step returns the current step.
func (w *Workflow) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Number returns the number the in-flight code was requested for.
func (w *Workflow) Number() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.number
}

// firstTimeSetup reports whether the profile has no number yet, in which
// case provider credentials may be mandatory.
func (w *Workflow) firstTimeSetup() bool {
	snap := w.store.Snapshot()
	return snap.User == nil || snap.User.TwilioNumber == ""
}

// begin claims the in-flight slot. Concurrent submissions of the same
// workflow fail locally instead of racing each other.
func (w *Workflow) begin() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return false
	}
	w.busy = true
	return true
}

func (w *Workflow) end() {
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
}

// RequestCode validates its inputs, then asks the backend to deliver a
// one-time code. On success the workflow advances to the code step.
func (w *Workflow) RequestCode(ctx context.Context, number string, creds *api.TwilioCredentials) Result {
	if number == "" {
		return Result{Message: MsgNumberRequired}
	}
	if w.requireCreds && w.firstTimeSetup() && !creds.Complete() {
		return Result{Message: MsgCredentialsMissing}
	}
	if !w.begin() {
		return Result{Message: MsgBusy}
	}
	defer w.end()

	message, err := w.client.RequestTwilioOTP(ctx, number)
	if err != nil {
		logger.Warn("otp request failed", zap.Error(err))
		return Result{Message: api.FailureMessage(err, MsgRequestFailed)}
	}

	w.mu.Lock()
	w.step = StepCode
	w.number = number
	w.creds = creds
	w.mu.Unlock()

	logger.Info("otp requested", zap.String("number", number))
	return Result{OK: true, Message: message}
}

// VerifyCode confirms the delivered code. On success the session is
// re-resolved so the profile reflects the verified number, and the
// workflow reaches its terminal step.
func (w *Workflow) VerifyCode(ctx context.Context, code string) Result {
	if code == "" {
		return Result{Message: MsgOTPRequired}
	}

	w.mu.Lock()
	if w.step != StepCode {
		w.mu.Unlock()
		return Result{Message: MsgRequestFirst}
	}
	number, creds := w.number, w.creds
	w.mu.Unlock()

	if !w.begin() {
		return Result{Message: MsgBusy}
	}
	defer w.end()

	message, err := w.client.VerifyTwilioOTP(ctx, number, code, creds)
	if err != nil {
		logger.Warn("otp verification failed", zap.Error(err))
		return Result{Message: api.FailureMessage(err, MsgVerifyFailed)}
	}

	w.resolver.Resolve(ctx)

	w.mu.Lock()
	w.step = StepVerified
	w.creds = nil
	w.mu.Unlock()

	logger.Info("number verified", zap.String("number", number))
	return Result{OK: true, Message: message}
}

// ChangeNumber abandons the in-flight code and returns to the number step.
// No server call: the undelivered code simply expires.
func (w *Workflow) ChangeNumber() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepCode {
		w.step = StepNumber
		w.number = ""
		w.creds = nil
	}
}

// Reset prepares the workflow for a fresh attempt.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = StepNumber
	w.number = ""
	w.creds = nil
}

// UpdateNumber replaces the stored number and provider configuration, then
// re-resolves the session.
func (w *Workflow) UpdateNumber(ctx context.Context, number string, creds *api.TwilioCredentials) Result {
	if number == "" {
		return Result{Message: MsgNumberRequired}
	}
	if !w.begin() {
		return Result{Message: MsgBusy}
	}
	defer w.end()

	message, err := w.client.UpdateTwilioNumber(ctx, number, creds)
	if err != nil {
		return Result{Message: api.FailureMessage(err, MsgUpdateFailed)}
	}
	w.resolver.Resolve(ctx)
	return Result{OK: true, Message: message}
}

// RemoveNumber clears the stored number and verification flag, then
// re-resolves the session.
func (w *Workflow) RemoveNumber(ctx context.Context) Result {
	if !w.begin() {
		return Result{Message: MsgBusy}
	}
	defer w.end()

	message, err := w.client.RemoveTwilioNumber(ctx)
	if err != nil {
		return Result{Message: api.FailureMessage(err, MsgRemoveFailed)}
	}
	w.resolver.Resolve(ctx)
	return Result{OK: true, Message: message}
}

// Module provides the verification gate and OTP workflow
var Module = fx.Module("authflow",
	fx.Provide(
		NewGate,
		NewWorkflow,
	),
)
