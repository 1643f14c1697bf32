// Package inbox wraps the backend's thread, message and note endpoints
// with a short-lived read cache. Mutations flush the affected entries and
// the next read re-fetches, mirroring the write-through invalidation the
// rest of the client uses for the profile.
package inbox

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pulseinbox/inbox-cli/internal/api"
	"go.uber.org/fx"
)

const (
	cacheTTL    = 30 * time.Second
	cacheSweep  = time.Minute
	keyThreads  = "threads"
	keyNotes    = "notes"
	keyMessages = "messages:"
)

// Service reads and writes inbox data.
type Service struct {
	client *api.Client
	cache  *gocache.Cache
}

// NewService creates a Service around client.
func NewService(client *api.Client) *Service {
	return &Service{
		client: client,
		cache:  gocache.New(cacheTTL, cacheSweep),
	}
}

// Threads returns the conversation list, served from cache when fresh.
func (s *Service) Threads(ctx context.Context) ([]api.Thread, error) {
	if cached, ok := s.cache.Get(keyThreads); ok {
		return cached.([]api.Thread), nil
	}
	threads, err := s.client.Threads(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(keyThreads, threads)
	return threads, nil
}

// Messages returns one thread's history, served from cache when fresh.
func (s *Service) Messages(ctx context.Context, threadID string) ([]api.Message, error) {
	if cached, ok := s.cache.Get(keyMessages + threadID); ok {
		return cached.([]api.Message), nil
	}
	messages, err := s.client.ThreadMessages(ctx, threadID)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(keyMessages+threadID, messages)
	return messages, nil
}

// Send delivers an outbound message and invalidates the thread list and
// the thread's history.
func (s *Service) Send(ctx context.Context, params api.SendMessageParams) (*api.Message, error) {
	msg, err := s.client.SendMessage(ctx, params)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(keyThreads)
	s.cache.Delete(keyMessages + params.ThreadID)
	return msg, nil
}

// Notes returns all shared notes, served from cache when fresh.
func (s *Service) Notes(ctx context.Context) ([]api.Note, error) {
	if cached, ok := s.cache.Get(keyNotes); ok {
		return cached.([]api.Note), nil
	}
	notes, err := s.client.Notes(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(keyNotes, notes)
	return notes, nil
}

// SaveNote creates a note and invalidates the note list.
func (s *Service) SaveNote(ctx context.Context, content string) (*api.Note, error) {
	note, err := s.client.SaveNote(ctx, content)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(keyNotes)
	return note, nil
}

// Flush drops every cached read. Called on logout.
func (s *Service) Flush() {
	s.cache.Flush()
}

// Module provides the inbox service
var Module = fx.Module("inbox",
	fx.Provide(
		NewService,
	),
)
