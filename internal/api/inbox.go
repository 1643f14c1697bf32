package api

import (
	"context"
	"net/http"
	"net/url"
)

// Threads fetches the conversation list, grouped by contact.
func (c *Client) Threads(ctx context.Context) ([]Thread, error) {
	var threads []Thread
	if err := c.do(ctx, http.MethodGet, "/inbox/threads", true, nil, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// ThreadMessages fetches the message history of one thread.
func (c *Client) ThreadMessages(ctx context.Context, threadID string) ([]Message, error) {
	var messages []Message
	path := "/messages/thread/" + url.PathEscape(threadID)
	if err := c.do(ctx, http.MethodGet, path, true, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage sends (or schedules) an outbound message on a thread.
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Message, error) {
	var msg Message
	if err := c.do(ctx, http.MethodPost, "/messages/send", true, params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Notes fetches all shared notes.
func (c *Client) Notes(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, http.MethodGet, "/notes", true, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// SaveNote creates a new note.
func (c *Client) SaveNote(ctx context.Context, content string) (*Note, error) {
	var note Note
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/notes", true, body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}
