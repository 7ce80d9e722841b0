// Package events publishes domain events to a message broker. Publishing is
// best effort: callers log failures and carry on.
package events

import (
	"context"
	"time"
)

const UserRegisteredEvent = "user.registered"

type UserRegistered struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Publisher interface {
	PublishUserRegistered(ctx context.Context, e UserRegistered) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishUserRegistered(context.Context, UserRegistered) error { return nil }
func (NopPublisher) Close() error                                                { return nil }
