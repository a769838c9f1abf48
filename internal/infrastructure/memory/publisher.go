package memory

import (
	"context"
	"sync"

	"github.com/campuskit/auth-service/internal/application/auth"
)

// NoopPublisher satisfies auth.EventPublisher when RabbitMQ is unavailable
// in dev. It records the events it swallows so tests can assert on them.
type NoopPublisher struct {
	mu sync.Mutex

	VerifyEmails   []auth.VerifyEmailEvent
	PasswordResets []auth.PasswordResetEvent
	Welcomes       []auth.WelcomeEvent
}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) PublishVerifyEmail(ctx context.Context, evt auth.VerifyEmailEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.VerifyEmails = append(p.VerifyEmails, evt)
	return nil
}

func (p *NoopPublisher) PublishPasswordReset(ctx context.Context, evt auth.PasswordResetEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PasswordResets = append(p.PasswordResets, evt)
	return nil
}

func (p *NoopPublisher) PublishWelcome(ctx context.Context, evt auth.WelcomeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Welcomes = append(p.Welcomes, evt)
	return nil
}
