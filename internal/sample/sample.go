// Package sample generates placeholder records for console screens whose
// backend endpoints are not live yet.
package sample

import (
	"context"
	"sync"
	"time"

	"github.com/bassista/go_sole/internal/model"
	"github.com/brianvoe/gofakeit/v7"
)

// Provider produces fake records. A fixed seed gives a stable data set.
type Provider struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	now   func() time.Time
}

// New creates a provider. Seed 0 picks a random seed.
func New(seed uint64) *Provider {
	return &Provider{faker: gofakeit.New(seed), now: time.Now}
}

func (p *Provider) audit(age time.Duration) model.Audit {
	created := p.now().Add(-age).UTC().Truncate(time.Second)
	return model.Audit{ID: p.faker.UUID(), CreatedAt: created, UpdatedAt: created}
}

// Contacts returns n contact messages, newest first.
func (p *Provider) Contacts(n int) []model.Contact {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.Contact, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Contact{
			Audit:   p.audit(time.Duration(i) * time.Hour),
			Name:    p.faker.Name(),
			Email:   p.faker.Email(),
			Phone:   p.faker.Phone(),
			Subject: p.faker.Sentence(4),
			Message: p.faker.Sentence(16),
			Handled: p.faker.Bool(),
		})
	}
	return out
}

// ContactSource returns a fetch function that serves n sample contacts.
func (p *Provider) ContactSource(n int) func(context.Context) ([]model.Contact, error) {
	return func(context.Context) ([]model.Contact, error) {
		return p.Contacts(n), nil
	}
}
