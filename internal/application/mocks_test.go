package application_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oksasatya/auth-microservice/internal/domain/entity"
	"github.com/oksasatya/auth-microservice/internal/domain/repository"
)

// fakeRepo is an in-memory UserRepository enforcing the same uniqueness
// guarantees as the Postgres implementation.
type fakeRepo struct {
	mu     sync.Mutex
	users  map[string]*entity.User // by id
	nextID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*entity.User{}}
}

func (r *fakeRepo) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) MarkVerified(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationCode = ""
	u.UpdatedAt = time.Now()
	return nil
}

type sentCode struct {
	Email string
	Name  string
	Code  string
}

// fakeNotifier records deliveries; fail makes every send error.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentCode
	fail error
}

func (n *fakeNotifier) SendVerificationCode(ctx context.Context, email, name, code string) error {
	if n.fail != nil {
		return n.fail
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentCode{Email: email, Name: name, Code: code})
	return nil
}

func (n *fakeNotifier) deliveries() []sentCode {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentCode, len(n.sent))
	copy(out, n.sent)
	return out
}
