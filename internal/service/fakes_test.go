package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prperemyshlev/chat-auth/internal/domain"
	"github.com/prperemyshlev/chat-auth/internal/repository"
)

type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	nextID      int64
	createCalls int
	lookups     int
	getErr      error
	// racer is inserted instead of the requested user, simulating a
	// concurrent signup that wins the unique constraint.
	racer *domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func (r *fakeUserRepo) add(email, hash string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &domain.User{ID: r.nextID, Email: email, Hash: hash, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.nextID++
	r.users[email] = u
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, email, hash string, picture *string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++

	if r.racer != nil {
		r.users[r.racer.Email] = r.racer
		r.racer = nil
	}
	if _, ok := r.users[email]; ok {
		return 0, fmt.Errorf("user with email %s already exists: %w", email, repository.ErrDuplicateEmail)
	}

	u := &domain.User{ID: r.nextID, Email: email, Hash: hash, ProfilePictureURL: picture, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.nextID++
	r.users[email] = u
	return u.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++

	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, fmt.Errorf("user with email %s not found: %w", email, repository.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user with id %d not found: %w", id, repository.ErrNotFound)
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakeTokenRepo struct {
	mu        sync.Mutex
	rows      map[string]*domain.RefreshToken
	nextID    int64
	createErr error
	// softDeleteErrs are returned, in order, by the next SoftDelete calls.
	softDeleteErrs []error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: make(map[string]*domain.RefreshToken), nextID: 1}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *domain.RefreshToken) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, row := range r.rows {
		if row.Token == token.Token || row.AccessToken == token.AccessToken {
			return nil, repository.ErrDuplicateToken
		}
	}

	stored := *token
	stored.ID = r.nextID
	r.nextID++
	r.rows[stored.Token] = &stored
	cp := stored
	return &cp, nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *fakeTokenRepo) SoftDelete(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.softDeleteErrs) > 0 {
		err := r.softDeleteErrs[0]
		r.softDeleteErrs = r.softDeleteErrs[1:]
		return err
	}

	for _, row := range r.rows {
		if row.ID == id && row.DeletedAt == nil {
			deleted := at
			row.DeletedAt = &deleted
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key, row := range r.rows {
		if row.ExpiredAt.Before(now) {
			delete(r.rows, key)
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepo) revoked() []*domain.RefreshToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.RefreshToken
	for _, row := range r.rows {
		if row.DeletedAt != nil {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out
}

func (r *fakeTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeGoogle struct {
	accessToken string
	tokenErr    error
	info        *domain.GoogleUserInfo
	infoErr     error
	panicOnInfo bool
	codes       []string
}

func (g *fakeGoogle) GetAccessTokenFromCode(_ context.Context, code string) (string, error) {
	g.codes = append(g.codes, code)
	return g.accessToken, g.tokenErr
}

func (g *fakeGoogle) GetUserInfo(_ context.Context, _ string) (*domain.GoogleUserInfo, error) {
	if g.panicOnInfo {
		panic("userinfo exploded")
	}
	return g.info, g.infoErr
}

func googleProfile(name, email, picture string) *domain.GoogleUserInfo {
	return &domain.GoogleUserInfo{Name: &name, Email: &email, Picture: &picture}
}
