package memory

import (
	"context"

	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/domain/validation"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.byEmail[u.EmailAddress]; taken {
		return user.User{}, validation.New(validation.MsgEmailTaken)
	}

	r.s.nextUserID++
	u.ID = r.s.nextUserID

	r.s.users[u.ID] = u
	r.s.byEmail[u.EmailAddress] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.s.users[id], nil
}
