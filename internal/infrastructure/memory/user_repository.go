package memory

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository usuarios en memoria.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User
}

// NewUserRepository construye un repositorio vacío.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.User)}
}

// DefaultUsers usuarios de desarrollo con la contraseña ya hasheada:
// admin/adminpass (ADMIN) y user/userpass (USER).
func DefaultUsers() ([]entity.User, error) {
	creds := []struct{ username, password, role string }{
		{"admin", "adminpass", entity.RoleAdmin},
		{"user", "userpass", entity.RoleUser},
	}
	users := make([]entity.User, 0, len(creds))
	for _, c := range creds {
		u, err := newUser(c.username, c.password, c.role)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// NewDefaultUserRepository crea un repositorio con DefaultUsers.
func NewDefaultUserRepository() (*UserRepository, error) {
	users, err := DefaultUsers()
	if err != nil {
		return nil, err
	}
	r := NewUserRepository()
	for _, u := range users {
		r.Add(u)
	}
	return r, nil
}

// Add registra el usuario tal cual (PasswordHash ya calculado).
func (r *UserRepository) Add(u entity.User) {
	r.mu.Lock()
	r.users[u.Username] = u
	r.mu.Unlock()
}

// AddWithPassword hashea la contraseña con bcrypt y registra el usuario.
func (r *UserRepository) AddWithPassword(username, password, role string) error {
	u, err := newUser(username, password, role)
	if err != nil {
		return err
	}
	r.Add(u)
	return nil
}

func newUser(username, password, role string) (entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entity.User{}, fmt.Errorf("hash password: %w", err)
	}
	return entity.User{Username: username, PasswordHash: string(hash), Role: role}, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
