package hg

import (
	"errors"
	"slices"
	"strings"
)

// defaultUserName is used when a signup doesn't give a name.
const defaultUserName = "User"

// UserRegistry is the list of known accounts, stored under a single key.
// It only maps emails to users; there are no credentials.
type UserRegistry struct {
	gateway *Gateway
	idgen   IDGenerator
	logger  Logger
}

func NewUserRegistry(gateway *Gateway, idgen IDGenerator, logger Logger) *UserRegistry {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &UserRegistry{gateway: gateway, idgen: idgen, logger: logger}
}

// List returns every registered user in signup order. An unreadable
// registry reads as empty.
func (r *UserRegistry) List() []User {
	var users []User
	if !r.gateway.loadKey(r.gateway.RegistryKey(), "registry", &users) {
		return []User{}
	}
	return slices.DeleteFunc(users, func(u User) bool { return u.ID == "" || u.Email == "" })
}

// Find returns the user registered with email (case-insensitive).
func (r *UserRegistry) Find(email string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, errors.New("email is required")
	}
	users := r.List()
	i := slices.IndexFunc(users, func(u User) bool { return strings.EqualFold(u.Email, email) })
	if i < 0 {
		return User{}, ErrUserNotFound
	}
	return users[i], nil
}

// Signup registers a new user. An empty name becomes "User".
func (r *UserRegistry) Signup(email, name string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, errors.New("email is required")
	}
	if _, err := r.Find(email); err == nil {
		return User{}, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultUserName
	}
	user := User{ID: r.idgen.New(), Email: email, Name: name}

	users := append(r.List(), user)
	// A failed write is logged by the gateway; the account still works for
	// this run.
	_ = r.gateway.saveKey(r.gateway.RegistryKey(), "registry", users)

	r.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}
