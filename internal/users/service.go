// Package users manages local accounts and their permissions.
package users

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/model"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// Default account created by Seed.
const (
	DefaultUsername = "altay"
	DefaultPassword = "123456"
)

var (
	// ErrInvalidCredentials signals a wrong username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound signals an unknown user ID or name.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername signals a taken username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrWeakPassword signals a password shorter than MinPasswordLen.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	// ErrSelfRemoval signals an attempt to remove the acting user.
	ErrSelfRemoval = errors.New("cannot remove the signed-in user")
)

// Service reads and writes users.yaml.
type Service struct {
	path string
	ids  id.Generator
	cost int

	mu    sync.Mutex
	users []model.User
}

// Open loads the user list from dataDir.
func Open(dataDir string, ids id.Generator) (*Service, error) {
	path := filepath.Join(dataDir, FileName)
	list, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Service{path: path, ids: ids, cost: bcrypt.DefaultCost, users: list}, nil
}

// SetHashCost changes the bcrypt cost for new passwords.
func (s *Service) SetHashCost(cost int) { s.cost = cost }

// NewUser is the input for Add.
type NewUser struct {
	Username    string
	Password    string
	Permissions model.Permissions
}

// Seed creates the default account with every permission when no users exist.
// It reports whether a user was created.
func (s *Service) Seed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) > 0 {
		return false, nil
	}
	u, err := s.newUser(NewUser{Username: DefaultUsername, Password: DefaultPassword, Permissions: model.FullPermissions()})
	if err != nil {
		return false, err
	}
	if err := s.commit(append(s.users, u)); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate returns the user when username and password match.
func (s *Service) Authenticate(username, password string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byName(username)
	if !ok {
		return model.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// VerifyPassword checks a password re-entry for an existing user.
func (s *Service) VerifyPassword(username, password string) error {
	_, err := s.Authenticate(username, password)
	return err
}

// Get returns a user by ID.
func (s *Service) Get(userID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(userID)
	if i < 0 {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return s.users[i], nil
}

// Lookup resolves a user ID, an ID prefix or a username.
func (s *Service) Lookup(ref string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byName(ref); ok {
		return u, nil
	}
	ids := make([]string, len(s.users))
	for i, u := range s.users {
		ids[i] = u.ID
	}
	userID, err := id.Resolve(ref, ids)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, ref)
	}
	return s.users[s.index(userID)], nil
}

// List returns all users. Requires manageUsers.
func (s *Service) List(actor model.User) ([]model.User, error) {
	if err := model.Require(actor, model.PermManageUsers); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.User(nil), s.users...), nil
}

// Add creates a user. Requires manageUsers.
func (s *Service) Add(actor model.User, nu NewUser) (model.User, error) {
	if err := model.Require(actor, model.PermManageUsers); err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.newUser(nu)
	if err != nil {
		return model.User{}, err
	}
	if err := s.commit(append(append([]model.User(nil), s.users...), u)); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Update holds optional changes to a user.
type Update struct {
	Username    *string
	Password    *string
	Permissions *model.Permissions
}

// Update changes a user. Requires manageUsers.
func (s *Service) Update(actor model.User, userID string, up Update) (model.User, error) {
	if err := model.Require(actor, model.PermManageUsers); err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(userID, up)
}

// SetPassword changes a password. Users may change their own; changing
// another user's password requires manageUsers.
func (s *Service) SetPassword(actor model.User, userID, password string) error {
	if actor.ID != userID {
		if err := model.Require(actor, model.PermManageUsers); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.apply(userID, Update{Password: &password})
	return err
}

// Remove deletes a user. Requires manageUsers; the actor cannot remove itself.
func (s *Service) Remove(actor model.User, userID string) error {
	if err := model.Require(actor, model.PermManageUsers); err != nil {
		return err
	}
	if actor.ID == userID {
		return ErrSelfRemoval
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(userID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	next := append(append([]model.User(nil), s.users[:i]...), s.users[i+1:]...)
	return s.commit(next)
}

func (s *Service) apply(userID string, up Update) (model.User, error) {
	i := s.index(userID)
	if i < 0 {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	u := s.users[i]

	if up.Username != nil {
		name := strings.TrimSpace(*up.Username)
		if name == "" {
			return model.User{}, fmt.Errorf("username is required")
		}
		if other, ok := s.byName(name); ok && other.ID != u.ID {
			return model.User{}, fmt.Errorf("%w: %s", ErrDuplicateUsername, name)
		}
		u.Username = name
	}
	if up.Password != nil {
		hash, err := s.hash(*up.Password)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = hash
	}
	if up.Permissions != nil {
		u.Permissions = *up.Permissions
	}

	next := append([]model.User(nil), s.users...)
	next[i] = u
	if err := s.commit(next); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (s *Service) newUser(nu NewUser) (model.User, error) {
	name := strings.TrimSpace(nu.Username)
	if name == "" {
		return model.User{}, fmt.Errorf("username is required")
	}
	if _, ok := s.byName(name); ok {
		return model.User{}, fmt.Errorf("%w: %s", ErrDuplicateUsername, name)
	}
	hash, err := s.hash(nu.Password)
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:           s.ids.NewID(),
		Username:     name,
		PasswordHash: hash,
		Permissions:  nu.Permissions,
	}, nil
}

func (s *Service) hash(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrWeakPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

// commit writes list and makes it current.
func (s *Service) commit(list []model.User) error {
	if err := WriteFile(s.path, list); err != nil {
		return err
	}
	s.users = list
	return nil
}

// byName matches usernames case-insensitively.
func (s *Service) byName(name string) (model.User, bool) {
	name = strings.TrimSpace(name)
	for _, u := range s.users {
		if strings.EqualFold(u.Username, name) {
			return u, true
		}
	}
	return model.User{}, false
}

func (s *Service) index(userID string) int {
	for i, u := range s.users {
		if u.ID == userID {
			return i
		}
	}
	return -1
}
