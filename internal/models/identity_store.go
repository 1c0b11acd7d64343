package models

import (
	"fmt"
	"strings"
	"time"
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// PasswordHasher is a one-way credential function. Plaintext is never stored.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// IdentityStore holds user records. It is not safe for concurrent use; the
// social service serializes all access.
type IdentityStore struct {
	users  map[string]*User
	hasher PasswordHasher
	now    func() time.Time
}

func NewIdentityStore(hasher PasswordHasher) *IdentityStore {
	return &IdentityStore{
		users:  make(map[string]*User),
		hasher: hasher,
		now:    time.Now,
	}
}

func (s *IdentityStore) Signup(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, newError(KindValidation, "username is required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, newError(KindValidation, "password is required")
	}
	if len(password) > MaxPasswordBytes {
		return nil, newError(KindValidation, "password must be at most %d bytes", MaxPasswordBytes)
	}
	if _, ok := s.users[username]; ok {
		return nil, newError(KindConflict, "username %q is already taken", username)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    s.timestamp(),
	}
	s.users[username] = u
	return u.clone(), nil
}

// Login verifies credentials. Unknown users, guests and wrong passwords all
// fail the same way.
func (s *IdentityStore) Login(username, password string) (*User, error) {
	u, ok := s.users[strings.TrimSpace(username)]
	if !ok || u.PasswordHash == "" || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, newError(KindAuth, "invalid username or password")
	}
	return u.clone(), nil
}

// GuestLogin creates a throwaway account named after the current time.
func (s *IdentityStore) GuestLogin() *User {
	now := s.timestamp()
	base := fmt.Sprintf("guest_%d", now.UnixMilli())
	name := base
	for n := 1; ; n++ {
		if _, taken := s.users[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d", base, n)
	}

	u := &User{
		Username:  name,
		Role:      RoleGuest,
		CreatedAt: now,
	}
	s.users[name] = u
	return u.clone()
}

// UpdateProfile overwrites all three profile fields; empty strings clear them.
func (s *IdentityStore) UpdateProfile(username, desc, avatarURL, bannerURL string) (*User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, newError(KindNotFound, "user %q not found", username)
	}
	if u.IsGuest() {
		return nil, newError(KindPermission, "guests cannot edit a profile")
	}
	u.Profile = Profile{
		Desc:      desc,
		AvatarURL: avatarURL,
		BannerURL: bannerURL,
	}
	return u.clone(), nil
}

func (s *IdentityStore) Get(username string) (*User, bool) {
	u, ok := s.users[username]
	if !ok {
		return nil, false
	}
	return u.clone(), true
}

func (s *IdentityStore) Len() int {
	return len(s.users)
}

// Export returns a deep copy of all users keyed by username.
func (s *IdentityStore) Export() map[string]*User {
	out := make(map[string]*User, len(s.users))
	for name, u := range s.users {
		out[name] = u.clone()
	}
	return out
}

// Load replaces every record with a copy of users.
func (s *IdentityStore) Load(users map[string]*User) {
	s.users = make(map[string]*User, len(users))
	for name, u := range users {
		if u == nil {
			continue
		}
		c := u.clone()
		c.Username = name
		s.users[name] = c
	}
}

func (s *IdentityStore) timestamp() time.Time {
	return s.now().UTC()
}
