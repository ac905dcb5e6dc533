package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/store"

	"golang.org/x/crypto/scrypt"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must be 3-50 characters")
	ErrInvalidPassword    = errors.New("password must be at least 8 characters")
)

// scrypt parameters for the password KDF
const (
	scryptN       = 32768
	scryptR       = 8
	scryptP       = 1
	scryptKeyLen  = 32
	scryptSaltLen = 16
)

// UserService is the auth gate: registration, login, lookups
type UserService struct {
	store store.Store
}

// NewUserService creates a new user service
func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

// Register creates a new account. The username is normalized (trimmed,
// lowercased) before the uniqueness check.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = NormalizeUsername(username)
	if len(username) < 3 || len(username) > 50 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 8 {
		return nil, ErrInvalidPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns the user. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// NormalizeUsername trims surrounding whitespace and lowercases
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// HashPassword derives a "salt:hash" credential with scrypt
func HashPassword(password string) (string, error) {
	salt := make([]byte, scryptSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(hash), nil
}

// CheckPasswordHash re-derives the key with the stored salt and compares in
// constant time
func CheckPasswordHash(password, stored string) bool {
	saltHex, hashHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	got, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}
