package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sealdrop/sealdrop/internal/client/keyring"
	"github.com/sealdrop/sealdrop/internal/client/transport"
	"github.com/sealdrop/sealdrop/internal/cryptox"
)

// AuthAPI is the server surface the auth service needs.
type AuthAPI interface {
	Register(ctx context.Context, username, password, publicKeyPEM string) (*transport.RegisterResult, error)
	Login(ctx context.Context, username, password string) error
	Logout()
	IsLoggedIn() bool
}

// AuthService handles account lifecycle on the client: key pair
// provisioning, registration, and sessions. Each account's key pair is
// stored in the keyring under the account name.
type AuthService struct {
	api      AuthAPI
	keyring  *keyring.Keyring
	username string
}

func NewAuthService(api AuthAPI, kr *keyring.Keyring) *AuthService {
	return &AuthService{api: api, keyring: kr}
}

// Register creates the account server-side. A key pair named after the
// account is generated unless one already exists in the keyring; only
// its public half is sent.
func (s *AuthService) Register(ctx context.Context, username, password string) (*transport.RegisterResult, error) {
	pair, err := s.keyring.Load(username)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		pair, err = s.keyring.Generate(username)
	}
	if err != nil {
		return nil, fmt.Errorf("provisioning key pair: %w", err)
	}

	out, err := s.api.Register(ctx, username, password, pair.PublicKey)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Login opens a session. The account's key pair must be present in the
// keyring, otherwise received packages could not be opened.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	if _, err := s.keyring.Load(username); err != nil {
		return fmt.Errorf("no key pair for %q in keyring: %w", username, err)
	}
	if err := s.api.Login(ctx, username, password); err != nil {
		return err
	}
	s.username = username
	return nil
}

// Logout drops the session.
func (s *AuthService) Logout() {
	s.api.Logout()
	s.username = ""
}

// Username returns the logged-in account name, or "".
func (s *AuthService) Username() string { return s.username }

// IsLoggedIn reports whether a session is active.
func (s *AuthService) IsLoggedIn() bool { return s.api.IsLoggedIn() }

// PrivateKey returns the logged-in account's private key PEM.
func (s *AuthService) PrivateKey() (string, error) {
	if s.username == "" {
		return "", errors.New("not logged in")
	}
	pair, err := s.keyring.Load(s.username)
	if err != nil {
		return "", err
	}
	return pair.PrivateKey, nil
}

// Fingerprint returns the fingerprint of the logged-in account's public
// key.
func (s *AuthService) Fingerprint() (string, error) {
	if s.username == "" {
		return "", errors.New("not logged in")
	}
	pair, err := s.keyring.Load(s.username)
	if err != nil {
		return "", err
	}
	return cryptox.Fingerprint(pair.PublicKey), nil
}
