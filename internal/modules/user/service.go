// README: User service handles registration, credential checks and profile updates.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"ridehail/internal/types"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrBadRequest         = errors.New("bad request")
)

type Service struct {
	store *Store
	cost  int
	log   *slog.Logger
}

func NewService(store *Store) *Service {
	return &Service{
		store: store,
		cost:  bcrypt.DefaultCost,
		log:   slog.Default().With("module", "user"),
	}
}

type RegisterCommand struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
	Phone       string
	Role        Role
	Language    string
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (User, error) {
	username := strings.TrimSpace(cmd.Username)
	if username == "" || cmd.Password == "" || !cmd.Role.Valid() {
		return User{}, ErrBadRequest
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.cost)
	if err != nil {
		return User{}, err
	}
	lang := cmd.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	display := cmd.DisplayName
	if display == "" {
		display = username
	}
	u, err := s.store.Create(ctx, User{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  display,
		Email:        strings.TrimSpace(cmd.Email),
		Phone:        cmd.Phone,
		Role:         cmd.Role,
		Language:     lang,
	})
	if err != nil {
		return User{}, err
	}
	s.log.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Authenticate never reveals whether the username or the password was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.store.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (User, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.store.GetByUsername(ctx, username)
}

func (s *Service) Update(ctx context.Context, id types.ID, p Patch) (User, error) {
	if p.Email != nil {
		trimmed := strings.TrimSpace(*p.Email)
		p.Email = &trimmed
	}
	return s.store.Update(ctx, id, p)
}

func (s *Service) SetOnline(ctx context.Context, id types.ID, online bool) (User, error) {
	return s.store.Update(ctx, id, Patch{Online: &online})
}
