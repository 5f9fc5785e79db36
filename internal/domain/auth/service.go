package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/pkg/jwt"
	"rentfunnel/internal/storage"
)

// Service registers and authenticates users. Tokens are mock sessions for
// the funnel, not hardened credentials.
type Service struct {
	users storage.UserStore
	jwt   *jwt.Service
}

func NewService(users storage.UserStore, jwtService *jwt.Service) *Service {
	return &Service{users: users, jwt: jwtService}
}

// Register creates a customer account and signs it in
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	u, err := s.create(ctx, domain.CreateUserData{
		Email:    req.Email,
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
		Cognome:  strings.TrimSpace(req.Cognome),
		Phone:    strings.TrimSpace(req.Phone),
		Company:  strings.TrimSpace(req.Company),
		Role:     domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("user registered", zap.String("user_id", u.ID))
	return s.session(u)
}

// CreateStaff creates an admin or agent account, used by the seed tool
func (s *Service) CreateStaff(ctx context.Context, data domain.CreateUserData) (*domain.User, error) {
	if data.Role != domain.RoleAdmin && data.Role != domain.RoleAgent {
		return nil, ErrInvalidRole
	}
	return s.create(ctx, data)
}

func (s *Service) create(ctx context.Context, data domain.CreateUserData) (*domain.User, error) {
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))
	u, err := s.users.Create(ctx, data)
	if storage.IsCode(err, storage.CodeAlreadyExists) {
		return nil, ErrEmailAlreadyExists
	}
	return u, err
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	u, err := s.users.Authenticate(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		if storage.IsCode(err, storage.CodeUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.session(u)
}

func (s *Service) session(u *domain.User) (*Session, error) {
	token, err := s.jwt.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &Session{
		User:        u,
		AccessToken: token,
		ExpiresIn:   int(s.jwt.TTL().Seconds()),
	}, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	return s.users.Update(ctx, userID, req.update())
}
