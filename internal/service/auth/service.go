package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/dispatch"
	"github.com/jwalitptl/hospital-api/internal/service/user"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

const MsgInvalidLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

var ErrTokenRevoked = errors.New("token revoked")

// Session is returned after a successful register or login.
type Session struct {
	User       *model.User `json:"user"`
	Token      string      `json:"token"`
	ExpiresAt  time.Time   `json:"expires_at"`
	RedirectTo string      `json:"redirect_to"`
}

type Service struct {
	users   *user.Service
	jwtSvc  auth.JWTService
	revoked *cache.Cache
}

func NewService(users *user.Service, jwtSvc auth.JWTService) *Service {
	return &Service{
		users:   users,
		jwtSvc:  jwtSvc,
		revoked: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

// Register creates the account and signs the new user in.
func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (*Session, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.BadRequest("Select a valid role.", err)
	}
	if req.Password1 != req.Password2 {
		return nil, apperrors.BadRequest("The two password fields didn't match.", nil)
	}
	u, err := s.users.Create(ctx, user.CreateInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password1,
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*Session, error) {
	u, err := s.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrUnauthorized) {
			return nil, apperrors.BadRequest(MsgInvalidLogin, err)
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *Service) issue(u *model.User) (*Session, error) {
	token, claims, err := s.jwtSvc.GenerateToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return &Session{
		User:       u,
		Token:      token,
		ExpiresAt:  claims.ExpiresAt.Time,
		RedirectTo: dispatch.Destination(identity(claims, u.Role)),
	}, nil
}

// Logout revokes the token until it would have expired anyway. Invalid or
// expired tokens are ignored.
func (s *Service) Logout(token string) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	s.revoked.Set(claims.ID, struct{}{}, ttl)
}

// Authenticate resolves a session token to an identity.
func (s *Service) Authenticate(token string) (*model.Identity, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if _, revoked := s.revoked.Get(claims.ID); revoked {
		return nil, ErrTokenRevoked
	}
	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	return identity(claims, role), nil
}

func identity(claims *auth.Claims, role model.Role) *model.Identity {
	return &model.Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     role,
	}
}
