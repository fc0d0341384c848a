package user

import (
	"context"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/activitylog"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/apperr"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/auth"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/logger"
)

type Service struct {
	repo               Repository
	recorder           activitylog.Recorder
	accessTokenSecret  string
	refreshTokenSecret string
}

func NewService(repo Repository, recorder activitylog.Recorder, accessSecret, refreshSecret string) *Service {
	return &Service{
		repo:               repo,
		recorder:           recorder,
		accessTokenSecret:  accessSecret,
		refreshTokenSecret: refreshSecret,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest, ip string) (*AuthResponse, error) {
	emailTaken, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, apperr.Conflict("Email already registered")
	}

	usernameTaken, err := s.repo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, apperr.Conflict("Username already taken")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         auth.RoleUser,
	})
	if err != nil {
		logger.Errorf("register failed for %s: %v", req.Email, err)
		return nil, err
	}

	access, refresh, err := auth.GenerateTokens(created.ID, created.Username, created.Role, s.accessTokenSecret, s.refreshTokenSecret)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    created.ID,
		UserName:  created.Username,
		Service:   activitylog.ServiceUser,
		Action:    "REGISTER",
		Details:   map[string]interface{}{"email": created.Email},
		IPAddress: ip,
	})

	return &AuthResponse{User: created, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest, ip string) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Same message whether the account exists or not.
		return nil, apperr.BadRequest("Invalid email or password")
	}
	if !u.IsActive {
		return nil, apperr.BadRequest("Account is deactivated")
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, apperr.BadRequest("Invalid email or password")
	}

	access, refresh, err := auth.GenerateTokens(u.ID, u.Username, u.Role, s.accessTokenSecret, s.refreshTokenSecret)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    u.ID,
		UserName:  u.Username,
		Service:   activitylog.ServiceUser,
		Action:    "LOGIN",
		IPAddress: ip,
	})

	return &AuthResponse{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.refreshTokenSecret, s.accessTokenSecret)
	if err != nil {
		return nil, apperr.BadRequest("Invalid refresh token")
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}
	if !u.IsActive {
		return nil, apperr.BadRequest("Account is deactivated")
	}

	access, err := auth.GenerateAccessToken(u.ID, u.Username, u.Role, s.accessTokenSecret)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{User: u, AccessToken: access}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest, actorID, actorName, ip string) (*User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != u.Email {
		taken, err := s.repo.EmailExists(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("Email already registered")
		}
		u.Email = *req.Email
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Role != nil {
		u.Role = *req.Role
	}

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actorID,
		UserName:  actorName,
		Service:   activitylog.ServiceUser,
		Action:    "UPDATE",
		Details:   map[string]interface{}{"target_user_id": id},
		IPAddress: ip,
	})

	return updated, nil
}

func (s *Service) Deactivate(ctx context.Context, id, actorID, actorName, ip string) error {
	ok, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("User not found")
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actorID,
		UserName:  actorName,
		Service:   activitylog.ServiceUser,
		Action:    "DEACTIVATE",
		Details:   map[string]interface{}{"target_user_id": id},
		IPAddress: ip,
	})

	return nil
}
