package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/account"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/audit"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/auth"
	"github.com/pointage-hq/pointage-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type ServiceImpl struct {
	accounts account.AccountRepository
	jwt      jwt.Service
	auditor  audit.Service
}

func NewAuthService(accounts account.AccountRepository, jwtService jwt.Service, auditor audit.Service) auth.Service {
	return &ServiceImpl{
		accounts: accounts,
		jwt:      jwtService,
		auditor:  auditor,
	}
}

// Register creates an INACTIVE account. The account cannot do anything useful
// until its profile is submitted and approved.
func (s *ServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.RegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.RegisterResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return auth.RegisterResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.accounts.Create(ctx, account.Account{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         account.RoleUser,
		Status:       account.StatusInactive,
	})
	if err != nil {
		return auth.RegisterResponse{}, err
	}

	s.auditor.Log(ctx, audit.Entry{
		ActorID:    created.ID,
		Action:     audit.ActionAccountRegistered,
		EntityType: "account",
		EntityID:   created.ID,
		Severity:   audit.SeverityInfo,
	})

	return auth.RegisterResponse{
		AccountID: created.ID,
		Email:     created.Email,
		Status:    string(created.Status),
	}, nil
}

func (s *ServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	acc, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if acc.Status == account.StatusSuspended {
		return auth.TokenResponse{}, account.ErrAccountSuspended
	}

	return s.issueTokens(acc)
}

// Refresh re-reads the account so the new access token carries the current
// role and status, not the ones frozen at login.
func (s *ServiceImpl) Refresh(ctx context.Context, refreshToken string) (auth.TokenResponse, error) {
	userID, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	acc, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidToken
		}
		return auth.TokenResponse{}, err
	}

	if acc.Status == account.StatusSuspended {
		return auth.TokenResponse{}, account.ErrAccountSuspended
	}

	return s.issueTokens(acc)
}

func (s *ServiceImpl) issueTokens(acc account.Account) (auth.TokenResponse, error) {
	accessToken, expiresAt, err := s.jwt.GenerateAccessToken(acc.ID, acc.Email, acc.Role, acc.Status)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.jwt.GenerateRefreshToken(acc.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:      accessToken,
		ExpiresAt:        expiresAt,
		AccountID:        acc.ID,
		Role:             string(acc.Role),
		AccountStatus:    string(acc.Status),
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}
