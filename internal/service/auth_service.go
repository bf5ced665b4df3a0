package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"parking_system/internal/domain"
	"parking_system/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrEmailTaken = errors.New("email is already registered")
var ErrTokenInvalid = errors.New("token is invalid or expired")

type AuthService struct {
	adminRepo     repository.AdminRepository
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(adminRepo repository.AdminRepository, userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		adminRepo:     adminRepo,
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// SeedAdmin creates the default admin account when it does not exist yet.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	_, err := s.adminRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("checking for existing admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	if _, err = s.adminRepo.Create(ctx, &domain.Admin{Email: email, PasswordHash: string(hash)}); err != nil {
		return fmt.Errorf("creating default admin: %w", err)
	}
	logrus.WithField("email", email).Info("default admin account created")
	return nil
}

func (s *AuthService) Register(ctx context.Context, dto domain.RegisterUserDTO) (*domain.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, dto.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking for existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:        dto.Email,
		PasswordHash: string(hash),
		FullName:     dto.FullName,
		Address:      dto.Address,
		PinCode:      dto.PinCode,
		IsActive:     true,
	}
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return created, nil
}

// Login checks the admin table first, then active users. Every failure
// collapses into ErrInvalidCredentials so callers cannot probe which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, dto domain.LoginDTO) (*domain.AuthResponseDTO, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, dto.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("looking up admin: %w", err)
	}
	if admin != nil {
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(dto.Password)) == nil {
			return s.issueToken(admin.ID, admin.Email, admin.Email, domain.RoleAdmin)
		}
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user.ID, user.Email, user.FullName, domain.RoleUser)
}

func (s *AuthService) issueToken(id int, email, name, role string) (*domain.AuthResponseDTO, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.Itoa(id),
		"exp":   now.Add(s.jwtExpiration).Unix(),
		"iat":   now.Unix(),
		"role":  role,
		"email": email,
		"name":  name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &domain.AuthResponseDTO{
		Token: tokenString,
		ID:    id,
		Email: email,
		Name:  name,
		Role:  role,
	}, nil
}

// ValidateToken is used by the auth middleware.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrTokenInvalid)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
