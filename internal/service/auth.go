package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jabbarSoomro/project-management/internal/model"
	"github.com/jabbarSoomro/project-management/internal/store"
)

// ErrInvalidCredentials 邮箱或密码不正确。
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterInput 注册输入。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService 用户注册、登录与 JWT 签发。
type AuthService struct {
	users    store.UserStore
	logger   *slog.Logger
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService 创建认证服务。
func NewAuthService(users store.UserStore, logger *slog.Logger, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		logger:   logger,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// validateRegister 校验注册输入。
func validateRegister(in *RegisterInput) map[string]string {
	fields := map[string]string{}

	if in.Name == "" {
		fields["name"] = "The name field is required."
	} else if len(in.Name) > 255 {
		fields["name"] = "The name may not be greater than 255 characters."
	}

	if in.Email == "" {
		fields["email"] = "The email field is required."
	} else if len(in.Email) > 191 {
		fields["email"] = "The email may not be greater than 191 characters."
	}

	if len(in.Password) < 8 {
		fields["password"] = "The password must be at least 8 characters."
	}

	return fields
}

// Register 注册新用户。
//
// 邮箱已被占用时返回字段级校验错误。
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	fields := validateRegister(&in)

	if in.Email != "" {
		existing, err := s.users.FindByEmail(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("find user by email: %w", err)
		}
		if existing != nil {
			fields["email"] = "The email has already been taken."
		}
	}

	if len(fields) > 0 {
		return nil, newValidationError(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("email", user.Email))

	return user, nil
}

// Login 校验邮箱密码并签发 JWT。
//
// 凭证错误统一返回 ErrInvalidCredentials，不区分"用户不存在"
// 和"密码错误"。
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", slog.Uint64("user_id", uint64(user.ID)))
	return token, user, nil
}

// issueToken 为用户签发 HS256 JWT。
func (s *AuthService) issueToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken 解析并校验 JWT，返回其中的用户 ID。
func (s *AuthService) ParseToken(tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	var userID uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil || userID == 0 {
		return 0, fmt.Errorf("invalid token subject")
	}
	return userID, nil
}
