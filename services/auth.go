package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderdeck/orderdeck/db"
	"github.com/orderdeck/orderdeck/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

const userCacheTTL = 15 * time.Minute

// AuthService handles account registration, login and token issuance.
// User profiles are cached in Redis; the cache is dropped on every write.
type AuthService struct {
	PG    *sql.DB
	Redis *redis.Client
}

type LoginResponse struct {
	User  db.User `json:"user"`
	Token string  `json:"token"`
}

func NewAuthService(pg *sql.DB, rdb *redis.Client) *AuthService {
	return &AuthService{
		PG:    pg,
		Redis: rdb,
	}
}

// HashPassword creates a bcrypt hash of the password
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// Register creates a new account with a hashed password
func (s *AuthService) Register(ctx context.Context, req db.RegisterRequest) (*db.User, error) {
	var exists bool
	err := s.PG.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", req.Email,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &db.User{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: true,
	}

	err = s.PG.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Email, user.Phone, hash, user.IsActive).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the user with a signed token
func (s *AuthService) Login(ctx context.Context, req db.LoginRequest) (*LoginResponse, error) {
	var user db.User
	var hash string
	err := s.PG.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), password_hash, is_active, created_at, updated_at
		FROM users WHERE email = $1
	`, req.Email).Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &hash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.cacheUser(ctx, &user)

	return &LoginResponse{User: user, Token: token}, nil
}

// IssueToken signs an HS256 token carrying the user identity
func (s *AuthService) IssueToken(userID, email string) (string, error) {
	ttl := time.Duration(config.App.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.App.JWTSecret))
}

// VerifyToken parses a token and returns the user ID it was issued for
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.App.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("token missing subject")
	}

	return sub, nil
}

// GetUser loads a user by ID, reading through the Redis cache
func (s *AuthService) GetUser(ctx context.Context, userID string) (*db.User, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, userCacheKey(userID)).Result(); err == nil {
			var user db.User
			if json.Unmarshal([]byte(cached), &user) == nil {
				return &user, nil
			}
		}
	}

	var user db.User
	err := s.PG.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), is_active, created_at, updated_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	s.cacheUser(ctx, &user)

	return &user, nil
}

// UpdateUser patches the profile and drops the cache entry
func (s *AuthService) UpdateUser(ctx context.Context, userID string, req db.UpdateUserRequest) (*db.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	_, err = s.PG.ExecContext(ctx, `
		UPDATE users SET name = $1, phone = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3
	`, user.Name, user.Phone, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if s.Redis != nil {
		if err := s.Redis.Del(ctx, userCacheKey(userID)).Err(); err != nil {
			log.Printf("[Auth] Failed to drop user cache for %s: %v", userID, err)
		}
	}

	return user, nil
}

func (s *AuthService) cacheUser(ctx context.Context, user *db.User) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, userCacheKey(user.ID), data, userCacheTTL).Err(); err != nil {
		log.Printf("[Auth] Failed to cache user %s: %v", user.ID, err)
	}
}

func userCacheKey(userID string) string {
	return "user:" + userID
}
