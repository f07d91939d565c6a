package auth

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("authentication failed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidRole        = errors.New("invalid role")
	// 未返却の貸出が残っている利用者は削除できない
	ErrHasActiveLoan = errors.New("user has an active loan")
)

const (
	accessTokenTTL  = 1 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Service struct {
	store  UserStore
	secret []byte
}

func NewService(db *sql.DB, secret []byte) *Service {
	return &Service{store: NewStore(db), secret: secret}
}

// NewServiceWithStore はテスト用にストア実装を差し替える
func NewServiceWithStore(store UserStore, secret []byte) *Service {
	return &Service{store: store, secret: secret}
}

// Register は公開エンドポイントからの登録。常にmemberとして作成する。
func (s *Service) Register(ctx context.Context, email, username, password string) (*User, error) {
	return s.CreateUser(ctx, email, username, password, RoleMember)
}

func (s *Service) CreateUser(ctx context.Context, email, username, password, role string) (*User, error) {
	if role != RoleMember && role != RoleAdministrator {
		return nil, ErrInvalidRole
	}

	exists, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuePair(u)
}

// Refresh はリフレッシュトークンを検証して新しいペアを発行する。
// roleが変わっている可能性があるのでユーザーを引き直す。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrInvalidToken
	}

	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidToken
	}
	return s.issuePair(u)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// UpdateUser は渡されたフィールドだけ上書きする。roleの変更は管理者経路のみ。
func (s *Service) UpdateUser(ctx context.Context, id int64, username, email, password, role *string) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}

	if username != nil && *username != "" {
		u.Username = *username
	}
	if email != nil && *email != "" && *email != u.Email {
		other, err := s.store.GetByEmail(ctx, *email)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, ErrAlreadyExists
		}
		u.Email = *email
	}
	if password != nil && *password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if role != nil && (*role == RoleMember || *role == RoleAdministrator) {
		u.Role = *role
	}

	n, err := s.store.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ===== token helpers =====

func (s *Service) issuePair(u *User) (*TokenPair, error) {
	now := time.Now()

	access, err := s.sign(jwt.MapClaims{
		"sub":  strconv.FormatInt(u.ID, 10),
		"role": u.Role,
		"typ":  "access",
		"exp":  now.Add(accessTokenTTL).Unix(),
		"iat":  now.Unix(),
	})
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(jwt.MapClaims{
		"sub": strconv.FormatInt(u.ID, 10),
		"typ": "refresh",
		"exp": now.Add(refreshTokenTTL).Unix(),
		"iat": now.Unix(),
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Service) sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
