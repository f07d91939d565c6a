package auth

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memUserStore は UserStore のインメモリ実装（テスト用）
type memUserStore struct {
	mu         sync.Mutex
	users      map[int64]*User
	nextID     int64
	activeLoan map[int64]bool // user_id -> 未返却貸出あり
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		users:      make(map[int64]*User),
		activeLoan: make(map[int64]bool),
	}
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) GetByID(_ context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUserStore) List(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memUserStore) Update(_ context.Context, u *User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return 0, nil
	}
	cp := *u
	s.users[u.ID] = &cp
	return 1, nil
}

func (s *memUserStore) Delete(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return 0, nil
	}
	if s.activeLoan[id] {
		return 0, ErrHasActiveLoan
	}
	delete(s.users, id)
	return 1, nil
}

var authTestSecret = []byte("auth-test-secret")

func newAuthService(t *testing.T) (*Service, *memUserStore) {
	t.Helper()
	store := newMemUserStore()
	return NewServiceWithStore(store, authTestSecret), store
}

func TestRegisterCreatesMember(t *testing.T) {
	svc, _ := newAuthService(t)

	u, err := svc.Register(context.Background(), "alice@library.com", "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, RoleMember, u.Role)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "hunter2hunter2", u.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2hunter2")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), "alice@library.com", "alice", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice@library.com", "alice2", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.CreateUser(context.Background(), "x@library.com", "x", "hunter2hunter2", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLoginIssuesAccessToken(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), "alice@library.com", "alice", "hunter2hunter2")
	require.NoError(t, err)

	pair, err := svc.Login(context.Background(), "alice@library.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	claims := parseClaims(t, pair.Access)
	assert.Equal(t, "access", claims["typ"])
	assert.Equal(t, RoleMember, claims["role"])
	assert.Equal(t, "1", claims["sub"])
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), "alice@library.com", "alice", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice@library.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@library.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshReissuesPair(t *testing.T) {
	svc, store := newAuthService(t)

	u, err := svc.Register(context.Background(), "alice@library.com", "alice", "hunter2hunter2")
	require.NoError(t, err)

	pair, err := svc.Login(context.Background(), "alice@library.com", "hunter2hunter2")
	require.NoError(t, err)

	// role昇格後のrefreshは新しいroleを載せる
	u.Role = RoleAdministrator
	_, err = store.Update(context.Background(), u)
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	claims := parseClaims(t, next.Access)
	assert.Equal(t, RoleAdministrator, claims["role"])
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), "alice@library.com", "alice", "hunter2hunter2")
	require.NoError(t, err)

	pair, err := svc.Login(context.Background(), "alice@library.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateUserPartial(t *testing.T) {
	svc, _ := newAuthService(t)

	u, err := svc.Register(context.Background(), "alice@library.com", "alice", "hunter2hunter2")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "bob@library.com", "bob", "hunter2hunter2")
	require.NoError(t, err)

	name := "alice2"
	got, err := svc.UpdateUser(context.Background(), u.ID, &name, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, "alice@library.com", got.Email)

	// 既存メールへの変更は弾く
	taken := "bob@library.com"
	_, err = svc.UpdateUser(context.Background(), u.ID, nil, &taken, nil, nil)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// role whitelist 外は無視される
	badRole := "superuser"
	got, err = svc.UpdateUser(context.Background(), u.ID, nil, nil, nil, &badRole)
	require.NoError(t, err)
	assert.Equal(t, RoleMember, got.Role)

	adminRole := RoleAdministrator
	got, err = svc.UpdateUser(context.Background(), u.ID, nil, nil, nil, &adminRole)
	require.NoError(t, err)
	assert.Equal(t, RoleAdministrator, got.Role)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc, _ := newAuthService(t)
	name := "ghost"
	_, err := svc.UpdateUser(context.Background(), 404, &name, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newAuthService(t)

	u, err := svc.Register(context.Background(), "alice@library.com", "alice", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), u.ID))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), u.ID), ErrNotFound)

	_, err = svc.GetUser(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserWithActiveLoan(t *testing.T) {
	svc, store := newAuthService(t)

	u, err := svc.Register(context.Background(), "alice@library.com", "alice", "hunter2hunter2")
	require.NoError(t, err)

	store.mu.Lock()
	store.activeLoan[u.ID] = true
	store.mu.Unlock()

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), u.ID), ErrHasActiveLoan)

	// 返却後は消せる
	store.mu.Lock()
	store.activeLoan[u.ID] = false
	store.mu.Unlock()
	require.NoError(t, svc.DeleteUser(context.Background(), u.ID))
}

// ===== helpers =====

func parseClaims(t *testing.T, tokenStr string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (any, error) {
		return authTestSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	require.True(t, token.Valid)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.NotEmpty(t, claims["exp"])
	return claims
}
