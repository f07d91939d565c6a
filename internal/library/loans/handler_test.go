package loans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LMS-backend/internal/platform/auth"
)

var testSecret = []byte("handler-test-secret")

func newTestRouter(t *testing.T) (*gin.Engine, *MemoryStore, *fakeClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewMemoryStore()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewServiceWith(store, clock, &seqIDGen{}, 14)

	r := gin.New()
	v1 := r.Group("/v1")
	RegisterRoutes(v1, svc, testSecret)
	return r, store, clock
}

func accessToken(t *testing.T, userID int64, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": role,
		"typ":  "access",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorDTO {
	t.Helper()
	var e errorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestHandlerCheckoutCreated(t *testing.T) {
	r, store, _ := newTestRouter(t)
	uid := store.AddUser("alice", "alice@library.com")
	bid := store.AddBook("Clean Code", "Robert C. Martin")

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, uid, auth.RoleMember), CheckoutRequest{BookID: bid})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, bid, res.Book.ID)
	assert.Equal(t, uid, res.User.ID)
	assert.True(t, res.IsActive)
	assert.Equal(t, "/loans/"+strconv.FormatInt(res.ID, 10), w.Header().Get("Location"))
}

func TestHandlerCheckoutRequiresAuth(t *testing.T) {
	r, store, _ := newTestRouter(t)
	bid := store.AddBook("Clean Code", "Robert C. Martin")

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", "", CheckoutRequest{BookID: bid})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerCheckoutBadRequest(t *testing.T) {
	r, store, _ := newTestRouter(t)
	uid := store.AddUser("alice", "alice@library.com")

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, uid, auth.RoleMember), gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidArgument, decodeError(t, w).Error.Code)
}

func TestHandlerCheckoutNotFound(t *testing.T) {
	r, store, _ := newTestRouter(t)
	uid := store.AddUser("alice", "alice@library.com")

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, uid, auth.RoleMember), CheckoutRequest{BookID: 999})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, w).Error.Code)
}

func TestHandlerCheckoutConflict(t *testing.T) {
	r, store, _ := newTestRouter(t)
	alice := store.AddUser("alice", "alice@library.com")
	bob := store.AddUser("bob", "bob@library.com")
	bid := store.AddBook("Clean Code", "Robert C. Martin")

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, alice, auth.RoleMember), CheckoutRequest{BookID: bid})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, bob, auth.RoleMember), CheckoutRequest{BookID: bid})
	require.Equal(t, http.StatusConflict, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, CodeConflict, e.Error.Code)
	assert.Equal(t, ReasonUnavailable, e.Error.Reason)
}

func TestHandlerCheckinForbiddenForMember(t *testing.T) {
	r, store, _ := newTestRouter(t)
	uid := store.AddUser("alice", "alice@library.com")
	bid := store.AddBook("Clean Code", "Robert C. Martin")

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, uid, auth.RoleMember), CheckoutRequest{BookID: bid})
	require.Equal(t, http.StatusCreated, w.Code)
	var co LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &co))

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/loans/%d/checkin", co.ID), accessToken(t, uid, auth.RoleMember), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, CodeForbidden, decodeError(t, w).Error.Code)
}

func TestHandlerCheckinFlow(t *testing.T) {
	r, store, _ := newTestRouter(t)
	uid := store.AddUser("alice", "alice@library.com")
	admin := store.AddUser("root", "admin@library.com")
	bid := store.AddBook("Clean Code", "Robert C. Martin")

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, uid, auth.RoleMember), CheckoutRequest{BookID: bid})
	require.Equal(t, http.StatusCreated, w.Code)
	var co LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &co))

	adminToken := accessToken(t, admin, auth.RoleAdministrator)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/loans/%d/checkin", co.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ci LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ci))
	assert.False(t, ci.IsActive)
	require.NotNil(t, ci.ReturnedAt)

	// 二回目は 409 already_returned
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/loans/%d/checkin", co.ID), adminToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ReasonAlreadyReturned, decodeError(t, w).Error.Reason)
}

func TestHandlerGetLoanHidden(t *testing.T) {
	r, store, _ := newTestRouter(t)
	alice := store.AddUser("alice", "alice@library.com")
	bob := store.AddUser("bob", "bob@library.com")
	bid := store.AddBook("Clean Code", "Robert C. Martin")

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, alice, auth.RoleMember), CheckoutRequest{BookID: bid})
	require.Equal(t, http.StatusCreated, w.Code)
	var co LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &co))

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/loans/%d", co.ID), accessToken(t, bob, auth.RoleMember), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/loans/%d", co.ID), accessToken(t, alice, auth.RoleMember), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlerListScopedByRole(t *testing.T) {
	r, store, _ := newTestRouter(t)
	alice := store.AddUser("alice", "alice@library.com")
	bob := store.AddUser("bob", "bob@library.com")
	admin := store.AddUser("root", "admin@library.com")
	b1 := store.AddBook("Book One", "Author One")
	b2 := store.AddBook("Book Two", "Author Two")

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, alice, auth.RoleMember), CheckoutRequest{BookID: b1})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, bob, auth.RoleMember), CheckoutRequest{BookID: b2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/loans", accessToken(t, alice, auth.RoleMember), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)

	w = doJSON(t, r, http.MethodGet, "/v1/loans/all", accessToken(t, admin, auth.RoleAdministrator), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	// member は /all を見られない
	w = doJSON(t, r, http.MethodGet, "/v1/loans/all", accessToken(t, alice, auth.RoleMember), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// brokenStore は常にドライバ由来の生エラーを返す
type brokenStore struct{}

func (brokenStore) Checkout(_ context.Context, _, _ int64, _ string, _, _ time.Time) (*LoanDetail, error) {
	return nil, errors.New("driver: connection reset by peer")
}
func (brokenStore) Checkin(_ context.Context, _ int64, _ time.Time) (*LoanDetail, error) {
	return nil, errors.New("driver: connection reset by peer")
}
func (brokenStore) GetByID(_ context.Context, _ int64) (*LoanDetail, error) {
	return nil, errors.New("driver: connection reset by peer")
}
func (brokenStore) List(_ context.Context, _ LoanFilter, _ time.Time) ([]LoanDetail, error) {
	return nil, errors.New("driver: connection reset by peer")
}

func TestHandlerHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewServiceWith(brokenStore{}, clock, &seqIDGen{}, 14)

	r := gin.New()
	v1 := r.Group("/v1")
	RegisterRoutes(v1, svc, testSecret)

	w := doJSON(t, r, http.MethodPost, "/v1/loans/checkout", accessToken(t, 1, auth.RoleMember), CheckoutRequest{BookID: 1})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, CodeInternal, e.Error.Code)
	assert.Equal(t, "internal error", e.Error.Message)
	assert.NotContains(t, w.Body.String(), "driver:")
}

func TestHandlerRejectsRefreshToken(t *testing.T) {
	r, store, _ := newTestRouter(t)
	uid := store.AddUser("alice", "alice@library.com")

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(uid, 10),
		"typ": "refresh",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/v1/loans", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
