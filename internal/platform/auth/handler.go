package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc *Service }

func RegisterRoutes(r *gin.RouterGroup, svc *Service, secret []byte) {
	h := &AuthHandler{svc: svc}

	// 認証不要
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/token/refresh", h.Refresh)

	// 本人
	me := r.Group("/auth", RequireAuth(secret))
	me.GET("/me", h.GetProfile)
	me.PUT("/me", h.UpdateProfile)

	// 管理者のみ
	admin := r.Group("/auth/users", RequireAuth(secret), RequireRole(RoleAdministrator))
	admin.GET("", h.ListUsers)
	admin.POST("", h.CreateUser)
	admin.GET("/:user_id", h.GetUser)
	admin.PUT("/:user_id", h.UpdateUser)
	admin.DELETE("/:user_id", h.DeleteUser)
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

type AdminCreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     *string `json:"role,omitempty"` // 未指定なら member
}

type AdminUpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register godoc
// @Summary  Register new member
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body RegisterRequest true "registration"
// @Success  201 {object} UserResponse
// @Router   /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.svc.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registered",
		"user":    toUserResponse(u),
	})
}

// Login godoc
// @Summary  Login with email and password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} TokenPair
// @Router   /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Refresh godoc
// @Summary  Refresh access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body RefreshRequest true "refresh token"
// @Success  200 {object} TokenPair
// @Router   /auth/token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, pair)
}

// GetProfile godoc
// @Summary  Get my profile
// @Tags     auth
// @Produce  json
// @Success  200 {object} UserResponse
// @Security BearerAuth
// @Router   /auth/me [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	id, ok := UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	u, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// UpdateProfile godoc
// @Summary  Update my profile
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body UpdateProfileRequest true "fields to update"
// @Success  200 {object} UserResponse
// @Security BearerAuth
// @Router   /auth/me [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	id, ok := UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// 自分のroleは変更できない
	u, err := h.svc.UpdateUser(c.Request.Context(), id, req.Username, nil, req.Password, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// ===== admin user management =====

// ListUsers godoc
// @Summary  List all users (admin)
// @Tags     users
// @Produce  json
// @Success  200 {array} UserResponse
// @Security BearerAuth
// @Router   /auth/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// CreateUser godoc
// @Summary  Create user (admin)
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body AdminCreateUserRequest true "user"
// @Success  201 {object} UserResponse
// @Security BearerAuth
// @Router   /auth/users [post]
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role := RoleMember
	if req.Role != nil && *req.Role != "" {
		role = *req.Role
	}

	u, err := h.svc.CreateUser(c.Request.Context(), req.Email, req.Username, req.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

// GetUser godoc
// @Summary  Get user details (admin)
// @Tags     users
// @Produce  json
// @Param    user_id path int true "user id"
// @Success  200 {object} UserResponse
// @Security BearerAuth
// @Router   /auth/users/{user_id} [get]
func (h *AuthHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	u, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// UpdateUser godoc
// @Summary  Update user (admin)
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    user_id path int true "user id"
// @Param    body body AdminUpdateUserRequest true "fields to update"
// @Success  200 {object} UserResponse
// @Security BearerAuth
// @Router   /auth/users/{user_id} [put]
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.svc.UpdateUser(c.Request.Context(), id, req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// DeleteUser godoc
// @Summary  Delete user (admin)
// @Tags     users
// @Produce  json
// @Param    user_id path int true "user id"
// @Success  200 {object} map[string]string
// @Security BearerAuth
// @Router   /auth/users/{user_id} [delete]
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, ErrHasActiveLoan):
			c.JSON(http.StatusConflict, gin.H{"error": "user has an active loan"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
