package books

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"LMS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r *gin.RouterGroup, svc *Service, secret []byte) {
	h := &Handler{svc: svc}

	// 閲覧は認証ユーザーなら誰でも
	g := r.Group("/books", auth.RequireAuth(secret))
	g.GET("", h.ListBooks)
	g.GET("/genres", h.ListGenres)
	g.GET("/:book_id", h.GetBook)

	// 編集は管理者のみ
	admin := g.Group("", auth.RequireRole(auth.RoleAdministrator))
	admin.POST("", h.CreateBook)
	admin.PUT("/:book_id", h.UpdateBook)
	admin.DELETE("/:book_id", h.DeleteBook)
}

// CreateBook godoc
// @Summary  Add book to catalog (admin)
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    body body CreateBookRequest true "book"
// @Success  201 {object} BookResponse
// @Security BearerAuth
// @Router   /books [post]
func (h *Handler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.CreateBook(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/books/"+strconv.FormatInt(res.BookID, 10))
	c.JSON(http.StatusCreated, res)
}

// GetBook godoc
// @Summary  Get book details
// @Tags     books
// @Produce  json
// @Param    book_id path int true "book id"
// @Success  200 {object} BookResponse
// @Security BearerAuth
// @Router   /books/{book_id} [get]
func (h *Handler) GetBook(c *gin.Context) {
	id := atoi64(c.Param("book_id"))
	res, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListBooks godoc
// @Summary  List and search books
// @Tags     books
// @Produce  json
// @Param    title query string false "title substring"
// @Param    author query string false "author substring"
// @Param    genre query string false "genre"
// @Param    available query bool false "only available books"
// @Success  200 {object} BookListResponse
// @Security BearerAuth
// @Router   /books [get]
func (h *Handler) ListBooks(c *gin.Context) {
	var f BookFilter
	if v := c.Query("title"); v != "" {
		f.Title = &v
	}
	if v := c.Query("author"); v != "" {
		f.Author = &v
	}
	if v := c.Query("genre"); v != "" {
		f.Genre = &v
	}
	if v := c.Query("available"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Available = &b
		}
	}
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  strings.ToLower(c.DefaultQuery("order", "desc")),
	}

	res, err := h.svc.ListBooks(c.Request.Context(), f, p)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateBook godoc
// @Summary  Update book (admin)
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    book_id path int true "book id"
// @Param    body body UpdateBookRequest true "fields to update"
// @Success  200 {object} BookResponse
// @Security BearerAuth
// @Router   /books/{book_id} [put]
func (h *Handler) UpdateBook(c *gin.Context) {
	id := atoi64(c.Param("book_id"))

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}

	res, err := h.svc.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteBook godoc
// @Summary  Remove book from catalog (admin)
// @Tags     books
// @Produce  json
// @Param    book_id path int true "book id"
// @Success  200 {object} map[string]string
// @Security BearerAuth
// @Router   /books/{book_id} [delete]
func (h *Handler) DeleteBook(c *gin.Context) {
	id := atoi64(c.Param("book_id"))
	if err := h.svc.DeleteBook(c.Request.Context(), id); err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ListGenres godoc
// @Summary  List distinct genres
// @Tags     books
// @Produce  json
// @Success  200 {array} string
// @Security BearerAuth
// @Router   /books/genres [get]
func (h *Handler) ListGenres(c *gin.Context) {
	res, err := h.svc.ListGenres(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===== helpers =====

func atoi64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiErr(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func apiErrFrom(err error) errorDTO {
	if api, ok := err.(*APIError); ok {
		return apiErr(api.Code, api.Message)
	}
	// DBドライバ等の生メッセージは外に出さない
	return apiErr(CodeInternal, "internal error")
}
