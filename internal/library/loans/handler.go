package loans

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"LMS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r *gin.RouterGroup, svc *Service, secret []byte) {
	h := &Handler{svc: svc}

	// role チェックはミドルウェアではなく Service 側で行う
	g := r.Group("/loans", auth.RequireAuth(secret))
	g.POST("/checkout", h.Checkout)
	g.POST("/:loan_id/checkin", h.Checkin)
	g.GET("", h.ListLoans)
	g.GET("/current", h.CurrentLoans)
	g.GET("/history", h.History)
	g.GET("/overdue", h.OverdueLoans)
	g.GET("/all", h.AllLoans)
	g.GET("/:loan_id", h.GetLoan)
}

func actorFrom(c *gin.Context) Actor {
	id, _ := auth.UserID(c)
	return Actor{UserID: id, Role: auth.Role(c)}
}

// Checkout godoc
// @Summary  Borrow a book
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    body body CheckoutRequest true "book to borrow"
// @Success  201 {object} LoanResponse
// @Failure  404 {object} errorDTO
// @Failure  409 {object} errorDTO
// @Security BearerAuth
// @Router   /loans/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json or missing book_id"))
		return
	}

	res, err := h.svc.Checkout(c.Request.Context(), actorFrom(c), req.BookID)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}

	c.Header("Location", "/loans/"+strconv.FormatInt(res.ID, 10))
	c.JSON(http.StatusCreated, res)
}

// Checkin godoc
// @Summary  Return a borrowed book (admin)
// @Tags     loans
// @Produce  json
// @Param    loan_id path int true "loan id"
// @Success  200 {object} LoanResponse
// @Failure  403 {object} errorDTO
// @Failure  404 {object} errorDTO
// @Failure  409 {object} errorDTO
// @Security BearerAuth
// @Router   /loans/{loan_id}/checkin [post]
func (h *Handler) Checkin(c *gin.Context) {
	loanID := atoi64(c.Param("loan_id"))

	res, err := h.svc.Checkin(c.Request.Context(), actorFrom(c), loanID)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListLoans godoc
// @Summary  List loans (admins see all, members see own)
// @Tags     loans
// @Produce  json
// @Success  200 {array} LoanResponse
// @Security BearerAuth
// @Router   /loans [get]
func (h *Handler) ListLoans(c *gin.Context) {
	res, err := h.svc.ListLoans(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// CurrentLoans godoc
// @Summary  List active loans
// @Tags     loans
// @Produce  json
// @Success  200 {array} LoanResponse
// @Security BearerAuth
// @Router   /loans/current [get]
func (h *Handler) CurrentLoans(c *gin.Context) {
	res, err := h.svc.CurrentLoans(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// History godoc
// @Summary  My loan history including returned
// @Tags     loans
// @Produce  json
// @Success  200 {array} LoanResponse
// @Security BearerAuth
// @Router   /loans/history [get]
func (h *Handler) History(c *gin.Context) {
	res, err := h.svc.History(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// OverdueLoans godoc
// @Summary  List overdue loans (admin)
// @Tags     loans
// @Produce  json
// @Success  200 {array} LoanResponse
// @Failure  403 {object} errorDTO
// @Security BearerAuth
// @Router   /loans/overdue [get]
func (h *Handler) OverdueLoans(c *gin.Context) {
	res, err := h.svc.OverdueLoans(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// AllLoans godoc
// @Summary  List all loans (admin)
// @Tags     loans
// @Produce  json
// @Success  200 {array} LoanResponse
// @Failure  403 {object} errorDTO
// @Security BearerAuth
// @Router   /loans/all [get]
func (h *Handler) AllLoans(c *gin.Context) {
	res, err := h.svc.AllLoans(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetLoan godoc
// @Summary  Get loan details
// @Tags     loans
// @Produce  json
// @Param    loan_id path int true "loan id"
// @Success  200 {object} LoanResponse
// @Failure  404 {object} errorDTO
// @Security BearerAuth
// @Router   /loans/{loan_id} [get]
func (h *Handler) GetLoan(c *gin.Context) {
	loanID := atoi64(c.Param("loan_id"))

	res, err := h.svc.GetLoan(c.Request.Context(), actorFrom(c), loanID)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
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

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Reason  string `json:"reason,omitempty"`
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
	var e errorDTO
	if api, ok := err.(*APIError); ok {
		e.Error.Code = api.Code
		e.Error.Reason = api.Reason
		e.Error.Message = api.Message
		return e
	}
	// DBドライバ等の生メッセージは外に出さない
	e.Error.Code = CodeInternal
	e.Error.Message = "internal error"
	return e
}
