package loans

import "time"

// 貸出リクエスト
type CheckoutRequest struct {
	BookID int64 `json:"book_id" binding:"required"`
}

// ===== Responses =====

type LoanUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoanBook struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// 貸出スナップショット。is_active / is_overdue は読み出し時に導出する
type LoanResponse struct {
	ID         int64      `json:"id"`
	ULID       string     `json:"ulid"`
	User       LoanUser   `json:"user"`
	Book       LoanBook   `json:"book"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at"`
	IsActive   bool       `json:"is_active"`
	IsOverdue  bool       `json:"is_overdue"`
}

func buildLoanResponse(d *LoanDetail, now time.Time) LoanResponse {
	resp := LoanResponse{
		ID:   d.LoanID,
		ULID: d.LoanULID,
		User: LoanUser{
			ID:       d.UserID,
			Username: d.Username,
			Email:    d.UserEmail,
		},
		Book: LoanBook{
			ID:     d.BookID,
			Title:  d.BookTitle,
			Author: d.BookAuthor,
		},
		BorrowedAt: d.BorrowedAt,
		DueDate:    d.DueDate,
		IsActive:   d.IsActive(),
		IsOverdue:  d.IsOverdue(now),
	}
	if d.ReturnedAt.Valid {
		val := d.ReturnedAt.Time
		resp.ReturnedAt = &val
	}
	return resp
}
