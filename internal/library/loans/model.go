package loans

import (
	"database/sql"
	"time"
)

// Loan は loans テーブルの1行を表す。
// returned_at は一度セットしたら二度と変更しない（append-only遷移）。
type Loan struct {
	LoanID     int64
	LoanULID   string
	UserID     int64
	BookID     int64
	BorrowedAt time.Time
	DueDate    time.Time
	ReturnedAt sql.NullTime
}

func (l *Loan) IsActive() bool {
	return !l.ReturnedAt.Valid
}

func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && l.DueDate.Before(now)
}

// LoanDetail は一覧・応答用に利用者と蔵書を結合した行
type LoanDetail struct {
	Loan
	Username   string
	UserEmail  string
	BookTitle  string
	BookAuthor string
}

// 貸出一覧取得用の検索条件
type LoanFilter struct {
	UserID      *int64
	ActiveOnly  bool
	OverdueOnly bool
}
