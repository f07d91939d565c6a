package loans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"LMS-backend/internal/platform/db"
)

// Store は貸出台帳への唯一の書き込み経路。
// books.is_available と loans.returned_at をここ以外で変更してはならない。
type Store interface {
	Checkout(ctx context.Context, userID, bookID int64, loanULID string, now, due time.Time) (*LoanDetail, error)
	Checkin(ctx context.Context, loanID int64, now time.Time) (*LoanDetail, error)
	GetByID(ctx context.Context, loanID int64) (*LoanDetail, error)
	List(ctx context.Context, f LoanFilter, now time.Time) ([]LoanDetail, error)
}

type SQLStore struct{ db *sql.DB }

func NewStore(sqlDB *sql.DB) Store { return &SQLStore{db: sqlDB} }

// Checkout は1トランザクションで貸出を確定する。
// 対象の蔵書行と利用者行を FOR UPDATE でロックしてから前提条件を評価するので、
// 同じ蔵書（または同じ利用者）への並行チェックアウトは直列化される。
// 貸出上限は uq_loans_active_user 制約でもコミット時に守られる。
func (s *SQLStore) Checkout(ctx context.Context, userID, bookID int64, loanULID string, now, due time.Time) (*LoanDetail, error) {
	var out *LoanDetail

	err := db.RunInTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx db.DBTX) error {
		// 1. 蔵書行ロック
		var available bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_available FROM books WHERE book_id = ? FOR UPDATE`, bookID,
		).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("book not found")
		}
		if err != nil {
			return err
		}

		// 2. 利用者行ロック（利用者単位の上限チェックを直列化するゲート）
		var uid int64
		err = tx.QueryRowContext(ctx,
			`SELECT user_id FROM users WHERE user_id = ? FOR UPDATE`, userID,
		).Scan(&uid)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("user not found")
		}
		if err != nil {
			return err
		}

		// 3. 在架チェック
		if !available {
			return ErrConflict(ReasonUnavailable, "book is not available")
		}

		// 4. 同一蔵書の二重借り（上限チェックに包含されるが、より具体的なエラーを先に返す）
		var dup int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM loans WHERE user_id = ? AND book_id = ? AND returned_at IS NULL`,
			userID, bookID,
		).Scan(&dup)
		if err != nil {
			return err
		}
		if dup > 0 {
			return ErrConflict(ReasonDuplicate, "you already have this book")
		}

		// 5. 貸出上限（同時1冊）
		var active int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM loans WHERE user_id = ? AND returned_at IS NULL`, userID,
		).Scan(&active)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrConflict(ReasonLimitReached, "you can only borrow 1 book at a time")
		}

		// 6. 貸出行作成 + 在架フラグ更新（同一Txでコミット）
		res, err := tx.ExecContext(ctx, `
	INSERT INTO loans (loan_ulid, user_id, book_id, borrowed_at, due_date, returned_at)
	VALUES (?, ?, ?, ?, ?, NULL)`,
			loanULID, userID, bookID, now, due,
		)
		if err != nil {
			if isDuplicate(err) {
				// uq_loans_active_user / uq_loans_active_book に弾かれた
				return ErrConflict(ReasonLimitReached, "you can only borrow 1 book at a time")
			}
			return err
		}
		loanID, _ := res.LastInsertId()

		if _, err = tx.ExecContext(ctx,
			`UPDATE books SET is_available = 0, updated_at = NOW(6) WHERE book_id = ?`, bookID,
		); err != nil {
			return err
		}

		out, err = getDetailTx(ctx, tx, loanID)
		return err
	})
	if err != nil {
		return nil, mapLockErr(err)
	}
	return out, nil
}

// Checkin は貸出行を FOR UPDATE でロックして返却を確定する。
// 並行する返却は2件目が returned_at セット済みを観測して CONFLICT になる。
func (s *SQLStore) Checkin(ctx context.Context, loanID int64, now time.Time) (*LoanDetail, error) {
	var out *LoanDetail

	err := db.RunInTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx db.DBTX) error {
		var l Loan
		err := tx.QueryRowContext(ctx, `
	SELECT loan_id, loan_ulid, user_id, book_id, borrowed_at, due_date, returned_at
	FROM loans WHERE loan_id = ? FOR UPDATE`, loanID,
		).Scan(&l.LoanID, &l.LoanULID, &l.UserID, &l.BookID, &l.BorrowedAt, &l.DueDate, &l.ReturnedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("loan not found")
		}
		if err != nil {
			return err
		}

		if l.ReturnedAt.Valid {
			return ErrConflict(ReasonAlreadyReturned, "book already returned")
		}

		if _, err = tx.ExecContext(ctx,
			`UPDATE loans SET returned_at = ? WHERE loan_id = ?`, now, l.LoanID,
		); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE books SET is_available = 1, updated_at = NOW(6) WHERE book_id = ?`, l.BookID,
		); err != nil {
			return err
		}

		out, err = getDetailTx(ctx, tx, l.LoanID)
		return err
	})
	if err != nil {
		return nil, mapLockErr(err)
	}
	return out, nil
}

// ===== Queries =====

const detailColumns = `
	l.loan_id, l.loan_ulid, l.user_id, l.book_id, l.borrowed_at, l.due_date, l.returned_at,
	u.username, u.email,
	b.title, b.author`

const detailFrom = `
	FROM loans l
	JOIN users u ON u.user_id = l.user_id
	JOIN books b ON b.book_id = l.book_id`

func (s *SQLStore) GetByID(ctx context.Context, loanID int64) (*LoanDetail, error) {
	q := `SELECT` + detailColumns + detailFrom + ` WHERE l.loan_id = ?`

	var d LoanDetail
	err := s.db.QueryRowContext(ctx, q, loanID).Scan(
		&d.LoanID, &d.LoanULID, &d.UserID, &d.BookID, &d.BorrowedAt, &d.DueDate, &d.ReturnedAt,
		&d.Username, &d.UserEmail, &d.BookTitle, &d.BookAuthor,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("loan not found")
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *SQLStore) List(ctx context.Context, f LoanFilter, now time.Time) ([]LoanDetail, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT`)
	sb.WriteString(detailColumns)
	sb.WriteString(detailFrom)
	sb.WriteString(` WHERE 1=1`)

	args := []any{}
	if f.UserID != nil {
		sb.WriteString(` AND l.user_id = ?`)
		args = append(args, *f.UserID)
	}
	if f.ActiveOnly || f.OverdueOnly {
		sb.WriteString(` AND l.returned_at IS NULL`)
	}
	if f.OverdueOnly {
		sb.WriteString(` AND l.due_date < ?`)
		args = append(args, now)
	}

	// 延滞一覧は期限順、それ以外は貸出日時の新しい順
	if f.OverdueOnly {
		sb.WriteString(` ORDER BY l.due_date DESC`)
	} else {
		sb.WriteString(` ORDER BY l.borrowed_at DESC`)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoanDetail
	for rows.Next() {
		var d LoanDetail
		if err := rows.Scan(
			&d.LoanID, &d.LoanULID, &d.UserID, &d.BookID, &d.BorrowedAt, &d.DueDate, &d.ReturnedAt,
			&d.Username, &d.UserEmail, &d.BookTitle, &d.BookAuthor,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ===== helpers =====

func getDetailTx(ctx context.Context, tx db.DBTX, loanID int64) (*LoanDetail, error) {
	q := `SELECT` + detailColumns + detailFrom + ` WHERE l.loan_id = ?`

	var d LoanDetail
	err := tx.QueryRowContext(ctx, q, loanID).Scan(
		&d.LoanID, &d.LoanULID, &d.UserID, &d.BookID, &d.BorrowedAt, &d.DueDate, &d.ReturnedAt,
		&d.Username, &d.UserEmail, &d.BookTitle, &d.BookAuthor,
	)
	if err != nil {
		return nil, fmt.Errorf("load loan detail: %w", err)
	}
	return &d, nil
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}

// 1205: lock wait timeout, 1213: deadlock。どちらもリトライで解消しうる
func mapLockErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1205:
			return ErrRetryable("lock wait timeout, retry the request")
		case 1213:
			return ErrRetryable("deadlock detected, retry the request")
		}
	}
	return err
}
