package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"

	"LMS-backend/internal/platform/db"
)

var (
	// Delete対象に未返却の貸出が残っている
	ErrHasActiveLoan = errors.New("book has an active loan")
	// isbn の一意制約違反
	ErrDuplicateISBN = errors.New("isbn already exists")
)

type BookStore interface {
	Insert(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id int64) (*Book, error)
	List(ctx context.Context, f BookFilter, p Page) ([]Book, int64, error)
	Update(ctx context.Context, b *Book) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Genres(ctx context.Context) ([]string, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) BookStore { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, b *Book) error {
	const q = `
	INSERT INTO books
	(title, author, isbn, description, genre, page_count, published_date, is_available, created_at, updated_at)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, 1, NOW(6), NOW(6))`

	res, err := s.db.ExecContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.Description, b.Genre, b.PageCount, b.PublishedDate,
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateISBN
		}
		return err
	}
	id, _ := res.LastInsertId()
	b.BookID = id
	b.IsAvailable = true
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Book, error) {
	const q = `
	SELECT book_id, title, author, isbn, description, genre, page_count, published_date, is_available, created_at, updated_at
	FROM books WHERE book_id = ?`

	var b Book
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&b.BookID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.Genre,
		&b.PageCount, &b.PublishedDate, &b.IsAvailable, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) List(ctx context.Context, f BookFilter, p Page) ([]Book, int64, error) {
	where, args := buildWhere(f)

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	q := fmt.Sprintf(`
	SELECT book_id, title, author, isbn, description, genre, page_count, published_date, is_available, created_at, updated_at
	FROM books
	%s
	ORDER BY created_at %s
	LIMIT ? OFFSET ?`, where, order)

	var out []Book
	var total int64

	// 一覧と件数を同じスナップショットで読む
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		rows, err := tx.QueryContext(ctx, q, append(args, p.Limit, p.Offset)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var b Book
			if err := rows.Scan(
				&b.BookID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.Genre,
				&b.PageCount, &b.PublishedDate, &b.IsAvailable, &b.CreatedAt, &b.UpdatedAt,
			); err != nil {
				return err
			}
			out = append(out, b)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		cq := fmt.Sprintf(`SELECT COUNT(*) FROM books %s`, where)
		return tx.QueryRowContext(ctx, cq, args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Update(ctx context.Context, b *Book) (int64, error) {
	const q = `
	UPDATE books
	SET title = ?, author = ?, isbn = ?, description = ?, genre = ?, page_count = ?, published_date = ?, updated_at = NOW(6)
	WHERE book_id = ?`

	res, err := s.db.ExecContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.Description, b.Genre, b.PageCount, b.PublishedDate, b.BookID,
	)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicateISBN
		}
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Delete は未返却の貸出が残っている蔵書を消さない。
// 返却済みの貸出履歴は fk_loans_book の CASCADE で蔵書と一緒に消える。
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 蔵書行をロックして並行チェックアウトと直列化する
	var bookID int64
	err = tx.QueryRowContext(ctx,
		`SELECT book_id FROM books WHERE book_id = ? FOR UPDATE`, id,
	).Scan(&bookID)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		_ = tx.Rollback()
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var active int
	const checkQ = `SELECT COUNT(*) FROM loans WHERE book_id = ? AND returned_at IS NULL`
	if err = tx.QueryRowContext(ctx, checkQ, id).Scan(&active); err != nil {
		return 0, err
	}
	if active > 0 {
		err = ErrHasActiveLoan
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE book_id = ?`, id)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) Genres(ctx context.Context) ([]string, error) {
	const q = `
	SELECT DISTINCT genre
	FROM books
	WHERE genre IS NOT NULL AND genre <> ''
	ORDER BY genre`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]string, 0, 16)
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// ===== helpers =====

func buildWhere(f BookFilter) (string, []any) {
	sb := strings.Builder{}
	sb.WriteString(`WHERE 1=1`)
	args := []any{}
	if f.Title != nil && *f.Title != "" {
		sb.WriteString(` AND title LIKE ?`)
		args = append(args, "%"+*f.Title+"%")
	}
	if f.Author != nil && *f.Author != "" {
		sb.WriteString(` AND author LIKE ?`)
		args = append(args, "%"+*f.Author+"%")
	}
	if f.Genre != nil && *f.Genre != "" {
		sb.WriteString(` AND genre = ?`)
		args = append(args, *f.Genre)
	}
	if f.Available != nil {
		sb.WriteString(` AND is_available = ?`)
		args = append(args, *f.Available)
	}
	return sb.String(), args
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
