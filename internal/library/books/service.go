package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ===== Error model (loans と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Service struct {
	store BookStore
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db)}
}

func NewServiceWithStore(store BookStore) *Service {
	return &Service{store: store}
}

// ジャンル表記ゆれ対策："data science" -> "Data Science"
var genreCaser = cases.Title(language.English)

func (s *Service) CreateBook(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	if req.Title == "" || req.Author == "" || req.ISBN == "" {
		return nil, ErrInvalid("title, author and isbn are required")
	}
	if req.PageCount < 0 {
		return nil, ErrInvalid("page_count must be >= 0")
	}

	b := &Book{
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
		PageCount: req.PageCount,
	}
	if req.Description != nil && *req.Description != "" {
		b.Description.String = *req.Description
		b.Description.Valid = true
	}
	if req.Genre != nil && *req.Genre != "" {
		b.Genre.String = genreCaser.String(*req.Genre)
		b.Genre.Valid = true
	}
	if req.PublishedDate != nil && *req.PublishedDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.PublishedDate)
		if err != nil {
			return nil, ErrInvalid("invalid published_date format, expected YYYY-MM-DD")
		}
		b.PublishedDate.Time = parsed
		b.PublishedDate.Valid = true
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.store.Insert(ctx, b); err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			return nil, ErrConflict("isbn already exists")
		}
		return nil, err
	}

	resp := buildBookResponse(b)
	return &resp, nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (*BookResponse, error) {
	if id <= 0 {
		return nil, ErrInvalid("book id must be > 0")
	}
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("book not found")
	}
	resp := buildBookResponse(b)
	return &resp, nil
}

func (s *Service) ListBooks(ctx context.Context, f BookFilter, p Page) (*BookListResponse, error) {
	if f.Genre != nil && *f.Genre != "" {
		normalized := genreCaser.String(*f.Genre)
		f.Genre = &normalized
	}

	items, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, err
	}

	out := make([]BookResponse, 0, len(items))
	for i := range items {
		out = append(out, buildBookResponse(&items[i]))
	}
	return &BookListResponse{Items: out, Total: total}, nil
}

func (s *Service) UpdateBook(ctx context.Context, id int64, req UpdateBookRequest) (*BookResponse, error) {
	if id <= 0 {
		return nil, ErrInvalid("book id must be > 0")
	}

	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("book not found")
	}

	if req.Title != nil && *req.Title != "" {
		b.Title = *req.Title
	}
	if req.Author != nil && *req.Author != "" {
		b.Author = *req.Author
	}
	if req.ISBN != nil && *req.ISBN != "" {
		b.ISBN = *req.ISBN
	}
	if req.Description != nil {
		b.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Genre != nil {
		if *req.Genre == "" {
			b.Genre = sql.NullString{}
		} else {
			b.Genre = sql.NullString{String: genreCaser.String(*req.Genre), Valid: true}
		}
	}
	if req.PageCount != nil {
		if *req.PageCount < 0 {
			return nil, ErrInvalid("page_count must be >= 0")
		}
		b.PageCount = *req.PageCount
	}
	if req.PublishedDate != nil && *req.PublishedDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.PublishedDate)
		if err != nil {
			return nil, ErrInvalid("invalid published_date format, expected YYYY-MM-DD")
		}
		b.PublishedDate = sql.NullTime{Time: parsed, Valid: true}
	}

	n, err := s.store.Update(ctx, b)
	if err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			return nil, ErrConflict("isbn already exists")
		}
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound("book not found")
	}
	b.UpdatedAt = time.Now().UTC()

	resp := buildBookResponse(b)
	return &resp, nil
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalid("book id must be > 0")
	}
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrHasActiveLoan) {
			return ErrConflict("book has an active loan")
		}
		return err
	}
	if n == 0 {
		return ErrNotFound("book not found")
	}
	return nil
}

func (s *Service) ListGenres(ctx context.Context) ([]string, error) {
	return s.store.Genres(ctx)
}
