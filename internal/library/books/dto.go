package books

import "time"

// ===== Requests =====

type CreateBookRequest struct {
	Title       string  `json:"title" binding:"required"`
	Author      string  `json:"author" binding:"required"`
	ISBN        string  `json:"isbn" binding:"required"`
	Description *string `json:"description,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	PageCount   int     `json:"page_count"`
	// "2006-01-02" 形式の文字列を想定（DATE）
	PublishedDate *string `json:"published_date,omitempty"`
}

type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty"`
	Author        *string `json:"author,omitempty"`
	ISBN          *string `json:"isbn,omitempty"`
	Description   *string `json:"description,omitempty"`
	Genre         *string `json:"genre,omitempty"`
	PageCount     *int    `json:"page_count,omitempty"`
	PublishedDate *string `json:"published_date,omitempty"`
}

// ===== Responses =====

type BookResponse struct {
	BookID        int64      `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	ISBN          string     `json:"isbn"`
	Description   *string    `json:"description,omitempty"`
	Genre         *string    `json:"genre,omitempty"`
	PageCount     int        `json:"page_count"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	IsAvailable   bool       `json:"is_available"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type BookListResponse struct {
	Items []BookResponse `json:"items"`
	Total int64          `json:"total"`
}

func buildBookResponse(b *Book) BookResponse {
	resp := BookResponse{
		BookID:      b.BookID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		PageCount:   b.PageCount,
		IsAvailable: b.IsAvailable,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Description.Valid {
		val := b.Description.String
		resp.Description = &val
	}
	if b.Genre.Valid {
		val := b.Genre.String
		resp.Genre = &val
	}
	if b.PublishedDate.Valid {
		val := b.PublishedDate.Time
		resp.PublishedDate = &val
	}
	return resp
}
