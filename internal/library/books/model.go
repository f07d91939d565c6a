package books

import (
	"database/sql"
	"time"
)

// Book は books テーブルの1行を表す
type Book struct {
	BookID        int64
	Title         string
	Author        string
	ISBN          string
	Description   sql.NullString
	Genre         sql.NullString
	PageCount     int
	PublishedDate sql.NullTime
	IsAvailable   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// 蔵書一覧取得用の検索条件
type BookFilter struct {
	Title     *string // 部分一致
	Author    *string // 部分一致
	Genre     *string
	Available *bool
}

type Page struct {
	Limit  int
	Offset int
	Order  string // "asc" or "desc"
}
