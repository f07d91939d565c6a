package loans

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"LMS-backend/internal/platform/auth"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface {
	NewULID(t time.Time) string
}

type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Actor は呼び出し元の身元。権限判定は必ずここを入力にとって行う
// （フレームワーク側のインターセプトに頼らない）。
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdministrator() bool {
	return a.Role == auth.RoleAdministrator
}

// ===== Service本体 =====

type Service struct {
	store      Store
	clock      Clock
	id         IDGen
	loanPeriod time.Duration
}

func NewService(db *sql.DB, loanPeriodDays int) *Service {
	return NewServiceWith(NewStore(db), realClock{}, ulidGen{}, loanPeriodDays)
}

// NewServiceWith はストア・時計・ID生成を差し替える（テスト用）
func NewServiceWith(store Store, clock Clock, id IDGen, loanPeriodDays int) *Service {
	if loanPeriodDays <= 0 {
		loanPeriodDays = 14
	}
	return &Service{
		store:      store,
		clock:      clock,
		id:         id,
		loanPeriod: time.Duration(loanPeriodDays) * 24 * time.Hour,
	}
}

// Checkout は蔵書を借り出して新しい貸出を作る
func (s *Service) Checkout(ctx context.Context, actor Actor, bookID int64) (*LoanResponse, error) {
	if bookID <= 0 {
		return nil, ErrInvalid("book_id must be > 0")
	}

	now := s.clock.Now()
	d, err := s.store.Checkout(ctx, actor.UserID, bookID, s.id.NewULID(now), now, now.Add(s.loanPeriod))
	if err != nil {
		return nil, err
	}

	resp := buildLoanResponse(d, now)
	return &resp, nil
}

// Checkin は返却処理。管理者のみ
func (s *Service) Checkin(ctx context.Context, actor Actor, loanID int64) (*LoanResponse, error) {
	if !actor.IsAdministrator() {
		return nil, ErrForbidden("administrator role required")
	}
	if loanID <= 0 {
		return nil, ErrInvalid("loan_id must be > 0")
	}

	now := s.clock.Now()
	d, err := s.store.Checkin(ctx, loanID, now)
	if err != nil {
		return nil, err
	}

	resp := buildLoanResponse(d, now)
	return &resp, nil
}

// GetLoan は1件取得。memberは自分の貸出以外は存在ごと隠す
func (s *Service) GetLoan(ctx context.Context, actor Actor, loanID int64) (*LoanResponse, error) {
	if loanID <= 0 {
		return nil, ErrInvalid("loan_id must be > 0")
	}

	d, err := s.store.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrator() && d.UserID != actor.UserID {
		return nil, ErrNotFound("loan not found")
	}

	resp := buildLoanResponse(d, s.clock.Now())
	return &resp, nil
}

// ListLoans: 管理者は全件、memberは自分の分だけ
func (s *Service) ListLoans(ctx context.Context, actor Actor) ([]LoanResponse, error) {
	f := LoanFilter{}
	if !actor.IsAdministrator() {
		f.UserID = &actor.UserID
	}
	return s.list(ctx, f)
}

// CurrentLoans: 未返却のみ（roleでの絞り込みはListLoansと同じ）
func (s *Service) CurrentLoans(ctx context.Context, actor Actor) ([]LoanResponse, error) {
	f := LoanFilter{ActiveOnly: true}
	if !actor.IsAdministrator() {
		f.UserID = &actor.UserID
	}
	return s.list(ctx, f)
}

// History: 返却済みを含む自分の貸出履歴
func (s *Service) History(ctx context.Context, actor Actor) ([]LoanResponse, error) {
	return s.list(ctx, LoanFilter{UserID: &actor.UserID})
}

// OverdueLoans: 延滞中の貸出。管理者のみ
func (s *Service) OverdueLoans(ctx context.Context, actor Actor) ([]LoanResponse, error) {
	if !actor.IsAdministrator() {
		return nil, ErrForbidden("administrator role required")
	}
	return s.list(ctx, LoanFilter{OverdueOnly: true})
}

// AllLoans: 全貸出。管理者のみ
func (s *Service) AllLoans(ctx context.Context, actor Actor) ([]LoanResponse, error) {
	if !actor.IsAdministrator() {
		return nil, ErrForbidden("administrator role required")
	}
	return s.list(ctx, LoanFilter{})
}

func (s *Service) list(ctx context.Context, f LoanFilter) ([]LoanResponse, error) {
	now := s.clock.Now()
	items, err := s.store.List(ctx, f, now)
	if err != nil {
		return nil, err
	}

	out := make([]LoanResponse, 0, len(items))
	for i := range items {
		out = append(out, buildLoanResponse(&items[i], now))
	}
	return out, nil
}
