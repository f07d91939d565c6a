package loans

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore は Store のインメモリ実装。
// 行ロックの代わりに蔵書ID・利用者IDごとのミューテックスで直列化する。
// テストとローカル動作確認用で、本番は SQLStore を使う。
type MemoryStore struct {
	mu sync.Mutex // guards all maps below

	bookLocks map[int64]*sync.Mutex
	userLocks map[int64]*sync.Mutex

	books map[int64]*memBook
	users map[int64]*memUser
	loans map[int64]*Loan

	nextBookID int64
	nextUserID int64
	nextLoanID int64
}

type memBook struct {
	title     string
	author    string
	available bool
}

type memUser struct {
	username string
	email    string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookLocks: make(map[int64]*sync.Mutex),
		userLocks: make(map[int64]*sync.Mutex),
		books:     make(map[int64]*memBook),
		users:     make(map[int64]*memUser),
		loans:     make(map[int64]*Loan),
	}
}

// ===== fixtures =====

func (s *MemoryStore) AddBook(title, author string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBookID++
	s.books[s.nextBookID] = &memBook{title: title, author: author, available: true}
	return s.nextBookID
}

func (s *MemoryStore) AddUser(username, email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	s.users[s.nextUserID] = &memUser{username: username, email: email}
	return s.nextUserID
}

func (s *MemoryStore) BookAvailable(bookID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[bookID]
	return ok && b.available
}

// ActiveLoanCount は蔵書単位の不変条件検証用
func (s *MemoryStore) ActiveLoanCount(bookID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.loans {
		if l.BookID == bookID && l.IsActive() {
			n++
		}
	}
	return n
}

// ===== Store =====

func (s *MemoryStore) Checkout(ctx context.Context, userID, bookID int64, loanULID string, now, due time.Time) (*LoanDetail, error) {
	// ロック順は常に 蔵書 → 利用者（Checkinと合わせてデッドロック回避）
	bm := s.keyLock(s.bookLocks, bookID)
	bm.Lock()
	defer bm.Unlock()
	um := s.keyLock(s.userLocks, userID)
	um.Lock()
	defer um.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[bookID]
	if !ok {
		return nil, ErrNotFound("book not found")
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound("user not found")
	}
	if !b.available {
		return nil, ErrConflict(ReasonUnavailable, "book is not available")
	}
	for _, l := range s.loans {
		if l.UserID != userID || !l.IsActive() {
			continue
		}
		if l.BookID == bookID {
			return nil, ErrConflict(ReasonDuplicate, "you already have this book")
		}
		return nil, ErrConflict(ReasonLimitReached, "you can only borrow 1 book at a time")
	}

	s.nextLoanID++
	loan := &Loan{
		LoanID:     s.nextLoanID,
		LoanULID:   loanULID,
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueDate:    due,
	}
	s.loans[loan.LoanID] = loan
	b.available = false

	return s.detailLocked(loan, u, b), nil
}

func (s *MemoryStore) Checkin(ctx context.Context, loanID int64, now time.Time) (*LoanDetail, error) {
	s.mu.Lock()
	l, ok := s.loans[loanID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound("loan not found")
	}
	bookID := l.BookID
	s.mu.Unlock()

	bm := s.keyLock(s.bookLocks, bookID)
	bm.Lock()
	defer bm.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	l = s.loans[loanID]
	if !l.IsActive() {
		return nil, ErrConflict(ReasonAlreadyReturned, "book already returned")
	}

	l.ReturnedAt.Time = now
	l.ReturnedAt.Valid = true
	b := s.books[l.BookID]
	b.available = true

	return s.detailLocked(l, s.users[l.UserID], b), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, loanID int64) (*LoanDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans[loanID]
	if !ok {
		return nil, ErrNotFound("loan not found")
	}
	return s.detailLocked(l, s.users[l.UserID], s.books[l.BookID]), nil
}

func (s *MemoryStore) List(ctx context.Context, f LoanFilter, now time.Time) ([]LoanDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []LoanDetail
	for _, l := range s.loans {
		if f.UserID != nil && l.UserID != *f.UserID {
			continue
		}
		if (f.ActiveOnly || f.OverdueOnly) && !l.IsActive() {
			continue
		}
		if f.OverdueOnly && !l.IsOverdue(now) {
			continue
		}
		out = append(out, *s.detailLocked(l, s.users[l.UserID], s.books[l.BookID]))
	}

	if f.OverdueOnly {
		sort.Slice(out, func(i, j int) bool { return out[i].DueDate.After(out[j].DueDate) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].BorrowedAt.After(out[j].BorrowedAt) })
	}
	return out, nil
}

// ===== helpers =====

// keyLock はキー別ミューテックスを返す。異なる蔵書への操作は互いにブロックしない
func (s *MemoryStore) keyLock(m map[int64]*sync.Mutex, key int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := m[key]
	if !ok {
		l = &sync.Mutex{}
		m[key] = l
	}
	return l
}

func (s *MemoryStore) detailLocked(l *Loan, u *memUser, b *memBook) *LoanDetail {
	d := &LoanDetail{Loan: *l}
	if u != nil {
		d.Username = u.username
		d.UserEmail = u.email
	}
	if b != nil {
		d.BookTitle = b.title
		d.BookAuthor = b.author
	}
	return d
}
