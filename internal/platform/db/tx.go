package db

import (
	"context"
	"database/sql"
)

// DBTX は *sql.DB と *sql.Tx の共通部分。
// ストア層は常にこれ越しにクエリを発行し、Tx内外で同じコードを使い回す。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RunInTx はTxを開始して fn を実行する。fn が nil を返せば COMMIT、
// エラーなら ROLLBACK して同じエラーを返す。
// 貸出確定のように複数行を同時に更新する処理は必ずこれで包むこと。
func RunInTx(ctx context.Context, conn *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ReadOnly は読み取り専用Tx。複数クエリを同じスナップショットで読むときに使う
func ReadOnly(ctx context.Context, conn *sql.DB, fn func(ctx context.Context, tx DBTX) error) error {
	return RunInTx(ctx, conn, &sql.TxOptions{ReadOnly: true}, fn)
}
