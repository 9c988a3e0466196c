// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open はデータベース接続を開く。
// driverは"sqlite3"（組み込みストア、デフォルト）または"postgres"を指定する。
// sqlx.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
func Open(driver, databaseURL string) (*sqlx.DB, error) {
	dsn := databaseURL
	if driver == "sqlite3" {
		dsn = sqliteDSN(databaseURL)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite3" {
		// 組み込みストアは単一ライターのため、プール内の競合を避ける。
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// sqliteDSN はファイルパスに接続パラメータを補う。
// 外部キー制約を有効化し、並行リクエスト時のロック待ちを設定する。
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_foreign_keys=on"
}
