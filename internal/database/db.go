package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the ticket table and the issued-barcode ledger if
// they do not exist.  Ids are assigned by the allocator, not
// AUTO_INCREMENT, so the column is a plain primary key.  Barcodes carry
// unique indexes in both tables; ticket deletion removes the transaction
// row but never the ledger entry, so a barcode is never reissued.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const tickets = `CREATE TABLE IF NOT EXISTS transaction (
		id          BIGINT UNSIGNED NOT NULL,
		date        VARCHAR(16)  NOT NULL,
		name        VARCHAR(191) NOT NULL,
		room        VARCHAR(64)  NOT NULL,
		movie       VARCHAR(191) NOT NULL,
		sits        TEXT         NOT NULL,
		amount      INT UNSIGNED NOT NULL,
		barcode     VARCHAR(32)  NOT NULL,
		status      VARCHAR(16)  NOT NULL DEFAULT 'confirmed',
		void_reason VARCHAR(191) NOT NULL DEFAULT '',
		scans_used  INT          NOT NULL DEFAULT 0,
		created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_transaction_barcode (barcode)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	if _, err := db.ExecContext(ctx, tickets); err != nil {
		return err
	}
	const ledger = `CREATE TABLE IF NOT EXISTS issued_barcode (
		barcode   VARCHAR(32) NOT NULL,
		issued_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_issued_barcode (barcode)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	_, err := db.ExecContext(ctx, ledger)
	return err
}
