package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var (
	mu     sync.Mutex
	opened *sql.DB
)

// Open connects to MySQL and verifies the connection.  Opening is
// process-lifetime state: the first successful call wins and later
// calls return the same handle, so accidental re-initialization
// cannot leak a second pool.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	mu.Lock()
	defer mu.Unlock()
	if opened != nil {
		return opened, nil
	}

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
		_ = db.Close()
		return nil, err
	}
	opened = db
	return db, nil
}

// Close tears down the shared handle.  Intended for shutdown paths
// and tests; Open may be called again afterwards.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if opened == nil {
		return errors.New("database not open")
	}
	err := opened.Close()
	opened = nil
	return err
}
