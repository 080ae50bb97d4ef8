package main

import (
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ParseDatabaseDriver gets the gorm driver for the database string.
// Supported forms are "mysql://<dsn>" and "sqlite://<path>".
func ParseDatabaseDriver(dbURL string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dbURL, "mysql://"):
		return mysql.Open(strings.TrimPrefix(dbURL, "mysql://"))
	case strings.HasPrefix(dbURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dbURL, "sqlite://"))
	default:
		return nil
	}
}
