// Package db provides the GORM database connector for the material
// registry server. It supports PostgreSQL and MySQL for deployments and
// SQLite for local development.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database types.
const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// Connect opens a GORM connection for the given database type and DSN.
// For sqlite, the DSN is a file path (or ":memory:").
func Connect(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbType {
	case TypePostgres:
		dialector = postgres.Open(dsn)
	case TypeMySQL:
		dialector = mysql.Open(dsn)
	case TypeSQLite:
		if dsn == "" {
			dsn = "material-registry.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", dbType, err)
	}
	return db, nil
}
