package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophprofile/internal/dbx"
	"github.com/dmitrijs2005/gophprofile/internal/server/migrations"
	"github.com/dmitrijs2005/gophprofile/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/gophprofile/internal/server/repositories/users"
	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
)

// MySQLRepositoryManager vends MySQL-backed repositories.
type MySQLRepositoryManager struct{}

func NewMySQLRepositoryManager() *MySQLRepositoryManager {
	return &MySQLRepositoryManager{}
}

func (m *MySQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewMySQLRepository(db)
}

func (m *MySQLRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewMySQLRepository(db)
}

func (m *MySQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.MySQLDir)
}

// NormalizeMySQLDSN forces the driver options the MySQL repositories
// depend on: parseTime for DATE/DATETIME scanning, UTC location and
// clientFoundRows for UPDATE row counts.
func NormalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}
