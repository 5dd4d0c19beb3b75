package store

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	dialectPostgres = "postgres"
	dialectMySQL    = "mysql"
	dialectSQLite   = "sqlite"
)

// ErrUnsupportedDatabaseURL is returned for URLs with an unknown scheme.
var ErrUnsupportedDatabaseURL = errors.New("unsupported database url")

// openDialector picks a gorm dialector from the database URL scheme.
// mysql:// URLs are rewritten into a go-sql-driver DSN.
func openDialector(databaseURL string) (gorm.Dialector, string, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	switch {
	case databaseURL == "":
		return nil, "", errors.New("database url required")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), dialectPostgres, nil
	case strings.HasPrefix(databaseURL, "mysql://"), strings.HasPrefix(databaseURL, "mysql2://"):
		dsn, err := mysqlDSN(databaseURL)
		if err != nil {
			return nil, "", err
		}
		return gormmysql.Open(dsn), dialectMySQL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://")), dialectSQLite, nil
	case strings.HasPrefix(databaseURL, "file:"), databaseURL == ":memory:":
		return sqlite.Open(databaseURL), dialectSQLite, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedDatabaseURL, redactURL(databaseURL))
	}
}

func mysqlDSN(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}
	cfg := mysql.NewConfig()
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if _, _, err := net.SplitHostPort(u.Host); err != nil {
		cfg.Addr = net.JoinHostPort(u.Host, "3306")
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if cfg.DBName == "" {
		return "", errors.New("mysql url requires a database name")
	}
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	for key, values := range u.Query() {
		if len(values) > 0 {
			cfg.Params[key] = values[len(values)-1]
		}
	}
	return cfg.FormatDSN(), nil
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
