package sqlstore

import (
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"os"
	"strconv"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type dialect int

const (
	dialectMySQL dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "mysql"
}

func (d dialect) driverName() string {
	if d == dialectPostgres {
		return "pgx"
	}
	return "mysql"
}

// detectDialect picks the driver from the DSN. postgres:// and postgresql://
// URLs go to pgx; anything else is treated as a go-sql-driver/mysql DSN.
func detectDialect(dsn string) (dialect, string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return dialectPostgres, dsn
	default:
		return dialectMySQL, strings.TrimPrefix(dsn, "mysql://")
	}
}

// rebind rewrites ? placeholders to $1, $2, ... for postgres.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insertIgnore returns an insert statement that silently skips rows
// conflicting on conflictCol.
func (d dialect) insertIgnore(table, cols, conflictCol string, n int) string {
	ph := strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
	if d == dialectPostgres {
		return "INSERT INTO " + table + " (" + cols + ") VALUES (" + ph + ") ON CONFLICT (" + conflictCol + ") DO NOTHING"
	}
	return "INSERT IGNORE INTO " + table + " (" + cols + ") VALUES (" + ph + ")"
}

// prepareMySQLDSN forces parseTime and registers the "tidb" TLS profile when
// the DSN asks for it.
func prepareMySQLDSN(dsn string, log *slog.Logger) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	if cfg.TLSConfig == "tidb" {
		registerTiDBTLS(log)
	}
	return cfg.FormatDSN(), nil
}

func registerTiDBTLS(log *slog.Logger) {
	caPath := os.Getenv("TIDB_CA")
	if caPath == "" {
		caPath = "/etc/ssl/certs/ca-certificates.crt"
	}
	pool := x509.NewCertPool()
	b, err := os.ReadFile(caPath)
	if err != nil {
		log.Warn("could not read CA file, falling back to InsecureSkipVerify", slog.String("path", caPath), slog.Any("err", err))
		_ = mysql.RegisterTLSConfig("tidb", &tls.Config{InsecureSkipVerify: true})
		return
	}
	if !pool.AppendCertsFromPEM(b) {
		log.Warn("could not parse CA file, falling back to InsecureSkipVerify", slog.String("path", caPath))
		_ = mysql.RegisterTLSConfig("tidb", &tls.Config{InsecureSkipVerify: true})
		return
	}
	_ = mysql.RegisterTLSConfig("tidb", &tls.Config{RootCAs: pool})
}
