package dsn

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// defaultPort is the MySQL default TCP port, used when the DSN and the
// environment leave the port unset.
const defaultPort = 3306

// Connect parses the DSN and opens a connection to the remote server.
// The connection is verified with a ping before it is returned; callers own
// the returned handle and must Close it.
//
// When the target host is empty or "localhost" and the connection fails, one
// retry against the loopback address 127.0.0.1 is attempted. There is no
// other retry or timeout beyond what ctx imposes.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	params, err := Parse(dsn)
	if err != nil {
		return nil, err
	}
	db, err := open(ctx, params, params.Host)
	if err == nil {
		return db, nil
	}
	if params.Host == "" || params.Host == "localhost" {
		if db, retryErr := open(ctx, params, "127.0.0.1"); retryErr == nil {
			return db, nil
		}
	}
	return nil, fmt.Errorf("failed to connect to MySQL database with parameters %q: %w", dsn, err)
}

// open builds the driver configuration for the given host and verifies the
// connection with a ping.
func open(ctx context.Context, params Parameters, host string) (*sqlx.DB, error) {
	cfg := driverConfig(params, host)
	db, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// driverConfig translates Parameters into a go-sql-driver configuration.
func driverConfig(params Parameters, host string) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.DBName = params.Database
	if params.Socket != "" {
		cfg.Net = "unix"
		cfg.Addr = params.Socket
	} else {
		cfg.Net = "tcp"
		if host == "" {
			host = "localhost"
		}
		port := params.Port
		if port == 0 {
			port = defaultPort
		}
		cfg.Addr = host + ":" + strconv.FormatUint(uint64(port), 10)
	}
	cfg.MultiStatements = params.Flags&FlagMultiStatements != 0
	cfg.ParseTime = true
	if params.Workload != "" {
		cfg.ConnectionAttributes = "workload:" + params.Workload
	}
	return cfg
}
