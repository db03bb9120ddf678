// Package dsn parses MySQL connection strings and establishes connections.
//
// A DSN is a space-separated list of key=value pairs:
//
//	host=localhost user=root passwd="secret pass" db=mydb port=3306
//
// Values may be double-quoted; inside quotes, backslash escapes a backslash
// or a double quote. Any field not set explicitly is filled from its
// environment variable (MYSQL_HOST, MYSQL_USER, MYSQL_PWD, MYSQL_DATABASE,
// MYSQL_UNIX_PORT, MYSQL_TCP_PORT) — the environment is a fallback, never
// an override.
package dsn

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedDSN indicates a syntactically invalid connection string.
// Returned errors wrap this sentinel and carry the offending fragment.
var ErrMalformedDSN = errors.New("malformed connection string")

// ClientFlag is a bitmask of client behavior flags requested for the session.
type ClientFlag uint32

const (
	// FlagMultiStatements allows multiple statements per query string.
	FlagMultiStatements ClientFlag = 1 << iota

	// FlagCompress requests protocol compression.
	FlagCompress
)

// DefaultClientFlags are the flags applied to every new connection.
const DefaultClientFlags = FlagMultiStatements | FlagCompress

// LookupEnv resolves an environment variable.
// It has the same contract as os.LookupEnv and exists so tests can stub the
// process environment deterministically.
type LookupEnv func(key string) (string, bool)

// Parameters holds the connection settings extracted from a DSN.
// Constructed once per connection attempt and consumed immediately.
type Parameters struct {
	Host     string
	User     string
	Password string
	Database string
	Port     uint32
	Socket   string
	Workload string
	Flags    ClientFlag
}

// Parse parses a DSN into Parameters, consulting the process environment for
// fields the DSN leaves unset.
func Parse(dsn string) (Parameters, error) {
	return ParseEnv(dsn, os.LookupEnv)
}

// ParseEnv is Parse with an injectable environment lookup.
func ParseEnv(dsn string, lookup LookupEnv) (Parameters, error) {
	result := Parameters{Flags: DefaultClientFlags}

	set := make(map[string]bool)
	pos := 0
	for pos < len(dsn) {
		key, ok, err := parseValue(dsn, &pos)
		if err != nil {
			return Parameters{}, err
		}
		if !ok {
			break
		}
		if pos >= len(dsn) || dsn[pos] != '=' {
			return Parameters{}, fmt.Errorf("%w %q: expected key=value pairs separated by spaces", ErrMalformedDSN, dsn)
		}
		pos++
		value, ok, err := parseValue(dsn, &pos)
		if err != nil {
			return Parameters{}, err
		}
		if !ok {
			return Parameters{}, fmt.Errorf("%w %q: expected key=value pairs separated by spaces", ErrMalformedDSN, dsn)
		}
		switch strings.ToLower(key) {
		case "host":
			set["host"] = true
			result.Host = value
		case "user":
			set["user"] = true
			result.User = value
		case "passwd", "password":
			set["password"] = true
			result.Password = value
		case "db", "database":
			set["database"] = true
			result.Database = value
		case "port":
			set["port"] = true
			port, err := parsePort(value)
			if err != nil {
				return Parameters{}, err
			}
			result.Port = port
		case "socket", "unix_socket":
			set["socket"] = true
			result.Socket = value
		case "workload":
			set["workload"] = true
			result.Workload = value
		default:
			return Parameters{}, fmt.Errorf("%w: unrecognized configuration parameter %q - expected options are host, user, passwd, db, port, socket, and workload", ErrMalformedDSN, key)
		}
	}

	// Environment fallback for fields the DSN did not set.
	if !set["host"] {
		if v, ok := lookup("MYSQL_HOST"); ok {
			result.Host = v
		}
	}
	if !set["password"] {
		if v, ok := lookup("MYSQL_PWD"); ok {
			result.Password = v
		}
	}
	if !set["user"] {
		if v, ok := lookup("MYSQL_USER"); ok {
			result.User = v
		}
	}
	if !set["database"] {
		if v, ok := lookup("MYSQL_DATABASE"); ok {
			result.Database = v
		}
	}
	if !set["socket"] {
		if v, ok := lookup("MYSQL_UNIX_PORT"); ok {
			result.Socket = v
		}
	}
	if !set["port"] {
		if v, ok := lookup("MYSQL_TCP_PORT"); ok {
			port, err := parsePort(v)
			if err != nil {
				return Parameters{}, err
			}
			result.Port = port
		}
	}
	return result, nil
}

// parseValue reads the next token starting at *pos, advancing *pos past it.
// Returns false when only whitespace remains.
func parseValue(dsn string, pos *int) (string, bool, error) {
	i := *pos
	for i < len(dsn) && isSpace(dsn[i]) {
		i++
	}
	if i >= len(dsn) {
		*pos = i
		return "", false, nil
	}
	var sb strings.Builder
	if dsn[i] == '"' {
		i++
		foundQuote := false
		for i < len(dsn) {
			if dsn[i] == '"' {
				foundQuote = true
				i++
				break
			}
			if dsn[i] == '\\' {
				if i+1 >= len(dsn) {
					return "", false, fmt.Errorf("%w %q: backslash at end of dsn", ErrMalformedDSN, dsn)
				}
				if dsn[i+1] != '\\' && dsn[i+1] != '"' {
					return "", false, fmt.Errorf(`%w %q: backslash can only escape \ or "`, ErrMalformedDSN, dsn)
				}
				sb.WriteByte(dsn[i+1])
				i += 2
				continue
			}
			sb.WriteByte(dsn[i])
			i++
		}
		if !foundQuote {
			return "", false, fmt.Errorf("%w %q: unterminated quote", ErrMalformedDSN, dsn)
		}
	} else {
		for i < len(dsn) && dsn[i] != '=' && !isSpace(dsn[i]) {
			sb.WriteByte(dsn[i])
			i++
		}
	}
	*pos = i
	return sb.String(), true, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// parsePort validates a TCP port value.
func parsePort(value string) (uint32, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid port %q - port must be a number", ErrMalformedDSN, value)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("%w: invalid port %d - port must be between 0 and 65535", ErrMalformedDSN, port)
	}
	return uint32(port), nil
}

// String renders the parameters as a canonical DSN. Parsing the result with
// an empty environment yields an equal Parameters value.
func (p Parameters) String() string {
	var parts []string
	add := func(key, value string) {
		if value == "" {
			return
		}
		if strings.ContainsAny(value, " \t\n\r\f\v\"\\=") {
			value = `"` + strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), `"`, `\"`) + `"`
		}
		parts = append(parts, key+"="+value)
	}
	add("host", p.Host)
	add("user", p.User)
	add("passwd", p.Password)
	add("db", p.Database)
	if p.Port != 0 {
		parts = append(parts, "port="+strconv.FormatUint(uint64(p.Port), 10))
	}
	add("socket", p.Socket)
	add("workload", p.Workload)
	return strings.Join(parts, " ")
}
