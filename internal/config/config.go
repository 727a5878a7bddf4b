// Package config reads server settings from flags, the environment and an
// optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that supply flag defaults.
const (
	EnvDB      = "INVENTAR_DB"
	EnvAddr    = "INVENTAR_ADDR"
	EnvAdmin   = "INVENTAR_ADMIN"
	EnvLog     = "INVENTAR_LOG"
	EnvBaseURL = "INVENTAR_BASE_URL"
)

// Config holds the server settings.
type Config struct {
	DBPath    string
	Addr      string
	AdminUser string
	LogPath   string
	// BaseURL is printed into QR labels. Derived from Addr when unset.
	BaseURL string
}

const usage = `Usage: inventar [flags]

Flags:
  -d, -db <path>          SQLite database path (default: inventar.sqlite3, env INVENTAR_DB)
  -a, -addr <host:port>   listen address (default: :8080, env INVENTAR_ADDR)
  -u, -user <name>        admin username on first run (default: admin, env INVENTAR_ADMIN)
  -l, -log <path>         log file path (default: stdout/stderr only, env INVENTAR_LOG)
  -b, -base-url <url>     external URL encoded in QR labels (env INVENTAR_BASE_URL)
  -h, -help               show this help and exit
`

// Load parses args on top of the environment. Variables from a .env file in
// the working directory are loaded first without overriding ones already set.
// flag.ErrHelp is returned when help was requested.
func Load(args []string, out io.Writer) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg := &Config{}
	fset := flag.NewFlagSet("inventar", flag.ContinueOnError)
	fset.SetOutput(out)
	fset.Usage = func() { fmt.Fprint(out, usage) }

	stringFlag(fset, &cfg.DBPath, "db", "d", getEnv(EnvDB, "inventar.sqlite3"))
	stringFlag(fset, &cfg.Addr, "addr", "a", getEnv(EnvAddr, ":8080"))
	stringFlag(fset, &cfg.AdminUser, "user", "u", getEnv(EnvAdmin, "admin"))
	stringFlag(fset, &cfg.LogPath, "log", "l", getEnv(EnvLog, ""))
	stringFlag(fset, &cfg.BaseURL, "base-url", "b", getEnv(EnvBaseURL, ""))

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		fset.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}

	if cfg.DBPath == "" {
		return nil, errors.New("database path must not be empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURLFromAddr(cfg.Addr)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

func stringFlag(fset *flag.FlagSet, p *string, long, short, def string) {
	fset.StringVar(p, long, def, "")
	fset.StringVar(p, short, def, "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func baseURLFromAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
