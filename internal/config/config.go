// Package config resolves client settings from .env files, SNAPGRAM_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/and161185/snapgram/internal/api"
)

// Backends.
const (
	BackendAppwrite = "appwrite"
	BackendPostgres = "postgres"
)

const envPrefix = "SNAPGRAM_"

// Config holds client settings.
type Config struct {
	Backend string

	// appwrite
	Endpoint  string
	ProjectID string

	// postgres
	DSN       string
	JWTKey    string
	PublicURL string

	Collections api.Collections
	Timeout     time.Duration
	Debug       bool
}

type source struct {
	dotenv map[string]string
}

func (s source) get(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}
	if v, ok := s.dotenv[envPrefix+key]; ok {
		return v
	}
	return def
}

func readDotenv(files []string) (map[string]string, error) {
	out := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range m {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

// Load registers flags on fset, parses args and returns the resolved config
// with the remaining arguments. Earlier env files win over later ones.
func Load(fset *flag.FlagSet, args []string, envFiles ...string) (*Config, []string, error) {
	dotenv, err := readDotenv(envFiles)
	if err != nil {
		return nil, nil, err
	}
	src := source{dotenv: dotenv}

	timeout, err := time.ParseDuration(src.get("TIMEOUT", "30s"))
	if err != nil {
		return nil, nil, fmt.Errorf("%sTIMEOUT: %w", envPrefix, err)
	}
	debug, _ := strconv.ParseBool(src.get("DEBUG", "false"))

	var c Config
	fset.StringVar(&c.Backend, "backend", src.get("BACKEND", BackendAppwrite), "backend: appwrite or postgres")
	fset.StringVar(&c.Endpoint, "endpoint", src.get("ENDPOINT", ""), "Appwrite endpoint, e.g. https://cloud.appwrite.io/v1")
	fset.StringVar(&c.ProjectID, "project", src.get("PROJECT_ID", ""), "Appwrite project id")
	fset.StringVar(&c.DSN, "dsn", src.get("DSN", ""), "PostgreSQL DSN")
	fset.StringVar(&c.JWTKey, "jwt-key", src.get("JWT_KEY", ""), "HS256 session key (postgres)")
	fset.StringVar(&c.PublicURL, "public-url", src.get("PUBLIC_URL", "http://localhost:8080/v1"), "base URL of file previews (postgres)")
	fset.StringVar(&c.Collections.DatabaseID, "db", src.get("DATABASE_ID", ""), "database id")
	fset.StringVar(&c.Collections.UserCollectionID, "users", src.get("USER_COLLECTION_ID", ""), "user collection id")
	fset.StringVar(&c.Collections.PostCollectionID, "posts", src.get("POST_COLLECTION_ID", ""), "post collection id")
	fset.StringVar(&c.Collections.SavesCollectionID, "saves", src.get("SAVES_COLLECTION_ID", ""), "saves collection id")
	fset.StringVar(&c.Collections.StorageID, "bucket", src.get("STORAGE_ID", ""), "storage bucket id")
	fset.DurationVar(&c.Timeout, "timeout", timeout, "overall command timeout")
	fset.BoolVar(&c.Debug, "debug", debug, "development logging")

	if err := fset.Parse(args); err != nil {
		return nil, nil, err
	}
	if c.Backend == BackendPostgres {
		c.Collections = withDefaults(c.Collections)
	}
	return &c, fset.Args(), nil
}

// withDefaults fills container ids of a self-hosted store.
func withDefaults(ids api.Collections) api.Collections {
	def := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return api.Collections{
		DatabaseID:        def(ids.DatabaseID, "snapgram"),
		UserCollectionID:  def(ids.UserCollectionID, "users"),
		PostCollectionID:  def(ids.PostCollectionID, "posts"),
		SavesCollectionID: def(ids.SavesCollectionID, "saves"),
		StorageID:         def(ids.StorageID, "media"),
	}
}

// Validate reports settings missing for the selected backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAppwrite:
		if c.Endpoint == "" || c.ProjectID == "" {
			return errors.New("appwrite backend needs -endpoint and -project")
		}
	case BackendPostgres:
		if c.DSN == "" {
			return errors.New("postgres backend needs -dsn")
		}
		if c.JWTKey == "" {
			return errors.New("postgres backend needs -jwt-key")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return c.Collections.Validate()
}
