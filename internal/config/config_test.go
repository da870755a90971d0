package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("sg", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Precedence(t *testing.T) {
	env := writeEnv(t, "SNAPGRAM_ENDPOINT=https://dotenv.example/v1\nSNAPGRAM_PROJECT_ID=dotenv\nSNAPGRAM_DATABASE_ID=db\n")
	t.Setenv("SNAPGRAM_PROJECT_ID", "fromenv")

	c, rest, err := Load(newFlagSet(), []string{"-db", "fromflag", "feed", "-x"}, env)
	require.NoError(t, err)
	require.Equal(t, "https://dotenv.example/v1", c.Endpoint)
	require.Equal(t, "fromenv", c.ProjectID)
	require.Equal(t, "fromflag", c.Collections.DatabaseID)
	require.Equal(t, BackendAppwrite, c.Backend)
	require.Equal(t, 30*time.Second, c.Timeout)
	require.Equal(t, []string{"feed", "-x"}, rest)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, _, err := Load(newFlagSet(), nil, filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestLoad_BadTimeout(t *testing.T) {
	t.Setenv("SNAPGRAM_TIMEOUT", "soon")
	_, _, err := Load(newFlagSet(), nil)
	require.Error(t, err)
}

func TestLoad_PostgresDefaults(t *testing.T) {
	c, _, err := Load(newFlagSet(), []string{"-backend", "postgres", "-dsn", "postgres://x", "-jwt-key", "k", "-posts", "p2"})
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.Equal(t, "snapgram", c.Collections.DatabaseID)
	require.Equal(t, "p2", c.Collections.PostCollectionID)
	require.Equal(t, "media", c.Collections.StorageID)
}

func TestValidate(t *testing.T) {
	c := &Config{Backend: BackendAppwrite, Timeout: time.Second}
	require.ErrorContains(t, c.Validate(), "-endpoint")

	c.Endpoint, c.ProjectID = "https://x/v1", "p"
	require.ErrorContains(t, c.Validate(), "missing ids")

	c.Collections = withDefaults(c.Collections)
	require.NoError(t, c.Validate())

	c.Backend = BackendPostgres
	require.ErrorContains(t, c.Validate(), "-dsn")
	c.DSN = "postgres://x"
	require.ErrorContains(t, c.Validate(), "-jwt-key")

	c.Backend = "mongo"
	require.ErrorContains(t, c.Validate(), "unknown backend")
}
