package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/testutil"
)

func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// Keep a developer's .env out of the test.
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	// An invalid configuration must not matter for version.
	t.Setenv("ID_FORMAT", "snowflake")

	out, err := run(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, ServiceName+" "+Version+"\n", out)
}

func TestInvalidConfiguration(t *testing.T) {
	t.Setenv("ID_FORMAT", "snowflake")

	_, err := run(t, context.Background(), "check-db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestConfigFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id_format: nope\n"), 0o600))

	_, err := run(t, context.Background(), "--config", path, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id_format")
}

func TestCheckDBUnreachable(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://127.0.0.1:1")
	t.Setenv("LOG_LEVEL", "error")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := run(t, ctx, "check-db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Neo4j connection error")
}

func TestMigrateAndCheckDB(t *testing.T) {
	instance := testutil.StartNeo4JContainer(t)
	t.Setenv("NEO4J_URI", instance.URI)
	t.Setenv("NEO4J_USER", instance.User)
	t.Setenv("NEO4J_PASSWORD", instance.Password)
	ctx := context.Background()

	out, err := run(t, ctx, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "4/4 constraints in place\n", out)

	// Constraints are created with IF NOT EXISTS, so a rerun is a no-op.
	out, err = run(t, ctx, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "4/4 constraints in place\n", out)

	out, err = run(t, ctx, "check-db")
	require.NoError(t, err)
	assert.Contains(t, out, "Connection to Neo4j established")
	assert.Contains(t, out, "0 nodes")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	instance := testutil.StartNeo4JContainer(t)
	t.Setenv("NEO4J_URI", instance.URI)
	t.Setenv("NEO4J_PASSWORD", instance.Password)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := run(t, ctx, "serve", "--addr", "127.0.0.1:0")
		done <- err
	}()

	time.Sleep(2 * time.Second)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(30 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}
