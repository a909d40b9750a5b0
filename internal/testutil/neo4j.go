// Package testutil starts throwaway Neo4j instances for integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

const (
	neo4jImage    = "neo4j:5.20-community"
	neo4jPassword = "password"
)

// Neo4JInstance holds the connection settings of a started container.
type Neo4JInstance struct {
	URI      string
	User     string
	Password string
}

// StartNeo4JContainer runs a Neo4j container that is terminated when the test
// finishes. The test is skipped in -short mode or when no container runtime
// is reachable.
func StartNeo4JContainer(t *testing.T) Neo4JInstance {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Neo4j integration test in short mode")
	}
	ctx := context.Background()

	request := testcontainers.ContainerRequest{
		Image:        neo4jImage,
		ExposedPorts: []string{"7687/tcp"},
		WaitingFor:   wait.ForLog("Bolt enabled").WithStartupTimeout(time.Minute * 2),
		Env: map[string]string{
			"NEO4J_AUTH": fmt.Sprintf("%s/%s", "neo4j", neo4jPassword),
		},
	}
	container, err := startContainer(ctx, request)
	if err != nil {
		t.Skipf("neo4j container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate neo4j container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, "7687")
	if err != nil {
		t.Fatal(err)
	}
	return Neo4JInstance{
		URI:      fmt.Sprintf("bolt://%s:%d", host, port.Int()),
		User:     "neo4j",
		Password: neo4jPassword,
	}
}

// StartNeo4J runs a Neo4j container and returns an executor connected to it.
// The container and the driver are released when the test finishes.
func StartNeo4J(t *testing.T) *neopersist.Neo4jExecutor {
	t.Helper()
	instance := StartNeo4JContainer(t)
	ctx := context.Background()

	executor, err := neopersist.NewNeo4jExecutor(instance.URI, instance.User, instance.Password, "neo4j")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = executor.Close(context.Background()) })

	if err := executor.Verify(ctx); err != nil {
		t.Fatalf("neo4j not reachable at %s: %v", instance.URI, err)
	}
	return executor
}

// startContainer turns the panic raised when no Docker host can be resolved
// into an error.
func startContainer(ctx context.Context, request testcontainers.ContainerRequest) (c testcontainers.Container, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()
	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
}
