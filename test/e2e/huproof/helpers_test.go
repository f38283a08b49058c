package huproof_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/huproof/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helpers for the huproof end-to-end tests.
 * The container runs with verification bypassed, so any well-formed proof
 * passes the gate and every other check is exercised for real.
 */

const (
	testImageName = "huproof-test:latest"
	testOrigin    = "http://localhost:5173"
)

// TestMain builds the image once before all tests and removes it afterwards.
// The suite needs Docker and only runs with HUPROOF_E2E=1.
func TestMain(m *testing.M) {
	if os.Getenv("HUPROOF_E2E") != "1" {
		fmt.Fprintln(os.Stdout, "skipping huproof e2e tests, set HUPROOF_E2E=1 to run")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building huproof Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up huproof Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/huproof/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// setupContainer starts huproof and returns its base URL. Extra env entries
// override the defaults.
func setupContainer(t *testing.T, extra map[string]string) string {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"APP_SECRET":       "e2e-secret-0123456789",
		"ENV":              "test",
		"ORIGIN":           testOrigin,
		"BYPASS_ZK_VERIFY": "true",
		"LOG_LEVEL":        "info",
		"LOG_FORMAT":       "json",
		// Tests make many rapid requests; relax every budget
		"RATELIMIT_ENROLL_START_REQUESTS": "1000",
		"RATELIMIT_ENROLL_START_BURST":    "1000",
		"RATELIMIT_LOGIN_START_REQUESTS":  "1000",
		"RATELIMIT_LOGIN_START_BURST":     "1000",
		"RATELIMIT_FINISH_REQUESTS":       "1000",
		"RATELIMIT_FINISH_BURST":          "1000",
	}
	for k, v := range extra {
		if v == "" {
			delete(env, k)
			continue
		}
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// fakeProof is well formed; the bypassed gate accepts it.
func fakeProof() authsdk.Proof {
	return authsdk.Proof{
		PiA:      []string{"1", "2", "1"},
		PiB:      [][]string{{"1", "2"}, {"3", "4"}, {"1", "0"}},
		PiC:      []string{"5", "6", "1"},
		Protocol: "groth16",
		Curve:    "bn128",
	}
}

// enroll runs a full enrollment and returns the new user id.
func enroll(t *testing.T, client *authsdk.SDKClient, commitment string) string {
	t.Helper()

	ch, err := client.EnrollStart(t.Context())
	require.NoError(t, err)
	require.Equal(t, authsdk.OriginHash(testOrigin), ch.OriginHash)

	res, err := client.EnrollFinish(t.Context(), authsdk.EnrollFinishRequest{
		Commitment:   commitment,
		PublicInputs: authsdk.PublicInputsFor(ch, ch.Tau, commitment, "1"),
		Proof:        fakeProof(),
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotEmpty(t, res.UserID)
	return res.UserID
}

// assertInvalidRequest checks the single generic rejection.
func assertInvalidRequest(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, authsdk.IsCode(err, authsdk.ErrorCodeInvalidRequest), "want invalid_request, got: %v", err)
}
