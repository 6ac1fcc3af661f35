//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedLakeriskPath holds the path to a shared lakerisk binary built once for all tests.
	sharedLakeriskPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getLakeriskBinary returns the path to the lakerisk binary, building it once if needed.
func getLakeriskBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "lakerisk-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		lakeriskPath := filepath.Join(tempDir, "lakerisk")
		buildCmd := exec.Command("go", "build", "-o", lakeriskPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build lakerisk: %v", err))
		}

		sharedLakeriskPath = lakeriskPath
	})

	return sharedLakeriskPath
}

// runLakerisk runs the CLI with extra environment variables and returns stdout.
func runLakerisk(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getLakeriskBinary(), args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), string(output), stderr)
	}
	return string(output), err
}
