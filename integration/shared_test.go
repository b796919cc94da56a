//go:build basic || database

package integration

import (
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedDcurvesPath holds the path to a shared dcurves binary built once for all tests.
	sharedDcurvesPath string

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

// getDcurvesBinary returns the path to the dcurves binary, building it once if needed.
func getDcurvesBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "dcurves-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		dcurvesPath := filepath.Join(tempDir, "dcurves")
		buildCmd := exec.Command("go", "build", "-o", dcurvesPath, "./cmd/dcurves")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build dcurves: %v", err))
		}

		sharedDcurvesPath = dcurvesPath
	})

	return sharedDcurvesPath
}

// writeSyntheticCohort writes a CSV subject table with a binary outcome and a
// noisy but informative probability predictor.
func writeSyntheticCohort(t *testing.T, n int) string {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	path := filepath.Join(t.TempDir(), "cohort.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create cohort file: %v", err)
	}
	defer func() { _ = f.Close() }()

	fmt.Fprintln(f, "cancer,model,marker")
	for range n {
		risk := rng.Float64()
		outcome := 0
		if rng.Float64() < risk {
			outcome = 1
		}
		score := risk*0.8 + rng.Float64()*0.2
		marker := risk*40 + rng.Float64()*10
		fmt.Fprintf(f, "%d,%.4f,%.2f\n", outcome, score, marker)
	}
	return path
}
