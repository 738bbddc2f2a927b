// Package e2e drives the memescope binary in a pseudo-terminal against an
// in-process stub backend.
package e2e

import (
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abelbrown/memescope/internal/stubapi"
)

// buildMemescope builds the binary into a temp dir and returns its path.
func buildMemescope(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "memescope")

	rootDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// test/e2e -> module root
	rootDir = filepath.Join(rootDir, "..", "..")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/memescope")
	cmd.Dir = rootDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return binPath
}

// startStub serves the backend contract and returns its /api base URL.
func startStub(t *testing.T, delay time.Duration) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := stubapi.Open(":memory:")
	if err != nil {
		t.Fatalf("open stub store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(stubapi.NewServer(store, stubapi.Options{Delay: delay}).Router())
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}
