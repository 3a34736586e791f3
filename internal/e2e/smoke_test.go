package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	server := httptest.NewServer(http.HandlerFunc(fakeBackend))
	t.Cleanup(server.Close)

	_, stderr, err := runCVZ(t, binaryPath, home, server.URL, "login", "-u", "ada", "-p", "secret")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runCVZ(t, binaryPath, home, server.URL, "whoami")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "ada")

	stdout, stderr, err = runCVZ(t, binaryPath, home, server.URL, "quota", "--refresh", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, `"quotaType": "diagram"`)
}

func fakeBackend(w http.ResponseWriter, r *http.Request) {
	var data any
	switch r.URL.Path {
	case "/api/auth/login":
		data = map[string]any{"token": "tok", "userInfo": map[string]any{"id": 1, "username": "ada"}}
	case "/api/quota/list":
		data = map[string]any{"diagram": map[string]any{"quotaType": "diagram", "quotaLimit": 5, "quotaUsed": 1, "resetCycle": "daily"}}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": 200, "message": "ok", "data": data})
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "cvz-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cvz")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build cvz binary: %s", string(output))
	return binaryPath
}

func runCVZ(t *testing.T, binaryPath, home, baseURL string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home, "CVZ_BASE_URL="+baseURL)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
