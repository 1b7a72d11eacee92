package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/policyguard/policyguard/internal/adapters/inbound/cli"
)

// fakeService mimics the compliance service endpoints a scan touches.
type fakeService struct {
	mu          sync.Mutex
	calls       []string
	violations  string
	datasetCode int
	history     string
	historyCode int
	recorded    string
	lastQuery   string
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	fs := &fakeService{
		violations:  `[]`,
		datasetCode: http.StatusOK,
		history:     `{"reports":[]}`,
		historyCode: http.StatusOK,
		recorded:    `[]`,
	}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeService) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.calls = append(fs.calls, r.Method+" "+r.URL.Path)

	reply := func(code int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}
	switch r.Method + " " + r.URL.Path {
	case "POST /api/scan/reset":
		reply(http.StatusOK, `{"message":"ok"}`)
	case "POST /api/policies/upload":
		reply(http.StatusOK, `{"id":1,"rules":[{"id":1},{"id":2},{"id":3}]}`)
	case "POST /api/employees/batch":
		if fs.datasetCode != http.StatusOK {
			reply(fs.datasetCode, `{"detail":"Only CSV files are supported."}`)
			return
		}
		reply(http.StatusOK, `{"imported_count":50}`)
	case "POST /api/scan/trigger":
		reply(http.StatusOK, fs.violations)
	case "GET /history/anonymous":
		reply(fs.historyCode, fs.history)
	case "GET /api/violations/":
		fs.lastQuery = r.URL.RawQuery
		reply(http.StatusOK, fs.recorded)
	default:
		http.NotFound(w, r)
	}
}

func (fs *fakeService) count(call string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := 0
	for _, c := range fs.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (fs *fakeService) set(fn func(*fakeService)) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fn(fs)
}

type inputs struct {
	dir     string
	policy  string
	dataset string
}

func writeInputs(t *testing.T) inputs {
	t.Helper()
	dir := t.TempDir()
	in := inputs{
		dir:     dir,
		policy:  filepath.Join(dir, "policy.pdf"),
		dataset: filepath.Join(dir, "employees.csv"),
	}
	require.NoError(t, os.WriteFile(in.policy, []byte("%PDF-1.4\n"), 0644))
	require.NoError(t, os.WriteFile(in.dataset, []byte("employee_id,working_days\n1,14\n"), 0644))
	return in
}

// run executes the root command with state kept under stateDir.
func run(t *testing.T, serverURL, stateDir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config", stateDir, "--server", serverURL}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func decode(t *testing.T, s string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(s), v), s)
}
