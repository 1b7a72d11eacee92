package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/policyguard/policyguard/internal/adapters/outbound/loader"
	"github.com/policyguard/policyguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileLoader_Load(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantType string
	}{
		{"pdf", "policy.pdf", "%PDF-1.4\n", "application/pdf"},
		{"csv", "employees.CSV", "id,name\n1,a\n", "text/csv"},
		{"sniffed pdf", "policy", "%PDF-1.7\n", "application/pdf"},
		{"sniffed text", "notes", "hello", "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			c, err := loader.New().Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.file, c.Name)
			assert.Equal(t, path, c.Path)
			assert.Equal(t, tt.wantType, c.MediaType)
			assert.Equal(t, tt.content, string(c.Payload))
		})
	}
}

func TestFileLoader_LoadedCandidatesValidate(t *testing.T) {
	l := loader.New()

	policy, err := l.Load(writeFile(t, "policy.pdf", "%PDF-1.4"))
	require.NoError(t, err)
	dataset, err := l.Load(writeFile(t, "employees.csv", "id\n1\n"))
	require.NoError(t, err)

	assert.NoError(t, domain.ValidateCandidate(policy, domain.KindPolicy))
	assert.NoError(t, domain.ValidateCandidate(dataset, domain.KindDataset))
	assert.Error(t, domain.ValidateCandidate(dataset, domain.KindPolicy))
}

func TestFileLoader_Errors(t *testing.T) {
	_, err := loader.New().Load(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = loader.New().Load(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")
}
