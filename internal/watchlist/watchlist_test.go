package watchlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `{
		"watchlist": [
			{"code": "2330", "name": "台積電"},
			{"code": " 2317 ", "name": "鴻海"}
		]
	}`)

	w, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"2330", "2317"}, w.Codes())
	assert.Equal(t, "鴻海", w.Entries[1].Name)
}

func TestLoadEmpty(t *testing.T) {
	path := writeFile(t, `{"watchlist": []}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingCode(t *testing.T) {
	path := writeFile(t, `{"watchlist": [{"code": "", "name": "nameless"}]}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadBadJSON(t *testing.T) {
	path := writeFile(t, `{"watchlist": [`)

	_, err := Load(path)
	assert.Error(t, err)
}
