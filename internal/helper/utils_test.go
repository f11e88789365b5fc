package helper

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, CreateFolder(path))
	require.NoError(t, CreateFolder(path), "existing folder is fine")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrettyPrint(&buf, map[string]int{"chunks": 2}))
	assert.Equal(t, "{\n  \"chunks\": 2\n}\n", buf.String())

	assert.Error(t, PrettyPrint(&buf, make(chan int)))
}
