package setup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/coursework/pkg/config"
)

func TestInitWritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	var out bytes.Buffer
	i := Init{Path: path, Out: &out}
	require.NoError(t, i.Do(context.Background()))
	assert.Contains(t, out.String(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "canvas:")

	err = i.Do(context.Background())
	assert.ErrorIs(t, err, config.ErrExists)
}
