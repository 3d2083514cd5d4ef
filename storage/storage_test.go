package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Upload(ctx, "burger.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored := filepath.Join(dir, filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(ctx, url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, url))
	assert.Error(t, s.Delete(ctx, "https://elsewhere.example.com/x.png"))
}

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
	}{
		{"virtual_hosted", "https://menu.s3.us-east-1.amazonaws.com/menu-images/a.png", "menu-images/a.png"},
		{"path_style", "https://s3.us-east-1.amazonaws.com/menu/menu-images/a.png", "menu-images/a.png"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			key, err := keyFromURL("menu", testCase.location)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, key)
		})
	}

	_, err := keyFromURL("menu", "https://menu.s3.amazonaws.com/")
	assert.Error(t, err)
}
