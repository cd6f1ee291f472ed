package tarkit

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackFile_RoundTrip(t *testing.T) {
	r, err := PackFile("mods.json", []byte(`{"version":1}`))
	require.NoError(t, err)

	data, err := ExtractFile(r)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))
}

func TestExtractFile_SkipsDirectories(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "mods/", Typeflag: tar.TypeDir, Mode: 0755}))
	payload := []byte("payload")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "mods/a.jar", Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(payload))}))
	_, err := tw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	data, err := ExtractFile(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestExtractFile_EmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.Close())

	_, err := ExtractFile(&buf)
	assert.Error(t, err)
}
