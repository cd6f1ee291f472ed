// Package tarkit packs and unpacks the single-file tar archives used to
// move documents and mod payloads in and out of containers.
package tarkit

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
)

// PackFile returns an in-memory tar archive containing one file.
func PackFile(name string, data []byte) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	hdr := &tar.Header{
		Name: name,
		Mode: 0644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, fmt.Errorf("failed to write tar header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write tar payload: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize tar archive: %w", err)
	}

	return &buf, nil
}

// ExtractFile reads a tar stream and returns the contents of its first
// regular file entry.
func ExtractFile(r io.Reader) ([]byte, error) {
	tr := tar.NewReader(r)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("tar archive contains no regular file")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read tar payload: %w", err)
		}
		return data, nil
	}
}
