package docker

import (
	"encoding/binary"
	"io"
	"strings"
)

// Multiplexed docker streams carry 8-byte frame headers: one byte of
// stream id, three reserved bytes, four bytes of big-endian payload
// length.
const frameHeaderSize = 8

const (
	streamStdout = 1
	streamStderr = 2
)

// parseExecOutput demultiplexes a non-TTY docker stream into stdout and
// stderr buffers.
func parseExecOutput(r io.Reader) (stdout, stderr []byte, err error) {
	header := make([]byte, frameHeaderSize)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF {
				return stdout, stderr, nil
			}
			return stdout, stderr, err
		}

		size := binary.BigEndian.Uint32(header[4:8])
		if size == 0 {
			continue
		}

		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return stdout, stderr, err
		}

		switch header[0] {
		case streamStderr:
			stderr = append(stderr, payload...)
		default:
			stdout = append(stdout, payload...)
		}
	}
}

// splitLogLines turns a demultiplexed log buffer into trimmed lines,
// dropping the trailing empty line a final newline produces.
func splitLogLines(buf []byte) []string {
	if len(buf) == 0 {
		return []string{}
	}

	raw := strings.Split(string(buf), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
