package session

import (
	"context"
	"encoding/binary"
	"io"
	"strings"

	"hytalepanel/internal/domain"
)

// streamHeaderSize is the docker multiplexed stream frame header: one
// stream-type byte, three zero bytes, four bytes of payload length.
const streamHeaderSize = 8

// startLogStream attaches to the container's log stream and pumps each
// frame to the client as a log event. Any previous stream is stopped
// first; the pump ends silently on read errors or cancellation.
func (s *Service) startLogStream(containerName string, tail int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopStreamLocked()
	ctx, cancel := context.WithCancel(s.ctx)
	s.streamCancel = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()

		stream, err := s.deps.Runtime.StreamLogs(ctx, containerName, tail)
		if err != nil {
			s.deps.Log.Warn().Err(err).Str("container", containerName).Msg("log stream attach failed")
			return
		}
		defer stream.Close()

		go func() {
			<-ctx.Done()
			stream.Close()
		}()

		header := make([]byte, streamHeaderSize)
		for {
			if _, err := io.ReadFull(stream, header); err != nil {
				return
			}
			size := binary.BigEndian.Uint32(header[4:8])
			if size == 0 {
				continue
			}
			payload := make([]byte, size)
			if _, err := io.ReadFull(stream, payload); err != nil {
				return
			}
			if ctx.Err() != nil {
				return
			}
			s.sink.Emit(domain.EventLog, strings.TrimRight(string(payload), "\n"))
		}
	}()
}

// stopStreamLocked cancels the running log pump; callers hold s.mu.
func (s *Service) stopStreamLocked() {
	if s.streamCancel != nil {
		s.streamCancel()
		s.streamCancel = nil
	}
}
