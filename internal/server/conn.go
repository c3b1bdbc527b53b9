package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/Brownie44l1/scoreserver/internal/headers"
	"github.com/Brownie44l1/scoreserver/internal/request"
	"github.com/Brownie44l1/scoreserver/internal/response"
)

const (
	lingerTimeout = 100 * time.Millisecond
	lingerMax     = 64 << 10
)

// serveConn handles exactly one request on conn and closes it.
// Failures stay on this connection; they are logged, never propagated.
func (s *Server) serveConn(conn net.Conn) {
	start := time.Now()
	remote := conn.RemoteAddr().String()
	s.metrics.connOpened()

	defer func() {
		closeConn(conn)
		s.metrics.connClosed(time.Since(start))
		s.trackConn(conn, false)
	}()

	defer func() {
		if r := recover(); r != nil {
			s.metrics.recordError(errKindPanic)
			s.logger.Error("panic recovered",
				Field{"error", fmt.Sprint(r)},
				Field{"stack", string(debug.Stack())},
				Field{"remote", remote},
			)
		}
	}()

	if s.cfg.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}

	block, err := request.NewReader(conn, s.cfg.MaxLineBytes, s.cfg.MaxHeaderLines).ReadHeaderBlock()
	if err != nil {
		if errors.Is(err, request.ErrStreamRead) {
			s.metrics.recordError(errKindRead)
			s.logger.Error("read failed, closing connection",
				Field{"remote", remote},
				Field{"error", err.Error()},
			)
			return
		}

		// Oversized header blocks are still answered
		s.logger.Warn("header block rejected",
			Field{"remote", remote},
			Field{"error", err.Error()},
		)
	}

	if err := block.Validate(); err != nil {
		s.logger.Debug("answering empty request",
			Field{"remote", remote},
			Field{"error", err.Error()},
		)
	}

	resp, err := response.ForRequest(block)
	if err != nil {
		s.logger.Error("building response failed",
			Field{"remote", remote},
			Field{"error", err.Error()},
		)
		return
	}

	if s.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}

	w := response.NewWriter(conn)
	if err := w.Send(resp); err != nil {
		s.metrics.recordError(errKindWrite)
		s.logger.Error("write failed, closing connection",
			Field{"remote", remote},
			Field{"status", int(w.StatusCode())},
			Field{"bytes_written", w.BytesWritten()},
			Field{"error", err.Error()},
		)
		return
	}

	s.metrics.recordResponse(int(w.StatusCode()))
	s.logRequest(remote, block, w, time.Since(start))
}

func (s *Server) logRequest(remote string, block request.HeaderBlock, w *response.Writer, duration time.Duration) {
	line, _ := block.RequestLine()
	fields := []Field{
		{"remote", remote},
		{"request_line", line},
		{"status", int(w.StatusCode())},
		{"bytes", w.BytesWritten()},
		{"duration_ms", duration.Milliseconds()},
	}

	if rl, err := request.ParseRequestLine(line); err == nil {
		fields = append(fields, Field{"method", rl.Method}, Field{"path", rl.Target})
	}

	// Header fields only matter for the log line; malformed ones are skipped
	h, _ := headers.FromLines(block.Fields())
	if ua, ok := h.Get("User-Agent"); ok {
		fields = append(fields, Field{"user_agent", ua})
	}

	s.logger.Info("request handled", fields...)
}

// closeConn half-closes TCP connections and drains briefly so unread
// request bytes do not turn the close into a reset that eats the response.
func closeConn(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err == nil {
			tcp.SetReadDeadline(time.Now().Add(lingerTimeout))
			io.CopyN(io.Discard, tcp, lingerMax)
		}
	}
	conn.Close()
}
