package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/mudra/internal/preview"
)

// StreamHandler serves the annotated preview as MJPEG.
type StreamHandler struct {
	buffer *preview.Buffer
}

// NewStreamHandler creates a new StreamHandler reading from buffer.
func NewStreamHandler(buffer *preview.Buffer) *StreamHandler {
	return &StreamHandler{buffer: buffer}
}

// ServeHTTP streams preview frames until the client disconnects. Frames
// published while a write is in flight are skipped.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var seq uint64
	for {
		frame, next, err := h.buffer.Next(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		if _, err := w.Write(frame); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
