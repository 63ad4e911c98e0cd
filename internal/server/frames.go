package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// snapshotWait bounds how long a snapshot request waits for a fresh frame.
const snapshotWait = time.Second

// FrameHub is a display sink that keeps the latest composited frame as JPEG
// for HTTP viewers. Frames are only encoded while a stream is open or a
// snapshot request is waiting.
type FrameHub struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	updated chan struct{}
	viewers int
	waiting int
}

// NewFrameHub creates an empty hub.
func NewFrameHub() *FrameHub {
	return &FrameHub{updated: make(chan struct{})}
}

// Show implements display.Sink.
func (h *FrameHub) Show(frame gocv.Mat) error {
	h.mu.Lock()
	watching := h.viewers > 0 || h.waiting > 0 || h.jpeg == nil
	h.mu.Unlock()
	if !watching {
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	h.publish(data)
	return nil
}

func (h *FrameHub) publish(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.jpeg = jpeg
	h.seq++
	close(h.updated)
	h.updated = make(chan struct{})
}

// Close implements display.Sink.
func (h *FrameHub) Close() error {
	return nil
}

// Latest returns the most recent JPEG and its sequence number.
func (h *FrameHub) Latest() ([]byte, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.jpeg, h.seq
}

// next waits for a frame newer than seq.
func (h *FrameHub) next(ctx context.Context, seq uint64) ([]byte, uint64, error) {
	for {
		h.mu.Lock()
		if h.seq > seq {
			jpeg, s := h.jpeg, h.seq
			h.mu.Unlock()
			return jpeg, s, nil
		}
		wait := h.updated
		h.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, seq, ctx.Err()
		case <-wait:
		}
	}
}

func (h *FrameHub) addViewer(delta int) {
	h.mu.Lock()
	h.viewers += delta
	h.mu.Unlock()
}

// fresh waits up to wait for a frame shown after the call and returns it.
// When none arrives, for example because the loop has stopped, it returns
// the latest frame instead.
func (h *FrameHub) fresh(ctx context.Context, wait time.Duration) []byte {
	h.mu.Lock()
	seq := h.seq
	h.waiting++
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.waiting--
		h.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if jpeg, _, err := h.next(ctx, seq); err == nil {
		return jpeg
	}
	jpeg, _ := h.Latest()
	return jpeg
}

// ServeHTTP streams frames to the client as MJPEG.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.addViewer(1)
	defer h.addViewer(-1)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	var seq uint64
	for {
		jpeg, s, err := h.next(r.Context(), seq)
		if err != nil {
			return
		}
		seq = s

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if flusher != nil {
			flusher.Flush()
		}
	}
}

// ServeSnapshot writes the next composited frame as a single JPEG.
func (h *FrameHub) ServeSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	jpeg := h.fresh(r.Context(), snapshotWait)
	if jpeg == nil {
		http.Error(w, "No frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(jpeg)
}
