package stream

import (
	"encoding/binary"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/satindergrewal/pianochords/internal/audio"
)

// streamingSize stands in for the RIFF and data chunk lengths of an
// unbounded stream. Browsers play until the connection closes.
const streamingSize = 0xFFFFFFFF

// HTTPHandler serves the live output as an endless 16-bit PCM WAV stream.
type HTTPHandler struct {
	broadcaster *Broadcaster
	log         *log.Logger
}

// NewHTTPHandler creates an HTTP stream handler.
func NewHTTPHandler(b *Broadcaster, logger *log.Logger) *HTTPHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPHandler{broadcaster: b, log: logger}
}

// WriteWAVHeader writes a 44-byte canonical WAV header for the output format.
func WriteWAVHeader(w io.Writer) error {
	const blockAlign = audio.Channels * audio.BitDepth / 8
	hdr := make([]byte, 44)
	copy(hdr[0:], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:], streamingSize)
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(hdr[22:], audio.Channels)
	binary.LittleEndian.PutUint32(hdr[24:], audio.SampleRate)
	binary.LittleEndian.PutUint32(hdr[28:], audio.SampleRate*blockAlign)
	binary.LittleEndian.PutUint16(hdr[32:], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:], audio.BitDepth)
	copy(hdr[36:], "data")
	binary.LittleEndian.PutUint32(hdr[40:], streamingSize)
	_, err := w.Write(hdr)
	return err
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("ICY-Name", "pianochords")

	listener := h.broadcaster.Subscribe("http")
	defer h.broadcaster.Unsubscribe(listener)

	if err := WriteWAVHeader(w); err != nil {
		return
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-listener.Done():
			return
		case frame, ok := <-listener.C:
			if !ok {
				return
			}
			if _, err := w.Write(audio.SamplesToBytes(frame)); err != nil {
				h.log.Debug("http listener write failed", "id", listener.ID, "err", err)
				return
			}
			flusher.Flush()
		}
	}
}
