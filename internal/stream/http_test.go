package stream

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/satindergrewal/pianochords/internal/audio"
)

func TestWAVHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWAVHeader(&buf); err != nil {
		t.Fatalf("WriteWAVHeader: %v", err)
	}
	hdr := buf.Bytes()
	if len(hdr) != 44 {
		t.Fatalf("header length = %d, want 44", len(hdr))
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" || string(hdr[36:40]) != "data" {
		t.Errorf("bad chunk ids: %q %q %q", hdr[0:4], hdr[8:12], hdr[36:40])
	}
	if got := binary.LittleEndian.Uint16(hdr[22:]); got != audio.Channels {
		t.Errorf("channels = %d, want %d", got, audio.Channels)
	}
	if got := binary.LittleEndian.Uint32(hdr[24:]); got != audio.SampleRate {
		t.Errorf("sample rate = %d, want %d", got, audio.SampleRate)
	}
	if got := binary.LittleEndian.Uint16(hdr[34:]); got != audio.BitDepth {
		t.Errorf("bit depth = %d, want %d", got, audio.BitDepth)
	}
}

func TestHTTPStreamDeliversPCM(t *testing.T) {
	b := NewBroadcaster(quietLog())
	srv := httptest.NewServer(NewHTTPHandler(b, quietLog()))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := make(chan []int16, 10)
	go b.Run(ctx, source)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q, want audio/wav", ct)
	}

	hdr := make([]byte, 44)
	if _, err := io.ReadFull(resp.Body, hdr); err != nil {
		t.Fatalf("read header: %v", err)
	}
	if b.ListenerCount() != 1 {
		t.Errorf("ListenerCount = %d, want 1", b.ListenerCount())
	}

	source <- []int16{256, -1}
	pcm := make([]byte, 4)
	done := make(chan error, 1)
	go func() {
		_, err := io.ReadFull(resp.Body, pcm)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("read pcm: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for pcm")
	}
	if !bytes.Equal(pcm, []byte{0x00, 0x01, 0xff, 0xff}) {
		t.Errorf("pcm = % x, want 00 01 ff ff", pcm)
	}
}

func TestWebRTCRejectsBadOffers(t *testing.T) {
	h := NewWebRTCHandler(NewBroadcaster(quietLog()), 0, quietLog())
	if h.bitrate != DefaultOpusBitrate {
		t.Errorf("bitrate = %d, want %d", h.bitrate, DefaultOpusBitrate)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offer", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/offer", bytes.NewBufferString("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad offer status = %d, want 400", rec.Code)
	}
	if h.PeerCount() != 0 {
		t.Errorf("PeerCount = %d, want 0", h.PeerCount())
	}
}
