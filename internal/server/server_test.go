// ABOUTME: Tests for the dev server
// ABOUTME: Drives the router through httptest and the clock websocket through a real dial
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/gtaradio-go/internal/assets"
	"github.com/Resonate-Protocol/gtaradio-go/internal/wavtest"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
	gtsync "github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// 01:00:00 local; a 1000s station is at 600
var oneAM = fixedClock{time.Date(2024, 6, 1, 1, 0, 0, 0, time.Local)}

// thousandSeconds is an 8-bit mono PCM WAV at 1 byte per second
func thousandSeconds() []byte {
	return wavtest.RIFF(wavtest.FmtPCM(1, 1, 8), wavtest.Data(make([]byte, 1000)))
}

type harness struct {
	t       *testing.T
	srv     *Server
	http    *httptest.Server
	dir     string
	session *gtsync.Session
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	dir := t.TempDir()
	writeStation(t, dir, "HEAD.wav", thousandSeconds())
	writeStation(t, dir, "LIPS.wav", wavtest.MonoIMAADPCM(8000, 36, 0, 100))

	session, err := gtsync.NewSession(nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	cfg := Config{
		Name:         "test",
		AllowOrigins: []string{"*"},
		ImportTarget: filepath.Join(t.TempDir(), "imported"),
		Clock:        oneAM,
		TickInterval: time.Hour,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	srv, err := New(cfg, stations.GTA3(), assets.NewDirProvider(dir), session)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &harness{t: t, srv: srv, http: ts, dir: dir, session: session}
}

func writeStation(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func (h *harness) get(path string) *http.Response {
	h.t.Helper()
	resp, err := http.Get(h.http.URL + path)
	if err != nil {
		h.t.Fatalf("GET %s: %v", path, err)
	}
	h.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) post(path, body string) *http.Response {
	h.t.Helper()
	resp, err := http.Post(h.http.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		h.t.Fatalf("POST %s: %v", path, err)
	}
	h.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	session, _ := gtsync.NewSession(nil)
	provider := assets.NewDirProvider(t.TempDir())

	if _, err := New(Config{}, nil, provider, session); err == nil {
		t.Error("expected error without game")
	}
	if _, err := New(Config{}, stations.GTA3(), nil, session); err == nil {
		t.Error("expected error without provider")
	}
	if _, err := New(Config{}, stations.GTA3(), provider, nil); err == nil {
		t.Error("expected error without session")
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.get("/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" || body["id"] != h.srv.ID() {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestStations(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.session.Skip(30); err != nil {
		t.Fatal(err)
	}

	resp := h.get("/api/stations")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list []StationInfo
	decodeBody(t, resp, &list)

	if len(list) != len(stations.GTA3().Stations) {
		t.Fatalf("expected full lineup, got %d entries", len(list))
	}

	byID := map[string]StationInfo{}
	for _, st := range list {
		byID[st.ID] = st
	}

	head := byID["head"]
	if head.Duration == nil || *head.Duration != 1000 {
		t.Fatalf("expected head duration 1000, got %v", head.Duration)
	}
	if head.Target == nil || *head.Target != 630 {
		t.Errorf("expected head target 630, got %v", head.Target)
	}
	if head.Format != audio.CodecPCM {
		t.Errorf("expected pcm format, got %q", head.Format)
	}

	// ADPCM without decoding enabled has no duration
	lips := byID["lips"]
	if lips.Duration != nil || lips.Error == "" {
		t.Errorf("expected lips to report an error, got %+v", lips)
	}

	// Missing file
	if byID["chat"].Error == "" {
		t.Error("expected chat to report a missing file")
	}
}

func TestRaw(t *testing.T) {
	h := newHarness(t, nil)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"by id", "/api/stations/head/raw", http.StatusOK},
		{"by stem", "/api/stations/HEAD/raw", http.StatusOK},
		{"stem lower case", "/api/stations/Head/raw", http.StatusOK},
		{"unknown station", "/api/stations/nope/raw", http.StatusNotFound},
		{"missing file", "/api/stations/chat/raw", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.get(tt.path)
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.status == http.StatusOK {
				if ct := resp.Header.Get("Content-Type"); ct != "audio/wav" {
					t.Errorf("expected audio/wav, got %q", ct)
				}
				body := new(bytes.Buffer)
				body.ReadFrom(resp.Body)
				if !bytes.Equal(body.Bytes(), thousandSeconds()) {
					t.Error("expected raw bytes unmodified")
				}
			}
		})
	}
}

func TestAudioADPCMGate(t *testing.T) {
	tests := []struct {
		name   string
		allow  bool
		query  string
		status int
		format string
	}{
		{"server disallows", false, "?decode=1", http.StatusUnsupportedMediaType, ""},
		{"request does not ask", true, "", http.StatusUnsupportedMediaType, ""},
		{"both opt in", true, "?decode=1", http.StatusOK, audio.CodecIMAADPCM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(c *Config) { c.DecodeADPCM = tt.allow })
			resp := h.get("/api/stations/lips/audio" + tt.query)
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.format != "" {
				if got := resp.Header.Get("X-Station-Format"); got != tt.format {
					t.Errorf("expected format %q, got %q", tt.format, got)
				}
				if resp.Header.Get("X-Station-Note") == "" {
					t.Error("expected a conversion note")
				}
			}
		})
	}
}

func TestAudioPCMPassthrough(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.get("/api/stations/head/audio")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Station-Duration"); got != "1000.000" {
		t.Errorf("expected duration header 1000.000, got %q", got)
	}
	body := new(bytes.Buffer)
	body.ReadFrom(resp.Body)
	if !bytes.Equal(body.Bytes(), thousandSeconds()) {
		t.Error("expected PCM passthrough")
	}
}

func TestOffsetSkip(t *testing.T) {
	h := newHarness(t, nil)

	var off OffsetResponse
	decodeBody(t, h.get("/api/offset"), &off)
	if off.Offset != 0 || off.Clock != 3600 {
		t.Errorf("expected offset 0 at clock 3600, got %+v", off)
	}

	resp := h.post("/api/offset/skip", `{"delta": 30}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &off)
	if off.Offset != 30 || off.Clock != 3630 {
		t.Errorf("expected offset 30, got %+v", off)
	}

	resp = h.post("/api/offset/skip", `{"delta": -90}`)
	decodeBody(t, resp, &off)
	if off.Offset != -60 || h.session.Offset() != -60 {
		t.Errorf("expected offset -60, got %+v", off)
	}

	for _, body := range []string{`{`, `{"delta": 0}`} {
		if resp := h.post("/api/offset/skip", body); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestImport(t *testing.T) {
	h := newHarness(t, nil)

	root := t.TempDir()
	writeStation(t, filepath.Join(root, "Audio"), "head.wav", thousandSeconds())

	resp := h.post("/api/import", `{"dir": `+jsonString(root)+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var summary assets.Summary
	decodeBody(t, resp, &summary)
	if summary.Copied != 1 || summary.Expected != len(stations.GTA3().Stems()) {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(h.srv.config.ImportTarget, "HEAD.wav")); err != nil {
		t.Errorf("expected HEAD.wav imported: %v", err)
	}

	if resp := h.post("/api/import", `{"dir": ""}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty dir, got %d", resp.StatusCode)
	}
	if resp := h.post("/api/import", `{"dir": `+jsonString(t.TempDir())+`}`); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for a dir with no audio, got %d", resp.StatusCode)
	}
}

func TestImportWithoutTarget(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.ImportTarget = "" })
	resp := h.post("/api/import", `{"dir": "/somewhere"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func dialClock(t *testing.T, h *harness, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readTick(t *testing.T, conn *websocket.Conn) ClockTick {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var tick ClockTick
	if err := conn.ReadJSON(&tick); err != nil {
		t.Fatalf("read tick: %v", err)
	}
	return tick
}

func TestClockWebSocket(t *testing.T) {
	h := newHarness(t, nil)

	// Learn head's duration so ticks carry its target
	h.get("/api/stations/head/audio")

	conn := dialClock(t, h, nil)
	tick := readTick(t, conn)
	if tick.Type != "clock" || tick.ServerID != h.srv.ID() {
		t.Errorf("unexpected tick: %+v", tick)
	}
	if tick.Time != 3600 || tick.Offset != 0 || tick.Broadcast != 3600 {
		t.Errorf("expected broadcast 3600, got %+v", tick)
	}
	if tick.Targets["head"] != 600 {
		t.Errorf("expected head target 600, got %v", tick.Targets)
	}

	// A skip pushes a fresh tick without waiting for the timer
	h.post("/api/offset/skip", `{"delta": 30}`)
	tick = readTick(t, conn)
	if tick.Offset != 30 || tick.Broadcast != 3630 || tick.Targets["head"] != 630 {
		t.Errorf("expected pushed tick after skip, got %+v", tick)
	}
}

func TestClockWebSocketPeriodic(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.TickInterval = 20 * time.Millisecond })
	conn := dialClock(t, h, nil)

	readTick(t, conn)
	readTick(t, conn)
	if h.srv.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", h.srv.ClientCount())
	}
}

func TestClockWebSocketOrigin(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.AllowOrigins = []string{"http://localhost:4173"} })
	url := "ws" + strings.TrimPrefix(h.http.URL, "http") + "/ws"

	header := http.Header{"Origin": []string{"http://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Error("expected disallowed origin to be rejected")
	}

	header = http.Header{"Origin": []string{"http://localhost:4173"}}
	conn := dialClock(t, h, header)
	readTick(t, conn)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, nil)
	h.get("/api/stations/head/audio")

	resp := h.get("/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := new(bytes.Buffer)
	body.ReadFrom(resp.Body)
	if !strings.Contains(body.String(), "gtaradio_prepared_total") {
		t.Error("expected gtaradio metrics in exposition")
	}
}
