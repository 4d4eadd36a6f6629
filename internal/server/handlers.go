// ABOUTME: REST handlers for the dev server
// ABOUTME: Station listing, raw and prepared audio, offset control and import
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Resonate-Protocol/gtaradio-go/internal/assets"
	"github.com/Resonate-Protocol/gtaradio-go/internal/version"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/audio/wav"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/playable"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
	gtsync "github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

// StationInfo is one entry of GET /api/stations
type StationInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Stem string `json:"stem"`
	// Duration and Target are null until the station file has been prepared
	Duration *float64 `json:"duration"`
	Target   *float64 `json:"target"`
	Format   string   `json:"format,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// OffsetResponse is returned by the offset endpoints
type OffsetResponse struct {
	Offset int     `json:"offset"`
	Clock  float64 `json:"clock"`
}

// stationMeta is what the server remembers about a prepared station
type stationMeta struct {
	duration float64
	format   string
}

type skipRequest struct {
	Delta int `json:"delta"`
}

type importRequest struct {
	Dir string `json:"dir"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    s.config.Name,
		"id":      s.serverID,
		"version": version.Version,
	})
}

// handleStations lists the lineup with each station's target position now
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	wall := gtsync.SecondsSinceMidnight(s.config.Clock.Now())
	offset := float64(s.session.Offset())

	out := make([]StationInfo, 0, len(s.game.Stations))
	for _, st := range s.game.Stations {
		info := StationInfo{ID: st.ID, Name: st.Name, Stem: st.Stem}

		meta, ok := s.cachedMeta(st.ID)
		if !ok {
			res, err := s.prepare(r.Context(), st, s.config.DecodeADPCM)
			if err != nil {
				info.Error = err.Error()
				out = append(out, info)
				continue
			}
			meta = stationMeta{duration: res.Duration, format: res.Format}
		}
		d := meta.duration
		target := gtsync.TargetPosition(d, offset, wall)
		info.Duration = &d
		info.Target = &target
		info.Format = meta.format
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRaw serves the station file exactly as stored
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown station")
		return
	}

	buf, err := s.provider.Fetch(r.Context(), st.Stem)
	if err != nil {
		s.writeAudioError(w, st, err)
		return
	}

	w.Header().Set("Content-Type", contentType(buf))
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf)
}

// handleAudio serves the station as a playable PCM WAV. IMA ADPCM is only
// decoded when the server allows it and the request asks with ?decode=1.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown station")
		return
	}

	allow := s.config.DecodeADPCM && queryFlag(r, "decode")
	res, err := s.prepare(r.Context(), st, allow)
	if err != nil {
		s.writeAudioError(w, st, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Bytes)))
	w.Header().Set("X-Station-Format", res.Format)
	w.Header().Set("X-Station-Duration", strconv.FormatFloat(res.Duration, 'f', 3, 64))
	if res.Note != "" {
		w.Header().Set("X-Station-Note", res.Note)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.Bytes)
}

func (s *Server) handleOffset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.offsetResponse())
}

// handleSkip moves the shared offset and pushes a clock tick to every client
func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	var req skipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	offset, err := s.session.Skip(req.Delta)
	if err != nil {
		// The offset still moved; only persistence failed
		s.logger.Warnw("failed to persist offset", "offset", offset, "error", err)
	}
	s.logger.Infow("offset skipped", "delta", req.Delta, "offset", offset)

	s.broadcastTick()
	writeJSON(w, http.StatusOK, s.offsetResponse())
}

// handleImport copies station files from a game install into the import
// target and forgets learned durations.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Dir) == "" {
		writeError(w, http.StatusBadRequest, "dir is required")
		return
	}
	if s.config.ImportTarget == "" {
		writeError(w, http.StatusServiceUnavailable, "import target not configured")
		return
	}

	summary, err := s.importer.Import(r.Context(), filepath.Clean(req.Dir), s.config.ImportTarget)
	if err != nil {
		if errors.Is(err, assets.ErrNoAudio) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.durationsMu.Lock()
	s.durations = make(map[string]stationMeta)
	s.durationsMu.Unlock()

	writeJSON(w, http.StatusOK, summary)
}

// prepare fetches and resolves a station, remembering its duration
func (s *Server) prepare(ctx context.Context, st stations.Station, allowADPCM bool) (*playable.Result, error) {
	buf, err := s.provider.Fetch(ctx, st.Stem)
	if err != nil {
		return nil, err
	}
	res, err := playable.Prepare(buf, playable.Options{AllowADPCMDecode: allowADPCM})
	if err != nil {
		return nil, err
	}

	s.durationsMu.Lock()
	s.durations[st.ID] = stationMeta{duration: res.Duration, format: res.Format}
	s.durationsMu.Unlock()
	return res, nil
}

func (s *Server) cachedMeta(id string) (stationMeta, bool) {
	s.durationsMu.RLock()
	defer s.durationsMu.RUnlock()
	meta, ok := s.durations[id]
	return meta, ok
}

// lookup resolves a path id against station ids and stems, ignoring case
func (s *Server) lookup(id string) (stations.Station, bool) {
	for _, st := range s.game.Stations {
		if strings.EqualFold(st.ID, id) || strings.EqualFold(st.Stem, id) {
			return st, true
		}
	}
	return stations.Station{}, false
}

func (s *Server) offsetResponse() OffsetResponse {
	offset := s.session.Offset()
	wall := gtsync.SecondsSinceMidnight(s.config.Clock.Now())
	return OffsetResponse{Offset: offset, Clock: wall + float64(offset)}
}

func (s *Server) writeAudioError(w http.ResponseWriter, st stations.Station, err error) {
	var (
		unsupported *audio.UnsupportedFormatError
		formatErr   *audio.FormatError
		decodeErr   *audio.DecodeError
	)
	switch {
	case errors.Is(err, assets.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("no audio for %s", st.Stem))
	case errors.As(err, &unsupported):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.As(err, &formatErr), errors.As(err, &decodeErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Errorw("failed to serve station", "station", st.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func contentType(buf []byte) string {
	switch {
	case wav.IsRIFF(buf):
		return "audio/wav"
	case decode.IsFLAC(buf):
		return "audio/flac"
	case decode.IsMP3(buf):
		return "audio/mpeg"
	}
	return "application/octet-stream"
}

func queryFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
