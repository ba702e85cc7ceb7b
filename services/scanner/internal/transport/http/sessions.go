package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/app"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/clock"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

// SessionStore is the minimal surface of the session manager the transport
// needs.
type SessionStore interface {
	Create() *app.Session
	Get(id string) (*app.Session, error)
	Remove(id string) error
}

// HandleSessions returns the handler for the /sessions collection.
func HandleSessions(store SessionStore, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		s := store.Create()
		writeJSON(w, http.StatusCreated, toSessionResponse(s, clk.Now()))
	}
}

// HandleSession routes /sessions/{id} and /sessions/{id}/{action}.
func HandleSession(store SessionStore, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, action, ok := parseSessionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		s, err := store.Get(id)
		if err != nil {
			writeError(w, http.StatusNotFound, codeSessionNotFound, "session not found")
			return
		}

		switch action {
		case "":
			switch r.Method {
			case http.MethodGet:
				writeJSON(w, http.StatusOK, toSessionResponse(s, clk.Now()))
			case http.MethodDelete:
				if err := store.Remove(id); err != nil {
					writeError(w, http.StatusNotFound, codeSessionNotFound, "session not found")
					return
				}
				w.WriteHeader(http.StatusNoContent)
			default:
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			}
		case "scan":
			handleScan(w, r, s, clk)
		case "manual":
			handleManual(w, r, s, clk)
		case "checkin":
			handleCheckin(w, r, s, clk)
		case "clear":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			s.Clear()
			writeJSON(w, http.StatusOK, toSessionResponse(s, clk.Now()))
		case "mode":
			handleMode(w, r, s, clk)
		case "capture/start":
			handleCaptureStart(w, r, s, clk)
		case "capture/stop":
			handleCaptureStop(w, r, s, clk)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func handleMode(w http.ResponseWriter, r *http.Request, s *app.Session, clk clock.Clock) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req modeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	switch app.InputMode(req.Mode) {
	case app.ModeScan, app.ModeManual:
		s.SetMode(app.InputMode(req.Mode))
	default:
		writeError(w, http.StatusBadRequest, codeInvalidInputType, "mode must be scan or manual")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s, clk.Now()))
}

// parseSessionPath splits /sessions/{id}[/{action}]. Capture actions come
// back as "capture/start" style composites.
func parseSessionPath(path string) (id, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "sessions" || parts[1] == "" {
		return "", "", false
	}
	id = parts[1]
	switch len(parts) {
	case 2:
		return id, "", true
	case 3:
		return id, parts[2], true
	case 4:
		if parts[2] == "capture" {
			return id, "capture/" + parts[3], true
		}
	}
	return "", "", false
}

func isParseError(err error) bool {
	return errors.Is(err, domain.ErrEmptyPayload) ||
		errors.Is(err, domain.ErrUnrecognizedPayload) ||
		errors.Is(err, domain.ErrAmbiguousPayload) ||
		errors.Is(err, domain.ErrInvalidToken)
}
