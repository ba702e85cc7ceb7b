package http

import (
	"errors"
	"net/http"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/app"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/capture"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/clock"
)

// handleCaptureStart binds the shared capture device to this session.
// Device errors are session-fatal only; the operator falls back to manual
// entry.
func handleCaptureStart(w http.ResponseWriter, r *http.Request, s *app.Session, clk clock.Clock) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.StartCapture(r.Context()); err != nil {
		if errors.Is(err, capture.ErrNoDevice) {
			writeError(w, http.StatusConflict, codeNoCaptureDevice, "no capture device available")
			return
		}
		writeError(w, http.StatusConflict, codeCaptureFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s, clk.Now()))
}

func handleCaptureStop(w http.ResponseWriter, r *http.Request, s *app.Session, clk clock.Clock) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	s.StopCapture()
	writeJSON(w, http.StatusOK, toSessionResponse(s, clk.Now()))
}
