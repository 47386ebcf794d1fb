package main

import (
	"net/http"

	"github.com/go-chi/render"
)

//---
// Views
//---

// Status returns the current actuator snapshot.
func Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ENV.Conductor.Robot.GetState())
}

// Health reports whether a live bus is attached and the current rate limit.
// Nothing in the core depends on this; it exists for operators.
func Health(w http.ResponseWriter, r *http.Request) {
	tx := ENV.Conductor.Transmitter
	render.JSON(w, r, map[string]interface{}{
		"status":           "ok",
		"i2c_available":    tx.Connected(),
		"send_interval_ms": int(tx.Interval().Seconds() * 1000),
		"last_send":        tx.LastSend(),
	})
}

//---
// Error responses
//---

type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrUnauthorized(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized.",
		ErrorText:      err.Error(),
	}
}

func ErrPermissionDenied(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied.",
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
