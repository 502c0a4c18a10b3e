package server

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/pipeline"
)

const (
	statusProcessing = "processing"
	statusDone       = "done"
	statusError      = "error"

	wsReadTimeout = 60 * time.Second
)

// wsRequest is one detection request sent over the websocket.
type wsRequest struct {
	Model     string   `json:"model"`
	Threshold *float32 `json:"threshold"`
	// Image is the base64 encoded JPEG, PNG or WebP file.
	Image string `json:"image"`
}

// wsResponse is a status frame. Done frames carry the detection result.
type wsResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	*detectResponse
}

// handleDetectWS serves one detection per incoming message. Each request is
// answered by a processing frame followed by a done or error frame.
func (s *Server) handleDetectWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Base64 grows the payload by a third.
	conn.SetReadLimit(s.opts.MaxUploadBytes*4/3 + 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		var msg wsRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.WithError(err).Debug("websocket closed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		if err := conn.WriteJSON(wsResponse{Status: statusProcessing}); err != nil {
			return
		}

		resp := s.detectMessage(r, msg)
		if err := conn.WriteJSON(resp); err != nil {
			s.log.WithError(err).Warn("failed to write websocket result")
			return
		}
	}
}

func (s *Server) detectMessage(r *http.Request, msg wsRequest) wsResponse {
	req, err := s.parseMessage(msg)
	if err != nil {
		return wsResponse{Status: statusError, Error: err.Error()}
	}

	result, err := s.runner.Run(r.Context(), req)
	if err != nil {
		return wsResponse{Status: statusError, Error: err.Error()}
	}

	resp, err := newDetectResponse(result)
	if err != nil {
		return wsResponse{Status: statusError, Error: err.Error()}
	}
	return wsResponse{Status: statusDone, detectResponse: resp}
}

func (s *Server) parseMessage(msg wsRequest) (pipeline.Request, error) {
	req, err := s.parseSettings(msg.Model, "")
	if err != nil {
		return req, err
	}
	if msg.Threshold != nil {
		req.Threshold = *msg.Threshold
	}

	if msg.Image == "" {
		return req, pipeline.ErrNoImage
	}
	data, err := base64.StdEncoding.DecodeString(msg.Image)
	if err != nil {
		return req, errors.Wrap(errBadUpload, "image is not valid base64")
	}
	img, _, err := images.DecodeBytes(data)
	if err != nil {
		return req, errors.Wrap(errBadUpload, err.Error())
	}
	req.Image = img
	return req, nil
}
