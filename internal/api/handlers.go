package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oakfield-av/lumen-core/internal/controller"
	"github.com/oakfield-av/lumen-core/internal/dmx"
)

// commandReply is the JSON shape of a controller command outcome.
type commandReply struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// universeBody is the JSON shape of a full universe, used for both reads
// and replacements. Channels are listed from channel 1 upward; a short
// list leaves the remaining channels at zero.
type universeBody struct {
	Channels []int `json:"channels"`
}

// handlePlayFade submits one fade to the dispatch loop.
//
// A malformed body is rejected here; a well-formed fade the driver cannot
// apply (unreachable channel, closed output) comes back as ok=false with
// the driver's reason.
func (s *Server) handlePlayFade(w http.ResponseWriter, r *http.Request) {
	var msg dmx.FadeMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeBadRequest(w, "invalid fade body: "+err.Error())
		return
	}

	fade, err := msg.Fade()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	reply, err := s.ctrl.Submit(r.Context(), controller.PlayFade{Fade: fade})
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	if !reply.OK {
		writeJSON(w, http.StatusBadRequest, commandReply{OK: false, Message: reply.Message})
		return
	}

	writeJSON(w, http.StatusAccepted, commandReply{OK: true, Message: reply.Message})
}

// handleGetUniverse returns the current output state.
func (s *Server) handleGetUniverse(w http.ResponseWriter, r *http.Request) {
	reply, err := s.ctrl.Submit(r.Context(), controller.GetUniverse{})
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}

	raw := reply.Universe.Bytes()
	channels := make([]int, len(raw))
	for i, v := range raw {
		channels[i] = int(v)
	}

	writeJSON(w, http.StatusOK, universeBody{Channels: channels})
}

// handleReplaceUniverse swaps the entire output state.
func (s *Server) handleReplaceUniverse(w http.ResponseWriter, r *http.Request) {
	var body universeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid universe body: "+err.Error())
		return
	}
	if len(body.Channels) > dmx.ChannelCount {
		writeBadRequest(w, "universe has more than 512 channels")
		return
	}

	raw := make([]byte, len(body.Channels))
	for i, v := range body.Channels {
		if v < 0 || v > 255 {
			writeBadRequest(w, "channel values must be 0..255")
			return
		}
		raw[i] = byte(v)
	}

	reply, err := s.ctrl.Submit(r.Context(), controller.ReplaceUniverse{
		Universe: dmx.FromBytes(raw),
	})
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commandReply{OK: reply.OK, Message: reply.Message})
}

// handleShutdown asks the dispatch loop to stop. Commands already queued
// are processed first; the HTTP server itself stays up until the process
// winds down.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	reply, err := s.ctrl.Submit(r.Context(), controller.Shutdown{})
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commandReply{OK: reply.OK, Message: reply.Message})
}

// writeSubmitError maps a Submit failure to an HTTP response.
func (s *Server) writeSubmitError(w http.ResponseWriter, err error) {
	if errors.Is(err, controller.ErrStopped) {
		writeUnavailable(w, "controller is shutting down")
		return
	}
	writeInternalError(w, err.Error())
}
