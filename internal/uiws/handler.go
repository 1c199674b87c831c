package uiws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	ws "nhooyr.io/websocket"
)

// Control message types accepted from frontends. Only state snapshot and
// restore are inbound; everything else on this channel flows outward.
const (
	TypeSaveReq  = "SAVE_REQ"
	TypeSaveResp = "SAVE_RESP"
	TypeLoadReq  = "LOAD_REQ"
	TypeLoadResp = "LOAD_RESP"
)

// ControlMessage is the inbound envelope: SAVE_REQ carries no state,
// LOAD_REQ carries the state object to restore.
type ControlMessage struct {
	Type  string          `json:"type"`
	State json.RawMessage `json:"state,omitempty"`
}

// Server accepts UI subscriber connections and routes their control
// messages. OnControl, when set, handles SAVE_REQ/LOAD_REQ and may return a
// reply envelope sent only to the requesting connection.
type Server struct {
	Reg       *Registry
	OnControl func(msg ControlMessage) *Envelope
}

func NewServer(reg *Registry) *Server {
	return &Server{Reg: reg}
}

func (s *Server) HandleUI(w http.ResponseWriter, r *http.Request) {
	c, err := ws.Accept(w, r, nil)
	if err != nil {
		log.Printf("uiws accept: %v", err)
		return
	}
	id := uuid.New().String()
	s.Reg.Add(id, c)
	log.Printf("uiws: subscriber %s connected", id)

	ctx := r.Context()
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			break
		}
		if typ != ws.MessageText && typ != ws.MessageBinary {
			continue
		}
		var msg ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("uiws: invalid control message from %s: %v", id, err)
			continue
		}
		if s.OnControl == nil {
			continue
		}
		if reply := s.OnControl(msg); reply != nil {
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, ws.MessageText, mustJSON(*reply))
			cancel()
			if err != nil {
				break
			}
		}
	}
	_ = c.Close(ws.StatusNormalClosure, "done")
	s.Reg.Remove(id)
	log.Printf("uiws: subscriber %s disconnected", id)
}
