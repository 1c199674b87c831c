package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"parley/agent/internal/config"
	"parley/agent/internal/tools"
)

// maxArgsBytes caps a tool-invocation body; spoken-intent arguments are tiny.
const maxArgsBytes = 1 << 16

type Handlers struct {
	cfg config.Config
	reg *tools.Registry
}

func NewHandlers(cfg config.Config, reg *tools.Registry) *Handlers {
	return &Handlers{cfg: cfg, reg: reg}
}

// HandleListTools returns the scenario's tool set in registration order.
func (h *Handlers) HandleListTools(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"tools": h.reg.List()})
}

// HandleInvokeTool runs one tool. The body is the args object itself; an
// empty body means no arguments. Every outcome, including soft failures, is
// a 200 with the structured result; only transport-level problems get error
// statuses.
func (h *Handlers) HandleInvokeTool(w http.ResponseWriter, r *http.Request, name string) {
	if !h.reg.Has(name) {
		http.NotFound(w, r)
		return
	}

	var args map[string]any
	body, err := io.ReadAll(io.LimitReader(r.Body, maxArgsBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			http.Error(w, "args must be a JSON object", http.StatusBadRequest)
			return
		}
	}

	res := h.reg.Invoke(r.Context(), name, args)
	log.Printf("api: tool %s -> %s", name, res.Status)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  res.Status.String(),
		"message": res.Text(),
		"data":    res.Data,
	})
}
