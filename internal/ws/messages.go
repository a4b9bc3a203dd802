package ws

import (
	"encoding/json"

	"solar_analyzer/internal/analysis"
	"solar_analyzer/internal/model"
)

// Envelope wraps all WebSocket messages with a type discriminator. RunID
// ties stage and report messages to one analysis run.
type Envelope struct {
	Type    string          `json:"type"`
	RunID   string          `json:"run_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> Server messages

// RunPayload asks for a new analysis. Config, when present, is a partial
// site configuration merged over the server's.
type RunPayload struct {
	Config json.RawMessage `json:"config,omitempty"`
}

// Server -> Client messages

type StagePayload struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type DataLoadedPayload struct {
	Site      string          `json:"site"`
	Sources   []string        `json:"sources"`
	Records   int             `json:"records"`
	DateRange model.DateRange `json:"date_range"`
}

// Message type constants
const (
	// Client -> Server
	TypeAnalysisRun = "analysis:run"
	TypeReportGet   = "report:get"

	// Server -> Client
	TypeDataLoaded    = "data:loaded"
	TypeAnalysisStage = "analysis:stage"
	TypeReportReady   = "report:ready"
	TypeReportError   = "report:error"
)

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	return NewRunEnvelope(msgType, "", payload)
}

func NewRunEnvelope(msgType, runID string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, RunID: runID, Payload: raw})
}

func StageFromAnalysis(s analysis.Stage) StagePayload {
	return StagePayload{
		Name:  s.Name,
		Index: s.Index,
		Total: s.Total,
	}
}
