package vapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/j-veylop/vapi-call-browser/internal/models"
)

// endedReasonLabels maps known Vapi end-reason codes to display labels.
// Unrecognized codes pass through unchanged.
var endedReasonLabels = map[string]string{
	"customer-ended-call":  "Customer Ended",
	"assistant-ended-call": "Assistant Ended",
	"system-ended-call":    "System Ended",
	"error":                "Error",
}

// rawCall mirrors the subset of a Vapi call object this program reads.
type rawCall struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	EndedAt   string `json:"endedAt"`
	Customer  struct {
		Number string `json:"number"`
	} `json:"customer"`
	Artifact struct {
		Transcript string `json:"transcript"`
	} `json:"artifact"`
	Analysis struct {
		Summary string `json:"summary"`
	} `json:"analysis"`
	Cost          json.RawMessage `json:"cost"`
	CostBreakdown map[string]any  `json:"costBreakdown"`
	EndedReason   string          `json:"endedReason"`
}

// ParseCall decodes one raw Vapi call object into a CallRecord. Timestamps
// arrive as UTC RFC3339 text and come back as local-zone instants; a missing
// endedAt defaults to createdAt, so such calls report zero duration.
func ParseCall(data []byte) (models.CallRecord, error) {
	var raw rawCall
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.CallRecord{}, fmt.Errorf("malformed call object: %w", err)
	}
	if raw.ID == "" {
		return models.CallRecord{}, fmt.Errorf("call object has no id")
	}

	start, err := time.Parse(time.RFC3339, raw.CreatedAt)
	if err != nil {
		return models.CallRecord{}, fmt.Errorf("bad createdAt %q: %w", raw.CreatedAt, err)
	}

	end := start
	if raw.EndedAt != "" {
		end, err = time.Parse(time.RFC3339, raw.EndedAt)
		if err != nil {
			return models.CallRecord{}, fmt.Errorf("bad endedAt %q: %w", raw.EndedAt, err)
		}
	}

	reason := raw.EndedReason
	if label, ok := endedReasonLabels[reason]; ok {
		reason = label
	}

	return models.CallRecord{
		ID:            raw.ID,
		Caller:        raw.Customer.Number,
		Transcript:    raw.Artifact.Transcript,
		Summary:       raw.Analysis.Summary,
		Start:         start.Local(),
		End:           end.Local(),
		Cost:          parseCost(raw.Cost),
		CostBreakdown: numericEntries(raw.CostBreakdown),
		EndedReason:   reason,
	}, nil
}

// parseCost accepts the two shapes Vapi uses: a bare number, or an object
// whose total field carries the number. Anything else is zero.
func parseCost(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var obj struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Total
	}

	return 0
}

// numericEntries keeps only the numeric values of a cost breakdown, dropping
// nested objects and other non-numeric noise.
func numericEntries(m map[string]any) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if n, ok := v.(float64); ok {
			out[k] = n
		}
	}
	return out
}
