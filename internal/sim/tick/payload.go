package tick

import (
	"encoding/json"
	"time"
)

// CompletePayload is the body of the tick.complete event.
type CompletePayload struct {
	TickID     string       `json:"tick_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepResult `json:"steps"`
	Failed     int          `json:"failed"`
}

func encodeRun(run *TickRun) ([]byte, error) {
	return json.Marshal(run)
}

// CompleteSchema describes CompletePayload for subscribers.
const CompleteSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tick_id", "started_at", "finished_at", "steps", "failed"],
  "properties": {
    "tick_id": {"type": "string", "minLength": 1},
    "started_at": {"type": "string"},
    "finished_at": {"type": "string"},
    "failed": {"type": "integer", "minimum": 0},
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "succeeded", "duration_ms"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "succeeded": {"type": "boolean"},
          "error": {"type": "string"},
          "duration_ms": {"type": "number", "minimum": 0}
        }
      }
    }
  }
}`
