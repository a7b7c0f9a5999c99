// internal/server/schemas.go
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"acadezone-chatbot/internal/common/validation"
)

var createSessionSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"pageUrl":  map[string]interface{}{"type": "string"},
		"referrer": map[string]interface{}{"type": "string"},
	},
	"additionalProperties": false,
}

var messageSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"sessionId", "event"},
	"properties": map[string]interface{}{
		"sessionId": map[string]interface{}{"type": "string", "minLength": 1},
		"event": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"kind", "value"},
			"properties": map[string]interface{}{
				"kind": map[string]interface{}{
					"type": "string",
					"enum": []interface{}{"text", "optionSelected"},
				},
				"value": map[string]interface{}{"type": "string"},
			},
			"additionalProperties": false,
		},
	},
	"additionalProperties": false,
}

// decodeAndValidate reads the request body and checks it against the given
// schema. An empty body is treated as an empty object.
func decodeAndValidate(r *http.Request, schema map[string]interface{}) (map[string]interface{}, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed JSON body")
	}
	if err := validation.MustBeValid(payload, schema); err != nil {
		return nil, err
	}
	return payload, nil
}
