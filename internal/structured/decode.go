// Package structured decodes JSON-mode completion text for callers that
// need a value rather than a string.
package structured

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"

	"aigateway/internal/core"
)

// Messages reported when completion text cannot be decoded. The admin
// route uses InvalidResponseMessage, every other route InvalidJSONMessage.
const (
	InvalidJSONMessage     = "AI returned invalid JSON"
	InvalidResponseMessage = "AI returned invalid response"
)

// Decode parses raw as JSON, reporting failures with InvalidJSONMessage.
func Decode(raw string) (interface{}, error) {
	return DecodeWithMessage(raw, InvalidJSONMessage)
}

// DecodeWithMessage parses raw as JSON. Text that is not valid JSON gets one
// syntactic repair attempt (trailing commas, single quotes, truncated
// brackets); a repair is only accepted when it yields an object or an array,
// so plain prose is never turned into a JSON string. Failures are reported
// as a malformed response carrying message.
func DecodeWithMessage(raw, message string) (interface{}, error) {
	raw = strings.TrimSpace(raw)

	if gjson.Valid(raw) {
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, core.NewMalformedResponseError(message, err)
	}
	if gjson.Parse(repaired).Type != gjson.JSON {
		return nil, core.NewMalformedResponseError(message, nil)
	}

	var v interface{}
	if err := json.Unmarshal([]byte(repaired), &v); err != nil {
		return nil, core.NewMalformedResponseError(message, err)
	}
	return v, nil
}
