package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject is returned when a response holds no JSON object.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// ParseJSON unmarshals the outermost JSON object in response into T. LLMs
// tend to wrap their answer in prose or markdown fences; everything before
// the first '{' and after the last '}' is ignored.
func ParseJSON[T any](response string) (T, error) {
	var result T

	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start == -1 || end < start {
		return result, ErrNoJSONObject
	}

	data := response[start : end+1]
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, data)
	}
	return result, nil
}
