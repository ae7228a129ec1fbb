package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
)

// ReadJSON reads a JSON file and unmarshals its contents into a map
func ReadJSON(path string) (map[string]interface{}, error) {
	if !fsutil.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
	}

	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}

	return DecodeObject(data)
}

// DecodeObject decodes a JSON document whose top level must be an object.
// Numbers are kept as json.Number so re-encoding preserves their text.
func DecodeObject(data []byte) (map[string]interface{}, error) {
	var result map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
	}
	return result, nil
}

// Canonical renders value as a string. Strings pass through verbatim, nil
// becomes "", and everything else is compact JSON with sorted object keys.
func Canonical(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(normalize(value)); err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrInvalidArgument, err.Error())
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Unmarshal decodes a JSON params string into out, rejecting unknown shapes
// with ErrInvalidArgument.
func Unmarshal(params string, out interface{}) error {
	if strings.TrimSpace(params) == "" {
		return fmt.Errorf("%w: empty JSON document", errors.ErrInvalidArgument)
	}
	if err := json.Unmarshal([]byte(params), out); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidArgument, err.Error())
	}
	return nil
}

// normalize converts map[interface{}]interface{} values, as produced by some
// YAML and plist decoders, into string-keyed maps encoding/json accepts.
func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = normalize(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	default:
		return value
	}
}
