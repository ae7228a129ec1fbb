// Package plistutil reads property list documents.
package plistutil

import (
	"bytes"
	"fmt"
	"os"

	"howett.net/plist"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
)

// ReadPlist reads a property list file (XML, binary, OpenStep or GNUStep)
// and returns its top-level dictionary
func ReadPlist(path string) (map[string]interface{}, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("%w: %s", errors.ErrPathNotAccessible, path)
	}
	return Decode(data)
}

// Decode parses plist bytes into a dictionary
func Decode(data []byte) (map[string]interface{}, error) {
	var result map[string]interface{}
	decoder := plist.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, err.Error())
	}
	return result, nil
}

// Encode renders value as an indented XML plist
func Encode(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := plist.NewEncoderForFormat(&buf, plist.XMLFormat)
	encoder.Indent("\t")
	if err := encoder.Encode(value); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}
	return buf.Bytes(), nil
}
