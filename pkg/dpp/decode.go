package dpp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

type document = map[string]any

// decodeDocument decodes the top-level JSON object of a DPP message.
// Numbers are kept as json.Number so integer fields can be told apart from floats.
func decodeDocument(data []byte, maxSize int, oversizedMessage string) (document, error) {
	if len(data) > maxSize {
		return nil, NewEncodingError(oversizedMessage, nil)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, NewEncodingError("Invalid JSON document: "+err.Error(), err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, NewEncodingError("Invalid JSON document: unexpected data after the top-level value", err)
	}

	doc, ok := value.(document)
	if !ok {
		return nil, schemaError("Invalid JSON document: expected an object")
	}
	return doc, nil
}

// lookup returns the value of the field, treating JSON null as absent.
func lookup(doc document, key string) (any, bool) {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

func asMapping(value any) (document, bool) {
	mapping, ok := value.(document)
	return mapping, ok
}

func asString(value any) (string, bool) {
	str, ok := value.(string)
	return str, ok
}

func asInt64(value any) (int64, bool) {
	number, ok := value.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := number.Int64()
	return i, err == nil
}

func asUint64(value any) (uint64, bool) {
	number, ok := value.(json.Number)
	if !ok {
		return 0, false
	}
	u, err := strconv.ParseUint(number.String(), 10, 64)
	return u, err == nil
}

func optionalString(doc document, key, corruptMessage string) (*string, error) {
	value, ok := lookup(doc, key)
	if !ok {
		return nil, nil
	}
	str, ok := asString(value)
	if !ok {
		return nil, schemaError("%s", corruptMessage)
	}
	return &str, nil
}

func optionalMapping(doc document, key, corruptMessage string) (document, error) {
	value, ok := lookup(doc, key)
	if !ok {
		return nil, nil
	}
	mapping, ok := asMapping(value)
	if !ok {
		return nil, schemaError("%s", corruptMessage)
	}
	return mapping, nil
}

// encodeJSON marshals the value without HTML escaping and without the trailing newline.
func encodeJSON(value any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
