package vin

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/vinquery/nhtsavin/pkg/shared/errors"
)

const (
	// MsgInvalidJSON is reported when the body cannot be parsed.
	MsgInvalidJSON = "Response is not valid JSON"
	// MsgMissingErrorCode is reported when the Error Code row has no numeric ValueId.
	MsgMissingErrorCode = "Error Code is missing from response"

	// maxValidErrorCode is the first error code that means the VIN was not decoded.
	maxValidErrorCode = 4
)

var executionErrorPattern = regexp.MustCompile(`(?i)execution error`)

// outcome is the result of validating a decodevin payload.
type outcome struct {
	valid     bool
	message   string
	errorCode *int
	err       error
	rows      []Row
	index     rowIndex
}

// validate classifies a raw response body.
// Only contract violations are returned as an error; they carry the raw body.
func validate(raw string) (outcome, error) {
	var payload interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return outcome{
			message: MsgInvalidJSON,
			err:     fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err),
		}, nil
	}

	document, ok := payload.(map[string]interface{})
	if !ok {
		return outcome{}, errors.NewParseFault(raw, fmt.Errorf("response is %s, expected an object", jsonKind(payload)))
	}

	if msg, ok := document["Message"].(string); ok && executionErrorPattern.MatchString(msg) {
		detail := firstResultMessage(document["Results"])
		return outcome{
			message: detail,
			err:     fmt.Errorf("%w: %s", errors.ErrRemoteRejection, msg),
		}, nil
	}

	rows, err := parseRows(document["Results"])
	if err != nil {
		return outcome{}, errors.NewParseFault(raw, err)
	}
	idx := newRowIndex(rows)
	out := outcome{rows: rows, index: idx}

	code, ok := leadingInt(idx.valueID(attrErrorCode))
	if !ok {
		out.message = MsgMissingErrorCode
		if value := idx.value(attrErrorCode); value != nil && *value != "" {
			out.message = *value
		}
		out.err = fmt.Errorf("%w: %s", errors.ErrDecodeFailure, out.message)
		return out, nil
	}

	out.errorCode = &code
	if code < maxValidErrorCode {
		out.valid = true
		return out, nil
	}

	if value := idx.value(attrErrorCode); value != nil {
		out.message = *value
	}
	out.err = fmt.Errorf("%w: error code %d", errors.ErrDecodeFailure, code)
	return out, nil
}

// firstResultMessage returns Results[0].Message when the API supplied one.
func firstResultMessage(results interface{}) string {
	list, ok := results.([]interface{})
	if !ok || len(list) == 0 {
		return ""
	}
	first, ok := list[0].(map[string]interface{})
	if !ok {
		return ""
	}
	msg, _ := first["Message"].(string)
	return msg
}
