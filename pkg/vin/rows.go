package vin

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one entry of the API's Results array.
type Row struct {
	Variable string
	Value    *string
	ValueID  *string
	// Fields holds the row as decoded, including keys not mapped above.
	Fields map[string]interface{}
}

// rowIndex maps attribute names to rows. The first row with a given name wins.
type rowIndex map[string]Row

func newRowIndex(rows []Row) rowIndex {
	idx := make(rowIndex, len(rows))
	for _, r := range rows {
		if _, seen := idx[r.Variable]; !seen {
			idx[r.Variable] = r
		}
	}
	return idx
}

func (idx rowIndex) value(name string) *string {
	if r, ok := idx[name]; ok {
		return r.Value
	}
	return nil
}

func (idx rowIndex) valueID(name string) *string {
	if r, ok := idx[name]; ok {
		return r.ValueID
	}
	return nil
}

// parseRows projects the generic Results tree into rows.
func parseRows(results interface{}) ([]Row, error) {
	list, ok := results.([]interface{})
	if !ok {
		return nil, fmt.Errorf("Results is %s, expected an array", jsonKind(results))
	}

	rows := make([]Row, 0, len(list))
	for i, item := range list {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("Results[%d] is %s, expected an object", i, jsonKind(item))
		}
		variable, _ := fields["Variable"].(string)
		rows = append(rows, Row{
			Variable: variable,
			Value:    scalarString(fields["Value"]),
			ValueID:  scalarString(fields["ValueId"]),
			Fields:   fields,
		})
	}
	return rows, nil
}

// scalarString renders a JSON scalar as text; null and containers are absent.
func scalarString(v interface{}) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	return &s
}

// leadingInt parses the integer prefix of s, so "1,14" yields 1.
// It reports false when s does not start with a number.
func leadingInt(s *string) (int, bool) {
	if s == nil {
		return 0, false
	}
	str := strings.TrimSpace(*s)

	end := 0
	if end < len(str) && (str[end] == '-' || str[end] == '+') {
		end++
	}
	digits := end
	for end < len(str) && str[end] >= '0' && str[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(str[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "an object"
	case []interface{}:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
