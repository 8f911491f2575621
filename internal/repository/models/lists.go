package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// listDelimiter joins numeric lists in a single text column.
const listDelimiter = "|"

// IntList stores a list of integers as a delimiter-joined string, e.g. "4|9|12".
type IntList []int64

// Value implements the driver.Valuer interface
func (l IntList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "", nil
	}
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, listDelimiter), nil
}

// Scan implements the sql.Scanner interface
func (l *IntList) Scan(value interface{}) error {
	raw, err := scanText(value)
	if err != nil {
		return fmt.Errorf("IntList: %w", err)
	}
	if raw == "" {
		*l = IntList{}
		return nil
	}

	parts := strings.Split(raw, listDelimiter)
	out := make(IntList, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return fmt.Errorf("IntList: element %d %q is not an integer: %w", i, p, err)
		}
		out[i] = v
	}
	*l = out
	return nil
}

// Ints converts to []int.
func (l IntList) Ints() []int {
	out := make([]int, len(l))
	for i, v := range l {
		out[i] = int(v)
	}
	return out
}

// IntListOf builds an IntList from []int.
func IntListOf(values []int) IntList {
	out := make(IntList, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}

// StringList stores free text items as a JSON array, since user text may
// contain any delimiter.
type StringList []string

// Value implements the driver.Valuer interface
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (s *StringList) Scan(value interface{}) error {
	raw, err := scanText(value)
	if err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	if raw == "" || raw == "null" {
		*s = StringList{}
		return nil
	}
	return json.Unmarshal([]byte(raw), s)
}

func scanText(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T", value)
	}
}
