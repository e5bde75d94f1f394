package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a string slice stored in a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return data, nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported string list column type %T", src)
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("unmarshal string list: %w", err)
	}
	return nil
}
