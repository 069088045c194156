package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot формирует читаемый снимок записи для журнала конфликтов:
// JSON объект с фиксированным порядком ключей.
func Snapshot(clientID string, r Record) (string, error) {
	fields := make([]Field, 0, 8)
	fields = append(fields,
		Field{Name: "Client Id", Value: clientID},
		Field{Name: "Kind", Value: r.Kind().DisplayName()},
		Field{Name: "Id", Value: r.GetID()},
	)
	fields = append(fields, r.Fields()...)
	fields = append(fields,
		Field{Name: "Modified At", Value: r.Modified().String()},
		Field{Name: "Delete Flag", Value: r.IsDeleted()},
	)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return "", fmt.Errorf("failed to encode snapshot key: %w", err)
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return "", fmt.Errorf("failed to encode snapshot field %s: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return "", fmt.Errorf("failed to indent snapshot: %w", err)
	}
	return out.String(), nil
}
