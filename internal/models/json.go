package models

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a wrapper around gorm.io/datatypes.JSON so config columns get a
// per-dialect column type.
type JSON struct {
	datatypes.JSON
}

// NewJSON encodes v into a JSON column value.
func NewJSON(v any) (JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return JSON{}, err
	}
	return JSON{JSON: datatypes.JSON(b)}, nil
}

// MustJSON is NewJSON for values that always encode (validated config structs).
func MustJSON(v any) JSON {
	j, err := NewJSON(v)
	if err != nil {
		panic(err)
	}
	return j
}

// Raw returns the stored bytes, or nil for an empty column.
func (j JSON) Raw() json.RawMessage {
	if len(j.JSON) == 0 {
		return nil
	}
	return json.RawMessage(j.JSON)
}

// Value promotes the embedded JSON's Value method
func (j JSON) Value() (driver.Value, error) {
	if len(j.JSON) == 0 {
		return nil, nil
	}
	return j.JSON.Value()
}

// Scan promotes the embedded JSON's Scan method
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		j.JSON = nil
		return nil
	}
	return j.JSON.Scan(value)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL does not support the 'json' data type.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
