// json.go
//
// Document analysis versioning and provenance service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of docanalysis.
// docanalysis is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docanalysis is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docanalysis.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package models

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONDoc is a typed JSON column built on gorm.io/datatypes.JSONType
// that maps to a per-dialect column type.
type JSONDoc[T any] struct {
	datatypes.JSONType[T]
}

// NewJSONDoc wraps a value for storage
func NewJSONDoc[T any](v T) JSONDoc[T] {
	return JSONDoc[T]{datatypes.NewJSONType(v)}
}

// Value stores the document as a JSON string so NVARCHAR columns accept it
func (j JSONDoc[T]) Value() (driver.Value, error) {
	out, err := json.Marshal(j.Data())
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

// Scan promotes the embedded JSONType's Scan method
func (j *JSONDoc[T]) Scan(value interface{}) error {
	return j.JSONType.Scan(value)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL does not support a 'json' data type.
func (JSONDoc[T]) GormDBDataType(db *gorm.DB, field *schema.Field) string {
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
