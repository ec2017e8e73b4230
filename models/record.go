package models

import (
	"fmt"
	"strconv"
)

// Record is a single PM2.5 measurement row.
// Datetime is stored as the upstream UTC timestamp string and is not parsed.
type Record struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Datetime string  `gorm:"not null" json:"datetime"`
	Value    float64 `gorm:"not null" json:"value"`
}

// TableName keeps the table name stable across refresh modes.
func (Record) TableName() string {
	return "records"
}

// String renders the debug representation, e.g. "Record: 1, 2023-10-18T00:00:00Z, 12.5".
func (r Record) String() string {
	return fmt.Sprintf("Record: %d, %s, %s", r.ID, r.Datetime, strconv.FormatFloat(r.Value, 'f', -1, 64))
}
