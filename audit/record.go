package audit

import (
	"time"
)

// Kind is the mutation a ChangeRecord logs.
type Kind string

const (
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindRemove Kind = "REMOVE"
)

func (k Kind) Valid() bool {
	switch k {
	case KindInsert, KindUpdate, KindRemove:
		return true
	}

	return false
}

// ChangeRecord is one entry of the change log. An UPDATE produces one record
// per changed column; INSERT and REMOVE produce one record without a column.
// Records are never modified after they are written.
type ChangeRecord struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	Kind             Kind      `gorm:"not null" json:"kind"`
	TargetEntityName string    `gorm:"not null;index" json:"targetEntityName"`
	TargetID         string    `gorm:"not null;index" json:"targetId"`
	TargetColumn     *string   `json:"targetColumn,omitempty"`
	NewColumnValue   *string   `json:"newColumnValue,omitempty"`
	CreatedAt        time.Time `gorm:"not null;index" json:"createdAt"`
}

// TableName is opted out of auditing by DefaultOptOut.
func (ChangeRecord) TableName() string {
	return Table
}

// Table holds the change log.
const Table = "changes"
