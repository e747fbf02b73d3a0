package models

import (
	"github.com/Alp4ka/quizhub/audit"
)

// AuditPolicy excludes credentials and the change log from auditing. The role
// junction table is excluded structurally.
func AuditPolicy() *audit.Policy {
	return audit.NewPolicy(audit.DefaultOptOut...)
}

// NewChangeID is the identifier generator of change records.
func NewChangeID() string {
	return NewID(TypeChange)
}
