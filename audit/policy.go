package audit

import (
	"github.com/samber/lo"
	"gorm.io/gorm/schema"
)

// DefaultOptOut lists the tables that are never audited: the change log
// itself and the tables holding credentials.
var DefaultOptOut = []string{Table, "users", "user_roles"}

// Policy decides which writes are logged. It is built once at startup and
// only read afterwards.
type Policy struct {
	optOut map[string]struct{}
}

// NewPolicy returns a policy that skips the given tables. The change log
// table is always skipped.
func NewPolicy(optOut ...string) *Policy {
	p := &Policy{optOut: make(map[string]struct{}, len(optOut)+1)}
	for _, table := range append(optOut, Table) {
		p.optOut[table] = struct{}{}
	}

	return p
}

// OptedOut reports whether table is excluded by configuration.
func (p *Policy) OptedOut(table string) bool {
	_, ok := p.optOut[table]
	return ok
}

// Eligible reports whether writes to the entity described by s are logged.
// Entities without a single primary key cannot be addressed by a record, and
// pure association tables carry nothing but keys.
func (p *Policy) Eligible(s *schema.Schema) bool {
	if s == nil || p.OptedOut(s.Table) {
		return false
	}

	if len(s.PrimaryFields) != 1 {
		return false
	}

	columns := lo.Filter(s.Fields, func(f *schema.Field, _ int) bool { return f.DBName != "" })
	if len(columns) == len(s.PrimaryFields) {
		return false
	}

	return true
}
