package fulltext

import (
	"database/sql"
	"fmt"

	"gorm.io/gorm/clause"
)

// Registry maps tables to their search documents. It is filled while the
// application wires itself up and only read afterwards, so lookups take no
// lock.
type Registry struct {
	documents map[string]Document
	tables    []string
}

func NewRegistry(documents ...Document) (*Registry, error) {
	r := &Registry{documents: make(map[string]Document, len(documents))}

	for _, d := range documents {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds the document of a table. A table has at most one document.
func (r *Registry) Register(d Document) error {
	d = d.withDefaults()
	if err := d.validate(); err != nil {
		return err
	}

	if _, ok := r.documents[d.Table]; ok {
		return fmt.Errorf("table %q already has a search document", d.Table)
	}

	r.documents[d.Table] = d
	r.tables = append(r.tables, d.Table)

	return nil
}

// RegisterColumn appends a column to the document of table, creating the
// document with the default column name on first use.
func (r *Registry) RegisterColumn(table string, c Column) error {
	d, ok := r.documents[table]
	if !ok {
		return r.Register(Document{Table: table, Columns: []Column{c}})
	}

	d.Columns = append(d.Columns, c)
	if err := d.validate(); err != nil {
		return err
	}

	r.documents[table] = d

	return nil
}

func (r *Registry) Document(table string) (Document, bool) {
	d, ok := r.documents[table]
	return d, ok
}

// Documents returns all documents in registration order.
func (r *Registry) Documents() []Document {
	ret := make([]Document, 0, len(r.tables))
	for _, t := range r.tables {
		ret = append(ret, r.documents[t])
	}

	return ret
}

// Match returns the predicate matching search against the document of table
// selected as alias. An empty search matches every row.
func (r *Registry) Match(table, alias, search string) (clause.Expression, bool) {
	d, ok := r.documents[table]
	if !ok {
		return nil, false
	}

	return MatchExpr(alias, d.Column, search), true
}

// MatchExpr renders
//
//	(nullif(@search, '') IS NULL OR websearch_to_tsquery(@search) @@ "alias"."column")
func MatchExpr(alias, column, search string) clause.Expression {
	return clause.NamedExpr{
		SQL: fmt.Sprintf("(nullif(@search, '') IS NULL OR websearch_to_tsquery(@search) @@ %s.%s)",
			quote(alias), quote(column)),
		Vars: []any{sql.Named("search", search)},
	}
}
