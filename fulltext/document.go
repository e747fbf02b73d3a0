package fulltext

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// DefaultColumn holds the combined document unless a Document names another.
const DefaultColumn = "search_document"

// Weight ranks matches by the column they come from, A highest.
type Weight string

const (
	WeightA Weight = "A"
	WeightB Weight = "B"
	WeightC Weight = "C"
	WeightD Weight = "D"
)

func (w Weight) orDefault() Weight {
	if w == "" {
		return WeightD
	}

	return w
}

func (w Weight) valid() bool {
	return lo.Contains([]Weight{WeightA, WeightB, WeightC, WeightD}, w.orDefault())
}

// Column is one source of a document.
type Column struct {
	// Name of the text column. With Related set it is the foreign key column
	// that references the related row.
	Name   string
	Weight Weight
	// Strip drops positions from the lexemes of this column.
	Strip bool
	// Related pulls text from the row Name points at, as it is at write time.
	Related *Related
}

// Related names the text columns of a row referenced by a foreign key.
type Related struct {
	Table string
	// Key is the referenced column, "id" when empty.
	Key     string
	Columns []string
}

// Document describes the search document of one table.
type Document struct {
	Table string
	// Column holding the document, DefaultColumn when empty.
	Column string
	// PrimaryKey is touched to backfill existing rows, "id" when empty.
	PrimaryKey string
	Columns    []Column
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (d Document) withDefaults() Document {
	d.Column = lo.CoalesceOrEmpty(d.Column, DefaultColumn)
	d.PrimaryKey = lo.CoalesceOrEmpty(d.PrimaryKey, "id")

	return d
}

func (d Document) validate() error {
	idents := []string{d.Table, d.Column, d.PrimaryKey}

	if len(d.Columns) == 0 {
		return fmt.Errorf("document of %q has no columns", d.Table)
	}

	for _, c := range d.Columns {
		if !c.Weight.valid() {
			return fmt.Errorf("column %q of %q has invalid weight %q", c.Name, d.Table, c.Weight)
		}

		idents = append(idents, c.Name)
		if c.Related != nil {
			if len(c.Related.Columns) == 0 {
				return fmt.Errorf("related column %q of %q pulls no columns", c.Name, d.Table)
			}
			idents = append(idents, c.Related.Table, c.Related.key())
			idents = append(idents, c.Related.Columns...)
		}
	}

	for _, ident := range idents {
		if !identifierRe.MatchString(ident) {
			return fmt.Errorf("document of %q: invalid identifier %q", d.Table, ident)
		}
	}

	return nil
}

func (r Related) key() string {
	return lo.CoalesceOrEmpty(r.Key, "id")
}

// TriggerName is the name of the trigger that keeps the document current.
func (d Document) TriggerName() string {
	return d.Table + "_tsvector_trigger"
}

// FunctionName is the name of the trigger function.
func (d Document) FunctionName() string {
	return d.TriggerName() + "_fn"
}

// IndexName is the name of the GiST index over the document column. Index
// names share one namespace per schema, so the table is part of it.
func (d Document) IndexName() string {
	return d.Column + "_" + d.Table + "_gist_index"
}

// Expression is the plpgsql expression the trigger assigns to the document.
// Parts follow the order of Columns.
func (d Document) Expression() string {
	parts := lo.Map(d.Columns, func(c Column, _ int) string {
		if c.Related == nil {
			return vector(`NEW.`+quote(c.Name), c.Weight, c.Strip)
		}

		rel := c.Related
		vectors := lo.Map(rel.Columns, func(name string, _ int) string {
			return vector(quote(rel.Table)+"."+quote(name), c.Weight, c.Strip)
		})

		// A dangling or NULL reference must not null the whole document.
		return fmt.Sprintf("coalesce((SELECT %s FROM %s WHERE %s.%s = NEW.%s), ''::tsvector)",
			strings.Join(vectors, " || "),
			quote(rel.Table), quote(rel.Table), quote(rel.key()), quote(c.Name))
	})

	return strings.Join(parts, " || ")
}

func vector(ref string, w Weight, strip bool) string {
	v := fmt.Sprintf("to_tsvector(coalesce(%s::text, ''))", ref)
	if strip {
		v = "strip(" + v + ")"
	}

	return fmt.Sprintf("setweight(%s, '%s')", v, w.orDefault())
}

// Statements returns the DDL that installs the document, in execution order.
// Every statement is safe to run again.
func (d Document) Statements() []string {
	table := quote(d.Table)

	return []string{
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s tsvector`, table, quote(d.Column)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING gist(%s)`, quote(d.IndexName()), table, quote(d.Column)),
		fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, quote(d.TriggerName()), table),
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s()
RETURNS TRIGGER AS
$BODY$
BEGIN
  NEW.%s := %s;
  RETURN NEW;
END
$BODY$
LANGUAGE plpgsql VOLATILE`, quote(d.FunctionName()), quote(d.Column), d.Expression()),
		fmt.Sprintf(`CREATE TRIGGER %s BEFORE INSERT OR UPDATE ON %s FOR EACH ROW EXECUTE PROCEDURE %s()`,
			quote(d.TriggerName()), table, quote(d.FunctionName())),
	}
}

// BackfillStatement rewrites every row so the trigger computes documents for
// rows that predate it.
func (d Document) BackfillStatement() string {
	pk := quote(d.PrimaryKey)
	return fmt.Sprintf(`UPDATE %s SET %s = %s`, quote(d.Table), pk, pk)
}

// Hash identifies the installed definition; it changes whenever a statement
// would.
func (d Document) Hash() string {
	sum := sha256.Sum256([]byte(strings.Join(d.Statements(), ";\n")))
	return base64.URLEncoding.EncodeToString(sum[:])
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
