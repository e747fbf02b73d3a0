package fulltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionDocument() Document {
	return Document{
		Table: "trivia_questions",
		Columns: []Column{
			{Name: "question", Weight: WeightA},
			{Name: "answer", Weight: WeightB},
			{Name: "category_id", Weight: WeightC, Related: &Related{Table: "trivia_categories", Columns: []string{"name"}}},
			{Name: "hint1"},
		},
	}.withDefaults()
}

func Test_Document_Names(t *testing.T) {
	d := questionDocument()

	assert.Equal(t, "search_document", d.Column)
	assert.Equal(t, "trivia_questions_tsvector_trigger", d.TriggerName())
	assert.Equal(t, "trivia_questions_tsvector_trigger_fn", d.FunctionName())
	assert.Equal(t, "search_document_trivia_questions_gist_index", d.IndexName())
}

func Test_Document_Expression(t *testing.T) {
	d := questionDocument()

	want := `setweight(to_tsvector(coalesce(NEW."question"::text, '')), 'A')` +
		` || setweight(to_tsvector(coalesce(NEW."answer"::text, '')), 'B')` +
		` || coalesce((SELECT setweight(to_tsvector(coalesce("trivia_categories"."name"::text, '')), 'C')` +
		` FROM "trivia_categories" WHERE "trivia_categories"."id" = NEW."category_id"), ''::tsvector)` +
		` || setweight(to_tsvector(coalesce(NEW."hint1"::text, '')), 'D')`

	assert.Equal(t, want, d.Expression())
}

func Test_Document_Expression_RelatedColumnsAndStrip(t *testing.T) {
	d := Document{
		Table: "blog_entries",
		Columns: []Column{
			{Name: "author_id", Weight: WeightB, Strip: true, Related: &Related{
				Table: "users", Key: "uid", Columns: []string{"username", "display_name"},
			}},
		},
	}.withDefaults()

	want := `coalesce((SELECT setweight(strip(to_tsvector(coalesce("users"."username"::text, ''))), 'B')` +
		` || setweight(strip(to_tsvector(coalesce("users"."display_name"::text, ''))), 'B')` +
		` FROM "users" WHERE "users"."uid" = NEW."author_id"), ''::tsvector)`

	assert.Equal(t, want, d.Expression())
}

func Test_Document_Statements(t *testing.T) {
	d := questionDocument()
	stmts := d.Statements()

	require.Len(t, stmts, 5)
	assert.Equal(t, `ALTER TABLE "trivia_questions" ADD COLUMN IF NOT EXISTS "search_document" tsvector`, stmts[0])
	assert.Equal(t, `CREATE INDEX IF NOT EXISTS "search_document_trivia_questions_gist_index" ON "trivia_questions" USING gist("search_document")`, stmts[1])
	assert.Equal(t, `DROP TRIGGER IF EXISTS "trivia_questions_tsvector_trigger" ON "trivia_questions"`, stmts[2])
	assert.Contains(t, stmts[3], `CREATE OR REPLACE FUNCTION "trivia_questions_tsvector_trigger_fn"()`)
	assert.Contains(t, stmts[3], `NEW."search_document" := `+d.Expression()+`;`)
	assert.Equal(t, `CREATE TRIGGER "trivia_questions_tsvector_trigger" BEFORE INSERT OR UPDATE ON "trivia_questions" FOR EACH ROW EXECUTE PROCEDURE "trivia_questions_tsvector_trigger_fn"()`, stmts[4])
	assert.Equal(t, `UPDATE "trivia_questions" SET "id" = "id"`, d.BackfillStatement())
}

func Test_Document_Hash(t *testing.T) {
	a := questionDocument()
	b := questionDocument()
	assert.Equal(t, a.Hash(), b.Hash())

	b.Columns[0].Weight = WeightB
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func Test_Document_validate(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"no columns", Document{Table: "t"}},
		{"bad weight", Document{Table: "t", Columns: []Column{{Name: "a", Weight: "E"}}}},
		{"injected column", Document{Table: "t", Columns: []Column{{Name: `a"; drop table t; --`}}}},
		{"empty table", Document{Columns: []Column{{Name: "a"}}}},
		{"related without columns", Document{Table: "t", Columns: []Column{{Name: "a_id", Related: &Related{Table: "a"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.doc.withDefaults().validate())
		})
	}

	assert.NoError(t, questionDocument().validate())
}
