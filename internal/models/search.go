package models

import (
	"github.com/Alp4ka/quizhub/fulltext"
)

// SearchDocuments describes what the search argument of each searchable
// listing matches against.
func SearchDocuments() []fulltext.Document {
	return []fulltext.Document{
		{
			Table: "trivia_categories",
			Columns: []fulltext.Column{
				{Name: "name", Weight: fulltext.WeightA},
				{Name: "description", Weight: fulltext.WeightC},
				{Name: "submitter"},
			},
		},
		{
			Table: "trivia_questions",
			Columns: []fulltext.Column{
				{Name: "question", Weight: fulltext.WeightA},
				{Name: "answer", Weight: fulltext.WeightB},
				{Name: "category_id", Weight: fulltext.WeightC, Related: &fulltext.Related{
					Table:   "trivia_categories",
					Columns: []string{"name"},
				}},
				{Name: "hint1"},
				{Name: "hint2"},
				{Name: "submitter"},
			},
		},
		{
			Table: "blog_entries",
			Columns: []fulltext.Column{
				{Name: "title", Weight: fulltext.WeightA},
				{Name: "story", Weight: fulltext.WeightB},
				{Name: "message"},
			},
		},
	}
}

// NewSearchRegistry registers SearchDocuments.
func NewSearchRegistry() (*fulltext.Registry, error) {
	return fulltext.NewRegistry(SearchDocuments()...)
}
