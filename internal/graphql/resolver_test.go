package graphql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/models"
	"github.com/Alp4ka/quizhub/pager"
)

var questionColumns = []string{"id", "question", "answer", "verified", "disabled", "created_at", "updated_at", "version"}

func Test_TriviaQuestions_Search(t *testing.T) {
	env := newTestEnv(t)

	const from = `FROM "trivia_questions" AS "question" WHERE .*websearch_to_tsquery\(\$2\) @@ "question"\."search_document".* AND "question"\."disabled" = \$3`

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`^SELECT count\(\*\) ` + from + `$`).
		WithArgs("cats", "cats", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	env.mock.ExpectQuery(`^SELECT "question"\.\* ` + from + ` ORDER BY "question"\."id" ASC LIMIT 2$`).
		WithArgs("cats", "cats", false).
		WillReturnRows(sqlmock.NewRows(questionColumns).
			AddRow("q1", "Do cats purr?", "yes", true, false, fixedNow, fixedNow, 1).
			AddRow("q2", "Can cats swim?", "some", true, false, fixedNow, fixedNow, 1))
	env.mock.ExpectCommit()

	res := env.exec(t, context.Background(), `{
		triviaQuestions(first: 2, search: " cats ") {
			edges { cursor node { id question } }
			pageInfo { startCursor endCursor hasNextPage hasPreviousPage count }
		}
	}`, nil)
	require.Empty(t, res.Errors)

	conn := res.Data["triviaQuestions"].(map[string]any)
	edges := conn["edges"].([]any)
	require.Len(t, edges, 2)
	assert.Equal(t, pager.EncodeCursor(0), edges[0].(map[string]any)["cursor"])
	assert.Equal(t, "Can cats swim?", edges[1].(map[string]any)["node"].(map[string]any)["question"])

	assert.Equal(t, map[string]any{
		"startCursor":     pager.EncodeCursor(0),
		"endCursor":       pager.EncodeCursor(1),
		"hasNextPage":     true,
		"hasPreviousPage": false,
		"count":           float64(3),
	}, conn["pageInfo"])
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func Test_Resolver_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		ctx   context.Context
		query string
		code  string
	}{
		{
			name:  "counts need a login",
			ctx:   context.Background(),
			query: `{ triviaCounts { questionsCount } }`,
			code:  codeUnauthenticated,
		},
		{
			name:  "report filter needs a login",
			ctx:   context.Background(),
			query: `{ triviaQuestions(reported: true) { pageInfo { count } } }`,
			code:  codeUnauthenticated,
		},
		{
			name:  "blog entries are written by admins",
			ctx:   as(models.RoleTriviaAdmin),
			query: `mutation { saveBlogEntry(input: {story: "s", title: "t"}) { id } }`,
			code:  codeForbidden,
		},
		{
			name:  "questions are verified by trivia admins",
			ctx:   as(models.RoleAdmin),
			query: `mutation { verifyTriviaQuestions(ids: ["a"]) { count } }`,
			code:  codeForbidden,
		},
		{
			name:  "editing a question needs a login",
			ctx:   context.Background(),
			query: `mutation { saveTriviaQuestion(input: {id: "x", question: "q", answer: "a"}) { id } }`,
			code:  codeUnauthenticated,
		},
		{
			name:  "empty question",
			ctx:   context.Background(),
			query: `mutation { saveTriviaQuestion(input: {question: " ", answer: "a"}) { id } }`,
			code:  codeBadUserInput,
		},
		{
			name:  "change log cannot be searched",
			ctx:   as(models.RoleAdmin),
			query: `{ changes(search: "x") { pageInfo { count } } }`,
			code:  codeBadUserInput,
		},
		{
			name:  "negative page size",
			ctx:   context.Background(),
			query: `{ triviaQuestions(first: -1) { pageInfo { count } } }`,
			code:  codeBadUserInput,
		},
		{
			name:  "unknown sort field",
			ctx:   context.Background(),
			query: `{ triviaCategories(sortField: "popularity") { pageInfo { count } } }`,
			code:  codeBadUserInput,
		},
		{
			name:  "malformed cursor",
			ctx:   context.Background(),
			query: `{ blogEntries(after: "nope", first: 1) { pageInfo { count } } }`,
			code:  codeBadUserInput,
		},
		{
			name:  "malformed node id",
			ctx:   context.Background(),
			query: `{ node(id: "***") { id } }`,
			code:  codeBadUserInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			res := env.exec(t, tt.ctx, tt.query, nil)
			require.NotEmpty(t, res.Errors)
			assert.Equal(t, tt.code, res.errorCode())
			assert.NoError(t, env.mock.ExpectationsWereMet(), "no statement may be sent")
		})
	}
}

func Test_SaveTriviaQuestion_Create(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := env.broker.Subscribe(ctx, audit.Filter{})
	require.NoError(t, err)

	env.mock.ExpectBegin()
	env.mock.ExpectExec(`^INSERT INTO "trivia_questions" `).WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(`^INSERT INTO "changes" `).WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	res := env.exec(t, context.Background(), `mutation {
		saveTriviaQuestion(input: {question: "Do cats purr?", answer: "yes", submitter: "anon"}) {
			id question verified disabled version
		}
	}`, nil)
	require.Empty(t, res.Errors)

	saved := res.Data["saveTriviaQuestion"].(map[string]any)
	assert.Equal(t, models.TypeTriviaQuestion, models.TypeOf(saved["id"].(string)))
	assert.Equal(t, false, saved["verified"])
	assert.Equal(t, float64(1), saved["version"])

	select {
	case change := <-changes:
		assert.Equal(t, audit.KindInsert, change.Kind)
		assert.Equal(t, "TriviaQuestion", change.TargetEntityName)
		assert.Equal(t, saved["id"], change.TargetID)
	case <-time.After(time.Second):
		t.Fatal("the insert was not published")
	}
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func Test_VerifyTriviaQuestions(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := env.broker.Subscribe(ctx, audit.Filter{})
	require.NoError(t, err)

	env.mock.ExpectQuery(`^SELECT \* FROM "trivia_questions" WHERE id IN \(\$1,\$2\)$`).
		WithArgs("q1", "q2").
		WillReturnRows(sqlmock.NewRows(questionColumns).
			AddRow("q1", "Do cats purr?", "yes", false, false, fixedNow, fixedNow, 1))
	env.mock.ExpectBegin()
	env.mock.ExpectExec(`^UPDATE "trivia_questions" SET "verified"=\$1,"updated_at"=\$2 WHERE "id" = \$3$`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(`^INSERT INTO "changes" `).WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	res := env.exec(t, as(models.RoleTriviaAdmin), `mutation { verifyTriviaQuestions(ids: ["q1", "q2"]) { count } }`, nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]any{"count": float64(1)}, res.Data["verifyTriviaQuestions"])

	select {
	case change := <-changes:
		assert.Equal(t, audit.KindUpdate, change.Kind)
		assert.Equal(t, "q1", change.TargetID)
		assert.Equal(t, "verified", *change.TargetColumn)
		assert.Equal(t, "true", *change.NewColumnValue)
	case <-time.After(time.Second):
		t.Fatal("the update was not published")
	}
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func Test_Node(t *testing.T) {
	env := newTestEnv(t)
	id := models.EncodeID(models.TypeTriviaCategory, "c1")

	env.mock.ExpectQuery(`^SELECT \* FROM "trivia_categories" WHERE id = \$1 LIMIT 1$`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "verified", "disabled"}).AddRow(id, "Science", true, false))

	res := env.exec(t, context.Background(), `query($id: ID!) {
		node(id: $id) { __typename id ... on TriviaCategory { name } }
	}`, map[string]any{"id": id})
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]any{"__typename": "TriviaCategory", "id": id, "name": "Science"}, res.Data["node"])

	t.Run("unknown type", func(t *testing.T) {
		res := env.exec(t, context.Background(), `query($id: ID!) { node(id: $id) { id } }`,
			map[string]any{"id": models.EncodeID("Spaceship", "1")})
		require.Empty(t, res.Errors)
		assert.Nil(t, res.Data["node"])
	})

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func Test_TriviaCounts(t *testing.T) {
	env := newTestEnv(t)
	env.mock.MatchExpectationsInOrder(false)

	count := func(n int) *sqlmock.Rows { return sqlmock.NewRows([]string{"count"}).AddRow(n) }
	const questions = `^SELECT count\(\*\) FROM "trivia_questions" AS "question" WHERE `

	env.mock.ExpectQuery(questions + `"question"\."disabled" = \$1$`).WillReturnRows(count(10))
	env.mock.ExpectQuery(questions + `"question"\."verified" = \$1 AND "question"\."disabled" = \$2$`).WillReturnRows(count(4))
	env.mock.ExpectQuery(questions + `"question"\."disabled" = \$1 AND .*EXISTS .*$`).WillReturnRows(count(2))
	env.mock.ExpectQuery(questions + `"question"\."disabled" = \$1 AND .*"category"\."disabled" .*$`).WillReturnRows(count(1))
	env.mock.ExpectQuery(`^SELECT count\(\*\) FROM "trivia_categories" WHERE disabled = \$1$`).WillReturnRows(count(5))
	env.mock.ExpectQuery(`^SELECT count\(\*\) FROM "trivia_categories" WHERE disabled = \$1 AND verified = \$2$`).WillReturnRows(count(3))
	env.mock.ExpectQuery(`^SELECT count\(\*\) FROM "trivia_reports"$`).WillReturnRows(count(7))

	res := env.exec(t, as(models.RoleTriviaAdmin), `{
		triviaCounts {
			questionsCount unverifiedQuestionsCount reportedQuestionsCount danglingQuestionsCount
			categoriesCount unverifiedCategoriesCount reportsCount
		}
	}`, nil)
	require.Empty(t, res.Errors)

	assert.Equal(t, map[string]any{
		"questionsCount":            float64(10),
		"unverifiedQuestionsCount":  float64(4),
		"reportedQuestionsCount":    float64(2),
		"danglingQuestionsCount":    float64(1),
		"categoriesCount":           float64(5),
		"unverifiedCategoriesCount": float64(3),
		"reportsCount":              float64(7),
	}, res.Data["triviaCounts"])
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
