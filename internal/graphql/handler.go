package graphql

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	graphqlgo "github.com/graph-gophers/graphql-go"
	qerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Alp4ka/quizhub/internal/auth"
)

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// executor runs queries and mutations.
type executor interface {
	Exec(ctx context.Context, query, operationName string, variables map[string]interface{}) *graphqlgo.Response
}

// subscriber starts subscriptions.
type subscriber interface {
	Subscribe(ctx context.Context, query, operationName string, variables map[string]interface{}) (<-chan interface{}, error)
}

type schema interface {
	executor
	subscriber
}

// Handler serves queries and mutations over GET and POST and subscriptions
// over websocket upgrades of the same endpoint.
type Handler struct {
	schema        schema
	subscriptions *SubscriptionHandler
}

func NewHandler(s *graphqlgo.Schema, signer *auth.Signer) *Handler {
	return newHandler(s, signer)
}

func newHandler(s schema, signer *auth.Signer) *Handler {
	return &Handler{
		schema:        s,
		subscriptions: NewSubscriptionHandler(s, signer),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		h.subscriptions.ServeHTTP(w, r)
		return
	}

	req, err := readRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &graphqlgo.Response{
			Errors: []*qerrors.QueryError{qerrors.Errorf("%s", err)},
		})
		return
	}

	writeJSON(w, http.StatusOK, h.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables))
}

func readRequest(r *http.Request) (*request, error) {
	req := &request{}

	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		req.Query = query.Get("query")
		req.OperationName = query.Get("operationName")
		if variables := query.Get("variables"); variables != "" {
			if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
				return nil, errors.Wrap(err, "variables are not valid JSON")
			}
		}
	case http.MethodPost:
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse media type")
		}
		if mediaType != "application/json" {
			return nil, errors.New("unrecognised Content-Type, use application/json for GraphQL requests")
		}

		if err = json.NewDecoder(r.Body).Decode(req); err != nil {
			return nil, errors.Wrap(err, "not a valid GraphQL request body")
		}
	default:
		return nil, errors.Errorf("method %s is not supported", r.Method)
	}

	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("no query was sent")
	}

	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("could not write graphql response")
	}
}
