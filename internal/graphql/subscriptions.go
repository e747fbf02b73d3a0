package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/Alp4ka/quizhub/internal/auth"
)

// Message types of the graphql-ws subprotocol.
const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionError     = "connection_error"
	msgConnectionTerminate = "connection_terminate"
	msgKeepAlive           = "ka"
	msgStart               = "start"
	msgStop                = "stop"
	msgData                = "data"
	msgError               = "error"
	msgComplete            = "complete"
)

const (
	subprotocol       = "graphql-ws"
	defaultKeepAlive  = 15 * time.Second
	writeTimeout      = 10 * time.Second
	maxMessageSizeMiB = 1
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscriptionHandler runs subscriptions over websocket connections. The
// caller authenticates with an authToken in the connection_init payload, or
// with the bearer token of the upgrade request.
type SubscriptionHandler struct {
	schema    subscriber
	signer    *auth.Signer
	upgrader  websocket.Upgrader
	keepAlive time.Duration
}

func NewSubscriptionHandler(s subscriber, signer *auth.Signer) *SubscriptionHandler {
	return &SubscriptionHandler{
		schema: s,
		signer: signer,
		upgrader: websocket.Upgrader{
			Subprotocols: []string{subprotocol},
			CheckOrigin:  func(*http.Request) bool { return true },
		},
		keepAlive: defaultKeepAlive,
	}
}

func (h *SubscriptionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("could not upgrade subscription connection")
		return
	}
	conn.SetReadLimit(maxMessageSizeMiB << 20)

	ctx, cancel := context.WithCancel(r.Context())
	c := &wsConnection{
		h:          h,
		conn:       conn,
		ctx:        ctx,
		cancel:     cancel,
		operations: make(map[string]*operation),
	}
	defer c.close()

	go c.keepAlive()
	c.readLoop()
}

type wsConnection struct {
	h    *SubscriptionHandler
	conn *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex

	mu          sync.Mutex
	initialized bool
	identity    *auth.Identity
	operations  map[string]*operation
	wg          sync.WaitGroup
}

type operation struct {
	cancel context.CancelFunc
}

func (c *wsConnection) readLoop() {
	for {
		var msg wsMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("subscription connection closed")
			}
			return
		}

		switch msg.Type {
		case msgConnectionInit:
			if err := c.init(msg.Payload); err != nil {
				c.write(wsMessage{Type: msgConnectionError, Payload: errorPayload(err)})
				return
			}
			c.write(wsMessage{Type: msgConnectionAck})
		case msgStart:
			c.start(msg)
		case msgStop:
			c.stop(msg.ID)
		case msgConnectionTerminate:
			return
		default:
			c.write(wsMessage{ID: msg.ID, Type: msgError, Payload: errorPayload(errUnknownMessage(msg.Type))})
		}
	}
}

type initPayload struct {
	AuthToken     string `json:"authToken"`
	Authorization string `json:"Authorization"`
}

// init attaches the identity of the init payload, if any, to the
// connection. A token that does not verify ends the connection.
func (c *wsConnection) init(raw json.RawMessage) error {
	var payload initPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return err
		}
	}

	token := payload.AuthToken
	if token == "" {
		token, _ = auth.BearerToken(payload.Authorization)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != "" {
		id, err := c.h.signer.Verify(token)
		if err != nil {
			return err
		}
		c.identity = id
	}
	c.initialized = true

	return nil
}

func (c *wsConnection) start(msg wsMessage) {
	var req request
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.write(wsMessage{ID: msg.ID, Type: msgError, Payload: errorPayload(err)})
		return
	}

	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		c.write(wsMessage{ID: msg.ID, Type: msgError, Payload: errorPayload(errNotInitialized)})
		return
	}
	if prev, ok := c.operations[msg.ID]; ok {
		prev.cancel()
	}
	ctx := c.ctx
	if c.identity != nil {
		ctx = auth.WithIdentity(ctx, c.identity)
	}
	ctx, cancel := context.WithCancel(ctx)
	op := &operation{cancel: cancel}
	c.operations[msg.ID] = op
	c.mu.Unlock()

	responses, err := c.h.schema.Subscribe(ctx, req.Query, req.OperationName, req.Variables)
	if err != nil {
		c.finish(msg.ID, op)
		c.write(wsMessage{ID: msg.ID, Type: msgError, Payload: errorPayload(err)})
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.finish(msg.ID, op)

		for resp := range responses {
			payload, err := json.Marshal(resp)
			if err != nil {
				log.WithError(err).Error("could not encode subscription response")
				continue
			}
			c.write(wsMessage{ID: msg.ID, Type: msgData, Payload: payload})
		}

		if c.ctx.Err() == nil {
			c.write(wsMessage{ID: msg.ID, Type: msgComplete})
		}
	}()
}

func (c *wsConnection) stop(id string) {
	c.mu.Lock()
	op, ok := c.operations[id]
	c.mu.Unlock()

	if ok {
		op.cancel()
	}
}

// finish forgets an operation unless it was replaced by a newer start with
// the same id.
func (c *wsConnection) finish(id string, op *operation) {
	op.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.operations[id] == op {
		delete(c.operations, id)
	}
}

func (c *wsConnection) keepAlive() {
	if c.h.keepAlive <= 0 {
		return
	}

	ticker := time.NewTicker(c.h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.write(wsMessage{Type: msgKeepAlive})
		}
	}
}

func (c *wsConnection) write(msg wsMessage) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		log.WithError(err).WithField("type", msg.Type).Debug("could not write subscription message")
	}
}

func (c *wsConnection) close() {
	c.cancel()
	c.wg.Wait()
	_ = c.conn.Close()
}

func errorPayload(err error) json.RawMessage {
	payload, _ := json.Marshal(map[string]string{"message": err.Error()})
	return payload
}

type protocolError string

func (e protocolError) Error() string {
	return string(e)
}

const errNotInitialized = protocolError("connection_init was not sent")

func errUnknownMessage(t string) error {
	return protocolError("unknown message type " + strings.TrimSpace(t))
}
