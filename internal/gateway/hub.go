// Package gateway is the real-time authorization gateway. Every streaming
// connection re-derives its identity from the session token before it is
// admitted, and is force-closed as soon as that token goes stale.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"

	"github.com/botlab/robot-access/internal/api/metrics"
	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/policy"
)

const (
	defaultSendBuffer = 64
	revalidateTimeout = 5 * time.Second
)

// Authority is the slice of the session authority the gateway depends on.
type Authority interface {
	CurrentIdentity(ctx context.Context, token string) (*domain.Account, error)
	Revalidate(ctx context.Context, token string) (*domain.Account, error)
}

// Hub keeps the registry of Authorized connections and fans telemetry out
// to them.
type Hub struct {
	authority  Authority
	sendBuffer int
	log        zerolog.Logger

	mu         sync.RWMutex
	byResource map[domain.Resource]map[*conn]struct{}
	byUser     map[string]map[*conn]struct{}
}

func NewHub(authority Authority, sendBuffer int, log zerolog.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		authority:  authority,
		sendBuffer: sendBuffer,
		log:        log,
		byResource: make(map[domain.Resource]map[*conn]struct{}),
		byUser:     make(map[string]map[*conn]struct{}),
	}
}

// Handler returns the websocket endpoint. Origin is not checked because the
// session token is the only credential that matters.
func (h *Hub) Handler() http.Handler {
	return websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   h.serve,
	}
}

func (h *Hub) serve(ws *websocket.Conn) {
	c := newConn(uuid.NewString(), ws, h.sendBuffer, h.log)
	req := ws.Request()

	acc, err := h.handshake(req)
	if err != nil {
		c.setState(StateRejected)
		kind := domain.KindOf(err)
		metrics.GatewayHandshakesTotal.WithLabelValues(kind).Inc()
		h.log.Info().Str("conn_id", c.id).Str("kind", kind).Msg("streaming handshake rejected")
		_ = c.write(errorFrame(err))
		_ = ws.Close()
		return
	}

	c.token = tokenFrom(req)
	c.username = acc.Username
	c.resources = subscriptions(acc, req.URL.Query()["resource"])

	names := make([]string, len(c.resources))
	for i, r := range c.resources {
		names[i] = string(r)
	}
	c.setState(StateAuthorized)
	c.enqueue(Frame{Type: FrameConnected, Resources: names, Data: acc.Username})
	h.register(c)
	defer h.unregister(c)
	metrics.GatewayHandshakesTotal.WithLabelValues("accepted").Inc()
	h.log.Info().Str("conn_id", c.id).Str("username", acc.Username).Strs("resources", names).Msg("streaming connection authorized")

	// A login or revocation that landed between the identity check and
	// register found no connection to re-check; do it now that c is visible.
	h.revalidate([]*conn{c})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop()
	}()

	c.readLoop()
	c.shutdown(nil)
	<-writerDone
	h.log.Debug().Str("conn_id", c.id).Str("username", c.username).Msg("streaming connection closed")
}

func (h *Hub) handshake(r *http.Request) (*domain.Account, error) {
	token := tokenFrom(r)
	if token == "" {
		metrics.SessionVerificationsTotal.WithLabelValues(domain.KindInvalidToken).Inc()
		return nil, fmt.Errorf("%w: missing token", domain.ErrInvalidToken)
	}
	acc, err := h.authority.CurrentIdentity(r.Context(), token)
	if err != nil {
		metrics.SessionVerificationsTotal.WithLabelValues(domain.KindOf(err)).Inc()
		return nil, err
	}
	metrics.SessionVerificationsTotal.WithLabelValues("ok").Inc()
	return acc, nil
}

// Broadcast delivers e to every Authorized connection subscribed to its
// resource. Connections whose buffer is full miss the event.
func (h *Hub) Broadcast(e domain.TelemetryEvent) {
	f := telemetryFrame(e)

	h.mu.RLock()
	targets := make([]*conn, 0, len(h.byResource[e.Resource]))
	for c := range h.byResource[e.Resource] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(f) {
			h.log.Warn().Str("conn_id", c.id).Str("resource", string(e.Resource)).Msg("dropping telemetry for slow connection")
		}
	}
}

// SessionsChanged re-checks the live connections of username in the
// background and closes the ones whose credential is no longer valid.
func (h *Hub) SessionsChanged(username string) {
	conns := h.connsOf(username)
	if len(conns) == 0 {
		return
	}
	go h.revalidate(conns)
}

// revalidate evicts connections whose credential went stale and moves
// standard connections to their current binding.
func (h *Hub) revalidate(conns []*conn) {
	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), revalidateTimeout)
		acc, err := h.authority.Revalidate(ctx, c.token)
		cancel()
		switch {
		case err == nil:
			if !policy.BypassesTimeslot(acc) {
				h.resubscribe(c, subscriptions(acc, nil))
			}
		case domain.KindOf(err) == domain.KindStoreUnavailable:
			h.log.Warn().Err(err).Str("conn_id", c.id).Msg("revalidation skipped")
		default:
			h.evict(c, err)
		}
	}
}

// resubscribe replaces the topics of a registered connection. Unregistered
// connections are left alone.
func (h *Hub) resubscribe(c *conn, resources []domain.Resource) {
	h.mu.Lock()
	if _, ok := h.byUser[c.username][c]; !ok || sameResources(c.resources, resources) {
		h.mu.Unlock()
		return
	}
	for _, r := range c.resources {
		delete(h.byResource[r], c)
		metrics.GatewayConnections.WithLabelValues(string(r)).Dec()
	}
	c.resources = resources
	for _, r := range resources {
		if h.byResource[r] == nil {
			h.byResource[r] = make(map[*conn]struct{})
		}
		h.byResource[r][c] = struct{}{}
		metrics.GatewayConnections.WithLabelValues(string(r)).Inc()
	}
	h.mu.Unlock()

	names := make([]string, len(resources))
	for i, r := range resources {
		names[i] = string(r)
	}
	c.enqueue(Frame{Type: FrameSubscribed, Resources: names})
	h.log.Info().Str("conn_id", c.id).Str("username", c.username).Strs("resources", names).Msg("streaming subscriptions changed")
}

func sameResources(a, b []domain.Resource) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (h *Hub) evict(c *conn, reason error) {
	h.unregister(c)
	f := errorFrame(reason)
	c.shutdown(&f)
	h.log.Info().Str("conn_id", c.id).Str("username", c.username).Str("kind", f.Kind).Msg("streaming connection evicted")
}

// Close force-closes every connection.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*conn, 0)
	for _, set := range h.byUser {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.unregister(c)
		c.shutdown(nil)
	}
}

// Subscribers returns the number of Authorized connections on resource.
func (h *Hub) Subscribers(resource domain.Resource) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byResource[resource])
}

// Connections returns the number of Authorized connections held by username.
func (h *Hub) Connections(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[username])
}

func (h *Hub) connsOf(username string) []*conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*conn, 0, len(h.byUser[username]))
	for c := range h.byUser[username] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) register(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byUser[c.username] == nil {
		h.byUser[c.username] = make(map[*conn]struct{})
	}
	h.byUser[c.username][c] = struct{}{}
	for _, r := range c.resources {
		if h.byResource[r] == nil {
			h.byResource[r] = make(map[*conn]struct{})
		}
		h.byResource[r][c] = struct{}{}
		metrics.GatewayConnections.WithLabelValues(string(r)).Inc()
	}
}

// unregister is idempotent.
func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byUser[c.username][c]; !ok {
		return
	}
	delete(h.byUser[c.username], c)
	if len(h.byUser[c.username]) == 0 {
		delete(h.byUser, c.username)
	}
	for _, r := range c.resources {
		delete(h.byResource[r], c)
		metrics.GatewayConnections.WithLabelValues(string(r)).Dec()
	}
}

// subscriptions picks the topics of an admitted account. Standard accounts
// follow their bound resource; privileged ones get every robot unless they
// ask for specific ones.
func subscriptions(acc *domain.Account, requested []string) []domain.Resource {
	if !policy.BypassesTimeslot(acc) {
		if acc.BoundResource == domain.ResourceNone {
			return nil
		}
		return []domain.Resource{acc.BoundResource}
	}

	seen := make(map[domain.Resource]bool)
	var out []domain.Resource
	for _, raw := range requested {
		for _, part := range strings.Split(raw, ",") {
			r, err := domain.ParseResource(part)
			if err != nil || seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return domain.Resources()
	}
	return out
}

// tokenFrom reads the session token from the Authorization header (raw or
// Bearer) or the token query parameter.
func tokenFrom(r *http.Request) string {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
		return auth
	}
	return r.URL.Query().Get("token")
}
