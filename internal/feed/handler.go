package feed

import (
	"encoding/json"
	"errors"
	"go-portfolio-blog/internal/logger"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// max message size
	maxMessageSize = 4048

	// the time after which a write times out
	writeTimeout = 10 * time.Second

	// the interval after which a ping is sent to keep the connection alive
	pingInterval = 45 * time.Second

	// the timeout after a connection is closed when there is no traffic
	receiveTimeout = 90 * time.Second
)

// request is a client message on the websocket.
//
//	{"subscribe": {"posts": {}, "comments": {"post_id": "..."}}, "unsubscribe": ["posts"]}
type request struct {
	Subscribe   map[string]map[string]string `json:"subscribe"`
	Unsubscribe []string                     `json:"unsubscribe"`
}

// Message is what the server pushes for every matching change.
type Message struct {
	Stream string `json:"stream"`
	Type   Type   `json:"type"`
	ID     string `json:"id"`
	PostID string `json:"post_id,omitempty"`
}

func newMessage(e Event) Message {
	return Message{Stream: e.Table, Type: e.Type, ID: e.ID, PostID: e.PostID}
}

// Handler serves the change feed over websockets with a server sent events fallback.
type Handler struct {
	hub      Subscriber
	log      logger.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a handler. Origins lists the allowed browser origins; "*" allows all.
func NewHandler(hub Subscriber, origins []string, log logger.Logger) *Handler {
	h := &Handler{hub: hub, log: log}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		return originAllowed(r.Header.Get("Origin"), origins)
	}
	return h
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin || a == u.Host {
			return true
		}
	}
	return false
}

func filterFor(stream string, data map[string]string) (Filter, error) {
	switch stream {
	case StreamPosts:
		return Filter{Table: StreamPosts}, nil
	case StreamComments:
		if data["post_id"] == "" {
			return Filter{}, errors.New("comments subscription without post_id")
		}
		return Filter{Table: StreamComments, PostID: data["post_id"]}, nil
	}
	return Filter{}, errors.New("invalid subscription")
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		h.handleWebsocket(w, r)
	} else {
		h.handleSSE(w, r)
	}
}

func (h *Handler) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader already responded with an error
		h.log.Warn("websocket upgrade failed: " + err.Error())
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(Filter{})
	defer sub.Close()

	if err := h.websocketLoop(r, conn, sub); err != nil {
		h.log.Debug("websocket closed: " + err.Error())
	}
}

func (h *Handler) websocketLoop(r *http.Request, conn *websocket.Conn, sub *Subscription) error {
	// we only expect requests and pong messages
	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(receiveTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	readErr := make(chan error, 1)
	reqs := make(chan request, 10)

	// run reader
	go func() {
		for {
			if err := conn.SetReadDeadline(time.Now().Add(receiveTimeout)); err != nil {
				readErr <- err
				return
			}

			typ, bytes, err := conn.ReadMessage()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				readErr <- nil
				return
			} else if err != nil {
				readErr <- err
				return
			}
			if typ != websocket.TextMessage {
				readErr <- errors.New("not a text message")
				return
			}

			var req request
			if err := json.Unmarshal(bytes, &req); err != nil {
				readErr <- err
				return
			}

			select {
			case reqs <- req:
			case <-done:
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	reg := map[string]Filter{}
	for {
		select {
		case req := <-reqs:
			for stream, data := range req.Subscribe {
				f, err := filterFor(stream, data)
				if err != nil {
					return err
				}
				reg[stream] = f
			}
			for _, stream := range req.Unsubscribe {
				delete(reg, stream)
			}
		case e, ok := <-sub.Events():
			if !ok {
				return errors.New("closed")
			}
			f, ok := reg[e.Table]
			if !ok || !f.Match(e) {
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return err
			}
			if err := conn.WriteJSON(newMessage(e)); err != nil {
				return err
			}
		case <-ping.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case err := <-readErr:
			return err
		case <-r.Context().Done():
			return nil
		}
	}
}

func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := query.Get("s")
	if name == "" {
		http.Error(w, "missing stream name", http.StatusBadRequest)
		return
	}
	f, err := filterFor(name, map[string]string{"post_id": query.Get("post_id")})
	if err != nil {
		http.Error(w, "stream not found", http.StatusBadRequest)
		return
	}

	sub := h.hub.Subscribe(f)
	defer sub.Close()

	err = ServeEvents(w, r, func(send func(any) error) error {
		for {
			select {
			case e, ok := <-sub.Events():
				if !ok {
					return nil
				}
				if err := send(newMessage(e)); err != nil {
					return err
				}
			case <-r.Context().Done():
				return nil
			}
		}
	})
	if err != nil {
		h.log.Debug("event stream closed: " + err.Error())
	}
}

// ServeEvents writes the server sent events headers and runs loop with a
// function that sends one JSON encoded event and flushes it.
func ServeEvents(w http.ResponseWriter, r *http.Request, loop func(send func(any) error) error) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "flushing not supported", http.StatusNotImplemented)
		return errors.New("flushing not supported")
	}

	hdr := w.Header()
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	return loop(func(v any) error {
		if _, err := w.Write([]byte("data: ")); err != nil {
			return err
		}
		// Encode terminates the line
		if err := enc.Encode(v); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
}
