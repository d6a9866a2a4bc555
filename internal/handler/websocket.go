package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/storefront/internal/model"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

var droppedEventsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "inventory_feed_dropped_events_total",
		Help: "Stock events dropped because a subscriber was too slow",
	},
)

// feedClient is one connected subscriber.
type feedClient struct {
	conn       *websocket.Conn
	send       chan model.StockEvent
	cancel     context.CancelFunc
	writerDone chan struct{}
}

// StockFeed pushes catalog changes to WebSocket subscribers.
type StockFeed struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	mu       sync.RWMutex
	clients  map[*feedClient]struct{}
	wg       sync.WaitGroup
}

// NewStockFeed creates a new StockFeed instance.
func NewStockFeed(logger *zap.Logger) *StockFeed {
	return &StockFeed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:  logger,
		clients: make(map[*feedClient]struct{}),
	}
}

// RegisterRoutes registers the WebSocket routes with the router.
func (f *StockFeed) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", f.HandleWebSocket).Methods(http.MethodGet)
}

// Publish fans event out to every subscriber without blocking. Subscribers
// whose buffer is full miss the event.
func (f *StockFeed) Publish(event model.StockEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for c := range f.clients {
		select {
		case c.send <- event:
		default:
			droppedEventsTotal.Inc()
			f.logger.Debug("dropping stock event for slow client", zap.String("item_name", event.ItemName))
		}
	}
}

// HandleWebSocket handles WebSocket connection requests.
//
//nolint:contextcheck // subscriptions outlive the upgrade request
func (f *StockFeed) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &feedClient{
		conn:       conn,
		send:       make(chan model.StockEvent, sendBufferSize),
		cancel:     cancel,
		writerDone: make(chan struct{}),
	}

	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()

	f.logger.Info("websocket client connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	f.wg.Add(2)
	go f.writePump(ctx, c)
	go f.readPump(ctx, c)
}

// readPump consumes control frames until the connection fails or closes.
func (f *StockFeed) readPump(ctx context.Context, c *feedClient) {
	defer func() {
		c.cancel()
		f.removeClient(c)
		if err := c.conn.Close(); err != nil {
			f.logger.Debug("error closing connection", zap.Error(err))
		}
		f.wg.Done()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		f.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, message, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					f.logger.Warn("websocket read error", zap.Error(err))
				}
				return
			}
			f.logger.Debug("received message", zap.ByteString("message", message))
		}
	}
}

// writePump delivers queued events and keeps the connection alive.
func (f *StockFeed) writePump(ctx context.Context, c *feedClient) {
	pingTicker := time.NewTicker(pingPeriod)

	defer func() {
		pingTicker.Stop()
		close(c.writerDone)
		f.wg.Done()
	}()

	for {
		select {
		case <-ctx.Done():
			f.sendCloseMessage(c.conn)
			return
		case event := <-c.send:
			if err := f.sendEvent(c.conn, event); err != nil {
				f.logger.Debug("failed to send stock event", zap.Error(err))
				c.cancel()
				return
			}
		case <-pingTicker.C:
			if err := f.sendPing(c.conn); err != nil {
				f.logger.Debug("failed to send ping", zap.Error(err))
				c.cancel()
				return
			}
		}
	}
}

func (f *StockFeed) sendEvent(conn *websocket.Conn, event model.StockEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}

// sendPing sends a ping message to the connection.
func (f *StockFeed) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// sendCloseMessage sends a close message to the connection.
func (f *StockFeed) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		f.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		f.logger.Debug("failed to send close message", zap.Error(err))
	}
}

// removeClient removes a client from the subscriber set.
func (f *StockFeed) removeClient(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.clients[c]; exists {
		delete(f.clients, c)
		f.logger.Info("websocket client disconnected", zap.String("remote_addr", c.conn.RemoteAddr().String()))
	}
}

// ClientCount reports the number of connected subscribers.
func (f *StockFeed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// CloseAllConnections closes every subscriber and waits for their pumps to exit.
func (f *StockFeed) CloseAllConnections() {
	f.mu.Lock()
	clients := make([]*feedClient, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	f.mu.Unlock()

	// The write pumps send close frames on cancel.
	for _, c := range clients {
		c.cancel()
	}
	for _, c := range clients {
		<-c.writerDone
		if err := c.conn.Close(); err != nil {
			f.logger.Debug("error closing connection", zap.Error(err))
		}
	}

	f.wg.Wait()
	f.logger.Info("all websocket connections closed")
}
