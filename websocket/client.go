package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 10000

	sendBuffer = 256
)

// Client is one websocket connection of a user
type Client struct {
	conn      *websocket.Conn
	userID    uint
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	log       logrus.FieldLogger
}

func newClient(conn *websocket.Conn, userID uint, log logrus.FieldLogger) *Client {
	return &Client{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		log:    log.WithField("user_id", userID),
	}
}

func (c *Client) UserID() uint {
	return c.userID
}

// Enqueue queues payload for the write pump. A client whose buffer is full
// is closed.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		c.log.Warn("Send buffer full, closing connection")
		c.close()
		return false
	}
}

// sendJSON queues v as a text frame
func (c *Client) sendJSON(v interface{}) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		c.log.WithError(err).Error("Failed to marshal frame")
		return false
	}
	return c.Enqueue(payload)
}

func (c *Client) sendError(message string) {
	c.sendJSON(gin.H{"error": message})
}

// closeWith sends a close frame with code and stops the pumps
func (c *Client) closeWith(code int, reason string) {
	refuse(c.conn, code, reason)
	c.close()
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump passes every text frame to handle until the peer goes away,
// handle returns false or the client is closed
func (c *Client) readPump(handle func([]byte) bool) {
	defer func() {
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("Unexpected websocket close")
			}
			return
		}

		select {
		case <-c.done:
			return
		default:
		}

		if !handle(message) {
			return
		}
	}
}

// writePump writes queued frames and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.drain()
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// drain flushes frames queued before the client was closed
func (c *Client) drain() {
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}

// refuse closes conn with code before it was ever registered
func refuse(conn *websocket.Conn, code int, reason string) {
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
}
