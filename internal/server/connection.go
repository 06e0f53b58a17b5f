package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/pokertable/internal/bot"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8192
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one WebSocket client.
type Connection struct {
	id     string
	conn   *websocket.Conn
	send   chan *Message
	server *Server
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	playerID  string
	tableID   string
	agent     *RemoteAgent
	closeOnce sync.Once
}

func newConnection(conn *websocket.Conn, s *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	return &Connection{
		id:     id,
		conn:   conn,
		send:   make(chan *Message, 256),
		server: s,
		logger: s.logger.WithPrefix("conn").With("conn", id),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Connection) start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues msg for the client. A full buffer closes the
// connection.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) reply(t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("encode message", "type", t, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

func (c *Connection) table() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableID
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("websocket read", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Connection) sendError(code, message string) {
	c.reply(MessageTypeError, ErrorData{Code: code, Message: message})
}

// decode unmarshals msg.Data, reporting failures to the client.
func decode[T any](c *Connection, msg *Message) (T, bool) {
	var data T
	if len(msg.Data) == 0 {
		return data, true
	}
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError("invalid_message", "failed to parse "+msg.Type.String()+" data")
		return data, false
	}
	return data, true
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.player())

	if msg.Type != MessageTypeAuth && msg.Type != MessageTypeListTables && c.player() == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return
	}

	switch msg.Type {
	case MessageTypeAuth:
		if data, ok := decode[AuthData](c, msg); ok {
			c.handleAuth(data)
		}
	case MessageTypeListTables:
		c.reply(MessageTypeTableList, TableListData{Tables: c.server.ListTables()})
	case MessageTypeJoinTable:
		if data, ok := decode[JoinTableData](c, msg); ok {
			c.handleJoinTable(data)
		}
	case MessageTypeLeaveTable:
		if data, ok := decode[LeaveTableData](c, msg); ok {
			c.handleLeaveTable(data)
		}
	case MessageTypeGetState:
		if data, ok := decode[GetStateData](c, msg); ok {
			r := c.server.Table(data.TableID)
			if r == nil {
				c.sendError("table_not_found", "unknown table "+data.TableID)
				return
			}
			c.reply(MessageTypeTableState, TableStateData{TableID: data.TableID, State: r.Snapshot(c.player())})
		}
	case MessageTypePlayerDecision:
		if data, ok := decode[PlayerDecisionData](c, msg); ok {
			c.handleDecision(data)
		}
	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleAuth(data AuthData) {
	if data.PlayerName == "" {
		c.sendError("invalid_auth", "player name required")
		return
	}
	if c.player() != "" {
		c.sendError("invalid_auth", "already authenticated")
		return
	}
	if !c.server.claimPlayer(data.PlayerName, c) {
		c.sendError("name_taken", "player "+data.PlayerName+" is already connected")
		return
	}

	c.mu.Lock()
	c.playerID = data.PlayerName
	c.mu.Unlock()

	c.logger.Info("authenticated", "player", data.PlayerName)
	c.reply(MessageTypeAuthResponse, AuthResponseData{PlayerID: data.PlayerName, ConnID: c.id})
}

func (c *Connection) handleJoinTable(data JoinTableData) {
	r := c.server.Table(data.TableID)
	if r == nil {
		c.sendError("table_not_found", "unknown table "+data.TableID)
		return
	}
	if c.table() != "" {
		c.sendError("join_failed", "already seated at "+c.table())
		return
	}
	if data.BuyIn <= 0 {
		data.BuyIn = c.server.defaultBuyIn
	}
	seat := -1
	if data.Seat != nil {
		seat = *data.Seat
	}

	agent := newRemoteAgent(c, data.TableID, c.server.timeoutSeconds())
	id := c.player()
	p, err := r.Seat(id, id, data.BuyIn, seat, agent)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}

	c.mu.Lock()
	c.tableID = data.TableID
	c.agent = agent
	c.mu.Unlock()

	c.reply(MessageTypeTableJoined, TableJoinedData{TableID: data.TableID, Seat: p.Seat, State: r.Snapshot(id)})
}

func (c *Connection) handleLeaveTable(data LeaveTableData) {
	if data.TableID == "" || data.TableID != c.table() {
		c.sendError("leave_failed", "not seated at "+data.TableID)
		return
	}
	if err := c.leave(); err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}
	c.reply(MessageTypeTableLeft, TableLeftData{TableID: data.TableID})
}

// leave gives up the player's seat, if any.
func (c *Connection) leave() error {
	c.mu.Lock()
	tableID, agent := c.tableID, c.agent
	c.tableID, c.agent = "", nil
	c.mu.Unlock()
	if tableID == "" {
		return nil
	}
	if agent != nil {
		agent.abandon()
	}
	r := c.server.Table(tableID)
	if r == nil {
		return nil
	}
	return r.Leave(c.player())
}

func (c *Connection) handleDecision(data PlayerDecisionData) {
	c.mu.RLock()
	agent, tableID := c.agent, c.tableID
	c.mu.RUnlock()
	if agent == nil || (data.TableID != "" && data.TableID != tableID) {
		c.sendError("decision_failed", "not seated at "+data.TableID)
		return
	}
	if err := agent.Submit(bot.Decision{Action: data.Action, Amount: data.Amount, Reasoning: data.Reasoning}); err != nil {
		c.sendError("decision_failed", err.Error())
	}
}
