package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pokertable/internal/game"
)

// MessageType names a WebSocket message.
type MessageType string

const (
	// Client to server
	MessageTypeAuth           MessageType = "auth"
	MessageTypeJoinTable      MessageType = "join_table"
	MessageTypeLeaveTable     MessageType = "leave_table"
	MessageTypeListTables     MessageType = "list_tables"
	MessageTypeGetState       MessageType = "get_state"
	MessageTypePlayerDecision MessageType = "player_decision"

	// Server to client
	MessageTypeAuthResponse   MessageType = "auth_response"
	MessageTypeError          MessageType = "error"
	MessageTypeTableJoined    MessageType = "table_joined"
	MessageTypeTableLeft      MessageType = "table_left"
	MessageTypeTableList      MessageType = "table_list"
	MessageTypeTableState     MessageType = "table_state"
	MessageTypeActionRequired MessageType = "action_required"
	MessageTypeHandStart      MessageType = "hand_start"
	MessageTypePlayerAction   MessageType = "player_action"
	MessageTypePlayerTimeout  MessageType = "player_timeout"
	MessageTypeHandEnd        MessageType = "hand_end"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every frame in either direction.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals data into a message stamped with the current time.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &Message{Type: messageType, Data: raw, Timestamp: time.Now()}, nil
}

type AuthData struct {
	PlayerName string `json:"player_name"`
}

type AuthResponseData struct {
	PlayerID string `json:"player_id"`
	ConnID   string `json:"conn_id"`
}

type JoinTableData struct {
	TableID string `json:"table_id"`
	BuyIn   int    `json:"buy_in"`
	Seat    *int   `json:"seat,omitempty"`
}

type LeaveTableData struct {
	TableID string `json:"table_id"`
}

type GetStateData struct {
	TableID string `json:"table_id"`
}

type PlayerDecisionData struct {
	TableID   string      `json:"table_id"`
	Action    game.Action `json:"action"`
	Amount    int         `json:"amount,omitempty"`
	Reasoning string      `json:"reasoning,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableJoinedData struct {
	TableID string         `json:"table_id"`
	Seat    int            `json:"seat"`
	State   game.TableView `json:"state"`
}

type TableLeftData struct {
	TableID string `json:"table_id"`
}

type TableInfo struct {
	ID         string `json:"id"`
	Structure  string `json:"structure"`
	Stakes     string `json:"stakes"`
	Players    int    `json:"players"`
	HandNumber int    `json:"hand_number"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type TableStateData struct {
	TableID string         `json:"table_id"`
	State   game.TableView `json:"state"`
}

type ActionRequiredData struct {
	TableID        string         `json:"table_id"`
	State          game.TableView `json:"state"`
	TimeoutSeconds int            `json:"timeout_seconds,omitempty"`
}

type HandStartData struct {
	TableID string `json:"table_id"`
	HandID  string `json:"hand_id"`
}

type PlayerActionData struct {
	TableID  string      `json:"table_id"`
	HandID   string      `json:"hand_id"`
	PlayerID string      `json:"player_id"`
	Action   game.Action `json:"action"`
	Total    int         `json:"total"`
	Forced   bool        `json:"forced,omitempty"`
}

type PlayerTimeoutData struct {
	TableID  string `json:"table_id"`
	PlayerID string `json:"player_id"`
}

type PotAward struct {
	Name    string         `json:"name"`
	Amount  int            `json:"amount"`
	Winners []string       `json:"winners"`
	Shares  map[string]int `json:"shares"`
}

type HandEndData struct {
	TableID  string              `json:"table_id"`
	HandID   string              `json:"hand_id"`
	Board    []string            `json:"board"`
	Showdown bool                `json:"showdown"`
	Pots     []PotAward          `json:"pots"`
	Shown    map[string][]string `json:"shown,omitempty"`
	Winnings map[string]int      `json:"winnings"`
	Rake     int                 `json:"rake,omitempty"`
}

// HandEndFromResult converts an engine result for the wire.
func HandEndFromResult(table string, r *game.HandResult) HandEndData {
	data := HandEndData{
		TableID:  table,
		HandID:   r.HandID,
		Showdown: r.ShowdownReached,
		Winnings: r.Winnings,
		Rake:     r.Rake,
	}
	for _, c := range r.Board {
		data.Board = append(data.Board, c.String())
	}
	for _, pr := range r.Pots {
		data.Pots = append(data.Pots, PotAward{Name: pr.Pot.Name, Amount: pr.Pot.Amount, Winners: pr.Winners, Shares: pr.Shares})
	}
	if len(r.Shown) > 0 {
		data.Shown = make(map[string][]string, len(r.Shown))
		for id, cards := range r.Shown {
			for _, c := range cards {
				data.Shown[id] = append(data.Shown[id], c.String())
			}
		}
	}
	return data
}
