package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lox/pokertable/internal/bot"
	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *runner.Runner, string) {
	t.Helper()
	table, err := game.NewTable(game.Config{SmallBlind: 5, BigBlind: 10}, game.WithSeed(9), game.WithButton(0))
	require.NoError(t, err)
	r := runner.New("main", table, runner.WithWaitForPlayers())

	s := New(nil, WithDefaultBuyIn(200))
	s.AddTable(r)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, r, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

type client struct {
	t       *testing.T
	conn    *websocket.Conn
	backlog []*Message
}

func dial(t *testing.T, url string) *client {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) send(typ MessageType, data any) {
	c.t.Helper()
	msg, err := NewMessage(typ, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// readUntil returns the first message of type typ, keeping others for
// later calls.
func (c *client) readUntil(typ MessageType) *Message {
	c.t.Helper()
	for i, msg := range c.backlog {
		if msg.Type == typ {
			c.backlog = append(c.backlog[:i], c.backlog[i+1:]...)
			return msg
		}
	}
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		msg := &Message{}
		require.NoError(c.t, c.conn.ReadJSON(msg), "waiting for %s", typ)
		if msg.Type == typ {
			return msg
		}
		c.backlog = append(c.backlog, msg)
	}
}

func (c *client) auth(name string) {
	c.t.Helper()
	c.send(MessageTypeAuth, AuthData{PlayerName: name})
	var resp AuthResponseData
	require.NoError(c.t, json.Unmarshal(c.readUntil(MessageTypeAuthResponse).Data, &resp))
	require.Equal(c.t, name, resp.PlayerID)
	require.NotEmpty(c.t, resp.ConnID)
}

func errorCode(t *testing.T, msg *Message) string {
	t.Helper()
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data.Code
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := New(nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestPlayHandOverWebSocket(t *testing.T) {
	t.Parallel()

	_, r, url := newTestServer(t)
	_, err := r.Seat("bot", "Bot", 200, 1, bot.NewCallBot(nil))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, 1) }()

	c := dial(t, url)
	c.auth("alice")
	seat := 0
	c.send(MessageTypeJoinTable, JoinTableData{TableID: "main", Seat: &seat})

	var joined TableJoinedData
	require.NoError(t, json.Unmarshal(c.readUntil(MessageTypeTableJoined).Data, &joined))
	assert.Equal(t, 0, joined.Seat)
	me, ok := joined.State.Me("alice")
	require.True(t, ok)
	assert.Equal(t, 200, me.Chips+me.TotalBet, "default buy-in")

	// Alice is on the button and acts first heads-up.
	var req ActionRequiredData
	require.NoError(t, json.Unmarshal(c.readUntil(MessageTypeActionRequired).Data, &req))
	assert.Equal(t, "main", req.TableID)
	assert.Equal(t, "alice", req.State.ToAct)
	assert.NotEmpty(t, req.State.ValidActions)
	mine, ok := req.State.Me("alice")
	require.True(t, ok)
	assert.Len(t, mine.HoleCards, 2)

	c.send(MessageTypePlayerDecision, PlayerDecisionData{TableID: "main", Action: game.Fold})

	var end HandEndData
	require.NoError(t, json.Unmarshal(c.readUntil(MessageTypeHandEnd).Data, &end))
	assert.Equal(t, 15, end.Winnings["bot"])
	assert.False(t, end.Showdown)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("runner did not finish")
	}
}

func TestProtocolErrors(t *testing.T) {
	t.Parallel()

	_, _, url := newTestServer(t)
	c := dial(t, url)

	c.send(MessageTypeJoinTable, JoinTableData{TableID: "main"})
	assert.Equal(t, "not_authenticated", errorCode(t, c.readUntil(MessageTypeError)))

	c.send(MessageTypeListTables, nil)
	var list TableListData
	require.NoError(t, json.Unmarshal(c.readUntil(MessageTypeTableList).Data, &list))
	require.Len(t, list.Tables, 1)
	assert.Equal(t, TableInfo{ID: "main", Structure: "no-limit", Stakes: "5/10"}, list.Tables[0])

	c.auth("bob")
	c.send(MessageType("dance"), nil)
	assert.Equal(t, "unknown_message_type", errorCode(t, c.readUntil(MessageTypeError)))

	c.send(MessageTypeJoinTable, JoinTableData{TableID: "nowhere"})
	assert.Equal(t, "table_not_found", errorCode(t, c.readUntil(MessageTypeError)))

	c.send(MessageTypePlayerDecision, PlayerDecisionData{TableID: "main", Action: game.Check})
	assert.Equal(t, "decision_failed", errorCode(t, c.readUntil(MessageTypeError)))

	other := dial(t, url)
	other.send(MessageTypeAuth, AuthData{PlayerName: "bob"})
	assert.Equal(t, "name_taken", errorCode(t, other.readUntil(MessageTypeError)))
}

func TestDisconnectLeavesTable(t *testing.T) {
	t.Parallel()

	_, r, url := newTestServer(t)
	c := dial(t, url)
	c.auth("carol")
	c.send(MessageTypeJoinTable, JoinTableData{TableID: "main", BuyIn: 300})
	c.readUntil(MessageTypeTableJoined)
	_, seated := r.Snapshot("").Me("carol")
	require.True(t, seated)

	require.NoError(t, c.conn.Close())
	require.Eventually(t, func() bool {
		_, seated := r.Snapshot("").Me("carol")
		return !seated
	}, 5*time.Second, 10*time.Millisecond)
}
