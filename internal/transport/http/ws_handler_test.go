package http

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"live-trivia-service/internal/domain"
)

func TestWebSocketStreamsSnapshots(t *testing.T) {
	server, game := newTestServer(t)

	player, err := game.Join("Ann", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/ws?playerId=" + player.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First snapshot arrives without any mutation.
	initial := readState(t, conn)
	if initial.Question.Status != domain.StatusIdle {
		t.Fatalf("expected idle initial snapshot, got %s", initial.Question.Status)
	}
	if initial.PlayersOnline != 1 {
		t.Fatalf("expected self counted online, got %d", initial.PlayersOnline)
	}

	if _, err := game.AskCustom("Best shell?", []string{"sh", "rc"}); err != nil {
		t.Fatalf("ask: %v", err)
	}
	update := readState(t, conn)
	for update.Question.Status != domain.StatusActive {
		update = readState(t, conn)
	}
	if update.Question.Prompt != "Best shell?" {
		t.Fatalf("expected pushed question, got %+v", update.Question)
	}

	if _, err := game.Submit(player.ID, "", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	update = readState(t, conn)
	for update.SelfAnswer == nil {
		update = readState(t, conn)
	}
	if update.SelfAnswer.AnswerIndex != 1 {
		t.Fatalf("expected personalized self answer, got %+v", update.SelfAnswer)
	}
}

func TestWebSocketDisconnectDropsOnlineCount(t *testing.T) {
	server, game := newTestServer(t)

	player, err := game.Join("Ann", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/ws?playerId=" + player.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	readState(t, conn)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for game.Snapshot("").PlayersOnline != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("online count never dropped after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketClosesWhenPlayerLeaves(t *testing.T) {
	server, game := newTestServer(t)

	player, err := game.Join("Ann", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/ws?playerId=" + player.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readState(t, conn)

	if !game.Leave(player.ID) {
		t.Fatalf("expected leave to drop the connection")
	}

	// The server must tear the socket down, not leave it open and
	// silent: expect a close error, never a read timeout.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				t.Fatalf("socket stayed open after leave")
			}
			return
		}
	}
}

func readState(t *testing.T, conn *websocket.Conn) domain.Snapshot {
	t.Helper()
	var msg stateMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read state: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %s", msg.Type)
	}
	return msg.Payload
}
