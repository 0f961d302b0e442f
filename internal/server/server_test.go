package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/maiaiia/pseudocronic/internal/relay"
	"github.com/maiaiia/pseudocronic/internal/state"
)

func startRelay(t *testing.T, maxRoomSize int) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := relay.NewHub(logger, maxRoomSize)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	ts := httptest.NewServer(New(hub, logger))
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, roomID, role string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + roomID + "?role=" + role
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func recv(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(payload)
}

func expectSilence(t *testing.T, conn *websocket.Conn, d time.Duration) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(d))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected no frame to arrive")
}

func TestEndToEnd_LateJoinerMissesHistory(t *testing.T) {
	ts := startRelay(t, 0)

	owner := dial(t, ts, "AB12CD", "owner")
	send(t, owner, `{"pseudocode":"X"}`)

	// The spectator joins after the first snapshot was sent: best-effort
	// delivery means it is gone for good.
	time.Sleep(100 * time.Millisecond)
	spectator := dial(t, ts, "AB12CD", "spectator")
	time.Sleep(100 * time.Millisecond)

	send(t, owner, `{"pseudocode":"Y"}`)

	var st state.SessionState
	var m state.Snapshot
	require.NoError(t, json.Unmarshal([]byte(recv(t, spectator)), &m))
	st.Apply(m)
	require.Equal(t, "Y", st.Pseudocode)
}

func TestEndToEnd_AbsentFieldIsNotCleared(t *testing.T) {
	ts := startRelay(t, 0)

	owner := dial(t, ts, "ROOM", "owner")
	spectator := dial(t, ts, "room", "spectator") // case-insensitive join
	time.Sleep(100 * time.Millisecond)

	send(t, owner, `{"hasErrors":true,"errors":["line 3: missing END"]}`)
	send(t, owner, `{"hasErrors":false}`)

	var st state.SessionState
	for i := 0; i < 2; i++ {
		var m state.Snapshot
		require.NoError(t, json.Unmarshal([]byte(recv(t, spectator)), &m))
		st.Apply(m)
	}

	require.False(t, st.HasErrors)
	require.Equal(t, []string{"line 3: missing END"}, st.Errors)
}

func TestEndToEnd_SpectatorWriteIsInert(t *testing.T) {
	ts := startRelay(t, 0)

	owner := dial(t, ts, "MUTE", "owner")
	s1 := dial(t, ts, "MUTE", "spectator")
	s2 := dial(t, ts, "MUTE", "spectator")
	time.Sleep(100 * time.Millisecond)

	send(t, s1, `{"pseudocode":"hijack"}`)

	expectSilence(t, owner, 300*time.Millisecond)
	expectSilence(t, s2, 300*time.Millisecond)
}

func TestEndToEnd_TwoSpectatorsSeeIdenticalSequences(t *testing.T) {
	ts := startRelay(t, 0)

	owner := dial(t, ts, "TWIN", "owner")
	s1 := dial(t, ts, "TWIN", "spectator")
	s2 := dial(t, ts, "TWIN", "spectator")
	time.Sleep(100 * time.Millisecond)

	frames := []string{
		`{"pseudocode":"citeste n"}`,
		`{"cppCode":"int n;","isSwapped":false}`,
		`{"currentStepIndex":2}`,
	}
	for _, f := range frames {
		send(t, owner, f)
	}

	for i, want := range frames {
		require.Equal(t, want, recv(t, s1), "spectator 1, frame %d", i)
		require.Equal(t, want, recv(t, s2), "spectator 2, frame %d", i)
	}
}

func TestEndToEnd_OwnerDisconnectCleansUp(t *testing.T) {
	ts := startRelay(t, 0)

	owner := dial(t, ts, "BYE", "owner")
	s1 := dial(t, ts, "BYE", "spectator")
	s2 := dial(t, ts, "BYE", "spectator")
	time.Sleep(100 * time.Millisecond)

	owner.Close()
	time.Sleep(100 * time.Millisecond)

	// A spectator message into the ownerless room produces no broadcast
	// and no error; the connection stays healthy.
	send(t, s1, `{"pseudocode":"x"}`)
	expectSilence(t, s2, 300*time.Millisecond)
	send(t, s1, `{"pseudocode":"still fine"}`)
}

func TestEndToEnd_RoomFullClosesWithTryAgainLater(t *testing.T) {
	ts := startRelay(t, 2)

	dial(t, ts, "CAP", "owner")
	dial(t, ts, "CAP", "spectator")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/CAP?role=spectator"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	require.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater), "got %v", err)
}

func TestEndToEnd_MalformedFrameDoesNotKillTheRoom(t *testing.T) {
	ts := startRelay(t, 0)

	owner := dial(t, ts, "JUNK", "owner")
	spectator := dial(t, ts, "JUNK", "spectator")
	time.Sleep(100 * time.Millisecond)

	send(t, owner, `{"pseudocode":`)
	send(t, owner, `{"pseudocode":"recovered"}`)

	require.Equal(t, `{"pseudocode":"recovered"}`, recv(t, spectator))
}

func TestHealthEndpoint(t *testing.T) {
	ts := startRelay(t, 0)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	ts := startRelay(t, 0)

	dial(t, ts, "STAT", "owner")
	dial(t, ts, "STAT", "spectator")
	time.Sleep(100 * time.Millisecond)

	resp, err := ts.Client().Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats []relay.RoomStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Len(t, stats, 1)
	require.Equal(t, "STAT", stats[0].ID)
	require.Equal(t, 2, stats[0].Members)
	require.Equal(t, 1, stats[0].Owners)
}
