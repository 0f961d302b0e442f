package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maiaiia/pseudocronic/internal/relay"
	"github.com/maiaiia/pseudocronic/internal/state"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capture collects payloads handed to Send, concurrency-safe.
type capture struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *capture) Send(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func (c *capture) last(t *testing.T) state.Snapshot {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.payloads)
	var m state.Snapshot
	require.NoError(t, json.Unmarshal(c.payloads[len(c.payloads)-1], &m))
	return m
}

func TestSession_UpdateRaisesDirtyEvent(t *testing.T) {
	req := require.New(t)
	sess := New("ab12cd", relay.RoleOwner)

	req.Equal("AB12CD", sess.RoomID)

	sess.Update(func(st *state.SessionState) {
		st.Pseudocode = "citeste n"
	})

	select {
	case <-sess.Dirty():
	default:
		t.Fatal("expected a pending dirty event")
	}
	req.Equal("citeste n", sess.State().Pseudocode)
}

func TestSession_ApplySnapshotIgnoredForOwner(t *testing.T) {
	req := require.New(t)
	sess := New("R1", relay.RoleOwner)
	sess.Update(func(st *state.SessionState) {
		st.Pseudocode = "mine"
	})

	p := "theirs"
	sess.ApplySnapshot(state.Snapshot{Pseudocode: &p})

	req.Equal("mine", sess.State().Pseudocode)
}

func TestSession_ApplySnapshotMergesForSpectator(t *testing.T) {
	req := require.New(t)
	sess := New("R1", relay.RoleSpectator)

	p := "citeste n"
	sess.ApplySnapshot(state.Snapshot{Pseudocode: &p})
	cpp := "int n;"
	sess.ApplySnapshot(state.Snapshot{CppCode: &cpp})

	st := sess.State()
	req.Equal("citeste n", st.Pseudocode)
	req.Equal("int n;", st.CppCode)
}

func TestSession_MergeIsAtomicUnderConcurrentReaders(t *testing.T) {
	req := require.New(t)
	sess := New("R1", relay.RoleSpectator)

	// Readers must only ever observe both fields from the same snapshot.
	done := make(chan struct{})
	var bad bool
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			st := sess.State()
			if st.Pseudocode != st.CppCode {
				bad = true
				return
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		v := "v"
		if i%2 == 0 {
			v = "w"
		}
		sess.ApplySnapshot(state.Snapshot{Pseudocode: &v, CppCode: &v})
	}
	<-done
	req.False(bad, "observed a partially applied snapshot")
}

func TestProducer_DebouncesBurstsIntoOneSend(t *testing.T) {
	req := require.New(t)
	sess := New("R1", relay.RoleOwner)
	out := &capture{}

	p := NewProducer(sess, out, discard())
	p.debounce = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	for i := 0; i < 10; i++ {
		sess.Update(func(st *state.SessionState) {
			st.Pseudocode = "burst"
		})
	}

	req.Eventually(func() bool { return out.count() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * p.debounce)
	req.Equal(1, out.count(), "burst of mutations should collapse into one send")

	m := out.last(t)
	req.NotNil(m.Pseudocode)
	req.Equal("burst", *m.Pseudocode)
}

func TestProducer_BroadSnapshotCarriesFullFieldSet(t *testing.T) {
	req := require.New(t)
	sess := New("R1", relay.RoleOwner)
	out := &capture{}

	p := NewProducer(sess, out, discard())
	p.debounce = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	sess.Update(func(st *state.SessionState) {
		st.HasErrors = true
		st.Errors = []string{"line 3: missing END"}
	})

	req.Eventually(func() bool { return out.count() >= 1 }, time.Second, 5*time.Millisecond)
	m := out.last(t)
	req.NotNil(m.HasErrors)
	req.True(*m.HasErrors)
	req.NotNil(m.Errors)
	req.Equal([]string{"line 3: missing END"}, *m.Errors)
	// Untouched fields are still present: the producer sends the full
	// relevant subset, not a diff.
	req.NotNil(m.Pseudocode)
	req.NotNil(m.IsSwapped)
}

func TestProducer_SpectatorNeverPublishes(t *testing.T) {
	req := require.New(t)
	sess := New("R1", relay.RoleSpectator)
	out := &capture{}

	p := NewProducer(sess, out, discard())
	p.debounce = 5 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	sess.Update(func(st *state.SessionState) {
		st.Pseudocode = "should not go out"
	})

	time.Sleep(50 * time.Millisecond)
	req.Zero(out.count())
}

func TestConsumer_MergesInboundAndSkipsJunk(t *testing.T) {
	req := require.New(t)
	sess := New("R1", relay.RoleSpectator)
	in := make(chan []byte, 4)

	in <- []byte(`{"pseudocode":"X"}`)
	in <- []byte(`this is not json`)
	in <- []byte(`{"pseudocode":"Y"}`)
	close(in)

	c := NewConsumer(sess, in, discard())
	req.NoError(c.Run(context.Background()))

	req.Equal("Y", sess.State().Pseudocode)
}

func TestConsumer_OwnerDoesNotConsume(t *testing.T) {
	req := require.New(t)
	sess := New("R1", relay.RoleOwner)
	in := make(chan []byte, 1)
	in <- []byte(`{"pseudocode":"X"}`)
	close(in)

	c := NewConsumer(sess, in, discard())
	req.NoError(c.Run(context.Background()))

	req.Empty(sess.State().Pseudocode)
}

func TestSession_WatchSeesLatestState(t *testing.T) {
	req := require.New(t)
	sess := New("R1", relay.RoleSpectator)
	updates := sess.Watch()

	for i := 0; i < 5; i++ {
		p := "v"
		sess.ApplySnapshot(state.Snapshot{Pseudocode: &p})
	}
	last := "final"
	sess.ApplySnapshot(state.Snapshot{Pseudocode: &last})

	var got state.SessionState
	req.Eventually(func() bool {
		select {
		case got = <-updates:
			return got.Pseudocode == "final"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	req.Equal("final", got.Pseudocode)
}
