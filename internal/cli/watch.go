package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/maiaiia/pseudocronic/internal/config"
	"github.com/maiaiia/pseudocronic/internal/relay"
	"github.com/maiaiia/pseudocronic/internal/session"
	"github.com/maiaiia/pseudocronic/internal/sessionwire"
	"github.com/maiaiia/pseudocronic/internal/ui"
)

var flagWatchServer string

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

var watchCmd = &cobra.Command{
	Use:     "watch <room-code>",
	Aliases: []string{"w"},
	Short:   "Watch a live session as a spectator",
	Long: `Join a room read-only and follow the host's session live. If the
connection drops, the last received state stays on screen and the watcher
rejoins with backoff; snapshots sent while away are not replayed.

Examples:
  pseudocronic watch AB12CD
  pseudocronic watch ab12cd --server wss://relay.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchSession(args[0])
	},
}

func watchSession(input string) error {
	roomID, err := sessionwire.ParseRoomCode(input)
	if err != nil {
		return fmt.Errorf("%w: %q", err, input)
	}

	cfg, err := config.Load(config.Options{ServerURL: flagWatchServer})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := session.New(roomID, relay.RoleSpectator)
	program := tea.NewProgram(ui.NewLive(roomID), tea.WithAltScreen())

	// Forward merged states into the view.
	go func() {
		updates := sess.Watch()
		for {
			select {
			case st := <-updates:
				program.Send(ui.StateMsg(st))
			case <-ctx.Done():
				return
			}
		}
	}()

	go watchLoop(ctx, cfg, sess, program)

	_, err = program.Run()
	return err
}

// watchLoop keeps a spectator connection alive: connect, consume snapshots
// until the relay drops us, then rejoin with capped exponential backoff.
// Each rejoin is a fresh connection; missed snapshots are gone for good.
func watchLoop(ctx context.Context, cfg *config.Client, sess *session.Session, program *tea.Program) {
	backoff := reconnectBase

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := sessionwire.Connect(ctx, cfg.RoomURL(sess.RoomID, string(relay.RoleSpectator)), sess.RoomID, relay.RoleSpectator)
		if err != nil {
			program.Send(ui.StatusMsg(fmt.Sprintf("reconnecting in %s", backoff)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff = min(backoff*2, reconnectMax)
			continue
		}

		backoff = reconnectBase
		program.Send(ui.StatusMsg("live"))

		consumer := session.NewConsumer(sess, conn.Incoming(), slog.Default())
		_ = consumer.Run(ctx)
		conn.Close()

		if ctx.Err() != nil {
			return
		}
		program.Send(ui.StatusMsg("disconnected"))
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&flagWatchServer, "server", "", "Relay server URL (ws:// or wss://)")
}
