package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maiaiia/pseudocronic/internal/api"
	"github.com/maiaiia/pseudocronic/internal/config"
	"github.com/maiaiia/pseudocronic/internal/relay"
	"github.com/maiaiia/pseudocronic/internal/session"
	"github.com/maiaiia/pseudocronic/internal/sessionwire"
	"github.com/maiaiia/pseudocronic/internal/state"
	"github.com/maiaiia/pseudocronic/internal/ui"
)

var (
	flagHostServer string
	flagHostAPI    string
	flagHostRoom   string
)

var hostCmd = &cobra.Command{
	Use:     "host [file.pseudo]",
	Aliases: []string{"h"},
	Short:   "Host a live session as the room owner",
	Long: `Host a live session. A room code is generated and printed; spectators
join with "pseudocronic watch <code>". Every local change broadcasts to the
room.

Examples:
  pseudocronic host
  pseudocronic host sort.pseudo
  pseudocronic host --room AB12CD`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := ""
		if len(args) == 1 {
			file = args[0]
		}
		return hostSession(file)
	},
}

func hostSession(file string) error {
	cfg, err := config.Load(config.Options{ServerURL: flagHostServer, APIBase: flagHostAPI})
	if err != nil {
		return err
	}

	roomID := flagHostRoom
	if roomID == "" {
		roomID = sessionwire.NewRoomCode()
	} else {
		if roomID, err = sessionwire.ParseRoomCode(roomID); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println()
	stopSpinner := ui.RunConnectionSpinner("Connecting to relay...")
	conn, err := sessionwire.Connect(ctx, cfg.RoomURL(roomID, string(relay.RoleOwner)), roomID, relay.RoleOwner)
	stopSpinner()
	if err != nil {
		return err
	}
	defer conn.Close()

	sess := session.New(roomID, relay.RoleOwner)
	producer := session.NewProducer(sess, conn, slog.Default())
	go producer.Run(ctx)

	// Owners never merge broadcasts, but the inbound channel still has to
	// drain; its close is also how we notice the relay going away.
	go func() {
		for range conn.Incoming() {
		}
		if ctx.Err() == nil {
			ui.PrintError(fmt.Sprintf("%v; session over, rejoin to continue", sessionwire.ErrDisconnected))
		}
	}()

	if file != "" {
		if err := loadFile(sess, file); err != nil {
			return err
		}
	}

	displayRoomBanner(roomID)

	return commandLoop(ctx, sess, api.NewClient(cfg.APIBase))
}

func displayRoomBanner(roomID string) {
	fmt.Println()
	fmt.Println(ui.BoxStyle.Render(fmt.Sprintf("Room code  %s\n\nSpectators join with: pseudocronic watch %s",
		ui.RoomCodeStyle.Render(roomID), roomID)))
	fmt.Println()
}

// commandLoop reads line commands from stdin and turns them into session
// mutations. Collaborator failures, quota included, print and continue; the
// session never dies from a failed call.
func commandLoop(ctx context.Context, sess *session.Session, collab *api.Client) error {
	fmt.Println(ui.MutedStyle.Render("commands: show  translate  fix  run  step  back  swap  load <file>  ocr <image>  edit  quit"))

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 256*1024), 256*1024)

	for {
		fmt.Print(ui.BoldStyle.Render("> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")

		var err error
		switch cmd {
		case "quit", "exit", "q":
			return nil
		case "show":
			fmt.Println(ui.RenderState(sess.State()))
		case "translate", "t":
			err = translate(ctx, sess, collab)
		case "fix", "f":
			err = checkAndFix(ctx, sess, collab)
		case "run", "r":
			err = executeSteps(ctx, sess, collab)
		case "step", "next", "n":
			moveStep(sess, 1)
		case "back", "prev", "p":
			moveStep(sess, -1)
		case "swap", "s":
			sess.Update(func(st *state.SessionState) {
				st.IsSwapped = !st.IsSwapped
			})
		case "load":
			err = loadFile(sess, strings.TrimSpace(arg))
		case "ocr":
			err = extractFromImage(ctx, sess, collab, strings.TrimSpace(arg))
		case "edit", "e":
			err = editPseudocode(scanner, sess)
		default:
			ui.PrintWarnf("unknown command %q", cmd)
		}

		if err != nil {
			printCollabError(err)
		}
	}
}

func translate(ctx context.Context, sess *session.Session, collab *api.Client) error {
	st := sess.State()
	stop := ui.RunSpinner("Translating...")
	defer stop()

	if st.IsSwapped {
		pseudocode, err := collab.InverseTranslate(ctx, st.CppCode)
		if err != nil {
			return err
		}
		stop()
		sess.Update(func(st *state.SessionState) {
			st.Pseudocode = pseudocode
		})
	} else {
		cpp, err := collab.Translate(ctx, st.Pseudocode)
		if err != nil {
			return err
		}
		stop()
		sess.Update(func(st *state.SessionState) {
			st.CppCode = cpp
		})
	}
	ui.PrintSuccessf("translated")
	return nil
}

func checkAndFix(ctx context.Context, sess *session.Session, collab *api.Client) error {
	stop := ui.RunSpinner("Checking code...")
	defer stop()

	result, err := collab.CheckAndFix(ctx, sess.State().Pseudocode)
	if err != nil {
		return err
	}
	stop()

	sess.Update(func(st *state.SessionState) {
		st.Pseudocode = result.CorrectedCode
		st.HasErrors = result.HasErrors
		st.Errors = result.ErrorsFound
		st.Explanation = result.Explanation
	})

	if result.HasErrors {
		ui.PrintWarnf("%d problem(s) found and fixed, %d fix calls left", len(result.ErrorsFound), result.RemainingCalls)
	} else {
		ui.PrintSuccessf("no problems found, %d fix calls left", result.RemainingCalls)
	}
	return nil
}

func executeSteps(ctx context.Context, sess *session.Session, collab *api.Client) error {
	stop := ui.RunSpinner("Executing step by step...")
	defer stop()

	steps, err := collab.ExecuteSteps(ctx, sess.State().Pseudocode)
	if err != nil {
		return err
	}
	stop()

	sess.Update(func(st *state.SessionState) {
		st.ExecutionSteps = steps
		st.CurrentStepIndex = 0
	})
	ui.PrintSuccessf("%d execution steps, use step/back to navigate", len(steps))
	return nil
}

func moveStep(sess *session.Session, delta int) {
	sess.Update(func(st *state.SessionState) {
		next := st.CurrentStepIndex + delta
		if next < 0 || next >= len(st.ExecutionSteps) {
			return
		}
		st.CurrentStepIndex = next
	})
	fmt.Println(ui.RenderState(sess.State()))
}

func extractFromImage(ctx context.Context, sess *session.Session, collab *api.Client, path string) error {
	if path == "" {
		return fmt.Errorf("usage: ocr <image-file>")
	}
	img, err := os.Open(path)
	if err != nil {
		return err
	}
	defer img.Close()

	stop := ui.RunSpinner("Extracting text from image...")
	defer stop()

	result, err := collab.ExtractText(ctx, img, filepath.Base(path))
	if err != nil {
		return err
	}
	stop()

	sess.Update(func(st *state.SessionState) {
		st.Pseudocode = result.ExtractedText
	})
	ui.PrintSuccessf("extracted %d bytes of pseudocode, %d scans left", len(result.ExtractedText), result.RemainingCalls)
	return nil
}

func loadFile(sess *session.Session, path string) error {
	if path == "" {
		return fmt.Errorf("usage: load <file>")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sess.Update(func(st *state.SessionState) {
		st.Pseudocode = string(raw)
	})
	ui.PrintSuccessf("loaded %s (%d bytes)", path, len(raw))
	return nil
}

// editPseudocode reads pseudocode lines from stdin until a lone "." line.
func editPseudocode(scanner *bufio.Scanner, sess *session.Session) error {
	fmt.Println(ui.MutedStyle.Render("enter pseudocode, finish with a single '.' line"))
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "." {
			break
		}
		lines = append(lines, line)
	}
	sess.Update(func(st *state.SessionState) {
		st.Pseudocode = strings.Join(lines, "\n")
	})
	return scanner.Err()
}

// printCollabError keeps quota exhaustion friendly and everything else loud.
func printCollabError(err error) {
	var quota *api.QuotaError
	if errors.As(err, &quota) {
		ui.PrintWarnf("%s", quota.Error())
		return
	}
	ui.PrintError(err.Error())
}

func init() {
	rootCmd.AddCommand(hostCmd)

	hostCmd.Flags().StringVar(&flagHostServer, "server", "", "Relay server URL (ws:// or wss://)")
	hostCmd.Flags().StringVar(&flagHostAPI, "api", "", "Collaborator services base URL")
	hostCmd.Flags().StringVar(&flagHostRoom, "room", "", "Use a specific room code instead of generating one")
}
