package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maiaiia/pseudocronic/internal/state"
)

// Messages pushed into the live view from the watch goroutines.
type (
	// StateMsg carries the latest merged session state.
	StateMsg state.SessionState

	// StatusMsg updates the connection status line.
	StatusMsg string
)

// LiveModel is the spectator's live view: the merged session state,
// re-rendered on every snapshot, with a status line for the connection.
type LiveModel struct {
	roomID string
	st     state.SessionState
	status string
}

// NewLive creates the live view for a room.
func NewLive(roomID string) LiveModel {
	return LiveModel{roomID: roomID, status: "connecting"}
}

func (m LiveModel) Init() tea.Cmd {
	return nil
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case StateMsg:
		m.st = state.SessionState(msg)

	case StatusMsg:
		m.status = string(msg)
	}

	return m, nil
}

func (m LiveModel) View() string {
	header := fmt.Sprintf("%s %s  %s\n\n",
		RoomCodeStyle.Render(m.roomID),
		statusBadge(m.status),
		MutedStyle.Render("press q to leave"))
	return header + RenderState(m.st)
}

func statusBadge(status string) string {
	switch status {
	case "live":
		return SuccessStyle.Render("● live")
	case "connecting":
		return WarningStyle.Render("● connecting")
	default:
		// A dropped spectator keeps its last merged state frozen on
		// screen until the rejoin succeeds.
		return ErrorStyle.Render("● " + status)
	}
}
