package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"

	"github.com/maiaiia/pseudocronic/internal/state"
)

const (
	panelWidth   = 56
	maxPanelRows = 16
)

// RenderState draws the full session state: the two code panels (order
// follows IsSwapped), error and explanation cards, and the current
// execution step with its variable table.
func RenderState(st state.SessionState) string {
	var out strings.Builder

	left := codePanel("PSEUDOCODE", st.Pseudocode)
	right := codePanel("C++", st.CppCode)
	if st.IsSwapped {
		left, right = right, left
	}
	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	out.WriteString("\n")

	if st.HasErrors || len(st.Errors) > 0 {
		for _, e := range st.Errors {
			out.WriteString(ErrorPanelStyle.Render(fmt.Sprintf("%s %s", IconWarn, e)))
			out.WriteString("\n")
		}
		if st.Explanation != "" {
			out.WriteString(PanelStyle.Render(fmt.Sprintf("%s %s", IconInfo, st.Explanation)))
			out.WriteString("\n")
		}
	}

	if step := currentStep(st); step != nil {
		out.WriteString(renderStep(*step, len(st.ExecutionSteps)))
		out.WriteString("\n")
	}

	return out.String()
}

func currentStep(st state.SessionState) *state.ExecutionStep {
	if len(st.ExecutionSteps) == 0 {
		return nil
	}
	i := st.CurrentStepIndex
	if i < 0 || i >= len(st.ExecutionSteps) {
		return nil
	}
	return &st.ExecutionSteps[i]
}

func codePanel(title, body string) string {
	lines := strings.Split(body, "\n")
	if len(lines) > maxPanelRows {
		lines = append(lines[:maxPanelRows], MutedStyle.Render("…"))
	}
	content := BoldStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return PanelStyle.Width(panelWidth).Render(content)
}

func renderStep(step state.ExecutionStep, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d / %d  line %d  %s\n",
		BoldStyle.Render("Step"), step.Step, total, step.Line, MutedStyle.Render(step.Type))
	b.WriteString(step.Description)
	if step.Value != "" {
		fmt.Fprintf(&b, "\n%s %s", MutedStyle.Render("value:"), step.Value)
	}
	if len(step.Variables) > 0 {
		b.WriteString("\n")
		b.WriteString(variablesTable(step.Variables))
	}
	if step.Output != "" {
		fmt.Fprintf(&b, "\n%s\n%s", MutedStyle.Render("output so far:"), step.Output)
	}
	return StepPanelStyle.Render(b.String())
}

// variablesTable renders the step's variable bindings, sorted by name.
func variablesTable(vars map[string]string) string {
	names := lo.Keys(vars)
	sort.Strings(names)

	rows := lo.Map(names, func(name string, _ int) []string {
		return []string{name, Truncate(vars[name], 32)}
	})

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Accent)).
		Headers("Variable", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableRowStyle
		}).
		Render()
}

// Truncate shortens s to max runes, appending an ellipsis when it cuts.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
