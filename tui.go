package arcablock

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nokduro/arcablock/utils"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// selectModel is the interactive multi-select over filtered candidates.
type selectModel struct {
	choices  []string
	selected map[int]bool
	cursor   int
	canceled bool
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case " ":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "a":
			count := 0
			for _, on := range m.selected {
				if on {
					count++
				}
			}
			if count == len(m.choices) {
				m.selected = make(map[int]bool)
			} else {
				for i := range m.choices {
					m.selected[i] = true
				}
			}
		}
	}

	return m, nil
}

func (m selectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Blocked users"))
	b.WriteString("\n\n")

	for i, choice := range m.choices {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}

		mark := "[ ]"
		line := choice
		if m.selected[i] {
			mark = "[x]"
			line = selectedStyle.Render(choice)
		}

		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, mark, line))
	}

	b.WriteString(helpStyle.Render("\nspace: toggle • a: all • enter: confirm • q: cancel\n"))

	return b.String()
}

// userLabel renders one candidate the way the operator sees it.
func userLabel(user *BlockedUser, now time.Time) string {
	kind := "article"
	if user.IsComment {
		kind = "comment"
	}
	days := int(math.Floor(utils.DaysUntil(now, user.EndDate)))

	return fmt.Sprintf("%s [%s] [%s block] [%d days left]", user.Username, user.Reason, kind, days)
}

// SelectUsers presents the candidates in an interactive multi-select and
// returns the operator's subset in presentation order. An empty selection,
// including a cancelled prompt, is a valid terminal outcome.
func SelectUsers(users []BlockedUser, now time.Time) ([]BlockedUser, error) {
	if len(users) == 0 {
		return nil, nil
	}

	labels := make([]string, len(users))
	for i := range users {
		labels[i] = userLabel(&users[i], now)
	}

	model := selectModel{choices: labels, selected: make(map[int]bool)}
	out, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, err
	}

	final := out.(selectModel)
	if final.canceled {
		return nil, nil
	}

	var picked []BlockedUser
	for i := range users {
		if final.selected[i] {
			picked = append(picked, users[i])
		}
	}

	return picked, nil
}
