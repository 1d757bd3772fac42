package cli

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"quizgame/internal/game"
	"quizgame/internal/models"
	"quizgame/internal/quiz"
)

var (
	colorPrimary   = lipgloss.Color("#8B5CF6")
	colorSecondary = lipgloss.Color("#14B8A6")
	colorSuccess   = lipgloss.Color("#22C55E")
	colorError     = lipgloss.Color("#F43F5E")
	colorText      = lipgloss.Color("#F8FAFC")
	colorDim       = lipgloss.Color("#94A3B8")
	colorBorder    = lipgloss.Color("#334155")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	bodyStyle  = lipgloss.NewStyle().Foreground(colorText)
	hintStyle  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	errorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)
)

const progressWidth = 30

var optionLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

func optionLabel(i int) string {
	if i < len(optionLabels) {
		return optionLabels[i]
	}
	return fmt.Sprintf("%d", i+1)
}

func renderProgress(percent int) string {
	filled := progressWidth * percent / 100
	if filled > progressWidth {
		filled = progressWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := lipgloss.NewStyle().Foreground(colorSecondary).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(colorBorder).Render(strings.Repeat("░", progressWidth-filled))
	return bar + " " + bodyStyle.Render(fmt.Sprintf("%d%%", percent))
}

func renderLoadError(err error) string {
	return cardStyle.Render(
		errorStyle.Render("Could not load questions") + "\n" +
			bodyStyle.Render(err.Error()),
	)
}

func renderEmpty() string {
	return cardStyle.Render(
		titleStyle.Render("No Questions Yet") + "\n" +
			hintStyle.Render("Ask an admin to add some questions, then try again."),
	)
}

func renderWelcome(total int, player string) string {
	greeting := "Welcome to the Quiz!"
	if player != "" {
		greeting = fmt.Sprintf("Welcome to the Quiz, %s!", player)
	}
	return cardStyle.Render(
		titleStyle.Render(greeting) + "\n" +
			bodyStyle.Render(fmt.Sprintf("%d questions are waiting for you.", total)),
	)
}

// renderQuestion shows the current card. Once answered, the correct option is
// green and a wrong pick is red.
func renderQuestion(s *quiz.Session) string {
	q, ok := s.Current()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(hintStyle.Render(fmt.Sprintf("Question %d of %d", s.Index()+1, s.Total())))
	b.WriteString("\n")
	b.WriteString(renderProgress(s.ProgressPercent()))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(q.Text))
	b.WriteString("\n\n")

	for i, opt := range q.Options {
		line := fmt.Sprintf("%s)  %s", optionLabel(i), opt)
		style := bodyStyle
		if s.Answered() {
			switch {
			case opt == q.Answer:
				style = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
			case opt == s.Selected():
				style = lipgloss.NewStyle().Foreground(colorError).Bold(true)
			default:
				style = lipgloss.NewStyle().Foreground(colorDim)
			}
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if s.Answered() {
		b.WriteString("\n")
		if s.Selected() == q.Answer {
			b.WriteString(lipgloss.NewStyle().Foreground(colorSuccess).Render("Correct!"))
		} else {
			b.WriteString(errorStyle.Render("Wrong! The answer is " + q.Answer))
		}
	}

	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderFinished(g *game.Game) string {
	s := g.Session()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Quiz Complete!"))
	b.WriteString("\n")
	b.WriteString(bodyStyle.Render(fmt.Sprintf("Final score: %d / %d", s.Score(), s.Total())))
	b.WriteString("\n")
	b.WriteString(renderProgress(s.ProgressPercent()))

	switch {
	case g.SubmitErr() != nil:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(g.SubmitErr().Error()))
	case g.Recorded() != nil:
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Score saved for " + g.Recorded().PlayerName))
	}
	return cardStyle.Render(b.String())
}

func renderScores(scores []models.Score) string {
	if len(scores) == 0 {
		return hintStyle.Render("No scores recorded yet.")
	}

	nameWidth := len("Player")
	for _, s := range scores {
		if w := lipgloss.Width(s.PlayerName); w > nameWidth {
			nameWidth = w
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%-4s %-*s %5s %5s  %s", "#", nameWidth, "Player", "Score", "Wrong", "Difficulty")))
	for i, s := range scores {
		b.WriteString("\n")
		b.WriteString(bodyStyle.Render(fmt.Sprintf("%-4d %-*s %5d %5d  %s", i+1, nameWidth, s.PlayerName, s.Score, s.Wrong, s.Difficulty)))
	}
	return b.String()
}

func renderUser(u *models.User) string {
	if u == nil {
		return hintStyle.Render("Not signed in (playing as guest).")
	}
	lines := []string{
		titleStyle.Render(u.Username),
		bodyStyle.Render(fmt.Sprintf("Games played: %d", u.Profile.TotalGames)),
		bodyStyle.Render(fmt.Sprintf("Best score:   %d", u.Profile.BestScore)),
		bodyStyle.Render(fmt.Sprintf("Correct:      %d", u.Profile.TotalCorrect)),
		bodyStyle.Render(fmt.Sprintf("Wrong:        %d", u.Profile.TotalWrong)),
	}
	if u.Email != nil && *u.Email != "" {
		lines = append(lines[:1], append([]string{hintStyle.Render(*u.Email)}, lines[1:]...)...)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
