package prompt

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/subassist/internal/assist"
	"github.com/hay-kot/subassist/internal/core/review"
	"github.com/hay-kot/subassist/internal/core/styles"
)

// minSideBySide is the narrowest terminal that fits both panes next to each
// other.
const minSideBySide = 80

// Header renders the position of a proposal within the batch.
func Header(p review.Proposal, prog assist.Progress) string {
	file := fmt.Sprintf("[%d/%d] %s", prog.FileIndex+1, prog.FileCount, filepath.Base(prog.File))
	pos := fmt.Sprintf("%d/%d", prog.Cursor+1, prog.Total)
	return styles.HeaderStyle.Render(file) + "  " +
		styles.MutedStyle.Render(p.Rule.Name) + "  " +
		styles.ProgressStyle.Render(pos)
}

// Proposal renders the current and proposed text. Panes sit side by side
// when width allows and stack otherwise; a width of zero or less always
// stacks.
func Proposal(p review.Proposal, width int) string {
	oldBody := styles.PaneTitleStyle.Render("Current") + "\n" + p.Old
	newBody := styles.PaneTitleStyle.Render("Proposed") + "\n" + p.New
	if !p.Changed() {
		newBody += "\n\n" + styles.WarningStyle.Render("no automatic change; edit or skip")
	}

	if width < minSideBySide {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.OldPaneStyle.Render(oldBody),
			styles.NewPaneStyle.Render(newBody),
		)
	}

	// each pane has a border and one column of padding on both sides
	paneWidth := width/2 - 4
	return lipgloss.JoinHorizontal(lipgloss.Top,
		styles.OldPaneStyle.Width(paneWidth).Render(oldBody),
		styles.NewPaneStyle.Width(paneWidth).Render(newBody),
	)
}

// editLines sizes the edit box to the proposal plus room to grow.
func editLines(text string) int {
	return min(strings.Count(text, "\n")+3, 20)
}
