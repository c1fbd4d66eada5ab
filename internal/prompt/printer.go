package prompt

import (
	"fmt"
	"io"

	"github.com/hay-kot/subassist/internal/assist"
	"github.com/hay-kot/subassist/internal/core/styles"
)

// Printer reports batch progress as styled lines.
type Printer struct {
	out io.Writer
}

var _ assist.Observer = (*Printer)(nil)

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

func (p *Printer) OnProgress(assist.Progress) {}

func (p *Printer) OnFileMissing(path string) {
	p.println(styles.ErrorStyle.Render(styles.IconMissing) + " " + path + styles.MutedStyle.Render(" is missing, skipping"))
}

func (p *Printer) OnFileError(path string, err error) {
	p.println(styles.ErrorStyle.Render(styles.IconMissing) + " " + path + ": " + err.Error())
}

func (p *Printer) OnEditRejected(_ assist.Progress, err error) {
	p.println(styles.WarningStyle.Render(styles.IconWarning+" "+err.Error()))
}

func (p *Printer) OnFileDone(res assist.FileResult) {
	switch res.Status {
	case assist.StatusWritten:
		line := styles.SuccessStyle.Render(styles.IconApproved) + " " + res.Output +
			styles.MutedStyle.Render(fmt.Sprintf(" (%d change(s))", len(res.Changes)))
		if res.Dropped > 0 {
			line += styles.WarningStyle.Render(fmt.Sprintf(" %d character(s) dropped", res.Dropped))
		}
		p.println(line)
	case assist.StatusNoMatches:
		p.println(styles.MutedStyle.Render(styles.IconSkipped + " " + res.Path + " has nothing to correct"))
	case assist.StatusAborted:
		p.println(styles.WarningStyle.Render(styles.IconSkipped + " " + res.Path + " left unchanged"))
	}
}

func (p *Printer) OnComplete(sum assist.Summary) {
	p.println("")
	p.println(styles.HeaderStyle.Render("Done") + " " + sum.String())
}
