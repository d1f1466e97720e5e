package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/BitWorks/xbrlstudio/internal/filing"
	"github.com/BitWorks/xbrlstudio/internal/store"
)

// terminalConfirmer implements manager.Confirmer over a terminal.
// With assumeYes set every prompt is answered affirmatively, which is
// what --yes and batch scripting rely on.
type terminalConfirmer struct {
	assumeYes bool
	in        io.Reader
	out       io.Writer
}

func (c *terminalConfirmer) ConfirmOverwrite(conflicts []store.Conflict) bool {
	if c.assumeYes {
		return true
	}
	fmt.Fprintln(c.out, "The following filings already exist:")
	for _, conflict := range conflicts {
		fmt.Fprintf(c.out, "  cik %s period %s\n", filing.FormatCIK(conflict.CIK), conflict.Period)
	}
	return c.prompt("Overwrite? [y/N]: ")
}

func (c *terminalConfirmer) ConfirmManualOverwrite(name, period string) bool {
	if c.assumeYes {
		return true
	}
	fmt.Fprintf(c.out, "A filing for %q period %s already exists.\n", name, period)
	return c.prompt("Overwrite? [y/N]: ")
}

func (c *terminalConfirmer) prompt(msg string) bool {
	fmt.Fprint(c.out, msg)
	scanner := bufio.NewScanner(c.in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
