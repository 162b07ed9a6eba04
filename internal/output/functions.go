package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tanq16/redl/internal/utils"
	"golang.org/x/term"
)

// ClearLine blanks the current terminal line so output after a "\r"
// terminated progress line starts clean. It is a no-op off a terminal.
func ClearLine() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Print("\r" + strings.Repeat(" ", getTerminalWidth()-1) + "\r")
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func Summary(path string, size int64, elapsed time.Duration) string {
	return fmt.Sprintf("%s %s %s in %s (%s)", path, StyleSymbols["bullet"], utils.FormatBytes(size),
		elapsed.Round(time.Millisecond), utils.FormatSpeed(size, elapsed))
}
