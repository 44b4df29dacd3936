package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/meysamhadeli/reactforge/constants/lipgloss"
)

// ErrInputClosed is returned when stdin reaches EOF.
var ErrInputClosed = errors.New("input closed")

// InputPromptWithContext reads one line, returning early with ctx.Err() when
// ctx is cancelled.
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader) (string, error) {
	type line struct {
		text string
		err  error
	}
	lines := make(chan line, 1)

	go func() {
		fmt.Print(lipgloss.BlueSky.Render("> "))
		text, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && text != "") {
			if errors.Is(err, io.EOF) {
				err = ErrInputClosed
			} else {
				err = fmt.Errorf("error reading input: %w", err)
			}
			lines <- line{err: err}
			return
		}
		lines <- line{text: strings.TrimSpace(text)}
	}()

	select {
	case <-ctx.Done():
		fmt.Println()
		return "", ctx.Err()
	case l := <-lines:
		return l.text, l.err
	}
}

// ConfirmPrompt asks a yes/no question; anything but y/yes is a no.
func ConfirmPrompt(question string, reader *bufio.Reader) (bool, error) {
	fmt.Print(lipgloss.Yellow.Render(question + " (y/N): "))
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("error reading input: %w", err)
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
