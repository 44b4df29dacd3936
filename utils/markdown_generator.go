package utils

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/meysamhadeli/reactforge/constants/lipgloss"
)

// LanguageFromPath picks a chroma lexer name for a project file.
func LanguageFromPath(path string) string {
	if lexer := lexers.Match(path); lexer != nil {
		return lexer.Config().Name
	}
	return "plaintext"
}

// RenderCode highlights content for a 256-colour terminal. Cancelling ctx
// stops output between lines.
func RenderCode(ctx context.Context, w io.Writer, content, language, theme string) error {
	lines := strings.SplitAfter(content, "\n")
	for i := 0; i < len(lines); i += 20 {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(w, lipgloss.Gray.Render("\n(output interrupted)"))
			return err
		}
		chunk := strings.Join(lines[i:min(i+20, len(lines))], "")
		if err := quick.Highlight(w, chunk, language, "terminal256", theme); err != nil {
			return err
		}
	}
	return nil
}

// RenderDiff colours a +/- line diff.
func RenderDiff(w io.Writer, diff string) {
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprintln(w, lipgloss.Info.Render(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(w, lipgloss.Green.Render(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(w, lipgloss.Red.Render(line))
		case line == "@@":
			fmt.Fprintln(w, lipgloss.Gray.Render(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
}
