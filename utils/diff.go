package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Similarity returns 1 - normalized Levenshtein distance between a and b,
// after collapsing whitespace. Identical strings score 1.
func Similarity(a, b string) float64 {
	a = strings.Join(strings.Fields(a), " ")
	b = strings.Join(strings.Fields(b), " ")
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)
	return 1 - float64(distance)/float64(longest)
}

// LineDiff renders a line-level +/- diff of two file versions. Unchanged
// runs longer than context*2 lines are elided.
func LineDiff(path, before, after string, context int) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, path)
	for i, d := range diffs {
		chunk := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			writePrefixed(&sb, "+", chunk)
		case diffmatchpatch.DiffDelete:
			writePrefixed(&sb, "-", chunk)
		default:
			if len(chunk) <= context*2 {
				writePrefixed(&sb, " ", chunk)
				continue
			}
			if i > 0 {
				writePrefixed(&sb, " ", chunk[:context])
			}
			sb.WriteString("@@\n")
			if i < len(diffs)-1 {
				writePrefixed(&sb, " ", chunk[len(chunk)-context:])
			}
		}
	}
	return sb.String()
}

func writePrefixed(sb *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		sb.WriteString(prefix)
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
}
