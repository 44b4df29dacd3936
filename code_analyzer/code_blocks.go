package code_analyzer

import (
	"errors"
	"regexp"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer/models"
)

// ErrNoCodeBlock is returned when an LLM answer carries no usable code.
var ErrNoCodeBlock = errors.New("no code block found in response")

var (
	fencePattern    = regexp.MustCompile("(?s)```([\\w.+-]*)[^\\n]*\\n(.*?)\\n?```")
	filePathPattern = regexp.MustCompile("(?i)(?:\\d+\\.\\s*|File:\\s*|#+\\s*)[`'*]*([^\\s*`']+?\\.[a-zA-Z0-9]+)[`'*]*")
	noChangeMarkers = []string{"NO_CHANGES", "NO_MODIFICATION_NEEDED", "NO CHANGES NEEDED", "NO MODIFICATION NEEDED"}
	codeStartTokens = []string{"import ", "export ", "const ", "function ", "'use client'", "\"use client\"", "/**", "//", "module.exports"}
)

// ExtractCodeBlock returns the first fenced block of an answer. An unfenced
// answer is accepted only when it already reads like source code.
func ExtractCodeBlock(response string) (string, error) {
	if m := fencePattern.FindStringSubmatch(response); m != nil {
		code := strings.TrimRight(m[2], " \t\n")
		if strings.TrimSpace(code) == "" {
			return "", ErrNoCodeBlock
		}
		return code + "\n", nil
	}

	trimmed := strings.TrimSpace(response)
	for _, token := range codeStartTokens {
		if strings.HasPrefix(trimmed, token) {
			return trimmed + "\n", nil
		}
	}
	return "", ErrNoCodeBlock
}

// ExtractCodeFor returns the block labelled with relativePath when the
// answer labels its blocks, otherwise the first fenced block.
func ExtractCodeFor(response, relativePath string) (string, error) {
	for _, change := range ExtractCodeChanges(response) {
		labelled := strings.TrimPrefix(change.RelativePath, "./")
		if labelled == relativePath || strings.HasSuffix(relativePath, "/"+labelled) {
			if strings.TrimSpace(change.Code) == "" {
				return "", ErrNoCodeBlock
			}
			return strings.TrimRight(change.Code, " \t\n") + "\n", nil
		}
	}
	return ExtractCodeBlock(response)
}

// ExtractCodeChanges splits an answer into per-file code blocks labelled by a
// preceding "File: path" (or numbered / heading) line.
func ExtractCodeChanges(response string) []models.CodeChange {
	var changes []models.CodeChange
	var currentPath, currentLang string
	var block []string
	inside := false

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if !inside {
				inside = true
				currentLang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
				block = nil
				continue
			}
			inside = false
			if currentPath != "" && len(block) > 0 {
				changes = append(changes, models.CodeChange{
					RelativePath: currentPath,
					Code:         strings.Join(block, "\n") + "\n",
					Language:     currentLang,
				})
			}
			currentPath = ""
			continue
		}

		if inside {
			block = append(block, line)
			continue
		}

		if m := filePathPattern.FindStringSubmatch(trimmed); m != nil {
			currentPath = strings.TrimPrefix(m[1], "./")
		}
	}

	return changes
}

// IsNoChangeResponse reports the "nothing to modify" sentinel.
func IsNoChangeResponse(response string) bool {
	upper := strings.ToUpper(strings.TrimSpace(response))
	for _, marker := range noChangeMarkers {
		if strings.HasPrefix(upper, marker) || upper == marker {
			return true
		}
	}
	return false
}
