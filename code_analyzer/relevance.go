package code_analyzer

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer/models"
)

var (
	wordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9]+`)

	stopwords = map[string]bool{
		"the": true, "and": true, "for": true, "with": true, "that": true, "this": true,
		"make": true, "change": true, "update": true, "please": true, "can": true, "you": true,
		"into": true, "from": true, "all": true, "our": true, "are": true, "should": true,
		"want": true, "would": true, "like": true, "add": true, "new": true, "some": true,
		"use": true, "set": true, "have": true, "has": true, "its": true, "but": true,
		"not": true, "now": true, "more": true, "less": true, "bit": true, "also": true,
	}

	styleWords = []string{"color", "colour", "style", "font", "padding", "margin", "background", "theme", "dark", "light", "layout", "spacing", "border"}
	authWords  = []string{"login", "signin", "sign", "auth", "password", "logout", "register", "signup"}
)

// ExtractKeywords returns lowercased, de-duplicated prompt words minus stopwords.
func ExtractKeywords(prompt string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, w := range wordPattern.FindAllString(prompt, -1) {
		w = strings.ToLower(w)
		if len(w) < 3 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

// ScoreFile rates how relevant a file is to a prompt.
func ScoreFile(file *models.ProjectFile, keywords []string, prompt string) float64 {
	if file.FileType == models.FileTypeTest || file.FileType == models.FileTypeConfig {
		return 0
	}

	lowerPrompt := strings.ToLower(prompt)
	content := strings.ToLower(file.Content)
	name := strings.ToLower(strings.TrimSuffix(path.Base(file.RelativePath), path.Ext(file.RelativePath)))
	component := strings.ToLower(file.ComponentName)

	score := 0.0
	for _, k := range keywords {
		if strings.Contains(name, k) {
			score += 5
		}
		if component != "" && strings.Contains(component, k) {
			score += 4
		}
		if n := strings.Count(content, k); n > 0 {
			score += 1 + float64(min(n, 5))*0.5
		}
	}

	if score == 0 {
		return 0
	}
	if file.IsMainFile {
		score += 2
	}
	if file.HasButtons && strings.Contains(lowerPrompt, "button") {
		score += 3
	}
	if file.HasSignIn && containsAny(lowerPrompt, authWords) {
		score += 3
	}
	if file.FileType == models.FileTypeStyle && containsAny(lowerPrompt, styleWords) {
		score += 2
	}
	return score
}

// RankFiles returns files with a positive score, best first, at most limit (0 = all).
func RankFiles(snapshot *models.ProjectSnapshot, prompt string, limit int) []*models.ProjectFile {
	if snapshot.IsEmpty() {
		return nil
	}
	keywords := ExtractKeywords(prompt)

	type scored struct {
		file  *models.ProjectFile
		score float64
	}
	var ranked []scored
	for _, p := range snapshot.Paths() {
		f := snapshot.Files[p]
		if s := ScoreFile(f, keywords, prompt); s > 0 {
			ranked = append(ranked, scored{f, s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	files := make([]*models.ProjectFile, len(ranked))
	for i, r := range ranked {
		files[i] = r.file
	}
	return files
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
