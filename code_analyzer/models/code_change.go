package models

// CodeChange is one file block extracted from an LLM answer.
type CodeChange struct {
	RelativePath string
	Code         string
	Language     string
}
