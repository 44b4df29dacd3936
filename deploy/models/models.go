package models

import "time"

// Bundle is a zipped project source tree.
type Bundle struct {
	Data  []byte
	Files []string
	// Hash is the xxh3 digest of Data, hex encoded.
	Hash string
}

type BuildStatus string

const (
	BuildQueued    BuildStatus = "queued"
	BuildRunning   BuildStatus = "running"
	BuildSucceeded BuildStatus = "succeeded"
	BuildFailed    BuildStatus = "failed"
)

// BuildResult is what a finished remote build hands back.
type BuildResult struct {
	BuildID     string        `json:"buildId" yaml:"buildId"`
	Status      BuildStatus   `json:"status" yaml:"status"`
	DownloadURL string        `json:"downloadUrl" yaml:"downloadUrl"`
	PreviewURL  string        `json:"previewUrl" yaml:"previewUrl"`
	Polls       int           `json:"polls" yaml:"polls"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}
