package models

// ModuleOutline is the import/export surface of one script file.
type ModuleOutline struct {
	Imports          []string
	Exports          []string
	Dependencies     []string
	ComponentName    string
	HasDefaultExport bool
}
