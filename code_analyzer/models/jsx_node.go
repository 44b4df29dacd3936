package models

type NodeKind string

const (
	NodeElement NodeKind = "element"
	NodeText    NodeKind = "text"
)

// JSXNode is one JSX element or text run with its location in the file.
// Lines and columns are 1-based; byte offsets are 0-based, end exclusive.
type JSXNode struct {
	Index         int
	Kind          NodeKind
	TagName       string
	Text          string
	Code          string
	StartByte     int
	EndByte       int
	StartLine     int
	StartColumn   int
	EndLine       int
	EndColumn     int
	Depth         int
	ParentIndex   int
	IsButton      bool
	HasSignInText bool
	Hash          uint64
}
