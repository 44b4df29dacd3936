package contracts

// TokenSnapshot is a point-in-time copy of accumulated usage.
type TokenSnapshot struct {
	TotalTokens  int     `json:"totalTokens" yaml:"totalTokens"`
	InputTokens  int     `json:"inputTokens" yaml:"inputTokens"`
	OutputTokens int     `json:"outputTokens" yaml:"outputTokens"`
	Calls        int     `json:"calls" yaml:"calls"`
	Cost         float64 `json:"cost" yaml:"cost"`
}

type ITokenManagement interface {
	UsedTokens(inputToken int, outputToken int)
	CalculateCost(providerName string, modelName string, inputToken int, outputToken int) float64
	DisplayTokens(providerName string, model string)
	GetCurrentTokenUsage() (total int, input int, output int)
	Snapshot(providerName string, model string) TokenSnapshot
	ExceedsBudget(providerName string, model string, maxTokens int, maxCost float64) bool
	ClearToken()
}
