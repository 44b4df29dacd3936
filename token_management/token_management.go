package token_management

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/meysamhadeli/reactforge/constants/lipgloss"
	"github.com/meysamhadeli/reactforge/embed_data"
	"github.com/meysamhadeli/reactforge/token_management/contracts"
	"github.com/sirupsen/logrus"
)

type tokenManager struct {
	mu              sync.Mutex
	usedToken       int
	usedInputToken  int
	usedOutputToken int
	calls           int
}

type details struct {
	MaxTokens                      int     `json:"max_tokens"`
	MaxInputTokens                 int     `json:"max_input_tokens"`
	MaxOutputTokens                int     `json:"max_output_tokens"`
	InputCostPerMillionTokens      float64 `json:"input_cost_per_million_tokens,omitempty"`
	OutputCostPerMillionTokens     float64 `json:"output_cost_per_million_tokens,omitempty"`
	CacheReadInputMillionTokenCost float64 `json:"cache_read_input_million_token_cost,omitempty"`
	Mode                           string  `json:"mode"`
	SupportsFunctionCalling        bool    `json:"supports_function_calling,omitempty"`
}

type Models struct {
	ModelDetails map[string]details `json:"models"`
}

var (
	priceTableOnce sync.Once
	priceTable     Models
	priceTableErr  error
)

// NewTokenManager creates a token tracker for one session.
func NewTokenManager() contracts.ITokenManagement {
	return &tokenManager{}
}

// UsedTokens accumulates the token count of one LLM call.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
	tm.calls++
}

func (tm *tokenManager) DisplayTokens(providerName string, model string) {
	snapshot := tm.Snapshot(providerName, model)

	tokenInfo := fmt.Sprintf("Token Used: %d - Cost: %.6f $ - Model: %s - Calls: %d", snapshot.TotalTokens, snapshot.Cost, model, snapshot.Calls)

	fmt.Println(lipgloss.BoxStyle.Render(tokenInfo))
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

func (tm *tokenManager) Snapshot(providerName string, model string) contracts.TokenSnapshot {
	tm.mu.Lock()
	snapshot := contracts.TokenSnapshot{
		TotalTokens:  tm.usedToken,
		InputTokens:  tm.usedInputToken,
		OutputTokens: tm.usedOutputToken,
		Calls:        tm.calls,
	}
	tm.mu.Unlock()

	snapshot.Cost = tm.CalculateCost(providerName, model, snapshot.InputTokens, snapshot.OutputTokens)
	return snapshot
}

// ExceedsBudget reports whether usage already reached a limit. Zero limits are unlimited.
func (tm *tokenManager) ExceedsBudget(providerName string, model string, maxTokens int, maxCost float64) bool {
	snapshot := tm.Snapshot(providerName, model)
	if maxTokens > 0 && snapshot.TotalTokens >= maxTokens {
		return true
	}
	if maxCost > 0 && snapshot.Cost >= maxCost {
		return true
	}
	return false
}

func (tm *tokenManager) ClearToken() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
	tm.calls = 0
}

func (tm *tokenManager) CalculateCost(providerName string, modelName string, inputToken int, outputToken int) float64 {
	modelDetails, err := getModelDetails(providerName, modelName)
	if err != nil {
		return 0
	}
	inputCost := float64(inputToken) * modelDetails.InputCostPerMillionTokens / 1000000.0
	outputCost := float64(outputToken) * modelDetails.OutputCostPerMillionTokens / 1000000.0

	return inputCost + outputCost
}

func loadPriceTable() (Models, error) {
	priceTableOnce.Do(func() {
		priceTable = Models{ModelDetails: make(map[string]details)}
		if err := json.Unmarshal(embed_data.ModelDetails, &priceTable); err != nil {
			logrus.Warnf("Error unmarshaling model price table: %v", err)
			priceTableErr = err
		}
	})
	return priceTable, priceTableErr
}

func getModelDetails(providerName string, modelName string) (details, error) {
	providerName = strings.ToLower(providerName)
	modelName = strings.ToLower(modelName)

	models, err := loadPriceTable()
	if err != nil {
		return details{}, err
	}

	model, exists := models.ModelDetails[modelName]
	if !exists {
		return details{}, fmt.Errorf("model details price with name '%s' not found for provider '%s'", modelName, providerName)
	}

	return model, nil
}
