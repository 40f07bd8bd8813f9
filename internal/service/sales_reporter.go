package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

var errNoItems = errors.New("inventory is empty")

// HeuristicReporter names the item under the most restocking pressure:
// the lowest stock relative to its reorder level, ties broken by name
type HeuristicReporter struct{}

// NewHeuristicReporter creates a reporter that needs no sales history
func NewHeuristicReporter() *HeuristicReporter {
	return &HeuristicReporter{}
}

// MostDemandedProduct implements interfaces.SalesReporter
func (r *HeuristicReporter) MostDemandedProduct(ctx context.Context, sales interfaces.SalesContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(sales.Inventory) == 0 {
		return "", errNoItems
	}

	items := make([]models.InventoryItem, len(sales.Inventory))
	copy(items, sales.Inventory)
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := pressure(items[i]), pressure(items[j])
		if pi == pj {
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		}
		return pi < pj
	})
	return items[0].Name, nil
}

func pressure(item models.InventoryItem) float64 {
	level := item.ReorderLevel
	if level < 1 {
		level = 1
	}
	return float64(item.Stock) / float64(level)
}

const reportPrompt = `You are an AI assistant that generates sales reports based on voice commands.
Based on the voice command and the inventory provided, determine the most demanded product.
Respond ONLY with a JSON object of the form {"mostDemandedProduct":"<item name>"}.`

type reportItem struct {
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorderLevel"`
	Category     string `json:"category,omitempty"`
}

type reportRequest struct {
	Model        string       `json:"model,omitempty"`
	Prompt       string       `json:"prompt"`
	VoiceCommand string       `json:"voiceCommand"`
	ReportType   string       `json:"reportType,omitempty"`
	Inventory    []reportItem `json:"inventory"`
}

// LLMReporter asks an HTTP inference endpoint for the most demanded product
type LLMReporter struct {
	client   *resty.Client
	endpoint string
	model    string
}

// NewLLMReporter creates a reporter posting to endpoint
func NewLLMReporter(endpoint, apiKey, model string, timeout time.Duration) *LLMReporter {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &LLMReporter{client: client, endpoint: endpoint, model: model}
}

// MostDemandedProduct implements interfaces.SalesReporter
func (r *LLMReporter) MostDemandedProduct(ctx context.Context, sales interfaces.SalesContext) (string, error) {
	items := make([]reportItem, 0, len(sales.Inventory))
	for _, item := range sales.Inventory {
		items = append(items, reportItem{Name: item.Name, Stock: item.Stock, ReorderLevel: item.ReorderLevel, Category: item.Category})
	}

	var result models.SalesReport
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(reportRequest{
			Model:        r.model,
			Prompt:       reportPrompt,
			VoiceCommand: sales.Command,
			ReportType:   sales.ReportType,
			Inventory:    items,
		}).
		SetResult(&result).
		Post(r.endpoint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", models.NewSystemError(models.ErrorCodeReportError, "llm-reporter", "report request failed", err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("endpoint", r.endpoint).Msg("Report service returned error status")
		return "", models.NewSystemError(models.ErrorCodeReportError, "llm-reporter",
			fmt.Sprintf("report service returned status %d", resp.StatusCode()), nil)
	}
	if strings.TrimSpace(result.MostDemandedProduct) == "" {
		return "", models.NewSystemError(models.ErrorCodeReportError, "llm-reporter", "report service named no product", nil)
	}
	return result.MostDemandedProduct, nil
}
