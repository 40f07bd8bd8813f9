package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

const classifyPrompt = `You are an expert inventory management assistant. Interpret the user's command and convert it into exactly one structured action.

The possible actions are:
- ADD_STOCK: increase the quantity of an item. Requires itemName and quantity.
- REMOVE_STOCK: decrease the quantity of an item. Requires itemName and quantity.
- CHECK_STOCK: check the current stock of an item. Requires itemName.
- SET_REORDER_ALERT: set the low-stock threshold of an item. Requires itemName and threshold.
- GENERATE_SALES_REPORT: create a report. Optional reportType.
- ADD_NEW_ITEM: add a completely new product. Optional itemName, quantity, price, reorderLevel.
- EDIT_ITEM: change fields of an item. Requires itemName; optional updates object with name, price, stock, reorderLevel, category, supplier.
- VIEW_ITEM_DETAILS: show an item. Requires itemName.
- DELETE_ITEM: delete an item. Requires itemName.
- UNKNOWN_COMMAND: the command is unclear or unrelated to inventory. Requires a message explaining why.

Use the inventory list to match item names exactly as they are listed. For "remove all of X" use X's current stock as the quantity.
Respond ONLY with the JSON object for the identified action, for example {"action":"ADD_STOCK","itemName":"Classic Cola","quantity":3}.`

// LLMConfig configures the delegated-inference classifier
type LLMConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

type classifyRequest struct {
	Model     string                `json:"model,omitempty"`
	Prompt    string                `json:"prompt"`
	Command   string                `json:"command"`
	Inventory []models.ItemSnapshot `json:"inventory"`
}

// LLMClassifier delegates classification to an HTTP inference endpoint that
// answers with the tagged action JSON
type LLMClassifier struct {
	client *resty.Client
	config LLMConfig
}

// NewLLMClassifier creates a classifier that posts commands to config.Endpoint
func NewLLMClassifier(config LLMConfig) *LLMClassifier {
	client := resty.New().
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if config.APIKey != "" {
		client.SetAuthToken(config.APIKey)
	}
	return &LLMClassifier{client: client, config: config}
}

// Classify sends the command and snapshot to the endpoint and decodes the answer.
// Transport and status failures are returned as *models.SystemError; any
// answer that is not a complete action decodes to models.Unknown.
func (c *LLMClassifier) Classify(ctx context.Context, command string, inventory []models.ItemSnapshot) (models.Action, error) {
	if inventory == nil {
		inventory = []models.ItemSnapshot{}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(classifyRequest{
			Model:     c.config.Model,
			Prompt:    classifyPrompt,
			Command:   command,
			Inventory: inventory,
		}).
		Post(c.config.Endpoint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error().Err(err).Str("endpoint", c.config.Endpoint).Msg("Classifier request failed")
		return nil, models.NewSystemError(models.ErrorCodeClassifierError, "llm-classifier", "inference request failed", err)
	}

	if resp.IsError() {
		log.Error().
			Int("status", resp.StatusCode()).
			Str("endpoint", c.config.Endpoint).
			Msg("Classifier returned error status")
		return nil, models.NewSystemError(models.ErrorCodeClassifierError, "llm-classifier",
			fmt.Sprintf("inference service returned status %d", resp.StatusCode()), nil)
	}

	action := models.DecodeAction(resp.Body())
	if _, unknown := action.(models.Unknown); unknown {
		log.Debug().Str("command", command).Str("body", resp.String()).Msg("Classifier answered with unknown action")
	}
	return action, nil
}
