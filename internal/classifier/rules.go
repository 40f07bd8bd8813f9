package classifier

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

const notUnderstood = "Sorry, I didn't understand that command."

const fieldNames = `name|price|stock|quantity|reorder\s+level|category|supplier`

// count matches a quantity slot: digits or spelled-out words up to the hundreds.
// Only slot text is converted to digits, never item names.
const (
	unitNumbers  = `zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen`
	tensNumbers  = `twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety`
	belowHundred = `(?:(?:` + tensNumbers + `)(?:[\s-](?:one|two|three|four|five|six|seven|eight|nine)\b)?|(?:` + unitNumbers + `))\b`
	count        = `(?:\d+\b|a\s+hundred(?:\s+(?:and\s+)?` + belowHundred + `)?\b|` + belowHundred + `(?:\s+hundred(?:\s+(?:and\s+)?` + belowHundred + `)?\b)?)`
)

type intentRule struct {
	kind     models.ActionKind
	patterns []*regexp.Regexp
	build    func(m match, inventory []models.ItemSnapshot) models.Action
}

// match gives access to the named groups of one pattern match
type match struct {
	re     *regexp.Regexp
	groups []string
}

func (m match) get(name string) string {
	i := m.re.SubexpIndex(name)
	if i < 0 || i >= len(m.groups) {
		return ""
	}
	return strings.TrimSpace(m.groups[i])
}

// RuleClassifier interprets commands with ordered regular expression intents
// and resolves spoken item names against the inventory snapshot.
type RuleClassifier struct {
	rules []intentRule
}

// NewRuleClassifier creates a rule classifier with the built-in intents
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{rules: defaultRules()}
}

// Classify maps one command to exactly one action. It only fails when ctx is done.
func (c *RuleClassifier) Classify(ctx context.Context, command string, inventory []models.ItemSnapshot) (models.Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := cleanCommand(command)
	if text == "" {
		return models.Unknown{Explanation: notUnderstood}, nil
	}

	for _, rule := range c.rules {
		for _, re := range rule.patterns {
			groups := re.FindStringSubmatch(text)
			if groups == nil {
				continue
			}
			action := rule.build(match{re: re, groups: groups}, inventory)
			log.Debug().
				Str("command", command).
				Str("intent", string(rule.kind)).
				Str("action", string(action.Kind())).
				Msg("Command classified")
			return action, nil
		}
	}

	log.Debug().Str("command", command).Msg("No intent matched command")
	return models.Unknown{Explanation: notUnderstood}, nil
}

func defaultRules() []intentRule {
	return []intentRule{
		{
			kind: models.ActionAddNewItem,
			patterns: compile(
				`^(?:add|create|register)\s+(?:a\s+)?(?:new|another)\s+(?:item|product)(?:\s+(?:called|named)\s+(?P<name>.+?))?(?:\s+with\s+(?P<attrs>.+))?$`,
			),
			build: buildAddNewItem,
		},
		{
			kind: models.ActionEditItem,
			patterns: compile(
				`^(?:set|change|update|make)\s+(?:the\s+)?(?P<updates>(?:`+fieldNames+`))\s+(?:of|for)\s+(?P<name>.+?)\s+(?:to|as)\s+(?P<value>.+)$`,
				`^(?:edit|update|change|modify)\s+(?:the\s+)?(?:item\s+|product\s+)?(?P<name>.+?)(?:\s+(?:set\s+|with\s+)?(?P<updates>(?:`+fieldNames+`)\b.*))?$`,
			),
			build: buildEditItem,
		},
		{
			kind: models.ActionViewItemDetails,
			patterns: compile(
				`^(?:view|show|display|open|see)\s+(?:me\s+)?(?:the\s+)?(?:details|info|information)\s+(?:of|for|about|on)\s+(?P<name>.+)$`,
				`^(?:view|show|display|open|see)\s+(?:me\s+)?(?:the\s+)?(?P<name>.+?)\s+(?:details|info|information)$`,
				`^(?:view|open)\s+(?:the\s+)?(?:item|product)\s+(?P<name>.+)$`,
			),
			build: func(m match, inventory []models.ItemSnapshot) models.Action {
				return named(m.get("name"), "item name", inventory, func(r resolution) models.Action {
					return models.ViewItemDetails{ItemName: r.Name}
				})
			},
		},
		{
			kind: models.ActionDeleteItem,
			patterns: compile(
				`^(?:delete|remove|discard|drop)\s+(?:the\s+)?(?:item|product)\s+(?P<name>.+)$`,
				`^delete\s+(?P<name>.+)$`,
			),
			build: func(m match, inventory []models.ItemSnapshot) models.Action {
				return named(m.get("name"), "item name", inventory, func(r resolution) models.Action {
					return models.DeleteItem{ItemName: r.Name}
				})
			},
		},
		{
			kind: models.ActionAddStock,
			patterns: compile(
				`^(?:add|increase|put|restock|receive|received|stock)\s+(?P<qty>`+count+`)\s+(?:more\s+)?(?:units?\s+|pieces?\s+|items?\s+|packs?\s+|boxes\s+|bottles\s+)?(?:of\s+)?(?P<name>.+?)(?:\s+(?:to|in|into)\s+(?:the\s+)?(?:stock|inventory))?$`,
				`^(?:increase|restock|raise)\s+(?:the\s+)?(?:stock\s+(?:of|for)\s+)?(?P<name>.+?)\s+by\s+(?P<qty>`+count+`)(?:\s+units?)?$`,
			),
			build: func(m match, inventory []models.ItemSnapshot) models.Action {
				qty, ok := parseCount(m.get("qty"))
				if !ok {
					return models.MissingFields("item name or quantity")
				}
				return named(m.get("name"), "item name or quantity", inventory, func(r resolution) models.Action {
					return models.AddStock{ItemName: r.Name, Quantity: qty}
				})
			},
		},
		{
			kind: models.ActionRemoveStock,
			patterns: compile(
				`^(?:remove|decrease|reduce|take\s+out|take|sell|sold|use|used|subtract|deduct)\s+(?P<qty>`+count+`|all)\s+(?:units?\s+|pieces?\s+|items?\s+|packs?\s+|boxes\s+|bottles\s+)?(?:of\s+)?(?P<name>.+?)(?:\s+(?:from|out\s+of)\s+(?:the\s+)?(?:stock|inventory))?$`,
				`^(?:decrease|reduce|lower)\s+(?:the\s+)?(?:stock\s+(?:of|for)\s+)?(?P<name>.+?)\s+by\s+(?P<qty>`+count+`)(?:\s+units?)?$`,
			),
			build: buildRemoveStock,
		},
		{
			kind: models.ActionSetReorderAlert,
			patterns: compile(
				`^(?:set|create|add|put)\s+(?:a\s+|the\s+)?(?:reorder\s+|low[\s-]?stock\s+)?(?:alert|notification|reminder)\s+(?:for|on)\s+(?P<name>.+?)\s+(?:at|to|of|below|under)\s+(?P<threshold>`+count+`)(?:\s+units?)?$`,
				`^(?:alert|notify|remind|warn)\s+me\s+when\s+(?P<name>.+?)\s+(?:stock\s+)?(?:is\s+|goes\s+|drops\s+|falls\s+|gets\s+)?(?:below|under|at|to)\s+(?P<threshold>`+count+`)(?:\s+units?)?$`,
			),
			build: func(m match, inventory []models.ItemSnapshot) models.Action {
				threshold, ok := parseCount(m.get("threshold"))
				if !ok {
					return models.MissingFields("item name or threshold")
				}
				return named(m.get("name"), "item name or threshold", inventory, func(r resolution) models.Action {
					return models.SetReorderAlert{ItemName: r.Name, Threshold: threshold}
				})
			},
		},
		{
			kind: models.ActionGenerateSalesReport,
			patterns: compile(
				`^(?:generate|create|make|give\s+me|show\s+me|show|get|run|prepare)\s+(?:a\s+|the\s+|me\s+a\s+|me\s+the\s+)?(?P<type>.*?)\s*report$`,
				`\b(?P<type>(?:most|best)\s+(?:demanded|popular|selling|sold|wanted))\b`,
			),
			build: func(m match, _ []models.ItemSnapshot) models.Action {
				return models.GenerateSalesReport{ReportType: strings.ToLower(m.get("type"))}
			},
		},
		{
			kind: models.ActionCheckStock,
			patterns: compile(
				`^(?:check|verify|look\s+up)(?:\s+the)?(?:\s+(?:stock|inventory|quantity|level|count))?(?:\s+(?:levels?\s+)?(?:of|for|on))?\s+(?P<name>.+?)(?:\s+(?:stock|inventory|levels?))?$`,
				`^how\s+(?:many|much)\s+(?:units\s+|stock\s+)?(?:of\s+)?(?P<name>.+?)(?:\s+(?:do|does|did)\s+(?:we|i)\s+(?:have|got)(?:\s+(?:left|in\s+stock))?|\s+(?:are|is)\s+(?:there\s+)?(?:left|remaining|in\s+stock|available)|\s+(?:left|remaining|in\s+stock))?$`,
				`^(?:what(?:'s|\s+is)\s+the\s+)?(?:stock|quantity|inventory|count)\s+(?:level\s+)?(?:of|for)\s+(?P<name>.+)$`,
			),
			build: func(m match, inventory []models.ItemSnapshot) models.Action {
				return named(m.get("name"), "item name", inventory, func(r resolution) models.Action {
					return models.CheckStock{ItemName: r.Name}
				})
			},
		},
		{
			kind:     models.ActionUnknown,
			patterns: compile(`^(?:add|increase|put|restock|remove|decrease|reduce|take|sell|sold)\b`),
			build: func(match, []models.ItemSnapshot) models.Action {
				return models.MissingFields("item name or quantity")
			},
		},
		{
			kind:     models.ActionUnknown,
			patterns: compile(`\b(?:reorder\s+)?alert\b`),
			build: func(match, []models.ItemSnapshot) models.Action {
				return models.MissingFields("item name or threshold")
			},
		},
		{
			kind:     models.ActionUnknown,
			patterns: compile(`^(?:edit|view|delete|modify|check)$`),
			build: func(match, []models.ItemSnapshot) models.Action {
				return models.MissingFields("item name")
			},
		},
	}
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// named resolves a spoken name and hands the resolution to build. Ambiguous
// names become Unknown listing the candidates.
func named(spoken, missing string, inventory []models.ItemSnapshot, build func(r resolution) models.Action) models.Action {
	spoken = cleanEntity(spoken)
	if spoken == "" {
		return models.MissingFields(missing)
	}
	r := resolveName(spoken, inventory)
	if r.ambiguous() {
		return ambiguousName(spoken, r.Candidates)
	}
	return build(r)
}

func buildRemoveStock(m match, inventory []models.ItemSnapshot) models.Action {
	raw := m.get("qty")
	if strings.EqualFold(raw, "all") {
		return named(m.get("name"), "item name or quantity", inventory, func(r resolution) models.Action {
			// Unresolved names keep quantity 0; the interpreter reports them as not found.
			return models.RemoveStock{ItemName: r.Name, Quantity: r.Stock}
		})
	}
	qty, ok := parseCount(raw)
	if !ok {
		return models.MissingFields("item name or quantity")
	}
	return named(m.get("name"), "item name or quantity", inventory, func(r resolution) models.Action {
		return models.RemoveStock{ItemName: r.Name, Quantity: qty}
	})
}

var (
	priceAttrRE   = regexp.MustCompile(`(?i)\bprice\s+(?:of\s+|is\s+|at\s+)?(\d+(?:\.\d+)?)`)
	quantityRE    = regexp.MustCompile(`(?i)\b(?:quantity|stock)\s+(?:of\s+|is\s+)?(\d+)`)
	unitsRE       = regexp.MustCompile(`(?i)\b(\d+)\s+units?\b`)
	reorderAttrRE = regexp.MustCompile(`(?i)\breorder\s+(?:level|point|alert)\s+(?:of\s+|at\s+|is\s+)?(\d+)`)
	numberRE      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	clauseSplitRE = regexp.MustCompile(`(?i)(\s*,\s*(?:and\s+)?|\s+and\s+)(?:set\s+)?(?:the\s+)?(?:` + fieldNames + `)\b`)
	clauseRE      = regexp.MustCompile(`(?i)^(?:set\s+)?(?:the\s+)?(` + fieldNames + `)\s+(?:to\s+|as\s+|is\s+|=\s*)?(.+)$`)
)

func buildAddNewItem(m match, _ []models.ItemSnapshot) models.Action {
	action := models.AddNewItem{}
	if name := cleanEntity(m.get("name")); name != "" {
		action.ItemName = &name
	}

	attrs := spellNumbers(m.get("attrs"))
	if attrs == "" {
		return action
	}
	if g := priceAttrRE.FindStringSubmatch(attrs); g != nil {
		if price, err := decimal.NewFromString(g[1]); err == nil {
			action.Price = &price
		}
	}
	if g := quantityRE.FindStringSubmatch(attrs); g != nil {
		if n, ok := parseCount(g[1]); ok {
			action.Quantity = &n
		}
	} else if g := unitsRE.FindStringSubmatch(attrs); g != nil {
		if n, ok := parseCount(g[1]); ok {
			action.Quantity = &n
		}
	}
	if g := reorderAttrRE.FindStringSubmatch(attrs); g != nil {
		if n, ok := parseCount(g[1]); ok {
			action.ReorderLevel = &n
		}
	}
	return action
}

func buildEditItem(m match, inventory []models.ItemSnapshot) models.Action {
	updates := m.get("updates")
	if value := m.get("value"); value != "" {
		// "set the price of X to 5" names the field before the item
		updates = updates + " to " + value
	}

	var patch models.ItemPatch
	if updates != "" {
		for _, clause := range splitClauses(updates) {
			g := clauseRE.FindStringSubmatch(strings.TrimSpace(clause))
			if g == nil {
				return models.Unknown{Explanation: "Sorry, I didn't catch which field to change."}
			}
			field := strings.ToLower(strings.Join(strings.Fields(g[1]), " "))
			if !applyField(&patch, field, strings.TrimSpace(g[2])) {
				return models.Unknown{Explanation: "Sorry, I didn't catch the new " + field + "."}
			}
		}
	}

	return named(m.get("name"), "item name", inventory, func(r resolution) models.Action {
		return models.EditItem{ItemName: r.Name, Updates: patch}
	})
}

// splitClauses cuts "stock to 30 and price to 60" into one clause per field.
// A separator only counts when a field name follows it, so values such as
// "Smith and Sons" stay whole.
func splitClauses(updates string) []string {
	var clauses []string
	start := 0
	for _, loc := range clauseSplitRE.FindAllStringSubmatchIndex(updates, -1) {
		clauses = append(clauses, updates[start:loc[2]])
		start = loc[3]
	}
	return append(clauses, updates[start:])
}

func applyField(patch *models.ItemPatch, field, value string) bool {
	numeric := numberRE.FindString(spellNumbers(value))
	switch field {
	case "name":
		name := cleanEntity(value)
		if name == "" {
			return false
		}
		patch.Name = &name
	case "price":
		price, err := decimal.NewFromString(numeric)
		if err != nil {
			return false
		}
		patch.Price = &price
	case "stock", "quantity":
		n, ok := parseCount(numeric)
		if !ok {
			return false
		}
		patch.Stock = &n
	case "reorder level":
		n, ok := parseCount(numeric)
		if !ok {
			return false
		}
		patch.ReorderLevel = &n
	case "category":
		patch.Category = &value
	case "supplier":
		patch.Supplier = &value
	default:
		return false
	}
	return true
}

// parseCount reads a non-negative count given as digits or number words
func parseCount(raw string) (int, bool) {
	n, err := strconv.Atoi(spellNumbers(strings.TrimSpace(raw)))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
