package classifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// resolution is the outcome of matching a spoken name against the snapshot.
// Name is the canonical item name, or the spoken name when nothing matched.
// Candidates is set only when several items matched equally well.
type resolution struct {
	Name       string
	Stock      int
	Found      bool
	Candidates []string
}

func (r resolution) ambiguous() bool {
	return len(r.Candidates) > 1
}

// resolveName picks the inventory item a spoken name refers to: an exact
// match first, then a unique whole-word substring match, then the unique
// closest whole name within the edit distance limit.
func resolveName(spoken string, inventory []models.ItemSnapshot) resolution {
	key := normaliseName(spoken)
	passthrough := resolution{Name: spoken}
	if key == "" || len(inventory) == 0 {
		return passthrough
	}

	for _, item := range inventory {
		if normaliseName(item.Name) == key {
			return resolution{Name: item.Name, Stock: item.Stock, Found: true}
		}
	}

	var contains []models.ItemSnapshot
	for _, item := range inventory {
		if containsPhrase(normaliseName(item.Name), key) {
			contains = append(contains, item)
		}
	}
	if r, ok := pick(contains); ok {
		return r
	}

	best := -1
	var closest []models.ItemSnapshot
	limit := levenshteinLimit(len(key))
	for _, item := range inventory {
		dist := levenshtein.ComputeDistance(key, normaliseName(item.Name))
		if dist > limit {
			continue
		}
		switch {
		case best < 0 || dist < best:
			best = dist
			closest = []models.ItemSnapshot{item}
		case dist == best:
			closest = append(closest, item)
		}
	}
	if r, ok := pick(closest); ok {
		return r
	}
	return passthrough
}

// pick returns the single match, or the ambiguity when there are several
func pick(matches []models.ItemSnapshot) (resolution, bool) {
	switch len(matches) {
	case 0:
		return resolution{}, false
	case 1:
		return resolution{Name: matches[0].Name, Stock: matches[0].Stock, Found: true}, true
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.Name)
		}
		sort.Strings(names)
		return resolution{Candidates: names}, true
	}
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 2:
		return 0
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func ambiguousName(spoken string, candidates []string) models.Unknown {
	return models.Unknown{Explanation: fmt.Sprintf(
		"Sorry, %q matches more than one item: %s. Please say the full name.",
		spoken, strings.Join(candidates, ", "))}
}
