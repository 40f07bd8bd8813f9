package classifier

import (
	"regexp"
	"strconv"
	"strings"
)

var multiSpaceRE = regexp.MustCompile(`\s+`)

var unitWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// cleanCommand tidies a transcript for pattern matching. Case and number
// words are kept so that extracted names keep the speaker's spelling.
func cleanCommand(raw string) string {
	raw = strings.NewReplacer("’", "'", "“", `"`, "”", `"`).Replace(raw)
	raw = strings.TrimSpace(multiSpaceRE.ReplaceAllString(raw, " "))
	return strings.TrimRight(raw, ".!? ")
}

// normaliseName reduces a name to lowercase words for comparison
func normaliseName(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	var b strings.Builder
	lastSpace := false
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if r == ' ' || r == '\t' || r == '-' || r == '_' || r == '/' || r == '\'' || r == '.' || r == ',' {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		}
	}
	return strings.TrimSpace(multiSpaceRE.ReplaceAllString(b.String(), " "))
}

// cleanEntity strips quotes, determiners and politeness from an extracted name
func cleanEntity(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), `"'`)
	for {
		lower := strings.ToLower(s)
		trimmed := s
		for _, prefix := range []string{"the ", "some ", "an ", "a ", "my ", "our "} {
			if strings.HasPrefix(lower, prefix) {
				trimmed = s[len(prefix):]
				break
			}
		}
		for _, suffix := range []string{" please", " now", " for me"} {
			if strings.HasSuffix(strings.ToLower(trimmed), suffix) {
				trimmed = trimmed[:len(trimmed)-len(suffix)]
				break
			}
		}
		trimmed = strings.Trim(strings.TrimSpace(trimmed), `"'`)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// spellNumbers replaces spelled-out numbers ("twenty five", "a hundred") with digits
func spellNumbers(text string) string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		n, used := parseNumberWords(words[i:])
		if used == 0 {
			out = append(out, words[i])
			i++
			continue
		}
		out = append(out, strconv.Itoa(n))
		i += used
	}
	return strings.Join(out, " ")
}

func parseNumberWords(words []string) (int, int) {
	word := func(k int) string {
		if k >= len(words) {
			return ""
		}
		return strings.ToLower(words[k])
	}

	value, i := 0, 0
	if word(0) == "a" && word(1) == "hundred" {
		value, i = 100, 2
	} else {
		n, used := parseBelowHundred(words)
		if used == 0 {
			return 0, 0
		}
		value, i = n, used
		if word(i) != "hundred" {
			return value, i
		}
		value *= 100
		i++
	}

	j := i
	if word(j) == "and" {
		j++
	}
	if n, used := parseBelowHundred(words[j:]); used > 0 {
		return value + n, j + used
	}
	return value, i
}

func parseBelowHundred(words []string) (int, int) {
	if len(words) == 0 {
		return 0, 0
	}
	w := strings.ToLower(words[0])
	if tens, unit, ok := strings.Cut(w, "-"); ok {
		t, okTens := tensWords[tens]
		u, okUnit := unitWords[unit]
		if okTens && okUnit && u > 0 && u < 10 {
			return t + u, 1
		}
		return 0, 0
	}
	if n, ok := unitWords[w]; ok {
		return n, 1
	}
	if t, ok := tensWords[w]; ok {
		if len(words) > 1 {
			if u, ok := unitWords[strings.ToLower(words[1])]; ok && u > 0 && u < 10 {
				return t + u, 2
			}
		}
		return t, 1
	}
	return 0, 0
}

func containsPhrase(value, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+value+" ", " "+phrase+" ")
}
