package engine

import (
	"regexp"
	"sort"
	"strings"
)

// ============================================================================
// KEYWORDS — Free-Text Root-Cause Mining
// ============================================================================
// Tokenizes remark and reason text, drops stopwords / numbers / short
// tokens, and ranks the survivors by frequency. Ties keep first-occurrence
// order. Empty input yields an empty result.
// ============================================================================

// DefaultKeywordLimit is the ranked-keyword cap for the default view.
const DefaultKeywordLimit = 20

// minTokenLength drops abbreviations too short to carry signal.
const minTokenLength = 3

// stopwords mixes generic English filler with operational jargon that
// appears in nearly every remark (and would otherwise top every ranking).
var stopwords = map[string]bool{
	// generic English
	"the": true, "and": true, "for": true, "was": true, "were": true,
	"are": true, "has": true, "had": true, "have": true, "not": true,
	"but": true, "with": true, "from": true, "this": true, "that": true,
	"due": true, "during": true, "after": true, "before": true,
	"into": true, "out": true, "off": true, "all": true, "its": true,
	"been": true, "will": true, "when": true, "while": true, "then": true,
	"than": true, "per": true, "via": true, "under": true, "over": true,

	// operational jargon
	"shutdown": true, "shutdowns": true, "shut": true, "down": true,
	"trip": true, "tripped": true, "trips": true,
	"alarm": true, "alarms": true, "alert": true,
	"well": true, "wells": true, "site": true,

	// unit abbreviations
	"hrs": true, "hour": true, "hours": true, "min": true, "mins": true,
	"psi": true, "bar": true, "bbl": true, "bpd": true, "mmscf": true,
	"rpm": true, "kpa": true, "deg": true,
}

var nonWordChars = regexp.MustCompile(`[^\w\s]`)
var digitsOnly = regexp.MustCompile(`^\d+$`)

// Keywords mines the remark and reason text of a view and returns the top
// limit tokens by descending frequency. limit <= 0 applies the default cap.
func Keywords(v View, limit int) []Group {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	var sb strings.Builder
	for i := 0; i < v.Len(); i++ {
		e := v.At(i)
		if e.Remark != "" {
			sb.WriteString(e.Remark)
			sb.WriteByte(' ')
		}
		if e.Reason != "" {
			sb.WriteString(e.Reason)
			sb.WriteByte(' ')
		}
	}
	if sb.Len() == 0 {
		return nil
	}

	text := strings.ToLower(sb.String())
	text = nonWordChars.ReplaceAllString(text, " ")

	index := make(map[string]int)
	var groups []Group
	for _, token := range strings.Fields(text) {
		if len(token) < minTokenLength || stopwords[token] || digitsOnly.MatchString(token) {
			continue
		}
		pos, seen := index[token]
		if !seen {
			pos = len(groups)
			index[token] = pos
			groups = append(groups, Group{Key: token})
		}
		groups[pos].Count++
		groups[pos].Value++
	}

	// Stable sort: equal frequencies keep first-occurrence order.
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}
