// Package region resolves a canonical Australian state or territory code
// from partially populated property records. Classification is pure and
// deterministic: the same record always resolves to the same code.
package region

import (
	"strings"
)

// Known state and territory codes.
const (
	NSW = "NSW"
	VIC = "VIC"
	QLD = "QLD"
	SA  = "SA"
	WA  = "WA"
	TAS = "TAS"
	NT  = "NT"
	ACT = "ACT"
)

// knownCodes is the set of codes an explicit state field may carry.
var knownCodes = map[string]string{
	"NSW": NSW,
	"VIC": VIC,
	"QLD": QLD,
	"SA":  SA,
	"WA":  WA,
	"TAS": TAS,
	"NT":  NT,
	"ACT": ACT,
}

// nameKeyword associates a place name fragment with the state it belongs to.
type nameKeyword struct {
	fragment string
	state    string
}

// nameKeywords is scanned in order against the property name; the first
// match wins. Place names strongly tied to one state sit above anything the
// code-prefix heuristic would guess, so "Alice Springs Resort" resolves to
// NT even when the property code starts with a letter mapped elsewhere.
var nameKeywords = []nameKeyword{
	{"alice springs", NT},
	{"darwin", NT},
	{"uluru", NT},
	{"katherine", NT},
	{"canberra", ACT},
	{"broome", WA},
	{"margaret river", WA},
	{"perth", WA},
	{"cairns", QLD},
	{"gold coast", QLD},
	{"noosa", QLD},
	{"whitsunday", QLD},
	{"brisbane", QLD},
	{"barossa", SA},
	{"kangaroo island", SA},
	{"adelaide", SA},
	{"hobart", TAS},
	{"launceston", TAS},
	{"cradle mountain", TAS},
	{"great ocean road", VIC},
	{"phillip island", VIC},
	{"melbourne", VIC},
	{"byron bay", NSW},
	{"blue mountains", NSW},
	{"hunter valley", NSW},
	{"sydney", NSW},
}

// codePrefixes maps the first letter of a property code to a state. This is
// the weakest signal and only consulted when neither the explicit state
// field nor the name yielded anything.
var codePrefixes = map[byte]string{
	'N': NSW,
	'V': VIC,
	'Q': QLD,
	'S': SA,
	'W': WA,
	'T': TAS,
	'C': ACT,
	'D': NT,
}

// Record is the slice of a property the classifier looks at.
type Record struct {
	Code  string
	Name  string
	State string
}

// Classify resolves a state code for the record. Signals are consulted in
// priority order: explicit state field, name keywords, code-prefix
// heuristic. Returns ok=false when nothing matches; it never fails.
func Classify(rec Record) (string, bool) {
	if state, ok := knownCodes[strings.ToUpper(strings.TrimSpace(rec.State))]; ok {
		return state, true
	}

	name := strings.ToLower(rec.Name)
	for _, kw := range nameKeywords {
		if strings.Contains(name, kw.fragment) {
			return kw.state, true
		}
	}

	code := strings.ToUpper(strings.TrimSpace(rec.Code))
	if code != "" {
		if state, ok := codePrefixes[code[0]]; ok {
			return state, true
		}
	}

	return "", false
}

// ClassifyAll classifies a slice of records independently. A record that
// cannot be resolved produces an empty code in the result; it never aborts
// the rest of the batch.
func ClassifyAll(recs []Record) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		if state, ok := Classify(rec); ok {
			out[i] = state
		}
	}
	return out
}
