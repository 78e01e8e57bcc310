package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_ExplicitStateField(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		expected string
	}{
		{"uppercase code", Record{State: "VIC"}, VIC},
		{"lowercase code", Record{State: "nsw"}, NSW},
		{"mixed case with whitespace", Record{State: " Qld "}, QLD},
		{"territory code", Record{State: "ACT"}, ACT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, ok := Classify(tt.record)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, state)
		})
	}
}

func TestClassify_ExplicitStateOverridesEverything(t *testing.T) {
	// Name and code both point elsewhere; the explicit field wins.
	state, ok := Classify(Record{State: "TAS", Name: "Cairns Beach Resort", Code: "QCAI"})
	assert.True(t, ok)
	assert.Equal(t, TAS, state)
}

func TestClassify_NameKeywordOverridesPrefix(t *testing.T) {
	// "Alice Springs" is unambiguously NT even though the property code
	// starts with C, which the prefix heuristic would map to ACT.
	state, ok := Classify(Record{Name: "Alice Springs Holiday Park", Code: "CALI"})
	assert.True(t, ok)
	assert.Equal(t, NT, state)
}

func TestClassify_NameKeywords(t *testing.T) {
	tests := []struct {
		propertyName string
		expected     string
	}{
		{"Broome Time Accommodation", WA},
		{"Byron Bay Beach Houses", NSW},
		{"Phillip Island Cabins", VIC},
		{"Cradle Mountain Lodge", TAS},
		{"Barossa Valley Estate", SA},
	}

	for _, tt := range tests {
		t.Run(tt.propertyName, func(t *testing.T) {
			state, ok := Classify(Record{Name: tt.propertyName})
			assert.True(t, ok)
			assert.Equal(t, tt.expected, state)
		})
	}
}

func TestClassify_CodePrefixHeuristic(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"NARA", NSW},
		{"VMEL", VIC},
		{"QSUN", QLD},
		{"wbro", WA},
		{"DKAT", NT},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			state, ok := Classify(Record{Code: tt.code, Name: "Generic Apartments"})
			assert.True(t, ok)
			assert.Equal(t, tt.expected, state)
		})
	}
}

func TestClassify_Unresolved(t *testing.T) {
	state, ok := Classify(Record{Name: "Nowhere", Code: "ZZZ"})
	assert.False(t, ok)
	assert.Empty(t, state)
}

func TestClassify_EmptyRecord(t *testing.T) {
	state, ok := Classify(Record{})
	assert.False(t, ok)
	assert.Empty(t, state)
}

func TestClassify_Deterministic(t *testing.T) {
	rec := Record{Name: "Darwin Waterfront Suites", Code: "XDAR"}
	first, ok := Classify(rec)
	assert.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := Classify(rec)
		assert.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestClassifyAll_IsolatesFailures(t *testing.T) {
	recs := []Record{
		{State: "VIC"},
		{Name: "Nowhere", Code: "ZZZ"},
		{Code: "QAIR"},
	}

	out := ClassifyAll(recs)

	assert.Equal(t, []string{VIC, "", QLD}, out)
}
