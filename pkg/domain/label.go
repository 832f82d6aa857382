package domain

import "encoding/json"

// LabelSourceType tells who put a label association on a record.
type LabelSourceType string

const (
	LabeledManually LabelSourceType = "MANUAL"
	LabeledBySource LabelSourceType = "INFORMATION_SOURCE"
)

// LabelAssociation is a label put on a record by a source.
//
// For span-extraction, Tokens are the token indexes covered by the label.
type LabelAssociation struct {
	Id         string
	ProjectId  string
	RecordId   string
	LabelId    string
	SourceId   string
	SourceType LabelSourceType
	Shape      OutputShape
	Confidence float64
	CreatedBy  string
	Tokens     []Token
}

type Token struct {
	Index     int
	Beginning bool
}

// TokensOfSpan returns tokens in [start, end).
func TokensOfSpan(start, end int) []Token {
	if end <= start {
		return []Token{}
	}
	tokens := make([]Token, 0, end-start)
	for i := start; i < end; i++ {
		tokens = append(tokens, Token{Index: i, Beginning: i == start})
	}
	return tokens
}

// ManualSpan is a manually labeled token span of a record.
type ManualSpan struct {
	Label string
	Start int
	End   int
}

// MarshalJSON encodes ManualSpan as `[label, start, end]`, the shape workers read.
func (m ManualSpan) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{m.Label, m.Start, m.End})
}
