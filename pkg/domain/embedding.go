package domain

import "fmt"

type EmbeddingType string

const (
	// one vector per record attribute
	OnAttribute EmbeddingType = "ON_ATTRIBUTE"

	// one vector per token
	OnToken EmbeddingType = "ON_TOKEN"
)

func AsEmbeddingType(s string) (EmbeddingType, error) {
	switch s {
	case string(OnAttribute):
		return OnAttribute, nil
	case string(OnToken):
		return OnToken, nil
	default:
		return "", fmt.Errorf("'%s' is not EmbeddingType", s)
	}
}

// Fits tells whether the embedding can feed a learner for a task of t.
//
// Attribute embeddings can not serve extraction, and token embeddings can not serve classification.
func (e EmbeddingType) Fits(t TaskType) bool {
	switch {
	case e == OnAttribute && t == InformationExtraction:
		return false
	case e == OnToken && t == Classification:
		return false
	default:
		return true
	}
}

type Embedding struct {
	Id        string
	ProjectId string
	Name      string
	Type      EmbeddingType
	State     string
}
