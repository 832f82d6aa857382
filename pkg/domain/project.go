package domain

import "fmt"

type Project struct {
	Id             string
	Name           string
	OrganizationId string

	// name of the blank tokenizer workers load, like "en".
	Tokenizer string
}

type TaskType string

const (
	// one label per record
	Classification TaskType = "MULTICLASS_CLASSIFICATION"

	// token spans
	InformationExtraction TaskType = "INFORMATION_EXTRACTION"
)

func AsTaskType(s string) (TaskType, error) {
	switch s {
	case string(Classification):
		return Classification, nil
	case string(InformationExtraction):
		return InformationExtraction, nil
	default:
		return "", fmt.Errorf("'%s' is not TaskType", s)
	}
}

type LabelingTask struct {
	Id          string
	ProjectId   string
	Name        string
	AttributeId string
	Type        TaskType
}

// KnowledgeBase maps a knowledge base name to its (not blacklisted) terms.
type KnowledgeBase map[string][]string
