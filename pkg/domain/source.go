package domain

import (
	"fmt"
	"time"
)

// SourceKind tells how an Information Source produces labels.
type SourceKind string

const (
	// rule-based source. Users write labeling functions.
	LabelingFunction SourceKind = "LABELING_FUNCTION"

	// learned source. Users write active learners trained on embeddings.
	ActiveLearning SourceKind = "ACTIVE_LEARNING"
)

func (k SourceKind) String() string {
	return string(k)
}

func AsSourceKind(s string) (SourceKind, error) {
	switch s {
	case string(LabelingFunction):
		return LabelingFunction, nil
	case string(ActiveLearning):
		return ActiveLearning, nil
	default:
		return "", fmt.Errorf("'%s' is not SourceKind", s)
	}
}

// OutputShape tells what a source returns for a record.
type OutputShape string

const (
	// one label per record
	WholeRecord OutputShape = "RETURN"

	// list of labeled token spans per record
	SpanList OutputShape = "YIELD"
)

func (s OutputShape) String() string {
	return string(s)
}

func AsOutputShape(s string) (OutputShape, error) {
	switch s {
	case string(WholeRecord):
		return WholeRecord, nil
	case string(SpanList):
		return SpanList, nil
	default:
		return "", fmt.Errorf("'%s' is not OutputShape", s)
	}
}

// InformationSource is a versioned definition of labeling logic.
type InformationSource struct {
	Id             string
	ProjectId      string
	LabelingTaskId string
	Kind           SourceKind
	Shape          OutputShape
	Name           string
	Description    string
	SourceCode     string
	Selected       bool
	Version        int
	CreatedAt      time.Time
	CreatedBy      string
}

// StatisticsExclusion marks a record withheld from accuracy statistics of a source.
type StatisticsExclusion struct {
	Id        string
	ProjectId string
	SourceId  string
	RecordId  string
}
