package domain

// SourceStatistics is accuracy of a source for a label, measured against manual labels.
type SourceStatistics struct {
	SourceId       string
	LabelId        string
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	RecordCoverage int
	TotalHits      int
}
