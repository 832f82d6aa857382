// Package ingest writes results of workers as label associations.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitlabel/pkg/blob"
	"github.com/opst/knitlabel/pkg/domain"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	xe "github.com/opst/knitlabel/pkg/errors"
	"github.com/opst/knitlabel/pkg/payload/logs"
)

// Lines written into payload logs.
const (
	MessageExecutionFailed = "Code execution exited with errors. Please check the logs."
	MessageWriting         = "Writing results to the database."
	MessageWritingFailed   = "Writing to the database failed."
	MessageFinished        = "Finished writing."
	MessageResultsRemoved  = "Results of the previous run have been removed."
)

type Ingestor interface {
	// Ingest reads the result document of the payload, and replaces
	// label associations of the source with it.
	//
	// Associations made by the source before are deleted even if the result has errors.
	// Then new associations are written only when there are no errors.
	// When the result document can not be read, nothing is written.
	//
	// Lines are added to buf as it goes, and they are stored as logs of the payload at last.
	//
	// # Returns
	//
	// - bool: true when the result has errors or can not be read.
	//
	// - error: when it can not talk to the session.
	Ingest(
		ctx context.Context, session kdb.Session,
		project domain.Project, source domain.InformationSource, payload domain.Payload,
		buf *logs.Buffer,
	) (bool, error)
}

type ingestor struct {
	blobs     blob.Store
	logger    *log.Logger
	chunkSize int
}

type Option func(*ingestor)

// WithChunkSize sets how many records are checked at once. default = 1000
func WithChunkSize(n int) Option {
	return func(i *ingestor) {
		if 0 < n {
			i.chunkSize = n
		}
	}
}

func New(blobs blob.Store, logger *log.Logger, options ...Option) Ingestor {
	i := &ingestor{blobs: blobs, logger: logger, chunkSize: 1000}
	for _, o := range options {
		o(i)
	}
	return i
}

func (i *ingestor) Ingest(
	ctx context.Context, session kdb.Session,
	project domain.Project, source domain.InformationSource, payload domain.Payload,
	buf *logs.Buffer,
) (bool, error) {
	keys := blob.PayloadKeys{ProjectId: project.Id, PayloadId: payload.Id}
	result, err := i.result(ctx, project.OrganizationId, keys.Output())
	if err != nil {
		i.logger.Infof("payload %s: no readable result: %v", payload.Id, err)
		buf.Add(MessageExecutionFailed)
		return true, xe.Wrap(session.Payloads().SetLogs(ctx, payload.Id, buf.Lines(), nil))
	}

	buf.Add(MessageWriting)

	labels, err := session.Labels().InTask(ctx, project.Id, source.LabelingTaskId)
	if err != nil {
		return true, xe.Wrap(err)
	}

	v := &validation{labels: labels, checked: map[string]bool{}, buf: buf}
	var associations []domain.LabelAssociation
	switch source.Shape {
	case domain.SpanList:
		associations, err = i.extraction(ctx, session, source, payload, result, v)
	default:
		associations, err = i.classification(ctx, session, source, payload, result, v)
	}
	if err != nil {
		return true, err
	}

	if v.hasErrors {
		associations = nil
	}
	deleted, err := session.Labels().ReplaceBySource(ctx, project.Id, source.Id, associations)
	if err != nil {
		return true, xe.Wrap(err)
	}

	if v.hasErrors {
		buf.Add(MessageWritingFailed)
		if 0 < deleted {
			buf.Add(MessageResultsRemoved)
		}
	} else {
		buf.Add(MessageFinished)
	}
	i.logger.Infof(
		"payload %s: %d associations deleted, %d written (has errors: %v)",
		payload.Id, deleted, len(associations), v.hasErrors,
	)

	return v.hasErrors, xe.Wrap(session.Payloads().SetLogs(ctx, payload.Id, buf.Lines(), nil))
}

func (i *ingestor) result(ctx context.Context, organization string, key string) (map[string]json.RawMessage, error) {
	data, err := i.blobs.Get(ctx, organization, key)
	if err != nil {
		return nil, err
	}
	result := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (i *ingestor) classification(
	ctx context.Context, session kdb.Session,
	source domain.InformationSource, payload domain.Payload,
	result map[string]json.RawMessage, v *validation,
) ([]domain.LabelAssociation, error) {
	associations := []domain.LabelAssociation{}
	for _, chunk := range chunks(result, i.chunkSize) {
		existing, err := session.Records().Existing(ctx, source.ProjectId, chunk)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		for _, recordId := range chunk {
			if _, ok := existing[recordId]; !ok {
				// deleted since the worker started.
				continue
			}
			var r WholeRecordResult
			if err := json.Unmarshal(result[recordId], &r); err != nil {
				v.malformed(recordId)
				continue
			}
			labelId, ok := v.label(r.Label)
			if !ok {
				continue
			}
			associations = append(associations, domain.LabelAssociation{
				ProjectId:  source.ProjectId,
				RecordId:   recordId,
				LabelId:    labelId,
				SourceId:   source.Id,
				SourceType: domain.LabeledBySource,
				Shape:      domain.WholeRecord,
				Confidence: r.Confidence,
				CreatedBy:  payload.CreatedBy,
			})
		}
	}
	return associations, nil
}

func (i *ingestor) extraction(
	ctx context.Context, session kdb.Session,
	source domain.InformationSource, payload domain.Payload,
	result map[string]json.RawMessage, v *validation,
) ([]domain.LabelAssociation, error) {
	associations := []domain.LabelAssociation{}
	for _, chunk := range chunks(result, i.chunkSize) {
		maxTokens, err := session.Records().MaxToken(ctx, source.ProjectId, source.LabelingTaskId, chunk)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		for _, recordId := range chunk {
			maxToken, ok := maxTokens[recordId]
			if !ok {
				// deleted since the worker started.
				continue
			}
			var spans []SpanResult
			if err := json.Unmarshal(result[recordId], &spans); err != nil {
				v.malformed(recordId)
				continue
			}
			for _, s := range spans {
				if !v.span(recordId, maxToken, s) {
					continue
				}
				labelId, ok := v.label(s.Label)
				if !ok {
					continue
				}
				associations = append(associations, domain.LabelAssociation{
					ProjectId:  source.ProjectId,
					RecordId:   recordId,
					LabelId:    labelId,
					SourceId:   source.Id,
					SourceType: domain.LabeledBySource,
					Shape:      domain.SpanList,
					Confidence: s.Confidence,
					CreatedBy:  payload.CreatedBy,
					Tokens:     domain.TokensOfSpan(s.Start, s.End),
				})
			}
		}
	}
	return associations, nil
}

// validation collects errors in a result, logging each of them.
type validation struct {
	labels    map[string]string
	checked   map[string]bool
	buf       *logs.Buffer
	hasErrors bool
}

// label resolves the label name into its id.
//
// Unknown labels are logged once per name.
func (v *validation) label(name string) (string, bool) {
	id, ok := v.labels[name]
	if _, seen := v.checked[name]; !seen {
		v.checked[name] = ok
		if !ok {
			v.buf.Addf("Provided label {%s} couldn't be found for this task", name)
		}
	}
	if !ok {
		v.hasErrors = true
	}
	return id, ok
}

// span checks token indexes of s.
//
// Every violation is logged.
func (v *validation) span(recordId string, maxToken int, s SpanResult) bool {
	valid := true
	if s.Start < 0 {
		v.buf.Addf("token start {%d} of record {%s} is negative", s.Start, recordId)
		valid = false
	}
	if maxToken < s.Start {
		v.buf.Addf("token start {%d} exceeds record {%s} max token {%d}", s.Start, recordId, maxToken)
		valid = false
	}
	if maxToken < s.End {
		v.buf.Addf("token end {%d} exceeds record {%s} max token {%d}", s.End, recordId, maxToken)
		valid = false
	}
	if s.End-s.Start < 1 {
		v.buf.Addf(
			"token span without length detected. start {%d}, end {%d} -> length %d record {%s}",
			s.Start, s.End, s.End-s.Start, recordId,
		)
		valid = false
	}
	if !valid {
		v.hasErrors = true
	}
	return valid
}

func (v *validation) malformed(recordId string) {
	v.buf.Addf("Result for record {%s} is malformed", recordId)
	v.hasErrors = true
}

// chunks splits record ids of result into chunks, in ascending order.
func chunks(result map[string]json.RawMessage, size int) [][]string {
	ids := make([]string, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := [][]string{}
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

// WholeRecordResult is a result for a record: `[confidence, label]`.
type WholeRecordResult struct {
	Confidence float64
	Label      string
}

func (r *WholeRecordResult) UnmarshalJSON(b []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if len(fields) != 2 {
		return fmt.Errorf("expected [confidence, label], but %d items", len(fields))
	}
	if err := json.Unmarshal(fields[0], &r.Confidence); err != nil {
		return err
	}
	return json.Unmarshal(fields[1], &r.Label)
}

// SpanResult is a labeled span: `[confidence, label, start, end]`.
//
// The span covers tokens from Start to End, excluding End.
type SpanResult struct {
	Confidence float64
	Label      string
	Start      int
	End        int
}

func (s *SpanResult) UnmarshalJSON(b []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if len(fields) != 4 {
		return fmt.Errorf("expected [confidence, label, start, end], but %d items", len(fields))
	}
	for n, dest := range []any{&s.Confidence, &s.Label, &s.Start, &s.End} {
		if err := json.Unmarshal(fields[n], dest); err != nil {
			return err
		}
	}
	return nil
}
