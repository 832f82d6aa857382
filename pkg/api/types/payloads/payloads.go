package payloads

import (
	"encoding/json"
	"time"

	"github.com/opst/knitlabel/pkg/domain"
	"github.com/opst/knitlabel/pkg/utils/cmp"
	"github.com/opst/knitlabel/pkg/utils/rfctime"
)

type Summary struct {
	PayloadId string  `json:"payloadId"`
	SourceId  string  `json:"sourceId"`
	Iteration int     `json:"iteration"`
	State     string  `json:"state"`
	Progress  float64 `json:"progress"`
	CreatedBy string  `json:"createdBy"`

	CreatedAt  rfctime.RFC3339  `json:"createdAt"`
	StartedAt  *rfctime.RFC3339 `json:"startedAt,omitempty"`
	FinishedAt *rfctime.RFC3339 `json:"finishedAt,omitempty"`
}

func (s *Summary) Equal(o *Summary) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	return s.PayloadId == o.PayloadId &&
		s.SourceId == o.SourceId &&
		s.Iteration == o.Iteration &&
		s.State == o.State &&
		s.Progress == o.Progress &&
		s.CreatedBy == o.CreatedBy &&
		s.CreatedAt.Equal(&o.CreatedAt) &&
		s.StartedAt.Equal(o.StartedAt) &&
		s.FinishedAt.Equal(o.FinishedAt)
}

type Detail struct {
	Summary
	Logs []string `json:"logs"`
}

func (d *Detail) Equal(o *Detail) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.Summary.Equal(&o.Summary) && cmp.SliceEq(d.Logs, o.Logs)
}

func ComposeDetail(p domain.Payload) Detail {
	logs := p.Logs
	if logs == nil {
		logs = []string{}
	}
	return Detail{
		Summary: Summary{
			PayloadId:  p.Id,
			SourceId:   p.SourceId,
			Iteration:  p.Iteration,
			State:      string(p.State),
			Progress:   p.Progress,
			CreatedBy:  p.CreatedBy,
			CreatedAt:  rfctime.RFC3339(p.CreatedAt),
			StartedAt:  optional(p.StartedAt),
			FinishedAt: optional(p.FinishedAt),
		},
		Logs: logs,
	}
}

func optional(t *time.Time) *rfctime.RFC3339 {
	if t == nil {
		return nil
	}
	r := rfctime.RFC3339(*t)
	return &r
}

// CreateRequest is a body to create payloads.
type CreateRequest struct {
	// When nil, the default of the endpoint is applied.
	Asynchronous *bool `json:"asynchronous,omitempty"`
}

// AsynchronousOr returns Asynchronous, or def if it is not set.
func (r CreateRequest) AsynchronousOr(def bool) bool {
	if r.Asynchronous == nil {
		return def
	}
	return *r.Asynchronous
}

type SampleRequest struct {
	// name of the doc-bin in the project. When empty, all records are used.
	DocBin string `json:"docbin,omitempty"`
}

type SampleResult struct {
	Labels    json.RawMessage `json:"labels"`
	Logs      []string        `json:"logs"`
	HasErrors bool            `json:"hasErrors"`
}

type NotificationRequest struct {
	Message string `json:"message"`
}
