package payloads_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/opst/knitlabel/pkg/api/types/payloads"
	"github.com/opst/knitlabel/pkg/domain"
	"github.com/opst/knitlabel/pkg/utils/rfctime"
	"github.com/opst/knitlabel/pkg/utils/try"
)

func TestComposeDetail(t *testing.T) {
	createdAt := try.To(rfctime.ParseRFC3339DateTime("2024-05-06T07:08:09+09:00")).OrFatal(t).Time()
	startedAt := createdAt.Add(3 * time.Second)

	t.Run("it composes all fields of a payload", func(t *testing.T) {
		actual := payloads.ComposeDetail(domain.Payload{
			Id: "payload-1", ProjectId: "project-1", SourceId: "source-1",
			Iteration: 3, State: domain.Created, Progress: 0.5,
			SourceCode: "def lf(r): pass",
			Logs:       []string{"line 1", "line 2"},
			CreatedAt:  createdAt, StartedAt: &startedAt, CreatedBy: "user-1",
		})

		started := rfctime.RFC3339(startedAt)
		expected := payloads.Detail{
			Summary: payloads.Summary{
				PayloadId: "payload-1", SourceId: "source-1",
				Iteration: 3, State: "CREATED", Progress: 0.5, CreatedBy: "user-1",
				CreatedAt: rfctime.RFC3339(createdAt),
				StartedAt: &started,
			},
			Logs: []string{"line 1", "line 2"},
		}
		if !actual.Equal(&expected) {
			t.Errorf("unmatch:\n===actual===\n%+v\n===expected===\n%+v", actual, expected)
		}
	})

	t.Run("logs are never null in json", func(t *testing.T) {
		actual := payloads.ComposeDetail(domain.Payload{Id: "payload-1", CreatedAt: createdAt})
		body := try.To(json.Marshal(actual)).OrFatal(t)

		var m map[string]any
		if err := json.Unmarshal(body, &m); err != nil {
			t.Fatal(err)
		}
		if logs, ok := m["logs"].([]any); !ok || len(logs) != 0 {
			t.Errorf("logs: %v", m["logs"])
		}
		if _, ok := m["startedAt"]; ok {
			t.Errorf("startedAt should be omitted: %s", body)
		}
	})
}

func TestCreateRequest(t *testing.T) {
	for name, testcase := range map[string]struct {
		body     string
		def      bool
		expected bool
	}{
		"empty body takes default (true)":  {body: `{}`, def: true, expected: true},
		"empty body takes default (false)": {body: `{}`, def: false, expected: false},
		"explicit false overrides default": {body: `{"asynchronous": false}`, def: true, expected: false},
		"explicit true overrides default":  {body: `{"asynchronous": true}`, def: false, expected: true},
	} {
		t.Run(name, func(t *testing.T) {
			var req payloads.CreateRequest
			if err := json.Unmarshal([]byte(testcase.body), &req); err != nil {
				t.Fatal(err)
			}
			if actual := req.AsynchronousOr(testcase.def); actual != testcase.expected {
				t.Errorf("asynchronous: %v", actual)
			}
		})
	}
}
