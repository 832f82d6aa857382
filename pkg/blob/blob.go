// Package blob is the transient hand-off channel between the pipeline and workers.
//
// Objects are stored per organization, and keyed by project.
package blob

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	// Put stores data as the object. Existing object is overwritten.
	Put(ctx context.Context, organization string, key string, data []byte) error

	// Get reads the object.
	//
	// Returns
	//
	// - error: ErrNotFound when there is no such object.
	Get(ctx context.Context, organization string, key string) ([]byte, error)

	// Delete removes the object. Deleting missing object is not an error.
	Delete(ctx context.Context, organization string, key string) error

	Exists(ctx context.Context, organization string, key string) (bool, error)

	// AccessLink returns a time-limited URL to download the object.
	AccessLink(ctx context.Context, organization string, key string) (string, error)

	// UploadLink returns a time-limited URL to upload the object with PUT.
	UploadLink(ctx context.Context, organization string, key string) (string, error)
}

// DocBinFull is the name of the doc-bin of all records in a project.
const DocBinFull = "docbin_full"

// Key builds the object key for a name in the project.
func Key(projectId string, name string) string {
	return projectId + "/" + name
}

// keys of objects which a payload uses.
type PayloadKeys struct {
	ProjectId string
	PayloadId string
}

func (k PayloadKeys) Function() string {
	return Key(k.ProjectId, k.PayloadId+"_fn")
}

func (k PayloadKeys) Input() string {
	return Key(k.ProjectId, k.PayloadId+"_input")
}

func (k PayloadKeys) Knowledge() string {
	return Key(k.ProjectId, k.PayloadId+"_knowledge")
}

// Output is where the worker puts its result document.
func (k PayloadKeys) Output() string {
	return Key(k.ProjectId, k.PayloadId)
}

// All keys the payload may have written.
func (k PayloadKeys) All() []string {
	return []string{k.Function(), k.Input(), k.Knowledge(), k.Output()}
}

func (k PayloadKeys) DocBin() string {
	return Key(k.ProjectId, DocBinFull)
}

// EmbeddingTensors is the key of the tensor export of the embedding.
func EmbeddingTensors(projectId string, embeddingId string) string {
	return Key(projectId, fmt.Sprintf("embedding_tensors_%s.csv.bz2", embeddingId))
}

// keys of objects which a sample run uses.
//
// They are named by source, not by payload.
type SampleKeys struct {
	ProjectId string
	SourceId  string

	// doc-bin name in the project. When empty, DocBinFull.
	DocBinName string
}

func (k SampleKeys) Function() string {
	return Key(k.ProjectId, k.SourceId+"_fn")
}

func (k SampleKeys) Knowledge() string {
	return Key(k.ProjectId, k.SourceId+"_knowledge")
}

func (k SampleKeys) Output() string {
	return Key(k.ProjectId, k.SourceId+"_payload.json")
}

func (k SampleKeys) DocBin() string {
	if k.DocBinName == "" {
		return Key(k.ProjectId, DocBinFull)
	}
	return Key(k.ProjectId, k.DocBinName)
}

// Disposable returns keys to be deleted after the sample run.
//
// The full doc-bin is shared with payloads, so it is kept.
func (k SampleKeys) Disposable() []string {
	keys := []string{k.Function(), k.Knowledge(), k.Output()}
	if k.DocBinName != "" && k.DocBinName != DocBinFull {
		keys = append(keys, k.DocBin())
	}
	return keys
}
