// Package command stages files of workers into the blob store, and builds their arguments.
//
// Workers take positional arguments:
//
// - rule-based: [doc-bin link, function link, knowledge base link, tokenization progress, tokenizer, upload link]
//
// - learned: [input link, function link, auxiliary file link, upload link]
package command

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/opst/knitlabel/pkg/blob"
	"github.com/opst/knitlabel/pkg/domain"
	kdb "github.com/opst/knitlabel/pkg/domain/labeler/db"
	xe "github.com/opst/knitlabel/pkg/errors"
)

// RuleBasedKeys are keys of files a rule-based worker uses.
type RuleBasedKeys struct {
	DocBin    string
	Function  string
	Knowledge string
	Output    string
}

// LearnedKeys are keys of files a learned worker uses.
type LearnedKeys struct {
	Input     string
	Function  string
	Auxiliary string
	Output    string
}

// RuleBased puts code and the knowledge base of the project, and returns arguments.
//
// The doc-bin should be in the blob store already.
func RuleBased(
	ctx context.Context, blobs blob.Store, session kdb.Session,
	project domain.Project, code string, keys RuleBasedKeys,
) ([]string, error) {
	org := project.OrganizationId
	if err := blobs.Put(ctx, org, keys.Function, []byte(code)); err != nil {
		return nil, xe.Wrap(err)
	}

	kb, err := session.Projects().KnowledgeBase(ctx, project.Id)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if kb == nil {
		kb = domain.KnowledgeBase{}
	}
	kbJson, err := json.Marshal(kb)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if err := blobs.Put(ctx, org, keys.Knowledge, kbJson); err != nil {
		return nil, xe.Wrap(err)
	}

	progress, err := session.Projects().TokenizationProgress(ctx, project.Id)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	l := linker{ctx: ctx, blobs: blobs, org: org}
	args := []string{
		l.access(keys.DocBin),
		l.access(keys.Function),
		l.access(keys.Knowledge),
		strconv.FormatFloat(progress, 'f', -1, 64),
		project.Tokenizer,
		l.upload(keys.Output),
	}
	if l.err != nil {
		return nil, xe.Wrap(l.err)
	}
	return args, nil
}

// Learned puts code and the input document, and returns arguments.
//
// The auxiliary file should be in the blob store already.
func Learned(
	ctx context.Context, blobs blob.Store,
	project domain.Project, code string, input []byte, keys LearnedKeys,
) ([]string, error) {
	org := project.OrganizationId
	if err := blobs.Put(ctx, org, keys.Function, []byte(code)); err != nil {
		return nil, xe.Wrap(err)
	}
	if err := blobs.Put(ctx, org, keys.Input, input); err != nil {
		return nil, xe.Wrap(err)
	}

	l := linker{ctx: ctx, blobs: blobs, org: org}
	args := []string{
		l.access(keys.Input),
		l.access(keys.Function),
		l.access(keys.Auxiliary),
		l.upload(keys.Output),
	}
	if l.err != nil {
		return nil, xe.Wrap(l.err)
	}
	return args, nil
}

// linker issues links until the first error.
type linker struct {
	ctx   context.Context
	blobs blob.Store
	org   string
	err   error
}

func (l *linker) access(key string) string {
	if l.err != nil {
		return ""
	}
	link, err := l.blobs.AccessLink(l.ctx, l.org, key)
	l.err = err
	return link
}

func (l *linker) upload(key string) string {
	if l.err != nil {
		return ""
	}
	link, err := l.blobs.UploadLink(l.ctx, l.org, key)
	l.err = err
	return link
}
