package prepare

import (
	"errors"
	"regexp"
)

// ErrNoEmbeddingName is returned when the code of a learned source names no embedding.
var ErrNoEmbeddingName = errors.New("Can't extract embedding from function code")

// embeddingName matches `embedding_name = "<value>"`.
//
// The key is case-insensitive, spaces around "=" are allowed,
// and value is the shortest non-empty text up to the next double quote.
// Single-quoted values are not matched.
var embeddingName = regexp.MustCompile(`(?i)embedding_name\s*=\s*"([\w\W]+?)"`)

// EmbeddingName finds the first `embedding_name="..."` literal in code.
//
// It does not parse code. A literal in comments or strings is found as well.
//
// # Returns
//
// - string: the value of the literal.
//
// - error: ErrNoEmbeddingName when there are no such literals.
func EmbeddingName(code string) (string, error) {
	m := embeddingName.FindStringSubmatch(code)
	if m == nil {
		return "", ErrNoEmbeddingName
	}
	return m[1], nil
}
