package blacklist

import (
	"context"
	"strings"

	"mailme/utils"
)

// Classifier decides whether mail content is spam by racing one blacklist
// query per distinct token and resolving on the first positive hit.
type Classifier struct {
	client *Client
}

// NewClassifier creates a classifier backed by the given client.
func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// IsBlacklisted reports whether any token of subject+body is on the
// blacklist. Drafts are never classified; their check is deferred until
// the actual send.
//
// All token queries run concurrently. The verdict resolves to true as soon
// as any single query reports a hit; once that happens the remaining
// queries are cancelled and their results discarded. It resolves to false
// only after every query has completed without a hit, so a clean mail
// costs the round-trip of the slowest token while a hit costs only the
// fastest positive one. Query errors count as "not blacklisted".
func (cl *Classifier) IsBlacklisted(ctx context.Context, subject, body string, isDraft bool) bool {
	if isDraft {
		return false
	}

	tokens := Tokenize(subject + " " + body)
	if len(tokens) == 0 {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered to len(tokens) so losing goroutines can always deliver
	// their result and exit, even after an early return.
	verdicts := make(chan bool, len(tokens))
	for _, token := range tokens {
		go func(t string) {
			hit, err := cl.client.Query(ctx, t)
			if err != nil {
				utils.Log.Debug("blacklist query failed for %q: %v", t, err)
				verdicts <- false
				return
			}
			verdicts <- hit
		}(token)
	}

	for range tokens {
		if <-verdicts {
			return true
		}
	}
	return false
}

// Tokenize splits content on whitespace into distinct, percent-decoded
// tokens, preserving first-seen order.
func Tokenize(content string) []string {
	fields := strings.Fields(content)
	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		token := decodeToken(f)
		if seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return tokens
}
