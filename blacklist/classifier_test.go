package blacklist

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	hitResponse  = "200 Ok\n\ntrue true"
	missResponse = "200 Ok\n\nfalse false"
)

func TestDraftsAreNeverClassified(t *testing.T) {
	srv := newFakeServer(t, respond(hitResponse))
	classifier := NewClassifier(NewClient(srv.addr(), time.Second))

	spam := classifier.IsBlacklisted(context.Background(), "viagra", "buy now", true)
	assert.False(t, spam)
	assert.Empty(t, srv.seen(), "draft classification must not hit the server")
}

func TestCleanContent(t *testing.T) {
	srv := newFakeServer(t, respond(missResponse))
	classifier := NewClassifier(NewClient(srv.addr(), time.Second))

	spam := classifier.IsBlacklisted(context.Background(), "hello there", "meeting at noon", false)
	assert.False(t, spam)
	assert.Len(t, srv.seen(), 5)
}

func TestBlacklistedToken(t *testing.T) {
	srv := newFakeServer(t, func(line string) (string, time.Duration) {
		if line == "GET badlink.example" {
			return hitResponse, 0
		}
		return missResponse, 0
	})
	classifier := NewClassifier(NewClient(srv.addr(), time.Second))

	spam := classifier.IsBlacklisted(context.Background(), "check this", "badlink.example out", false)
	assert.True(t, spam)
}

func TestFirstPositiveWinsWithoutWaitingForSlowQueries(t *testing.T) {
	srv := newFakeServer(t, func(line string) (string, time.Duration) {
		if line == "GET evil" {
			return hitResponse, 0
		}
		// Clean tokens answer slowly; the verdict must not wait for them.
		return missResponse, 2 * time.Second
	})
	classifier := NewClassifier(NewClient(srv.addr(), 5*time.Second))

	start := time.Now()
	spam := classifier.IsBlacklisted(context.Background(), "clean cleaner", "evil", false)
	elapsed := time.Since(start)

	assert.True(t, spam)
	assert.Less(t, elapsed, time.Second, "positive verdict must resolve before slow queries finish")
}

func TestClassifierFailsOpenWhenServerIsDown(t *testing.T) {
	classifier := NewClassifier(NewClient("127.0.0.1:1", 200*time.Millisecond))

	spam := classifier.IsBlacklisted(context.Background(), "anything at all", "goes", false)
	assert.False(t, spam)
}

func TestEmptyContent(t *testing.T) {
	classifier := NewClassifier(NewClient("127.0.0.1:1", time.Second))
	assert.False(t, classifier.IsBlacklisted(context.Background(), "", "   ", false))
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("one two  two\tthree\none")
	assert.Equal(t, []string{"one", "two", "three"}, tokens)
}

func TestTokenizeDecodesPercentEncoding(t *testing.T) {
	tokens := Tokenize("hello%20world plain")
	assert.Equal(t, []string{"hello world", "plain"}, tokens)
}

func TestTokenizeKeepsUndecodableTokens(t *testing.T) {
	raw := "bad%zzencoding"
	tokens := Tokenize(raw)
	assert.Equal(t, []string{raw}, tokens)
}

func TestTokenizeLongContent(t *testing.T) {
	content := strings.Repeat("word ", 100)
	assert.Len(t, Tokenize(content), 1)
}
