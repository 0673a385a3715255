package blacklist

import (
	"context"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"mailme/utils"
)

// Responses the blacklist server answers with. The GET grammar is the
// server's own: sections separated by blank lines, verdict in the last one.
const (
	respCreated    = "201 Created"
	respNoContent  = "204 No Content"
	respNotFound   = "404 Not Found"
	respBadRequest = "400 Bad Request"
	respOkPrefix   = "200 Ok"
	verdictHit     = "true true"
)

// Reason classifies a failed Add or Remove.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnreachable
	ReasonNotFound
	ReasonBadRequest
	ReasonUnexpected
)

// Result is the outcome of an Add or Remove. Protocol-level failures are
// reported here rather than as errors so callers on the send path can
// log-and-ignore.
type Result struct {
	OK      bool
	Reason  Reason
	Message string
}

// Client speaks the blacklist server's line protocol. Every request opens
// its own short-lived TCP connection: write one newline-terminated line,
// read one response, close. There is no connection reuse or pooling.
type Client struct {
	addr    string
	timeout time.Duration
}

// NewClient creates a client for the blacklist server at addr. The timeout
// bounds dial, write and read of a single request.
func NewClient(addr string, timeout time.Duration) *Client {
	return &Client{addr: addr, timeout: timeout}
}

// send performs one request round-trip and returns the trimmed raw response.
func (c *Client) send(ctx context.Context, line string) (string, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok && deadline.Before(time.Now().Add(c.timeout)) {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(c.timeout))
	}

	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return "", err
	}

	// The server answers each request with a single write; one read is
	// enough, same as the single data event the protocol was built around.
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(buf[:n])), nil
}

// Query checks whether token is blacklisted. A token counts as blacklisted
// iff the response's first blank-line-delimited section starts with
// "200 Ok" and its last section, trimmed, equals exactly "true true".
// Network errors fail open: classification must never block delivery.
func (c *Client) Query(ctx context.Context, token string) (bool, error) {
	resp, err := c.send(ctx, "GET "+token)
	if err != nil {
		return false, err
	}

	sections := strings.Split(resp, "\n\n")
	if !strings.HasPrefix(sections[0], respOkPrefix) {
		return false, nil
	}
	return strings.TrimSpace(sections[len(sections)-1]) == verdictHit, nil
}

// Add puts token on the blacklist. Success iff the server answers exactly
// "201 Created".
func (c *Client) Add(ctx context.Context, token string) Result {
	resp, err := c.send(ctx, "POST "+token)
	if err != nil {
		return Result{Reason: ReasonUnreachable, Message: "blacklist server unreachable"}
	}
	if resp == respCreated {
		return Result{OK: true, Message: "token added to blacklist"}
	}
	return Result{Reason: ReasonUnexpected, Message: "failed to add token (no response)"}
}

// Remove deletes token from the blacklist, distinguishing the server's
// known failure answers from unexpected ones.
func (c *Client) Remove(ctx context.Context, token string) Result {
	resp, err := c.send(ctx, "DELETE "+token)
	if err != nil {
		return Result{Reason: ReasonUnreachable, Message: "blacklist server unreachable"}
	}

	switch resp {
	case respNoContent:
		return Result{OK: true, Message: "token removed from blacklist"}
	case respNotFound:
		return Result{Reason: ReasonNotFound, Message: "token not found in blacklist"}
	case respBadRequest:
		return Result{Reason: ReasonBadRequest, Message: "invalid DELETE request"}
	}
	return Result{Reason: ReasonUnexpected, Message: "unexpected response"}
}

// AddAll adds every token concurrently, percent-decoding each first.
// Individual failures are logged and otherwise ignored.
func (c *Client) AddAll(ctx context.Context, tokens []string) {
	c.forAll(tokens, func(token string) Result {
		return c.Add(ctx, token)
	})
}

// RemoveAll removes every token concurrently, percent-decoding each first.
func (c *Client) RemoveAll(ctx context.Context, tokens []string) {
	c.forAll(tokens, func(token string) Result {
		return c.Remove(ctx, token)
	})
}

func (c *Client) forAll(tokens []string, op func(string) Result) {
	var wg sync.WaitGroup
	for _, token := range tokens {
		wg.Add(1)
		go func(t string) {
			defer wg.Done()
			if res := op(decodeToken(t)); !res.OK {
				utils.Log.Debug("blacklist update skipped for %q: %s", t, res.Message)
			}
		}(token)
	}
	wg.Wait()
}

// decodeToken percent-decodes a token; on decode failure the raw token is
// used as-is.
func decodeToken(token string) string {
	decoded, err := url.PathUnescape(token)
	if err != nil {
		return token
	}
	return decoded
}
