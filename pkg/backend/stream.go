package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/intentflow/intentflow/pkg/errors"
)

// StreamHandlers receives the events of one turn stream. Nil fields are
// skipped; the done payload is also returned by [Client.StreamTurn], so
// OnDone is only needed for callers that want it mid-stream.
type StreamHandlers struct {
	OnStart func(StartData)
	OnToken func(token string)
	OnPing  func(PingData)
	OnDone  func(TurnResponse)
	OnError func(StreamError)
}

// StreamTurn posts userText as a new turn and consumes the collaborator's
// server-sent event stream until the done event arrives. Events are
// delivered to h in arrival order. A stream that ends without a done
// event is an error; an error event both invokes h.OnError and fails the
// call.
func (c *Client) StreamTurn(ctx context.Context, conversationID, userText string, h StreamHandlers) (TurnResponse, error) {
	body, err := json.Marshal(map[string]string{"userText": userText})
	if err != nil {
		return TurnResponse{}, err
	}

	path := fmt.Sprintf("/api/conversations/%s/turn/stream", url.PathEscape(conversationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return TurnResponse{}, err
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return TurnResponse{}, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "open turn stream")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return TurnResponse{}, err
	}
	return consumeStream(resp.Body, h)
}

func consumeStream(r io.Reader, h StreamHandlers) (TurnResponse, error) {
	var (
		done    TurnResponse
		gotDone bool
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var block []string
	flush := func() error {
		ev, ok := parseBlock(block)
		block = block[:0]
		if !ok {
			return nil
		}
		switch ev.name {
		case "start":
			if h.OnStart != nil {
				var d StartData
				decodeEvent(ev.data, &d)
				h.OnStart(d)
			}
		case "token":
			if tk := tokenText(ev.data); tk != "" && h.OnToken != nil {
				h.OnToken(tk)
			}
		case "ping":
			if h.OnPing != nil {
				var d PingData
				decodeEvent(ev.data, &d)
				h.OnPing(d)
			}
		case "done":
			decodeEvent(ev.data, &done)
			gotDone = true
			if h.OnDone != nil {
				h.OnDone(done)
			}
		case "error":
			se := StreamError{Message: strings.TrimSpace(ev.data)}
			var parsed StreamError
			if decodeEvent(ev.data, &parsed) && parsed.Message != "" {
				se = parsed
			}
			if se.Message == "" {
				se.Message = "stream failed"
			}
			if h.OnError != nil {
				h.OnError(se)
			}
			return apperrors.New(apperrors.ErrCodeStream, "%s", se.Message)
		}
		return nil
	}

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			if err := flush(); err != nil {
				return done, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := sc.Err(); err != nil {
		return done, apperrors.Wrap(apperrors.ErrCodeStream, err, "read turn stream")
	}
	if err := flush(); err != nil {
		return done, err
	}
	if !gotDone {
		return done, apperrors.New(apperrors.ErrCodeStream, "stream ended without done event")
	}
	return done, nil
}

type sseEvent struct {
	name string
	data string
}

// parseBlock interprets one blank-line-delimited SSE block. Comment and
// retry lines are ignored; multiple data lines are joined with newlines.
// A block without data carries no event.
func parseBlock(lines []string) (sseEvent, bool) {
	ev := sseEvent{name: "message"}
	var data []string
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, ":"), strings.HasPrefix(line, "retry:"):
		case strings.HasPrefix(line, "event:"):
			ev.name = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(line[len("data:"):]))
		}
	}
	if len(data) == 0 {
		return ev, false
	}
	ev.data = strings.Join(data, "\n")
	return ev, true
}

func decodeEvent(raw string, v any) bool {
	return json.Unmarshal([]byte(raw), v) == nil
}

// tokenText accepts both shapes the collaborator emits for token events:
// a bare JSON string and {"token":"..."}.
func tokenText(raw string) string {
	var s string
	if json.Unmarshal([]byte(raw), &s) == nil {
		return s
	}
	var obj struct {
		Token string `json:"token"`
	}
	if json.Unmarshal([]byte(raw), &obj) == nil {
		return obj.Token
	}
	return ""
}
