package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/intentflow/intentflow/pkg/cdg"
	apperrors "github.com/intentflow/intentflow/pkg/errors"
	"github.com/intentflow/intentflow/pkg/httputil"
)

const httpTimeout = 15 * time.Second

// Config configures a collaborator [Client].
type Config struct {
	// BaseURL is the collaborator's root, e.g. "http://localhost:3001".
	// Trailing slashes are stripped.
	BaseURL string

	// Token is the session token from a previous login. Empty is fine
	// for [Client.Login] itself.
	Token string

	// Cache stores conversation and turn-history responses. Nil disables
	// caching.
	Cache *httputil.Cache

	// Refresh bypasses the cache and always refetches.
	Refresh bool
}

// Client talks to the conversation collaborator over HTTP. It retries
// transient failures with backoff and optionally caches read endpoints.
// The zero value is not usable; construct with [New].
type Client struct {
	base    string
	token   string
	refresh bool
	http    *http.Client
	stream  *http.Client
	cache   *httputil.Cache
}

// New creates a Client for the given collaborator.
func New(cfg Config) *Client {
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		refresh: cfg.Refresh,
		http:    &http.Client{Timeout: httpTimeout},
		// Turn streams stay open for the whole answer; the context is
		// the only deadline.
		stream: &http.Client{},
		cache:  cfg.Cache,
	}
}

// Token returns the session token currently in use.
func (c *Client) Token() string { return c.token }

// SetToken replaces the session token, e.g. after [Client.Login].
func (c *Client) SetToken(token string) { c.token = token }

// Login authenticates and stores the returned session token on the
// client so subsequent calls are authorized.
func (c *Client) Login(ctx context.Context, username string) (LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"username": username}, &out)
	if err != nil {
		return LoginResponse{}, err
	}
	c.token = out.SessionToken
	return out, nil
}

// ListConversations returns the caller's conversations.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	var out []ConversationSummary
	err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &out)
	return out, err
}

// CreateConversation opens a new conversation with the given title and
// returns its id plus the initial graph.
func (c *Client) CreateConversation(ctx context.Context, title string) (ConversationCreateResponse, error) {
	var out ConversationCreateResponse
	err := c.do(ctx, http.MethodPost, "/api/conversations", map[string]string{"title": title}, &out)
	return out, err
}

// GetConversation fetches one conversation, including the collaborator's
// current graph snapshot. Responses are cached per conversation id.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (ConversationDetail, error) {
	var out ConversationDetail
	err := c.cached(ctx, "conv:"+conversationID, &out, func() error {
		return c.do(ctx, http.MethodGet, "/api/conversations/"+url.PathEscape(conversationID), nil, &out)
	})
	return out, err
}

// GetTurns fetches up to limit entries of the conversation's turn
// history, newest last. A limit of 0 uses the collaborator default.
func (c *Client) GetTurns(ctx context.Context, conversationID string, limit int) ([]TurnItem, error) {
	path := fmt.Sprintf("/api/conversations/%s/turns", url.PathEscape(conversationID))
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var out []TurnItem
	err := c.cached(ctx, fmt.Sprintf("turns:%s:%d", conversationID, limit), &out, func() error {
		return c.do(ctx, http.MethodGet, path, nil, &out)
	})
	return out, err
}

// SaveGraph uploads an edited graph as the conversation's new snapshot.
// The result carries the collaborator's canonical copy, which callers
// must re-normalize before trusting.
func (c *Client) SaveGraph(ctx context.Context, conversationID string, g cdg.Graph, opts SaveOptions) (SaveResult, error) {
	body := map[string]any{
		"graph":         g,
		"requestAdvice": opts.RequestAdvice,
		"advicePrompt":  opts.AdvicePrompt,
	}
	var out SaveResult
	path := fmt.Sprintf("/api/conversations/%s/graph", url.PathEscape(conversationID))
	if err := c.do(ctx, http.MethodPut, path, body, &out); err != nil {
		return SaveResult{}, apperrors.Wrap(apperrors.ErrCodeSaveFailed, err, "save graph for conversation %s", conversationID)
	}
	return out, nil
}

// SaveOptions mirrors the optional fields of a graph save.
type SaveOptions struct {
	RequestAdvice bool
	AdvicePrompt  string
}

// cached serves v from the cache unless the client is in refresh mode,
// fetching and storing on a miss. With no cache configured it just
// fetches.
func (c *Client) cached(ctx context.Context, key string, v any, fetch func() error) error {
	if c.cache == nil {
		return fetch()
	}
	if !c.refresh {
		if ok, _ := c.cache.Get(key, v); ok {
			return nil
		}
	}
	if err := fetch(); err != nil {
		return err
	}
	_ = c.cache.Set(key, v)
	return nil
}

// do performs one JSON request with retry and decodes the response into v.
// v may be nil for endpoints whose body is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, body, v any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	return httputil.RetryWithBackoff(ctx, func() error {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
		if err != nil {
			return err
		}
		c.setHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: apperrors.Wrap(apperrors.ErrCodeNetwork, err, "%s %s", method, path)}
		}
		defer resp.Body.Close()

		if err := checkStatus(resp); err != nil {
			return err
		}
		if v == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode %s response", path)
		}
		return nil
	})
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.New(apperrors.ErrCodeUnauthorized, "status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeConversationNotFound, "status 404")
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: apperrors.New(apperrors.ErrCodeNetwork, "status %d", resp.StatusCode)}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.New(apperrors.ErrCodeNetwork, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
