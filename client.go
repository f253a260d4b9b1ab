package runnerboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client talks to a runnerboard HTTP server.
type Client struct {
	client  http.Client
	baseURL string
}

func NewHTTPClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Submit(ctx context.Context, sub Submission) (Result, error) {
	if sub.Score == "" {
		return Result{}, invalid("score", "missing")
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scores", bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res Result
	err = c.do(req, http.StatusCreated, &res)
	return res, err
}

func (c *Client) Top(ctx context.Context, limit int) (Board, error) {
	u := c.baseURL + "/scores"
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var board Board
	err = c.do(req, http.StatusOK, &board)
	return board, err
}

func (c *Client) Standing(ctx context.Context, identity string) (RankedEntry, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return RankedEntry{}, invalid("identity", "missing")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scores/"+url.PathEscape(identity), nil)
	if err != nil {
		return RankedEntry{}, err
	}

	var entry RankedEntry
	err = c.do(req, http.StatusOK, &entry)
	return entry, err
}

func (c *Client) do(req *http.Request, want int, out interface{}) error {
	rsp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != want {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(rsp.Body).Decode(&body)

		switch rsp.StatusCode {
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrValidation, body.Error)
		case http.StatusNotFound:
			return ErrNotFound
		}
		return fmt.Errorf("%s %s: %w: status %d: %s", req.Method, req.URL.Path, ErrInternal, rsp.StatusCode, body.Error)
	}

	return json.NewDecoder(rsp.Body).Decode(out)
}
