package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

// Client drives one session over the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// apiError is returned for non-2xx responses
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) != nil || errResp.Error == "" {
			errResp.Error = string(data)
		}
		return &apiError{Status: resp.StatusCode, Message: errResp.Error}
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.do(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) GetSession(ctx context.Context) (*service.SessionInfo, error) {
	var session service.SessionInfo
	if err := c.do(ctx, "GET", c.sessionPath(""), nil, &session); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

type resetResponse struct {
	Message string             `json:"message"`
	State   *engine.FieldState `json:"state"`
}

func (c *Client) Reset(ctx context.Context) (*engine.FieldState, error) {
	var resp resetResponse
	if err := c.do(ctx, "POST", c.sessionPath("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

// Placements lists the placements of t reachable from spawn
func (c *Client) Placements(ctx context.Context, t engine.PieceType) (*service.PlacementList, error) {
	query := url.Values{}
	query.Set("type", t.String())
	query.Set("reachable", "true")

	var list service.PlacementList
	if err := c.do(ctx, "GET", c.sessionPath("/placements?"+query.Encode()), nil, &list); err != nil {
		return nil, fmt.Errorf("placements: %w", err)
	}
	return &list, nil
}

func (c *Client) Place(ctx context.Context, goal engine.Placement) (*service.PlaceResult, error) {
	var result service.PlaceResult
	if err := c.do(ctx, "POST", c.sessionPath("/place"), service.PlaceRequest{Goal: goal}, &result); err != nil {
		return nil, fmt.Errorf("place %v: %w", goal, err)
	}
	return &result, nil
}
