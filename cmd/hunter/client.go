package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/robots-vs-dinosaurs/game/service"
)

// Client drives one game through the REST API
type Client struct {
	baseURL string
	gameID  string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateGame starts a new game from the named scenario (the server default when empty)
func (c *Client) CreateGame(req service.CreateGameRequest) (*service.GameSnapshot, error) {
	var game service.GameSnapshot
	if err := c.do("POST", "/api/games", req, &game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	c.gameID = game.GameID
	return &game, nil
}

// GetGame fetches the current snapshot of the tracked game
func (c *Client) GetGame() (*service.GameSnapshot, error) {
	var game service.GameSnapshot
	if err := c.do("GET", "/api/games/"+c.gameID, nil, &game); err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return &game, nil
}

// Command sends one command for one robot and returns the result
func (c *Client) Command(robotID, command string) (*service.CommandResult, error) {
	body := map[string]string{"robot_id": robotID, "command": command}

	var result service.CommandResult
	if err := c.do("POST", "/api/games/"+c.gameID+"/commands", body, &result); err != nil {
		return nil, fmt.Errorf("command %s %s: %w", robotID, command, err)
	}
	return &result, nil
}

func (c *Client) do(method, path string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("%s - %s", resp.Status, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
