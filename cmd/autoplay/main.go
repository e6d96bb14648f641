// Command autoplay plays a Gridball level against a running server through
// the REST API. Each turn it selects the home carrier closest to its goal,
// walks it as far along the shortest path as its range allows, and ends the
// turn. A carrier heads for the ball until it holds it, then for the closest
// endzone.
//
//	autoplay --server http://localhost:8080 --level classic --turns 20
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/gridball/game/engine"
	"github.com/wricardo/gridball/game/service"
)

// Client is a minimal REST client for one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

// NewClient creates a client for a server base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateSession starts a new session and remembers its id
func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.GameState, error) {
	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}
	var info service.SessionInfo
	if err := c.do(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return info.GameState, nil
}

// Click sends a click and waits for any move it starts to finish
func (c *Client) Click(ctx context.Context, button string, space engine.Space) (*service.ActionResult, error) {
	body := map[string]interface{}{
		"button": button,
		"column": space.Column,
		"row":    space.Row,
		"settle": true,
	}
	var result service.ActionResult
	if err := c.do(ctx, "POST", "/api/sessions/"+c.sessionID+"/click", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EndTurn passes control to the enemy
func (c *Client) EndTurn(ctx context.Context) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do(ctx, "POST", "/api/sessions/"+c.sessionID+"/end-turn", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Outcome summarizes a finished run
type Outcome struct {
	SessionID string
	Turns     int
	Moves     int
	Victory   bool
}

// playTurn makes at most one move and ends the turn unless the game is over
func playTurn(ctx context.Context, c *Client, state *engine.GameState) (*engine.GameState, bool, error) {
	moved := false

	plan, err := ChoosePlan(state)
	switch {
	case errors.Is(err, errNoMove):
		log.Printf("[AUTOPLAY] turn %d: no move, passing", state.Turn)
	case err != nil:
		return nil, false, err
	default:
		result, err := c.Click(ctx, "left", plan.From)
		if err != nil {
			return nil, false, err
		}
		state = result.GameState

		grid, err := boardFromState(state)
		if err != nil {
			return nil, false, err
		}
		if target, ok := FurthestInRange(grid, plan, state.SelectedRange); ok {
			log.Printf("[AUTOPLAY] turn %d: %s %s -> %s (goal %s, %d steps)",
				state.Turn, plan.Actor, plan.From, target, plan.Goal, plan.Steps)
			for i := 0; i < 2; i++ {
				result, err = c.Click(ctx, "right", target)
				if err != nil {
					return nil, false, err
				}
			}
			state = result.GameState
			moved = true
			for _, ev := range result.Events {
				log.Printf("[AUTOPLAY]   %s: %s", ev.Type, ev.Message)
			}
		}
	}

	if state.GameOver {
		return state, moved, nil
	}

	result, err := c.EndTurn(ctx)
	if err != nil {
		return nil, false, err
	}
	return result.GameState, moved, nil
}

// Play creates a session and plays until victory or the turn limit
func Play(ctx context.Context, c *Client, level string, maxTurns int) (*Outcome, error) {
	state, err := c.CreateSession(ctx, level)
	if err != nil {
		return nil, err
	}
	log.Printf("[AUTOPLAY] session %s on %s (%dx%d)", c.sessionID, state.ConfigName, state.Columns, state.Rows)

	outcome := &Outcome{SessionID: c.sessionID}
	for outcome.Turns < maxTurns && !state.GameOver {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		var moved bool
		state, moved, err = playTurn(ctx, c, state)
		if err != nil {
			return outcome, err
		}
		outcome.Turns++
		if moved {
			outcome.Moves++
		}
	}

	outcome.Victory = state.Victory
	return outcome, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play a Gridball level through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "server base URL",
				Sources: cli.EnvVars("GRIDBALL_URL"),
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "level id (server default when empty)",
			},
			&cli.IntFlag{
				Name:  "turns",
				Value: 30,
				Usage: "give up after this many turns",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outcome, err := Play(ctx, NewClient(cmd.String("server")), cmd.String("level"), int(cmd.Int("turns")))
			if err != nil {
				return err
			}

			fmt.Printf("\n=== Session %s ===\n", outcome.SessionID)
			fmt.Printf("Turns: %d, moves: %d\n", outcome.Turns, outcome.Moves)
			if outcome.Victory {
				fmt.Println("🎉 VICTORY!")
				return nil
			}
			fmt.Println("❌ No score within the turn limit")
			return errors.New("no victory")
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
