// Command play runs a Gridball level in the terminal. The engine runs
// in-process at 30 frames per second; mouse clicks on the board are mapped to
// grid cells and queued as engine input.
//
//	play --level classic
//	play --level-dir ./levels --level gauntlet --mute
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/gridball/game/config"
	"github.com/wricardo/gridball/game/engine"
)

const frameInterval = time.Second / 30

func main() {
	cmd := &cli.Command{
		Name:  "play",
		Usage: "play a Gridball level in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "level-dir",
				Value:   "levels",
				Usage:   "directory containing level files",
				Sources: cli.EnvVars("GRIDBALL_LEVEL_DIR"),
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "level name (default level when empty)",
			},
			&cli.BoolFlag{
				Name:  "mute",
				Usage: "disable the victory chime",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "write engine logs to this file",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	// the terminal belongs to tcell, so logs go to a file or nowhere
	logOutput := io.Discard
	if path := cmd.String("log"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}
	log.SetOutput(logOutput)

	level, err := loadLevel(cmd.String("level-dir"), cmd.String("level"))
	if err != nil {
		return err
	}

	game, err := engine.NewEngine(level, engine.WithLogger(log.New(logOutput, "", log.LstdFlags)))
	if err != nil {
		return fmt.Errorf("start level: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	p := newPlayer(game, screen, newChime(cmd.Bool("mute")))
	return p.loop(ctx)
}

// loadLevel reads a level from dir, falling back to the built-in board when
// the directory is missing and no level was named
func loadLevel(dir, name string) (*engine.GameConfig, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		if name != "" {
			return nil, err
		}
		return engine.DefaultGameConfig(), nil
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}

// player drives one engine from terminal events
type player struct {
	game    *engine.GameEngine
	screen  tcell.Screen
	chime   *chime
	buttons tcell.ButtonMask
	state   *engine.GameState
}

func newPlayer(game *engine.GameEngine, screen tcell.Screen, c *chime) *player {
	return &player{game: game, screen: screen, chime: c, state: game.Snapshot()}
}

func (p *player) loop(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go p.screen.ChannelEvents(events, quit)

	drawState(p.screen, p.state)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !p.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if err := p.step(); err != nil {
				return err
			}
			drawState(p.screen, p.state)
		}
	}
}

// handleEvent queues engine input; it returns false when the player quits
func (p *player) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
			return false
		case ev.Rune() == 'e':
			p.game.Queue(engine.EndTurnInput())
		case ev.Rune() == 'r':
			if err := p.game.Reset(); err != nil {
				log.Printf("[PLAY] reset failed: %v", err)
			}
			p.state = p.game.Snapshot()
		}
	case *tcell.EventMouse:
		pressed := ev.Buttons() &^ p.buttons
		p.buttons = ev.Buttons()

		x, y := ev.Position()
		column, row, ok := cellAt(p.state, x, y)
		if !ok {
			return true
		}
		switch {
		case pressed&tcell.Button1 != 0:
			p.game.Queue(engine.Click(engine.ButtonLeft, column, row))
		case pressed&tcell.Button2 != 0:
			p.game.Queue(engine.Click(engine.ButtonRight, column, row))
		}
	case *tcell.EventResize:
		p.screen.Sync()
	}
	return true
}

// step advances one frame and reacts to the events it produced
func (p *player) step() error {
	if err := p.game.Update(); err != nil {
		return err
	}
	for _, ev := range p.game.DrainEvents() {
		log.Printf("[PLAY] %s: %s", ev.Type, ev.Message)
		if ev.Type == engine.EventVictory {
			p.chime.Victory()
		}
	}
	p.state = p.game.Snapshot()
	return nil
}
