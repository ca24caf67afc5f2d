// Command hunter plays Robots vs Dinosaurs against a running server. It creates
// (or resumes) a game and issues one command at a time, walking each robot to
// the closest dinosaur along a shortest free path and attacking when adjacent.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/robots-vs-dinosaurs/game/service"
	"github.com/wricardo/robots-vs-dinosaurs/pkg/logger"
)

var log = logger.WithComponent("hunter")

// Summary describes how a hunt ended
type Summary struct {
	GameID    string
	Commands  int
	Victory   bool
	Remaining int
}

// hunt plays until the board is clear, every robot is stuck or maxCommands is reached
func hunt(ctx context.Context, client *Client, game *service.GameSnapshot, maxCommands int, delay time.Duration) (*Summary, error) {
	summary := &Summary{GameID: game.GameID}
	var hunter Hunter

	for summary.Commands < maxCommands {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		step, ok := hunter.Next(game.State())
		if !ok {
			break
		}

		result, err := client.Command(step.RobotID, string(step.Command))
		if err != nil {
			return summary, err
		}
		summary.Commands++
		game = result.Game

		log.WithFields(logrus.Fields{
			"robot":     step.RobotID,
			"command":   step.Command,
			"remaining": game.DinosaurCount,
		}).Debug(result.Message)

		if delay > 0 {
			time.Sleep(delay)
		}
	}

	summary.Victory = game.AllDinosaursDefeated
	summary.Remaining = game.DinosaurCount
	return summary, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := "info"
	if cmd.Bool("verbose") {
		level = "debug"
	}
	logger.Init(level, "text")

	client := NewClient(cmd.String("url"))
	log.Infof("Connecting to game server at %s", cmd.String("url"))

	var (
		game *service.GameSnapshot
		err  error
	)
	if id := cmd.String("game"); id != "" {
		client.gameID = id
		game, err = client.GetGame()
		if err != nil {
			return err
		}
		log.Infof("Resuming game %s", game.GameID)
	} else {
		req := service.CreateGameRequest{Scenario: cmd.String("scenario")}
		if seed := cmd.Int("seed"); seed > 0 {
			s := uint64(seed)
			req.Seed = &s
		}
		game, err = client.CreateGame(req)
		if err != nil {
			return err
		}
		log.Infof("Game created: %s (%dx%d, robots: %d, dinosaurs: %d)",
			game.GameID, game.Dim, game.Dim, game.RobotCount, game.DinosaurCount)
	}

	summary, err := hunt(ctx, client, game, cmd.Int("max-commands"), cmd.Duration("delay"))
	if err != nil {
		return err
	}

	if summary.Victory {
		log.Infof("🎉 Board cleared in %d commands (game %s)", summary.Commands, summary.GameID)
		return nil
	}
	return fmt.Errorf("stopped after %d commands with %d dinosaurs left", summary.Commands, summary.Remaining)
}

func main() {
	app := &cli.Command{
		Name:  "hunter",
		Usage: "Clear a Robots vs Dinosaurs board automatically",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "scenario", Usage: "Scenario for the new game (server default when empty)"},
			&cli.StringFlag{Name: "game", Usage: "Resume an existing game by ID"},
			&cli.IntFlag{Name: "seed", Usage: "Placement seed for the new game"},
			&cli.IntFlag{Name: "max-commands", Value: 5000, Usage: "Maximum commands before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between commands"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log every command"},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Error("hunt failed")
		os.Exit(1)
	}
}
