// Command finesse solves and inspects placements from the terminal.
//
//	finesse show tspin
//	finesse solve --preset tspin --piece t --x 3 --y 19 --rotation 2
//	finesse solve --request req.json
//	finesse placements --preset well --piece i --reachable
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/finesse/game/config"
	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "finesse",
		Usage: "shortest input sequences for tetromino placements",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing board presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "plain text output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "render a preset",
				ArgsUsage: "[preset]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						name = config.DefaultConfigID
					}
					preset, err := loadPreset(cmd, name)
					if err != nil {
						return err
					}
					r := rendererFor(cmd)
					fmt.Fprintln(out, r.title(fmt.Sprintf("%s: %s", preset.Name, preset.Description)))
					fmt.Fprint(out, r.board(engine.BoardFromConfig(preset), nil))
					return nil
				},
			},
			{
				Name:  "solve",
				Usage: "find the shortest input sequence from spawn to a goal",
				Flags: []cli.Flag{
					presetFlag(),
					&cli.StringFlag{Name: "request", Usage: "JSON solve request file (overrides the other flags)"},
					&cli.StringFlag{Name: "piece", Usage: "piece type (I, J, L, O, S, T, Z)"},
					&cli.IntFlag{Name: "x", Usage: "goal anchor column"},
					&cli.IntFlag{Name: "y", Usage: "goal anchor row"},
					&cli.IntFlag{Name: "rotation", Aliases: []string{"r"}, Usage: "goal rotation 0-3"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					b, start, goal, err := solveInput(cmd)
					if err != nil {
						return err
					}
					result := engine.Search(b, start, goal)
					fmt.Fprint(out, rendererFor(cmd).solution(b, goal, result))
					if !result.Found {
						return engine.ErrNoSolution
					}
					return nil
				},
			},
			{
				Name:  "placements",
				Usage: "list lockable placements of a piece",
				Flags: []cli.Flag{
					presetFlag(),
					&cli.StringFlag{Name: "piece", Usage: "piece type (I, J, L, O, S, T, Z)", Required: true},
					&cli.BoolFlag{Name: "reachable", Usage: "only placements reachable from spawn"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					preset, err := loadPreset(cmd, cmd.String("preset"))
					if err != nil {
						return err
					}
					pieceType, err := engine.ParsePieceType(cmd.String("piece"))
					if err != nil {
						return err
					}

					b := engine.BoardFromConfig(preset)
					list := engine.LockablePlacements(b, pieceType)
					if cmd.Bool("reachable") {
						list = engine.ReachablePlacements(b, engine.SpawnPlacement(pieceType))
					}

					fmt.Fprintf(out, "%d placements for %s on %s\n", len(list), pieceType, preset.Name)
					for _, p := range list {
						moves, ok := engine.FindPath(b, engine.SpawnPlacement(pieceType), p)
						inputs := "unreachable"
						if ok {
							inputs = fmt.Sprintf("%d inputs", len(moves))
						}
						fmt.Fprintf(out, "  x=%-3d y=%-3d r=%d  %s\n", p.X, p.Y, p.Rotation, inputs)
					}
					return nil
				},
			},
		},
	}
}

func presetFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "preset",
		Aliases: []string{"p"},
		Value:   config.DefaultConfigID,
		Usage:   "board preset id",
	}
}

func rendererFor(cmd *cli.Command) renderer {
	return renderer{color: !cmd.Bool("no-color")}
}

func loadPreset(cmd *cli.Command, name string) (*engine.BoardConfig, error) {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, err
	}
	return manager.LoadConfig(name)
}

// solveInput builds the board, start and goal either from a request file or
// from the preset and goal flags.
func solveInput(cmd *cli.Command) (*engine.Board, engine.Placement, engine.Placement, error) {
	if path := cmd.String("request"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, engine.Placement{}, engine.Placement{}, err
		}
		var req service.SolveRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, engine.Placement{}, engine.Placement{}, fmt.Errorf("%w: %v", engine.ErrInvalidRequest, err)
		}
		start, err := engine.ResolveStart(req.Goal, req.Start)
		if err != nil {
			return nil, engine.Placement{}, engine.Placement{}, err
		}
		b, err := req.Build()
		if err != nil {
			return nil, engine.Placement{}, engine.Placement{}, err
		}
		return b, start, req.Goal, nil
	}

	if cmd.String("piece") == "" {
		return nil, engine.Placement{}, engine.Placement{}, fmt.Errorf("%w: --piece or --request is required", engine.ErrInvalidRequest)
	}
	pieceType, err := engine.ParsePieceType(cmd.String("piece"))
	if err != nil {
		return nil, engine.Placement{}, engine.Placement{}, err
	}
	preset, err := loadPreset(cmd, cmd.String("preset"))
	if err != nil {
		return nil, engine.Placement{}, engine.Placement{}, err
	}

	goal := engine.Placement{
		Type:     pieceType,
		X:        int(cmd.Int("x")),
		Y:        int(cmd.Int("y")),
		Rotation: int(cmd.Int("rotation")),
	}
	return engine.BoardFromConfig(preset), engine.SpawnPlacement(pieceType), goal, nil
}
