package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/saeidalz13/battleship-heatmap/api"
	"github.com/saeidalz13/battleship-heatmap/db"
	"github.com/saeidalz13/battleship-heatmap/internal/config"
	"github.com/saeidalz13/battleship-heatmap/internal/render"
	"github.com/saeidalz13/battleship-heatmap/models/ai"
	"github.com/saeidalz13/battleship-heatmap/models/game"
)

const usage = `usage: battleship-heatmap <command> [flags]

commands:
  play    let the AI play one game and report the shot count
  serve   start the websocket server`

func main() {
	if os.Getenv("STAGE") != api.StageProd {
		if err := godotenv.Load(".env"); err != nil {
			log.Warn("no .env file loaded", "err", err)
		}
	}
	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = api.StageDev
	}
	if stage != api.StageDev && stage != api.StageProd {
		log.Fatal("stage must be either dev or prod", "stage", stage)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	log.SetLevel(cfg.Level())

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, cfg, os.Args[2:])
	case "serve":
		err = runServe(ctx, cfg, stage, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func runPlay(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	seed := fs.Int64("seed", cfg.Seed, "placement seed (0 = time based)")
	draw := fs.Bool("render", false, "draw the heat map of every turn")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	log.Debug("starting game", "seed", *seed, "grid_size", cfg.GridSize, "ships", cfg.Ships)

	g, err := game.NewGame(cfg.Game(), rand.New(rand.NewSource(*seed)))
	if err != nil {
		return err
	}

	var snaps []ai.Snapshot
	res, err := g.AutoPlay(ctx, func(snap ai.Snapshot) error {
		log.Debug("shot", "turn", snap.Turn, "x", snap.Shot.X, "y", snap.Shot.Y, "result", snap.Result, "mode", snap.Mode, "sunken", len(snap.Sunken))
		if *draw {
			snaps = append(snaps, snap)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if *draw {
		if err := render.Write(os.Stdout, snaps); err != nil {
			return err
		}
	}

	if res.Won {
		fmt.Printf("Won with %d shots.\n", res.Shots)
	} else {
		fmt.Printf("Turn cap reached after %d shots.\n", res.Shots)
	}
	return nil
}

func runServe(ctx context.Context, cfg config.Config, stage string, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	withDb := fs.Bool("db", os.Getenv("DATABASE_URL") != "", "record analytics in postgres (DATABASE_URL)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		return fmt.Errorf("PORT must be a number: %w", err)
	}

	opts := []api.Option{
		api.WithPort(port),
		api.WithStage(stage),
		api.WithGameConfig(cfg.Game()),
	}
	if *withDb {
		conn := db.MustConnectToDb(os.Getenv("DATABASE_URL"))
		defer conn.Close()
		opts = append(opts, api.WithDb(conn))
	}

	return api.NewServer(opts...).Run(ctx)
}
