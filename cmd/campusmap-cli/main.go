package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/gateway"
	"github.com/aquilax/campusmap/mapview"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(-1)
	}
}

func run(args []string) error {
	return newApp().Run(args)
}

func newApp() *cli.App {
	app := &cli.App{
		Name:  "campusmap-cli",
		Usage: "command line client for the campus map",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "base URL of the campus map server",
				Value:   "http://localhost:8080",
				EnvVars: []string{"CAMPUSMAP_ADDR"},
			},
			&cli.StringFlag{
				Name:    "user",
				Usage:   "user id to log in with",
				EnvVars: []string{"CAMPUSMAP_USER"},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "password of --user",
				EnvVars: []string{"CAMPUSMAP_PASSWORD"},
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: "label language (en or ko)",
				Value: "en",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log requests to stderr",
			},
		},
	}
	app.Commands = []*cli.Command{
		cmdSpaces,
		cmdShow,
		cmdLike,
		cmdComment,
		cmdReply,
		cmdWatch,
	}
	return app
}

func logger(cctx *cli.Context) *slog.Logger {
	if cctx.Bool("verbose") {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// connect builds the client and, when --user is given, logs in.
func connect(cctx *cli.Context) (*gateway.Client, *campus.User, error) {
	log := logger(cctx)
	gw, err := gateway.New(cctx.String("addr"), gateway.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	username := cctx.String("user")
	if username == "" {
		return gw, &campus.User{}, nil
	}
	u, err := gw.Login(cctx.Context, username, cctx.String("password"))
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	return gw, u, nil
}

func newMap(cctx *cli.Context, gw mapview.Gateway, u *campus.User) *mapview.Map {
	return mapview.New(gw, u.ID,
		mapview.WithLocale(campus.GetLocale(cctx.String("lang"))),
		mapview.WithLogger(logger(cctx)),
	)
}
