package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/aquilax/campusmap/mapview"
	"github.com/urfave/cli/v2"
)

var cmdSpaces = &cli.Command{
	Name:  "spaces",
	Usage: "list the places on the map",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "level",
			Usage: "zoom level of the marker positions",
			Value: 1,
		},
	},
	Action: runSpaces,
}

var cmdShow = &cli.Command{
	Name:      "show",
	Usage:     "show the comments of a place",
	ArgsUsage: "<space-id>",
	Action:    runShow,
}

var cmdLike = &cli.Command{
	Name:      "like",
	Usage:     "toggle the like of a place, comment or reply",
	ArgsUsage: "<space-id>",
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:  "comment",
			Usage: "toggle the like of this comment instead",
		},
		&cli.Int64Flag{
			Name:  "reply",
			Usage: "toggle the like of this reply instead",
		},
	},
	Action: runLike,
}

var cmdComment = &cli.Command{
	Name:      "comment",
	Usage:     "post a comment on a place",
	ArgsUsage: "<space-id> <text>",
	Action:    runComment,
}

var cmdReply = &cli.Command{
	Name:      "reply",
	Usage:     "reply to a comment",
	ArgsUsage: "<comment-id> <text>",
	Action:    runReply,
}

var cmdWatch = &cli.Command{
	Name:      "watch",
	Usage:     "follow a place, refreshing periodically",
	ArgsUsage: "[space-id]",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "period",
			Usage: "refresh period",
			Value: mapview.DefaultRefreshPeriod,
		},
	},
	Action: runWatch,
}

func argID(cctx *cli.Context, n int, name string) (int64, error) {
	s := cctx.Args().Get(n)
	if s == "" {
		return 0, fmt.Errorf("expected %s argument", name)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return id, nil
}

// selectSpace loads the space list and selects spaceID in m.
func selectSpace(ctx context.Context, m *mapview.Map, spaces *mapview.SpaceRepository, spaceID campus.SpaceID) error {
	if err := spaces.Initialize(ctx); err != nil {
		return err
	}
	s, ok := spaces.Find(spaceID)
	if !ok {
		return fmt.Errorf("no space with id %d", spaceID)
	}
	if !m.Select(ctx, s) {
		return fmt.Errorf("could not load space %d", spaceID)
	}
	return nil
}

func printView(w io.Writer, v mapview.View) {
	if v.Space == nil {
		fmt.Fprintln(w, "(nothing selected)")
		return
	}
	heart := " "
	if v.IsLiked {
		heart = "*"
	}
	fmt.Fprintf(w, "%s  [%s %d]\n", v.Space.DisplayName(), heart, v.LikesCount)
	if v.Space.Description != "" {
		fmt.Fprintf(w, "  %s\n", v.Space.Description)
	}
	if v.Space.CommentsDisabled() {
		fmt.Fprintln(w, "  comments are disabled")
		return
	}
	for _, c := range v.Comments {
		fmt.Fprintf(w, "  #%d %s, %s [%d]\n", c.ID, c.Author, c.RelativeTime, v.CommentLikes[c.ID])
		fmt.Fprintf(w, "     %s\n", c.Content)
		for _, r := range v.CommentReplies[c.ID] {
			fmt.Fprintf(w, "     > #%d %s, %s [%d]: %s\n", r.ID, r.Author, r.RelativeTime, v.ReplyLikes[r.ID], r.Content)
		}
	}
}

func runSpaces(cctx *cli.Context) error {
	gw, _, err := connect(cctx)
	if err != nil {
		return err
	}
	spaces := mapview.NewSpaceRepository(gw, logger(cctx))
	if err := spaces.Initialize(cctx.Context); err != nil {
		fmt.Fprintf(cctx.App.ErrWriter, "warning: %v, showing the default places\n", err)
	}
	for _, mk := range mapview.Markers(spaces.Get(), cctx.Int("level"), nil) {
		fmt.Fprintf(cctx.App.Writer, "%d\t%s\t(%.0f, %.0f)\tx%.1f\n", mk.SpaceID, mk.Label, mk.Position.X, mk.Position.Y, mk.Scale)
	}
	return nil
}

func runShow(cctx *cli.Context) error {
	spaceID, err := argID(cctx, 0, "space-id")
	if err != nil {
		return err
	}
	gw, u, err := connect(cctx)
	if err != nil {
		return err
	}
	m := newMap(cctx, gw, u)
	if err := selectSpace(cctx.Context, m, mapview.NewSpaceRepository(gw, logger(cctx)), spaceID); err != nil {
		return err
	}
	printView(cctx.App.Writer, m.Snapshot())
	return nil
}

func runLike(cctx *cli.Context) error {
	gw, u, err := connect(cctx)
	if err != nil {
		return err
	}
	m := newMap(cctx, gw, u)
	var st campus.LikeState
	switch {
	case cctx.IsSet("comment"):
		st, err = m.ToggleCommentLike(cctx.Context, cctx.Int64("comment"))
	case cctx.IsSet("reply"):
		st, err = m.ToggleReplyLike(cctx.Context, cctx.Int64("reply"))
	default:
		var spaceID campus.SpaceID
		if spaceID, err = argID(cctx, 0, "space-id"); err != nil {
			return err
		}
		// the space like needs the space selected first
		if err = selectSpace(cctx.Context, m, mapview.NewSpaceRepository(gw, logger(cctx)), spaceID); err != nil {
			return err
		}
		st, err = m.ToggleSpaceLike(cctx.Context, spaceID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cctx.App.Writer, "liked=%v count=%d\n", st.Liked, st.Count)
	return nil
}

func runComment(cctx *cli.Context) error {
	spaceID, err := argID(cctx, 0, "space-id")
	if err != nil {
		return err
	}
	gw, u, err := connect(cctx)
	if err != nil {
		return err
	}
	m := newMap(cctx, gw, u)
	c, err := m.SubmitComment(cctx.Context, spaceID, strings.Join(cctx.Args().Tail(), " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cctx.App.Writer, "posted comment #%d\n", c.ID)
	return nil
}

func runReply(cctx *cli.Context) error {
	commentID, err := argID(cctx, 0, "comment-id")
	if err != nil {
		return err
	}
	gw, u, err := connect(cctx)
	if err != nil {
		return err
	}
	m := newMap(cctx, gw, u)
	r, err := m.SubmitReply(cctx.Context, commentID, strings.Join(cctx.Args().Tail(), " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cctx.App.Writer, "posted reply #%d\n", r.ID)
	return nil
}

// runWatch keeps a place selected and prints it after each refresh period
// until interrupted.
func runWatch(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, u, err := connect(cctx)
	if err != nil {
		return err
	}
	m := newMap(cctx, gw, u)
	spaces := mapview.NewSpaceRepository(gw, logger(cctx))
	if err := spaces.Initialize(ctx); err != nil {
		fmt.Fprintf(cctx.App.ErrWriter, "warning: %v\n", err)
	}

	period := cctx.Duration("period")
	r := mapview.NewRefresher(m, spaces, period)
	if err := r.Start(ctx); err != nil {
		return err
	}
	defer r.Stop()

	if cctx.Args().Present() {
		spaceID, err := argID(cctx, 0, "space-id")
		if err != nil {
			return err
		}
		s, ok := spaces.Find(spaceID)
		if !ok {
			return fmt.Errorf("no space with id %d", spaceID)
		}
		if !r.Select(ctx, s) {
			return fmt.Errorf("could not load space %d", spaceID)
		}
	}

	printView(cctx.App.Writer, m.Snapshot())
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fmt.Fprintf(cctx.App.Writer, "\n-- %s, %d places\n", time.Now().Format(time.Kitchen), len(spaces.Get()))
			printView(cctx.App.Writer, m.Snapshot())
		}
	}
}
