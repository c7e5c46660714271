package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/rimage"

	"viamconnect4"
)

func main() {
	app := &cli.App{
		Name:      "solver",
		Usage:     "find the four-in-a-row board in a photo and pick the best move",
		ArgsUsage: "<input.jpg> [output.jpg]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "depth", Value: viamconnect4.DefaultTunables().SearchDepth, Usage: "search depth in plies"},
			&cli.IntFlag{Name: "workers", Value: 1, Usage: "goroutines used to search the root moves"},
			&cli.DurationFlag{Name: "timeout", Usage: "stop deepening the search after this long"},
			&cli.StringFlag{Name: "debug-dir", Usage: "write intermediate images here"},
			&cli.BoolFlag{Name: "debug", Usage: "debug logging"},
		},
		Action: realMain,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func realMain(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.ShowAppHelp(c)
	}

	inputFile := c.Args().Get(0)

	outputFile := c.Args().Get(1)
	if outputFile == "" {
		ext := filepath.Ext(inputFile)
		outputFile = strings.TrimSuffix(inputFile, ext) + "_output" + ext
	}

	logger := logging.NewLogger("solver")
	if c.Bool("debug") {
		logger.SetLevel(logging.DEBUG)
	}

	input, err := rimage.ReadImageFromFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	fmt.Printf("Image size: %dx%d\n", input.Bounds().Dx(), input.Bounds().Dy())

	opts := []viamconnect4.SolverOption{viamconnect4.WithWorkers(c.Int("workers"))}
	if dir := c.String("debug-dir"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		opts = append(opts, viamconnect4.WithDebugSink(&viamconnect4.FileSink{Dir: dir, Logger: logger}))
	}

	solver, err := viamconnect4.NewSolver(viamconnect4.DefaultTunables(), logger, opts...)
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := c.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	a, err := solver.Solve(ctx, input, c.Int("depth"))
	if a != nil {
		fmt.Printf("Found corners:\n")
		fmt.Printf("  Top-left:     %v\n", a.Corners.TopLeft())
		fmt.Printf("  Top-right:    %v\n", a.Corners.TopRight())
		fmt.Printf("  Bottom-right: %v\n", a.Corners.BottomRight())
		fmt.Printf("  Bottom-left:  %v\n", a.Corners.BottomLeft())
		fmt.Printf("%s\n", a.Board)
		fmt.Printf("%v to move\n", a.Turn)
	}
	if err != nil {
		return err
	}

	fmt.Printf("best move is: %d (depth %d, score %d, %d nodes in %v)\n",
		a.Move.Column+1, a.Move.Depth, a.Move.Score, a.Move.Nodes, time.Since(start))

	out := viamconnect4.GridImage(a.Rectified, a.Board)
	if err := rimage.WriteImageToFile(outputFile, out); err != nil {
		return fmt.Errorf("writing output image: %w", err)
	}
	fmt.Printf("Saved output image to %s\n", outputFile)
	return nil
}
