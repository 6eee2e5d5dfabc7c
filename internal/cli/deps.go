package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/i474232898/meteou/internal/app"
)

// Dependencies are the controllers the commands drive.
type Dependencies struct {
	Favorites *app.Favorites
	Search    *app.Search
	Weather   *app.Weather
	Position  app.PositionProvider
	// Serve runs the HTTP server until ctx is done.
	Serve   func(ctx context.Context) error
	Stdin   io.Reader
	Version string
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

// Execute runs the CLI with injected dependencies.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}

	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, msg)
	}
	return 1
}
