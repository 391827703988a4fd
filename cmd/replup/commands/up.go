package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/replup/internal/app/up"
	"github.com/slok/replup/internal/execution"
	"github.com/slok/replup/internal/printer"
	"github.com/slok/replup/internal/replit"
	"github.com/slok/replup/internal/upload"
)

type UpCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewUpCommand returns the up command, the default one.
func NewUpCommand(rootCmd *RootCommand, app *kingpin.Application) *UpCommand {
	c := &UpCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("up", "Upload the current directory to a new REPL and run its index.js.").Default()

	return c
}

func (c UpCommand) Name() string { return c.Cmd.FullCommand() }

func (c UpCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not get working directory: %w", err)
	}
	tree := os.DirFS(cwd)

	p := printer.NewTerminalPrinter(printer.TerminalConfig{
		Out:     c.rootCmd.Stdout,
		NoColor: c.rootCmd.NoColor,
	})

	// The HTTP API and the evaluation stream share the session cookies.
	jar, err := replit.NewCookieJar()
	if err != nil {
		return err
	}

	client, err := replit.NewClient(replit.ClientConfig{
		BaseURL:    c.rootCmd.APIURL,
		HTTPClient: &http.Client{Jar: jar},
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create platform client: %w", err)
	}

	uploader, err := upload.NewTreeUploader(upload.TreeUploaderConfig{
		FS:           tree,
		FileUploader: client,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create uploader: %w", err)
	}

	dialer, err := execution.NewWebsocketDialer(execution.WebsocketDialerConfig{
		URL: c.rootCmd.StreamURL,
		Jar: jar,
	})
	if err != nil {
		return fmt.Errorf("could not create stream dialer: %w", err)
	}

	driver, err := execution.NewDriver(execution.DriverConfig{
		TokenProvider: client,
		Dialer:        dialer,
		Display:       p,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("could not create execution driver: %w", err)
	}

	svc, err := up.NewService(up.ServiceConfig{
		Bootstrapper: client,
		TreeUploader: uploader,
		Executor:     driver,
		FS:           tree,
		Printer:      p,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	report, err := svc.Run(ctx, up.Request{EntryFile: up.DefaultEntryFile})
	if err != nil {
		return err
	}

	if err := p.PrintReport(*report); err != nil {
		return fmt.Errorf("could not print report: %w", err)
	}

	return nil
}
