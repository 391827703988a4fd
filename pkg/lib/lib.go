package lib

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/slok/replup/internal/app/up"
	"github.com/slok/replup/internal/execution"
	"github.com/slok/replup/internal/log"
	"github.com/slok/replup/internal/printer"
	"github.com/slok/replup/internal/replit"
	"github.com/slok/replup/internal/upload"
)

// Config configures the SDK client.
//
// All fields are optional, an empty Config{} talks to the real platform silently.
type Config struct {
	// APIURL is the platform HTTP API base URL.
	// Default: https://repl.it.
	APIURL string

	// StreamURL is the platform evaluation stream URL.
	// Default: wss://eval.repl.it/ws.
	StreamURL string

	// Output receives the step display and the program output.
	// Default: discarded.
	Output io.Writer

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.APIURL == "" {
		c.APIURL = replit.DefaultBaseURL
	}

	if c.StreamURL == "" {
		c.StreamURL = execution.DefaultStreamURL
	}

	if c.Output == nil {
		c.Output = io.Discard
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point.
//
// Create a Client with [New]. A Client is safe for concurrent use.
type Client struct {
	apiURL    string
	streamURL string
	output    io.Writer
	logger    log.Logger
}

// New creates a new SDK client.
func New(cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		apiURL:    cfg.APIURL,
		streamURL: cfg.StreamURL,
		output:    cfg.Output,
		logger:    cfg.Logger,
	}, nil
}

// Up creates a new REPL from a local directory tree and runs its entry file.
//
// Without entry file only the upload happens and [Result].Executed is false.
func (c *Client) Up(ctx context.Context, opts UpOpts) (*Result, error) {
	tree, err := opts.tree()
	if err != nil {
		return nil, mapError(err)
	}

	// Every run gets its own session, the cookies are shared by the HTTP API and the stream.
	jar, err := replit.NewCookieJar()
	if err != nil {
		return nil, err
	}

	client, err := replit.NewClient(replit.ClientConfig{
		BaseURL:    c.apiURL,
		HTTPClient: &http.Client{Jar: jar},
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create platform client: %w", err)
	}

	uploader, err := upload.NewTreeUploader(upload.TreeUploaderConfig{
		FS:           tree,
		FileUploader: client,
		Logger:       c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create uploader: %w", err)
	}

	dialer, err := execution.NewWebsocketDialer(execution.WebsocketDialerConfig{
		URL: c.streamURL,
		Jar: jar,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create stream dialer: %w", err)
	}

	p := printer.NewTerminalPrinter(printer.TerminalConfig{Out: c.output, NoColor: true})

	driver, err := execution.NewDriver(execution.DriverConfig{
		TokenProvider: client,
		Dialer:        dialer,
		Display:       p,
		IdleTimeout:   opts.IdleTimeout,
		Logger:        c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create execution driver: %w", err)
	}

	svc, err := up.NewService(up.ServiceConfig{
		Bootstrapper: client,
		TreeUploader: uploader,
		Executor:     driver,
		FS:           tree,
		Printer:      p,
		Logger:       c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	report, err := svc.Run(ctx, up.Request{EntryFile: opts.EntryFile})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalReport(*report), nil
}

func (o UpOpts) tree() (fs.FS, error) {
	if o.FS != nil {
		return o.FS, nil
	}

	dir := o.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get working directory: %w", err)
		}
		dir = wd
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("could not stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory: %w", dir, ErrNotValid)
	}

	return os.DirFS(dir), nil
}
