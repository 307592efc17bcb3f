package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dvcrn/ledspeed/internal/env"
	serverhttp "github.com/dvcrn/ledspeed/internal/http"
	"github.com/dvcrn/ledspeed/internal/speed"
	"github.com/spf13/pflag"
)

const usage = `Usage: ledspeed [--url URL] [--timeout D] <command>

Commands:
  get                              print the board's current LED speeds
  set --led1 N --led2 N --led3 N   replace the LED speeds and print the applied values

Flags:
`

// errUsage is returned for bad invocations after usage has been printed.
var errUsage = errors.New("invalid usage")

type options struct {
	baseURL    string
	timeout    time.Duration
	httpClient serverhttp.HTTPClient
}

// run writes results to stdout and usage or flag errors to stderr. Asking
// for help is not an error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return runWith(ctx, args, stdout, stderr, options{})
}

func runWith(ctx context.Context, args []string, stdout, stderr io.Writer, opts options) error {
	fs := pflag.NewFlagSet("ledspeed", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVarP(&opts.baseURL, "url", "u", env.GetOrDefault("LEDSPEED_BASE_URL", "http://localhost:8000"), "base URL of the board")
	fs.DurationVarP(&opts.timeout, "timeout", "t", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	clientOpts := []speed.Option{}
	if opts.httpClient != nil {
		clientOpts = append(clientOpts, speed.WithHTTPClient(opts.httpClient))
	}
	client, err := speed.NewClient(opts.baseURL, clientOpts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	switch cmd, rest := fs.Arg(0), fs.Args()[1:]; cmd {
	case "get":
		if len(rest) > 0 {
			return fmt.Errorf("get takes no arguments")
		}
		settings, err := client.GetSpeeds(ctx)
		if err != nil {
			return err
		}
		return printSettings(stdout, settings)

	case "set":
		requested, err := parseSet(rest, stderr)
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		if err != nil {
			return err
		}
		settings, err := client.SetSpeeds(ctx, requested)
		if err != nil {
			return err
		}
		return printSettings(stdout, settings)

	default:
		fs.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func parseSet(args []string, out io.Writer) (speed.Settings, error) {
	var s speed.Settings

	fs := pflag.NewFlagSet("set", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Float64Var(&s.LED1, "led1", 0, "speed of LED1 (green)")
	fs.Float64Var(&s.LED2, "led2", 0, "speed of LED2 (yellow)")
	fs.Float64Var(&s.LED3, "led3", 0, "speed of LED3 (red)")
	if err := fs.Parse(args); err != nil {
		return s, err
	}

	for _, name := range []string{"led1", "led2", "led3"} {
		if !fs.Changed(name) {
			return s, fmt.Errorf("%w: set requires --led1, --led2 and --led3 (missing --%s)", errUsage, name)
		}
	}
	if fs.NArg() > 0 {
		return s, fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	return s, nil
}

func printSettings(w io.Writer, s *speed.Settings) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
