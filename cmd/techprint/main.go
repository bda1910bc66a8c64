// Command techprint scans one URL and prints the detected technologies.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olegrjumin/techprint/internal/config"
	"github.com/olegrjumin/techprint/internal/httpclient"
	"github.com/olegrjumin/techprint/internal/logging"
	"github.com/olegrjumin/techprint/internal/report"
	"github.com/olegrjumin/techprint/internal/scanner"
	"github.com/olegrjumin/techprint/internal/signatures"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("techprint", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print the scan result as JSON")
	verbose := fs.Bool("v", false, "Log script fetches to stderr")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: techprint [-json] [-v] <url>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg := config.Load()

	level := "error"
	if *verbose {
		level = "debug"
	}
	logger := logging.NewWithWriter(os.Stderr, level)

	db, err := signatures.Default()
	if err != nil {
		fmt.Fprintln(os.Stderr, "techprint:", err)
		return 1
	}

	scn := scanner.New(httpclient.NewClient(cfg.UserAgent), db, logger, nil)

	opts := scanner.DefaultOptions()
	opts.PageTimeout = cfg.PageTimeout
	opts.ScriptTimeout = cfg.ScriptTimeout
	opts.ScriptFetchLimit = cfg.ScriptFetchLimit
	opts.ScriptMaxBytes = int64(cfg.ScriptMaxBytes)
	opts.ScriptConcurrency = cfg.ScriptConcurrency

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ScanTimeout)
		defer cancel()
	}

	result, err := scn.Scan(ctx, fs.Arg(0), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "techprint:", err)
		return 1
	}

	if *asJSON {
		err = report.WriteJSON(os.Stdout, result)
	} else {
		err = report.WriteTable(os.Stdout, result)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "techprint:", err)
		return 1
	}
	return 0
}
