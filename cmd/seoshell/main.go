package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/satinau/seoshell"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	seoshell.Version = version
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	cmds := map[string]func([]string, io.Writer, io.Writer) error{
		"serve":   runServe,
		"build":   runBuild,
		"sitemap": runSitemap,
		"crawls":  runCrawls,
		"init":    runInit,
	}

	switch name := args[0]; name {
	case "version":
		fmt.Fprintf(stdout, "seoshell %s\n", version)
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		cmd, ok := cmds[name]
		if !ok {
			fmt.Fprintf(stderr, "Unknown command: %s\n\n", name)
			printUsage(stderr)
			return 1
		}
		err := cmd(args[1:], stdout, stderr)
		switch {
		case err == nil, errors.Is(err, flag.ErrHelp):
			return 0
		default:
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
}

// common holds flags every config-reading subcommand accepts.
type common struct {
	config  string
	verbose bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", seoshell.EnvOr("SEOSHELL_CONFIG", ""), "config file (default "+seoshell.DefaultConfigFile+" if present)")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
}

func (c *common) load(stderr io.Writer) (seoshell.Config, *slog.Logger, error) {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := seoshell.LoadConfig(c.config)
	return cfg, logger, err
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `seoshell - pre-rendered blog content for crawlers

Usage:
  seoshell <command> [flags]

Commands:
  serve             Serve the shell with crawler injection
  build             Write static post pages, index.json, sitemap and feed
  sitemap           Write sitemap.xml only
  crawls            Summarise logged crawler requests
  init [dir]        Write a starter seoshell.yaml and .env
  version           Print the seoshell version
  help              Show this help message

Run 'seoshell <command> -h' for the flags of a command.`)
}
