package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/viant/mgmtflow"
)

const version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type globals struct {
	configURL string
	target    string
	policy    string
}

func run(args []string, stdout, stderr io.Writer) int {
	var showVersion bool
	var g globals
	root := flag.NewFlagSet("mgmtflow", flag.ContinueOnError)
	root.SetOutput(stderr)
	root.BoolVar(&showVersion, "version", false, "print version and exit")
	root.StringVar(&g.configURL, "config", "", "config file URL")
	root.StringVar(&g.target, "target", "", "management endpoint URL or mem")
	root.StringVar(&g.policy, "policy", "", "operation policy mode: auto or deny")
	if err := root.Parse(args); err != nil {
		return 2
	}
	if showVersion {
		fmt.Fprintf(stdout, "mgmtflow %s\n", version)
		return 0
	}
	rest := root.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var command func(ctx context.Context, service *mgmtflow.Service, args []string, stdout, stderr io.Writer) int
	switch rest[0] {
	case "deploy":
		command = runDeploy
	case "replace":
		command = runReplace
	case "exec":
		command = runExec
	case "subsystems":
		command = runSubsystems
	case "patches":
		command = runPatches
	case "role":
		command = runRole
	case "runs":
		command = runRuns
	case "serve":
		command = runServe
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", rest[0])
		printUsage(stderr)
		return 2
	}
	service, err := g.service(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "init failed: %v\n", err)
		return 1
	}
	defer func() {
		if err := service.Close(); err != nil {
			fmt.Fprintf(stderr, "close failed: %v\n", err)
		}
	}()
	return command(ctx, service, rest[1:], stdout, stderr)
}

func (g *globals) service(ctx context.Context) (*mgmtflow.Service, error) {
	config := mgmtflow.DefaultConfig()
	if g.configURL != "" {
		loaded, err := mgmtflow.LoadConfig(ctx, g.configURL)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if g.target = strings.TrimSpace(g.target); g.target != "" {
		config.Dispatcher.Target = g.target
	}
	if g.policy != "" {
		config.Policy.Mode = g.policy
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return mgmtflow.New(ctx, mgmtflow.WithConfig(config))
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage: mgmtflow [-config URL] [-target URL|mem] [-policy auto|deny] <command> [args]

commands:
  deploy [-group G] FILE...     upload (and deploy to a server group) deployments
  replace NAME FILE             replace the content of a deployment
  exec 'OP'                     execute a single operation, e.g. ':read-children-names(child-type=subsystem)'
  subsystems [ADDRESS]          list the subsystems of a server
  patches                       list patches of running hosts
  role assign|unassign|modify   manage role mappings
  runs [-state S]               list journaled runs
  serve                         start the HTTP API`)
}
