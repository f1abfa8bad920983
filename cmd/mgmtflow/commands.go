package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/mgmtflow"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/internal/dao"
	"github.com/viant/mgmtflow/journal"
	"github.com/viant/mgmtflow/model"
)

func loadAttachments(ctx context.Context, URLs []string) ([]*dispatcher.Attachment, error) {
	fs := afs.New()
	var ret []*dispatcher.Attachment
	for _, URL := range URLs {
		attachment, err := dispatcher.LoadAttachment(ctx, fs, URL)
		if err != nil {
			return nil, err
		}
		ret = append(ret, attachment)
	}
	return ret, nil
}

func runDeploy(ctx context.Context, service *mgmtflow.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("deploy", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var group string
	fs.StringVar(&group, "group", "", "server group to deploy to (domain only)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "deploy requires at least one file")
		return 2
	}
	attachments, err := loadAttachments(ctx, fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "deploy failed: %v\n", err)
		return 1
	}
	recipes, err := service.Deployments(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "deploy failed: %v\n", err)
		return 1
	}
	if group != "" {
		_, err = recipes.UploadAndDeploy(ctx, group, attachments...)
	} else {
		_, err = recipes.Upload(ctx, attachments...)
	}
	if err != nil {
		fmt.Fprintf(stderr, "deploy failed: %v\n", err)
		return 1
	}
	return 0
}

func runReplace(ctx context.Context, service *mgmtflow.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("replace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var runtimeName string
	fs.StringVar(&runtimeName, "runtime-name", "", "runtime name, defaults to NAME")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "replace requires NAME and FILE")
		return 2
	}
	name := fs.Arg(0)
	if runtimeName == "" {
		runtimeName = name
	}
	attachments, err := loadAttachments(ctx, fs.Args()[1:])
	if err != nil {
		fmt.Fprintf(stderr, "replace failed: %v\n", err)
		return 1
	}
	recipes, err := service.Deployments(ctx)
	if err == nil {
		err = recipes.Replace(ctx, name, runtimeName, attachments[0])
	}
	if err != nil {
		fmt.Fprintf(stderr, "replace failed: %v\n", err)
		return 1
	}
	return 0
}

func runExec(ctx context.Context, service *mgmtflow.Service, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "exec requires a single quoted operation")
		return 2
	}
	operation, err := model.ParseOperation(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "invalid operation: %v\n", err)
		return 2
	}
	result, err := service.Execute(ctx, operation)
	if err != nil {
		fmt.Fprintf(stderr, "exec failed: %v\n", err)
		return 1
	}
	return printJSON(stdout, stderr, result)
}

func runSubsystems(ctx context.Context, service *mgmtflow.Service, args []string, stdout, stderr io.Writer) int {
	address := model.Root()
	if len(args) > 0 {
		var err error
		if address, err = model.ParseAddress(args[0]); err != nil {
			fmt.Fprintf(stderr, "invalid address: %v\n", err)
			return 2
		}
	}
	subsystems, err := service.Subsystems(ctx, address)
	if err != nil {
		fmt.Fprintf(stderr, "subsystems failed: %v\n", err)
		return 1
	}
	for _, item := range subsystems {
		fmt.Fprintf(stdout, "%-32s %s\n", item.Name, item.Title)
	}
	return 0
}

func runPatches(ctx context.Context, service *mgmtflow.Service, args []string, stdout, stderr io.Writer) int {
	hosts, err := service.Patches(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "patches failed: %v\n", err)
		return 1
	}
	for _, host := range hosts {
		fmt.Fprintf(stdout, "%s: %s\n", host.Name, host.Patching.String())
	}
	return 0
}

func runRuns(ctx context.Context, service *mgmtflow.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var state string
	fs.StringVar(&state, "state", "", "comma separated run states")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	var params []*dao.Parameter
	if state != "" {
		var values []string
		for _, item := range strings.Split(state, ",") {
			values = append(values, strings.TrimSpace(item))
		}
		params = append(params, dao.NewParameter(journal.StateParameter, values...))
	}
	runs, err := service.Journal().List(ctx, params...)
	if err != nil {
		fmt.Fprintf(stderr, "runs failed: %v\n", err)
		return 1
	}
	for _, run := range runs {
		fmt.Fprintf(stdout, "%s %-10s %-32s %d/%d %v\n", run.ID, run.State, run.Flow, run.Completed, run.Total, run.Duration())
	}
	return 0
}

func runServe(ctx context.Context, service *mgmtflow.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := service.Config().API.Addr
	fs.StringVar(&addr, "addr", addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	service.Config().API.Addr = addr
	if err := service.API().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "serve failed: %v\n", err)
		return 1
	}
	return 0
}

func printJSON(stdout, stderr io.Writer, value interface{}) int {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		fmt.Fprintf(stderr, "encode failed: %v\n", err)
		return 1
	}
	return 0
}
