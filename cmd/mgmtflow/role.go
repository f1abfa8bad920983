package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/viant/mgmtflow"
	"github.com/viant/mgmtflow/tasks/accesscontrol"
)

type settings map[string]interface{}

func (s settings) String() string {
	var ret []string
	for k, v := range s {
		ret = append(ret, fmt.Sprintf("%v=%v", k, v))
	}
	return strings.Join(ret, ",")
}

// Set parses name=value; JSON values are decoded, anything else is a string.
func (s settings) Set(text string) error {
	name, value, ok := strings.Cut(text, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", text)
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		decoded = value
	}
	s[name] = decoded
	return nil
}

func runRole(ctx context.Context, service *mgmtflow.Service, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "role requires assign, unassign or modify")
		return 2
	}
	fs := flag.NewFlagSet("role "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	var name, user, group, realm string
	var exclude, dryRun bool
	changes := settings{}
	fs.StringVar(&name, "name", "", "role name")
	fs.StringVar(&user, "user", "", "user principal")
	fs.StringVar(&group, "group", "", "group principal")
	fs.StringVar(&realm, "realm", "", "principal realm")
	fs.BoolVar(&exclude, "exclude", false, "exclude instead of include the principal")
	fs.BoolVar(&dryRun, "dry-run", false, "print the change without applying it")
	fs.Var(changes, "set", "attribute change name=value, repeatable")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(stderr, "role requires -name")
		return 2
	}
	role := &accesscontrol.Role{Name: name, Type: accesscontrol.RoleStandard}

	switch args[0] {
	case "assign", "unassign":
		principal := &accesscontrol.Principal{Realm: realm}
		switch {
		case user != "" && group == "":
			principal.Type, principal.Name = accesscontrol.PrincipalUser, user
		case group != "" && user == "":
			principal.Type, principal.Name = accesscontrol.PrincipalGroup, group
		default:
			fmt.Fprintln(stderr, "role assign requires exactly one of -user or -group")
			return 2
		}
		assignment := &accesscontrol.Assignment{Principal: principal, Role: role, Include: !exclude}
		var err error
		if args[0] == "assign" {
			err = service.Assign(ctx, assignment)
		} else {
			err = service.Unassign(ctx, assignment)
		}
		if err != nil {
			fmt.Fprintf(stderr, "role %s failed: %v\n", args[0], err)
			return 1
		}
		return 0
	case "modify":
		address := accesscontrol.RoleMappingAddress(role)
		if dryRun {
			diff, err := service.PreviewChange(ctx, address, changes)
			if err != nil {
				fmt.Fprintf(stderr, "role modify failed: %v\n", err)
				return 1
			}
			if diff.IsEmpty() {
				fmt.Fprintln(stdout, "no changes")
				return 0
			}
			fmt.Fprint(stdout, diff.Patch)
			fmt.Fprintf(stdout, "%d added, %d removed\n", diff.Added, diff.Removed)
			return 0
		}
		if err := service.ApplyChange(ctx, address, changes); err != nil {
			fmt.Fprintf(stderr, "role modify failed: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(stderr, "unknown role command: %s\n", args[0])
	return 2
}
