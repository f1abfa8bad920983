package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	testCases := []struct {
		description  string
		args         []string
		expectCode   int
		expectStdout string
		expectStderr string
	}{
		{description: "version", args: []string{"-version"}, expectStdout: "mgmtflow dev"},
		{description: "no command", args: nil, expectCode: 2, expectStderr: "usage:"},
		{description: "unknown command", args: []string{"-target", "mem", "bogus"}, expectCode: 2, expectStderr: "unknown command: bogus"},
		{description: "exec", args: []string{"-target", "mem", "exec", ":read-children-names(child-type=subsystem)"}, expectStdout: "[]"},
		{description: "exec invalid", args: []string{"-target", "mem", "exec", "read-resource"}, expectCode: 2, expectStderr: "invalid operation"},
		{description: "exec failure", args: []string{"-target", "mem", "exec", "/deployment=missing.war:remove"}, expectCode: 1, expectStderr: "WFLYCTL0216"},
		{description: "subsystems", args: []string{"-target", "mem", "subsystems"}, expectStdout: "server-runtime-status"},
		{description: "role without name", args: []string{"-target", "mem", "role", "assign", "-user", "alice"}, expectCode: 2, expectStderr: "role requires -name"},
		{description: "role both principals", args: []string{"-target", "mem", "role", "assign", "-name", "Monitor", "-user", "a", "-group", "b"}, expectCode: 2, expectStderr: "exactly one"},
		{description: "read under deny policy", args: []string{"-target", "mem", "-policy", "deny", "exec", ":read-resource"}, expectStdout: "launch-type"},
		{description: "write under deny policy", args: []string{"-target", "mem", "-policy", "deny", "exec", "/deployment=app.war:add"}, expectCode: 1, expectStderr: "write operations are denied"},
		{description: "unknown policy", args: []string{"-target", "mem", "-policy", "maybe", "runs"}, expectCode: 1, expectStderr: "policy.mode"},
		{description: "runs", args: []string{"-target", "mem", "runs", "-state", "failed"}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
			code := run(tc.args, stdout, stderr)
			assert.Equal(t, tc.expectCode, code, stderr.String())
			assert.Contains(t, stdout.String(), tc.expectStdout)
			assert.Contains(t, stderr.String(), tc.expectStderr)
		})
	}
}

func TestSettings(t *testing.T) {
	s := settings{}
	assert.NoError(t, s.Set("include-all=true"))
	assert.NoError(t, s.Set("name=plain text"))
	assert.Error(t, s.Set("broken"))
	assert.Equal(t, true, s["include-all"])
	assert.Equal(t, "plain text", s["name"])
}
