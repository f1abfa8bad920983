// Package changeset previews attribute changes of a resource as a unified
// diff before they are written.
package changeset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
	"github.com/viant/mgmtflow/model"
)

// Diff is the preview of a change set.
type Diff struct {
	Address   model.Address
	Operation *model.Operation
	Patch     string
	Added     int
	Removed   int
	Hunks     int
}

// IsEmpty returns true when nothing would change.
func (d *Diff) IsEmpty() bool {
	return d.Patch == ""
}

// Preview compares the attributes of current with the attributes after
// applying changes. Nil or empty values undefine an attribute.
func Preview(address model.Address, current model.Node, changes map[string]interface{}) (*Diff, error) {
	before := map[string]interface{}{}
	for _, property := range current.AsProperties() {
		if property.Value.IsDefined() {
			before[property.Name] = property.Value.Value()
		}
	}
	after := make(map[string]interface{}, len(before))
	for k, v := range before {
		after[k] = v
	}
	for k, v := range changes {
		if isUndefined(v) {
			delete(after, k)
			continue
		}
		after[k] = v
	}

	oldLines, err := lines(before)
	if err != nil {
		return nil, err
	}
	newLines, err := lines(after)
	if err != nil {
		return nil, err
	}
	ret := &Diff{Address: address}
	if strings.Join(oldLines, "") == strings.Join(newLines, "") {
		return ret, nil
	}
	resource := strings.TrimPrefix(address.String(), "/")
	if resource == "" {
		resource = "root"
	}
	ud := difflib.UnifiedDiff{
		A:        oldLines,
		B:        newLines,
		FromFile: "a/" + resource,
		ToFile:   "b/" + resource,
		Context:  3,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil, fmt.Errorf("diff generation: %w", err)
	}
	fileDiff, err := sgdiff.ParseFileDiff([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}
	ret.Patch = patch
	ret.Hunks = len(fileDiff.Hunks)
	for _, hunk := range fileDiff.Hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				ret.Added++
			case strings.HasPrefix(line, "-"):
				ret.Removed++
			}
		}
	}
	ret.Operation = model.FromChangeSet(address, changes)
	return ret, nil
}

func isUndefined(value interface{}) bool {
	switch actual := value.(type) {
	case nil:
		return true
	case string:
		return actual == ""
	}
	return false
}

func lines(attributes map[string]interface{}) ([]string, error) {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	ret := make([]string, 0, len(names))
	for _, name := range names {
		data, err := json.Marshal(attributes[name])
		if err != nil {
			return nil, fmt.Errorf("attribute %v: %w", name, err)
		}
		ret = append(ret, name+" = "+string(data)+"\n")
	}
	return ret, nil
}
