package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viant/mgmtflow/model"
)

const (
	notFoundCode       = "WFLYCTL0216"
	duplicateCode      = "WFLYCTL0212"
	compositeCode      = "WFLYCTL0062"
	alreadyExplodedMsg = "WFLYDR0015: Cannot explode an already exploded deployment"
	unlimitedDepth     = 1 << 10
)

type resource struct {
	address    model.Address
	attributes map[string]interface{}
}

func (r *resource) clone() *resource {
	attributes := make(map[string]interface{}, len(r.attributes))
	for k, v := range r.attributes {
		attributes[k] = v
	}
	return &resource{address: r.address, attributes: attributes}
}

// tree holds resources keyed by their CLI address.
type tree map[string]*resource

func key(address model.Address) string {
	return address.String()
}

func (t tree) clone() tree {
	ret := make(tree, len(t))
	for k, v := range t {
		ret[k] = v.clone()
	}
	return ret
}

func (t tree) lookup(address model.Address) (*resource, error) {
	if ret, ok := t[key(address)]; ok {
		return ret, nil
	}
	return nil, notFound(address)
}

func (t tree) children(parent model.Address, childType string) []*resource {
	var ret []*resource
	for _, candidate := range t {
		address := candidate.address
		if len(address) != len(parent)+1 || address.Last().Key != childType {
			continue
		}
		if address.Parent().Equal(parent) {
			ret = append(ret, candidate)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].address.Last().Value < ret[j].address.Last().Value })
	return ret
}

func (t tree) childTypes(parent model.Address) []string {
	var ret []string
	seen := map[string]bool{}
	for _, candidate := range t {
		address := candidate.address
		if len(address) != len(parent)+1 || !address.Parent().Equal(parent) {
			continue
		}
		if childType := address.Last().Key; !seen[childType] {
			seen[childType] = true
			ret = append(ret, childType)
		}
	}
	sort.Strings(ret)
	return ret
}

func (t tree) match(pattern model.Address) []*resource {
	var ret []*resource
	for _, candidate := range t {
		if matches(pattern, candidate.address) {
			ret = append(ret, candidate)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return key(ret[i].address) < key(ret[j].address) })
	return ret
}

func (t tree) put(address model.Address, attributes map[string]interface{}) *resource {
	for i := 0; i < len(address); i++ {
		parent := address[:i]
		if _, ok := t[key(parent)]; !ok {
			t[key(parent)] = &resource{address: append(model.Address{}, parent...), attributes: map[string]interface{}{}}
		}
	}
	ret := &resource{address: append(model.Address{}, address...), attributes: map[string]interface{}{}}
	for k, v := range attributes {
		ret.attributes[k] = v
	}
	t[key(address)] = ret
	return ret
}

func (t tree) remove(address model.Address) {
	prefix := key(address) + "/"
	for k := range t {
		if strings.HasPrefix(k, prefix) {
			delete(t, k)
		}
	}
	delete(t, key(address))
}

func (t tree) view(r *resource, depth int, attributesOnly bool) map[string]interface{} {
	ret := make(map[string]interface{}, len(r.attributes))
	for k, v := range r.attributes {
		ret[k] = v
	}
	if attributesOnly {
		return ret
	}
	for _, childType := range t.childTypes(r.address) {
		entries := map[string]interface{}{}
		for _, child := range t.children(r.address, childType) {
			if depth > 0 {
				entries[child.address.Last().Value] = t.view(child, depth-1, false)
			} else {
				entries[child.address.Last().Value] = nil
			}
		}
		ret[childType] = entries
	}
	return ret
}

func isWildcard(address model.Address) bool {
	for _, segment := range address {
		if segment.Value == "*" {
			return true
		}
	}
	return false
}

func matches(pattern, address model.Address) bool {
	if len(pattern) != len(address) {
		return false
	}
	for i := range pattern {
		if pattern[i].Key != address[i].Key {
			return false
		}
		if pattern[i].Value != "*" && pattern[i].Value != address[i].Value {
			return false
		}
	}
	return true
}

func notFound(address model.Address) error {
	return fmt.Errorf("%v: Management resource '%v' not found", notFoundCode, address)
}

func addressValue(address model.Address) []interface{} {
	ret := make([]interface{}, 0, len(address))
	for _, segment := range address {
		ret = append(ret, map[string]interface{}{segment.Key: segment.Value})
	}
	return ret
}
