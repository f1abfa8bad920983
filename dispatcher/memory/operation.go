package memory

import (
	"errors"
	"fmt"

	"github.com/viant/mgmtflow/model"
)

func execute(t tree, faults []Fault, operation *model.Operation) (interface{}, error) {
	for _, fault := range faults {
		if description := fault(operation); description != "" {
			return nil, errors.New(description)
		}
	}
	switch operation.Name {
	case model.OpComposite:
		return composite(t, faults, operation)
	case model.OpReadResource:
		return readResource(t, operation)
	case model.OpReadChildrenNames:
		return readChildrenNames(t, operation)
	case model.OpReadChildrenResources:
		return readChildrenResources(t, operation)
	case model.OpReadAttribute:
		r, err := t.lookup(operation.Address)
		if err != nil {
			return nil, err
		}
		return r.attributes[operation.Param(model.AttrName).AsString()], nil
	case model.OpWriteAttribute:
		r, err := t.lookup(operation.Address)
		if err != nil {
			return nil, err
		}
		r.attributes[operation.Param(model.AttrName).AsString()] = operation.Param(model.AttrValue).Value()
		return nil, nil
	case model.OpUndefineAttribute:
		r, err := t.lookup(operation.Address)
		if err != nil {
			return nil, err
		}
		delete(r.attributes, operation.Param(model.AttrName).AsString())
		return nil, nil
	case model.OpAdd:
		return add(t, operation)
	case model.OpRemove:
		if _, err := t.lookup(operation.Address); err != nil || operation.Address.IsRoot() {
			return nil, notFound(operation.Address)
		}
		t.remove(operation.Address)
		return nil, nil
	case model.OpFullReplaceDeployment:
		return fullReplace(t, operation)
	case model.OpDeploy, model.OpUndeploy:
		r, err := t.lookup(operation.Address)
		if err != nil {
			return nil, err
		}
		r.attributes[model.AttrEnabled] = operation.Name == model.OpDeploy
		return nil, nil
	case model.OpExplode:
		return explode(t, operation)
	}
	return nil, fmt.Errorf("WFLYCTL0031: No operation named '%v' exists at address %v", operation.Name, operation.Address)
}

func composite(t tree, faults []Fault, operation *model.Operation) (interface{}, error) {
	steps, _ := operation.Params[model.AttrSteps].([]*model.Operation)
	result := make(map[string]interface{}, len(steps))
	for i, step := range steps {
		value, err := execute(t, faults, step)
		if err != nil {
			return nil, &compositeFailure{description: map[string]interface{}{
				compositeCode + ": Composite operation failed and was rolled back. Steps that failed:": map[string]interface{}{
					"Operation " + model.StepKey(i): err.Error(),
				},
			}}
		}
		entry := map[string]interface{}{model.AttrOutcome: model.OutcomeSuccess}
		if value != nil {
			entry[model.AttrResult] = value
		}
		result[model.StepKey(i)] = entry
	}
	return result, nil
}

func depthOf(operation *model.Operation) int {
	if operation.Param(model.AttrRecursive).AsBool() {
		return unlimitedDepth
	}
	return operation.Param(model.AttrRecursiveDepth).AsInt()
}

func readResource(t tree, operation *model.Operation) (interface{}, error) {
	depth := depthOf(operation)
	attributesOnly := operation.Param(model.AttrAttributesOnly).AsBool()
	if isWildcard(operation.Address) {
		var ret []interface{}
		for _, r := range t.match(operation.Address) {
			ret = append(ret, map[string]interface{}{
				model.AttrAddress: addressValue(r.address),
				model.AttrOutcome: model.OutcomeSuccess,
				model.AttrResult:  t.view(r, depth, attributesOnly),
			})
		}
		if ret == nil {
			ret = []interface{}{}
		}
		return ret, nil
	}
	r, err := t.lookup(operation.Address)
	if err != nil {
		return nil, err
	}
	return t.view(r, depth, attributesOnly), nil
}

func readChildrenNames(t tree, operation *model.Operation) (interface{}, error) {
	if _, err := t.lookup(operation.Address); err != nil {
		return nil, err
	}
	childType := operation.Param(model.AttrChildType).AsString()
	ret := []interface{}{}
	for _, child := range t.children(operation.Address, childType) {
		ret = append(ret, child.address.Last().Value)
	}
	return ret, nil
}

func readChildrenResources(t tree, operation *model.Operation) (interface{}, error) {
	if _, err := t.lookup(operation.Address); err != nil {
		return nil, err
	}
	depth := depthOf(operation)
	childType := operation.Param(model.AttrChildType).AsString()
	ret := map[string]interface{}{}
	for _, child := range t.children(operation.Address, childType) {
		ret[child.address.Last().Value] = t.view(child, depth, false)
	}
	return ret, nil
}

func add(t tree, operation *model.Operation) (interface{}, error) {
	if operation.Address.IsRoot() {
		return nil, fmt.Errorf("%v: Duplicate resource %v", duplicateCode, operation.Address)
	}
	if _, ok := t[key(operation.Address)]; ok {
		return nil, fmt.Errorf("%v: Duplicate resource %v", duplicateCode, operation.Address)
	}
	if _, err := t.lookup(operation.Address.Parent()); err != nil {
		return nil, err
	}
	attributes := make(map[string]interface{}, len(operation.Params))
	for k, v := range operation.Params {
		attributes[k] = v
	}
	if operation.Address.Last().Key == model.ResDeployment {
		attributes[model.AttrName] = operation.Address.Last().Value
		if _, ok := attributes[model.AttrEnabled]; !ok {
			attributes[model.AttrEnabled] = false
		}
	}
	t.put(operation.Address, attributes)
	return nil, nil
}

func fullReplace(t tree, operation *model.Operation) (interface{}, error) {
	name := operation.Param(model.AttrName).AsString()
	r, err := t.lookup(model.NewAddress(model.ResDeployment, name))
	if err != nil {
		return nil, err
	}
	for k, v := range operation.Params {
		if k == model.AttrName {
			continue
		}
		r.attributes[k] = v
	}
	delete(r.attributes, model.AttrArchive)
	delete(r.attributes, explodedPaths)
	return nil, nil
}

const explodedPaths = "exploded-paths"

func explode(t tree, operation *model.Operation) (interface{}, error) {
	r, err := t.lookup(operation.Address)
	if err != nil {
		return nil, err
	}
	if model.NewNode(r.attributes[model.AttrEnabled]).AsBool() {
		return nil, fmt.Errorf("Cannot explode enabled deployment %v", operation.Address.Last().Value)
	}
	path := operation.Param(model.AttrPath).AsString()
	if path == "" {
		if archive, ok := r.attributes[model.AttrArchive]; ok && archive == false {
			return nil, errors.New(alreadyExplodedMsg)
		}
		r.attributes[model.AttrArchive] = false
		return nil, nil
	}
	exploded, _ := r.attributes[explodedPaths].([]interface{})
	for _, candidate := range exploded {
		if candidate == path {
			return nil, errors.New(alreadyExplodedMsg)
		}
	}
	r.attributes[explodedPaths] = append(append([]interface{}{}, exploded...), path)
	r.attributes[model.AttrArchive] = false
	return nil, nil
}
