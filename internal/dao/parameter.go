package dao

// Parameter is a named list criterion.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a parameter with one or several values.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// Match reports whether value satisfies every parameter named name. Other
// parameters are ignored.
func Match(name, value string, parameters []*Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != name {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			if value != actual {
				return false
			}
		case []string:
			found := false
			for _, candidate := range actual {
				if candidate == value {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}
