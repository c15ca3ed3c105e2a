package dao

// Parameter is an optional List filter, interpreted by the implementation.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a filter parameter; a single value is stored as a
// scalar, multiple values as a slice.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
