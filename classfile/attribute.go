package classfile

// Attribute is a parsed class, member, code or record component attribute.
type Attribute interface {
	Name() string
}

type attrName struct {
	name string
}

func (a attrName) Name() string { return a.name }

// UnknownAttribute holds an attribute for which no parser is registered.
type UnknownAttribute struct {
	attrName
	Data []byte
}

func parseUnknownAttribute(in *AttributeInput) (Attribute, error) {
	data, err := in.Reader.Bytes(int(in.Length))
	if err != nil {
		return nil, err
	}
	return &UnknownAttribute{attrName: attrName{in.Name}, Data: data}, nil
}

// Attributes is an ordered attribute list. Lookups return the first
// attribute with a given name.
type Attributes []Attribute

func (as Attributes) Get(name string) (Attribute, bool) {
	for _, a := range as {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

func (as Attributes) Has(name string) bool {
	_, ok := as.Get(name)
	return ok
}

func (as Attributes) Names() []string {
	names := make([]string, len(as))
	for i, a := range as {
		names[i] = a.Name()
	}
	return names
}

// FindAttribute returns the first attribute of type T.
func FindAttribute[T Attribute](as Attributes) (T, bool) {
	for _, a := range as {
		if t, ok := a.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// find is Get narrowed to a concrete type.
func find[T Attribute](as Attributes, name string) (T, bool) {
	a, ok := as.Get(name)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := a.(T)
	return t, ok
}
