package classfile

func init() {
	defaultRegistry.Register("ConstantValue", parseConstantValue)
	defaultRegistry.Register("Exceptions", parseExceptions)
	defaultRegistry.Register("Signature", parseSignature)
	defaultRegistry.Register("Deprecated", parseMarker)
	defaultRegistry.Register("Synthetic", parseMarker)
	defaultRegistry.Register("MethodParameters", parseMethodParameters)
}

// ConstantValueAttribute holds the initial value of a static field as an
// int32, float32, int64, float64 or string.
type ConstantValueAttribute struct {
	attrName
	ValueIndex uint16
	Value      any
}

func parseConstantValue(in *AttributeInput) (Attribute, error) {
	index, err := in.Reader.U2()
	if err != nil {
		return nil, err
	}
	v, err := in.Pool.Loadable(index)
	if err != nil {
		return nil, err
	}
	return &ConstantValueAttribute{attrName: attrName{in.Name}, ValueIndex: index, Value: v}, nil
}

type ExceptionsAttribute struct {
	attrName
	ExceptionIndexTable []uint16
	ClassNames          []string
}

func parseExceptions(in *AttributeInput) (Attribute, error) {
	indices, names, err := readClassList(in)
	if err != nil {
		return nil, err
	}
	return &ExceptionsAttribute{attrName: attrName{in.Name}, ExceptionIndexTable: indices, ClassNames: names}, nil
}

type SignatureAttribute struct {
	attrName
	SignatureIndex uint16
	Signature      string
}

func parseSignature(in *AttributeInput) (Attribute, error) {
	index, err := in.Reader.U2()
	if err != nil {
		return nil, err
	}
	sig, err := in.Pool.Utf8(index)
	if err != nil {
		return nil, err
	}
	return &SignatureAttribute{attrName: attrName{in.Name}, SignatureIndex: index, Signature: sig}, nil
}

// MarkerAttribute is an attribute without payload, such as Deprecated or
// Synthetic. A non-empty payload is reported as a length mismatch.
type MarkerAttribute struct {
	attrName
}

func parseMarker(in *AttributeInput) (Attribute, error) {
	return &MarkerAttribute{attrName{in.Name}}, nil
}

type MethodParameter struct {
	Name        string // empty for a formal parameter with no name
	AccessFlags AccessFlags
}

type MethodParametersAttribute struct {
	attrName
	Parameters []MethodParameter
}

func parseMethodParameters(in *AttributeInput) (Attribute, error) {
	count, err := in.Reader.U1()
	if err != nil {
		return nil, err
	}
	a := &MethodParametersAttribute{attrName: attrName{in.Name}, Parameters: make([]MethodParameter, count)}
	for i := range a.Parameters {
		nameIndex, err := in.Reader.U2()
		if err != nil {
			return nil, err
		}
		flags, err := in.Reader.U2()
		if err != nil {
			return nil, err
		}
		if nameIndex != 0 {
			if a.Parameters[i].Name, err = in.Pool.Utf8(nameIndex); err != nil {
				return nil, err
			}
		}
		a.Parameters[i].AccessFlags = AccessFlags(flags)
	}
	return a, nil
}

func readU2s(r *Reader) ([]uint16, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		if out[i], err = r.U2(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readClassList reads a u2-counted list of Class constant indices.
func readClassList(in *AttributeInput) ([]uint16, []string, error) {
	indices, err := readU2s(in.Reader)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(indices))
	for i, index := range indices {
		if names[i], err = in.Pool.ClassName(index); err != nil {
			return nil, nil, err
		}
	}
	return indices, names, nil
}
