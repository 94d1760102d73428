package classfile

func init() {
	defaultRegistry.Register("RuntimeVisibleAnnotations", parseAnnotations)
	defaultRegistry.Register("RuntimeInvisibleAnnotations", parseAnnotations)
	defaultRegistry.Register("RuntimeVisibleParameterAnnotations", parseParameterAnnotations)
	defaultRegistry.Register("RuntimeInvisibleParameterAnnotations", parseParameterAnnotations)
	defaultRegistry.Register("AnnotationDefault", parseAnnotationDefault)
}

const maxElementValueDepth = 256

type Annotation struct {
	Type     string // field descriptor of the annotation interface
	Elements []ElementValuePair
}

type ElementValuePair struct {
	Name  string
	Value ElementValue
}

// ElementValue is one annotation element value. Which field is set depends
// on Tag:
//
//	B C I S Z  Const (int32)
//	J          Const (int64)
//	F          Const (float32)
//	D          Const (float64)
//	s          Const (string)
//	e          EnumType, EnumConst
//	c          Class (return descriptor)
//	@          Annotation
//	[          Array
type ElementValue struct {
	Tag        byte
	Const      any
	EnumType   string
	EnumConst  string
	Class      string
	Annotation *Annotation
	Array      []ElementValue
}

var elementConstTags = map[byte]ConstantTag{
	'B': ConstantInteger,
	'C': ConstantInteger,
	'I': ConstantInteger,
	'S': ConstantInteger,
	'Z': ConstantInteger,
	'J': ConstantLong,
	'F': ConstantFloat,
	'D': ConstantDouble,
	's': ConstantUtf8,
}

type AnnotationsAttribute struct {
	attrName
	Annotations []Annotation
}

type ParameterAnnotationsAttribute struct {
	attrName
	Parameters [][]Annotation
}

type AnnotationDefaultAttribute struct {
	attrName
	Value ElementValue
}

func parseAnnotations(in *AttributeInput) (Attribute, error) {
	anns, err := readAnnotationList(in.Reader, in.Pool)
	if err != nil {
		return nil, err
	}
	return &AnnotationsAttribute{attrName: attrName{in.Name}, Annotations: anns}, nil
}

func parseParameterAnnotations(in *AttributeInput) (Attribute, error) {
	count, err := in.Reader.U1()
	if err != nil {
		return nil, err
	}
	a := &ParameterAnnotationsAttribute{attrName: attrName{in.Name}, Parameters: make([][]Annotation, count)}
	for i := range a.Parameters {
		if a.Parameters[i], err = readAnnotationList(in.Reader, in.Pool); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func parseAnnotationDefault(in *AttributeInput) (Attribute, error) {
	v, err := readElementValue(in.Reader, in.Pool, 0)
	if err != nil {
		return nil, err
	}
	return &AnnotationDefaultAttribute{attrName: attrName{in.Name}, Value: v}, nil
}

func readAnnotationList(r *Reader, cp *ConstantPool) ([]Annotation, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	anns := make([]Annotation, count)
	for i := range anns {
		if err := readAnnotation(r, cp, &anns[i], 0); err != nil {
			return nil, err
		}
	}
	return anns, nil
}

func readAnnotation(r *Reader, cp *ConstantPool, ann *Annotation, depth int) error {
	typeIndex, err := r.U2()
	if err != nil {
		return err
	}
	if ann.Type, err = cp.Utf8(typeIndex); err != nil {
		return err
	}
	count, err := r.U2()
	if err != nil {
		return err
	}
	ann.Elements = make([]ElementValuePair, count)
	for i := range ann.Elements {
		nameIndex, err := r.U2()
		if err != nil {
			return err
		}
		if ann.Elements[i].Name, err = cp.Utf8(nameIndex); err != nil {
			return err
		}
		if ann.Elements[i].Value, err = readElementValue(r, cp, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func readElementValue(r *Reader, cp *ConstantPool, depth int) (ElementValue, error) {
	start := r.Pos()
	if depth > maxElementValueDepth {
		return ElementValue{}, newError(ErrInvalidClassFile, start, "element values nested deeper than %d", maxElementValueDepth)
	}
	tag, err := r.U1()
	if err != nil {
		return ElementValue{}, err
	}
	ev := ElementValue{Tag: tag}

	if kind, ok := elementConstTags[tag]; ok {
		index, err := r.U2()
		if err != nil {
			return ev, err
		}
		c, err := cp.Resolve(index, kind)
		if err != nil {
			return ev, err
		}
		switch c := c.(type) {
		case *ConstantIntegerInfo:
			ev.Const = c.Value
		case *ConstantLongInfo:
			ev.Const = c.Value
		case *ConstantFloatInfo:
			ev.Const = c.Value
		case *ConstantDoubleInfo:
			ev.Const = c.Value
		case *ConstantUtf8Info:
			ev.Const = c.Value
		}
		return ev, nil
	}

	switch tag {
	case 'e':
		typeIndex, err := r.U2()
		if err != nil {
			return ev, err
		}
		constIndex, err := r.U2()
		if err != nil {
			return ev, err
		}
		if ev.EnumType, err = cp.Utf8(typeIndex); err != nil {
			return ev, err
		}
		if ev.EnumConst, err = cp.Utf8(constIndex); err != nil {
			return ev, err
		}
	case 'c':
		index, err := r.U2()
		if err != nil {
			return ev, err
		}
		if ev.Class, err = cp.Utf8(index); err != nil {
			return ev, err
		}
	case '@':
		ev.Annotation = &Annotation{}
		if err := readAnnotation(r, cp, ev.Annotation, depth+1); err != nil {
			return ev, err
		}
	case '[':
		count, err := r.U2()
		if err != nil {
			return ev, err
		}
		ev.Array = make([]ElementValue, count)
		for i := range ev.Array {
			if ev.Array[i], err = readElementValue(r, cp, depth+1); err != nil {
				return ev, err
			}
		}
	default:
		return ev, newError(ErrInvalidClassFile, start, "unknown element value tag %q", tag)
	}
	return ev, nil
}
