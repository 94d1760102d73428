package classfile

func init() {
	defaultRegistry.Register("Code", parseCode)
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
	// CatchClass is the caught class, empty for a catch-all handler.
	CatchClass string
}

type CodeAttribute struct {
	attrName
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     Attributes
}

func (c *CodeAttribute) LineNumberTable() (*LineNumberTableAttribute, bool) {
	return find[*LineNumberTableAttribute](c.Attributes, "LineNumberTable")
}

func (c *CodeAttribute) LocalVariableTable() (*LocalVariableTableAttribute, bool) {
	return find[*LocalVariableTableAttribute](c.Attributes, "LocalVariableTable")
}

func parseCode(in *AttributeInput) (Attribute, error) {
	r := in.Reader
	code := &CodeAttribute{attrName: attrName{in.Name}}

	var err error
	if code.MaxStack, err = r.U2(); err != nil {
		return nil, err
	}
	if code.MaxLocals, err = r.U2(); err != nil {
		return nil, err
	}
	codeLength, err := r.U4()
	if err != nil {
		return nil, err
	}
	if uint64(codeLength) > uint64(in.Length) {
		return nil, newError(ErrAttributeLengthMismatch, r.Pos()-4, "code length %d exceeds attribute length %d", codeLength, in.Length)
	}
	if code.Code, err = r.Bytes(int(codeLength)); err != nil {
		return nil, err
	}

	tableLength, err := r.U2()
	if err != nil {
		return nil, err
	}
	code.ExceptionTable = make([]ExceptionTableEntry, tableLength)
	for i := range code.ExceptionTable {
		e := &code.ExceptionTable[i]
		for _, dst := range []*uint16{&e.StartPC, &e.EndPC, &e.HandlerPC, &e.CatchType} {
			if *dst, err = r.U2(); err != nil {
				return nil, err
			}
		}
		if e.CatchClass, err = in.Pool.OptionalClassName(e.CatchType); err != nil {
			return nil, err
		}
	}

	if code.Attributes, err = in.ReadAttributes(); err != nil {
		return nil, err
	}
	return code, nil
}
