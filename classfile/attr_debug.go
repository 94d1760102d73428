package classfile

func init() {
	defaultRegistry.Register("SourceFile", parseSourceFile)
	defaultRegistry.Register("SourceDebugExtension", parseSourceDebugExtension)
	defaultRegistry.Register("LineNumberTable", parseLineNumberTable)
	defaultRegistry.Register("LocalVariableTable", parseLocalVariableTable)
	defaultRegistry.Register("LocalVariableTypeTable", parseLocalVariableTable)
}

type SourceFileAttribute struct {
	attrName
	SourceFileIndex uint16
	FileName        string
}

func parseSourceFile(in *AttributeInput) (Attribute, error) {
	index, err := in.Reader.U2()
	if err != nil {
		return nil, err
	}
	name, err := in.Pool.Utf8(index)
	if err != nil {
		return nil, err
	}
	return &SourceFileAttribute{attrName: attrName{in.Name}, SourceFileIndex: index, FileName: name}, nil
}

type SourceDebugExtensionAttribute struct {
	attrName
	DebugExtension []byte
}

func parseSourceDebugExtension(in *AttributeInput) (Attribute, error) {
	data, err := in.Reader.Bytes(int(in.Length))
	if err != nil {
		return nil, err
	}
	return &SourceDebugExtensionAttribute{attrName: attrName{in.Name}, DebugExtension: data}, nil
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LineNumberTableAttribute struct {
	attrName
	Entries []LineNumberEntry
}

// LineFor returns the source line of the entry covering pc.
func (a *LineNumberTableAttribute) LineFor(pc uint16) (uint16, bool) {
	var (
		line  uint16
		found bool
		best  uint16
	)
	for _, e := range a.Entries {
		if e.StartPC <= pc && (!found || e.StartPC >= best) {
			line, best, found = e.LineNumber, e.StartPC, true
		}
	}
	return line, found
}

func parseLineNumberTable(in *AttributeInput) (Attribute, error) {
	count, err := in.Reader.U2()
	if err != nil {
		return nil, err
	}
	a := &LineNumberTableAttribute{attrName: attrName{in.Name}, Entries: make([]LineNumberEntry, count)}
	for i := range a.Entries {
		if a.Entries[i].StartPC, err = in.Reader.U2(); err != nil {
			return nil, err
		}
		if a.Entries[i].LineNumber, err = in.Reader.U2(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// LocalVariable is an entry of a LocalVariableTable or, with Descriptor
// holding a generic signature, a LocalVariableTypeTable.
type LocalVariable struct {
	StartPC    uint16
	Length     uint16
	Name       string
	Descriptor string
	Index      uint16
}

type LocalVariableTableAttribute struct {
	attrName
	Variables []LocalVariable
}

func parseLocalVariableTable(in *AttributeInput) (Attribute, error) {
	r := in.Reader
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	a := &LocalVariableTableAttribute{attrName: attrName{in.Name}, Variables: make([]LocalVariable, count)}
	for i := range a.Variables {
		v := &a.Variables[i]
		var nameIndex, descIndex uint16
		for _, dst := range []*uint16{&v.StartPC, &v.Length, &nameIndex, &descIndex, &v.Index} {
			if *dst, err = r.U2(); err != nil {
				return nil, err
			}
		}
		if v.Name, err = in.Pool.Utf8(nameIndex); err != nil {
			return nil, err
		}
		if v.Descriptor, err = in.Pool.Utf8(descIndex); err != nil {
			return nil, err
		}
	}
	return a, nil
}
