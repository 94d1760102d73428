package classfile

func init() {
	defaultRegistry.Register("InnerClasses", parseInnerClasses)
	defaultRegistry.Register("EnclosingMethod", parseEnclosingMethod)
	defaultRegistry.Register("BootstrapMethods", parseBootstrapMethods)
	defaultRegistry.Register("NestHost", parseClassRef)
	defaultRegistry.Register("ModuleMainClass", parseClassRef)
	defaultRegistry.Register("NestMembers", parseClassList)
	defaultRegistry.Register("PermittedSubclasses", parseClassList)
	defaultRegistry.Register("ModulePackages", parseModulePackages)
	defaultRegistry.Register("Record", parseRecord)
}

type InnerClass struct {
	InnerClass  string
	OuterClass  string // empty for local and anonymous classes
	InnerName   string // empty for anonymous classes
	AccessFlags AccessFlags
}

type InnerClassesAttribute struct {
	attrName
	Classes []InnerClass
}

func parseInnerClasses(in *AttributeInput) (Attribute, error) {
	r := in.Reader
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	a := &InnerClassesAttribute{attrName: attrName{in.Name}, Classes: make([]InnerClass, count)}
	for i := range a.Classes {
		var inner, outer, name, flags uint16
		for _, dst := range []*uint16{&inner, &outer, &name, &flags} {
			if *dst, err = r.U2(); err != nil {
				return nil, err
			}
		}
		c := &a.Classes[i]
		c.AccessFlags = AccessFlags(flags)
		if c.InnerClass, err = in.Pool.ClassName(inner); err != nil {
			return nil, err
		}
		if c.OuterClass, err = in.Pool.OptionalClassName(outer); err != nil {
			return nil, err
		}
		if name != 0 {
			if c.InnerName, err = in.Pool.Utf8(name); err != nil {
				return nil, err
			}
		}
	}
	return a, nil
}

type EnclosingMethodAttribute struct {
	attrName
	ClassName string
	// MethodName and MethodDescriptor are empty when the class is not
	// enclosed by a method or constructor.
	MethodName       string
	MethodDescriptor string
}

func parseEnclosingMethod(in *AttributeInput) (Attribute, error) {
	classIndex, err := in.Reader.U2()
	if err != nil {
		return nil, err
	}
	methodIndex, err := in.Reader.U2()
	if err != nil {
		return nil, err
	}
	a := &EnclosingMethodAttribute{attrName: attrName{in.Name}}
	if a.ClassName, err = in.Pool.ClassName(classIndex); err != nil {
		return nil, err
	}
	if methodIndex != 0 {
		if a.MethodName, a.MethodDescriptor, err = in.Pool.NameAndType(methodIndex); err != nil {
			return nil, err
		}
	}
	return a, nil
}

type BootstrapMethod struct {
	MethodRef uint16
	Arguments []uint16
}

type BootstrapMethodsAttribute struct {
	attrName
	Methods []BootstrapMethod
}

func parseBootstrapMethods(in *AttributeInput) (Attribute, error) {
	count, err := in.Reader.U2()
	if err != nil {
		return nil, err
	}
	a := &BootstrapMethodsAttribute{attrName: attrName{in.Name}, Methods: make([]BootstrapMethod, count)}
	for i := range a.Methods {
		m := &a.Methods[i]
		if m.MethodRef, err = in.Reader.U2(); err != nil {
			return nil, err
		}
		if _, err = in.Pool.MethodHandle(m.MethodRef); err != nil {
			return nil, err
		}
		if m.Arguments, err = readU2s(in.Reader); err != nil {
			return nil, err
		}
		for _, arg := range m.Arguments {
			c, err := in.Pool.Entry(arg)
			if err != nil {
				return nil, err
			}
			switch c.Tag() {
			case ConstantInteger, ConstantFloat, ConstantLong, ConstantDouble,
				ConstantClass, ConstantString, ConstantMethodHandle, ConstantMethodType, ConstantDynamic:
			default:
				return nil, poolError("bootstrap argument %d is %v, expected a loadable constant", arg, c.Tag())
			}
		}
	}
	return a, nil
}

// ClassRefAttribute names a single class: NestHost or ModuleMainClass.
type ClassRefAttribute struct {
	attrName
	ClassIndex uint16
	ClassName  string
}

func parseClassRef(in *AttributeInput) (Attribute, error) {
	index, err := in.Reader.U2()
	if err != nil {
		return nil, err
	}
	name, err := in.Pool.ClassName(index)
	if err != nil {
		return nil, err
	}
	return &ClassRefAttribute{attrName: attrName{in.Name}, ClassIndex: index, ClassName: name}, nil
}

// ClassListAttribute names a list of classes: NestMembers or
// PermittedSubclasses.
type ClassListAttribute struct {
	attrName
	ClassIndices []uint16
	ClassNames   []string
}

func parseClassList(in *AttributeInput) (Attribute, error) {
	indices, names, err := readClassList(in)
	if err != nil {
		return nil, err
	}
	return &ClassListAttribute{attrName: attrName{in.Name}, ClassIndices: indices, ClassNames: names}, nil
}

type ModulePackagesAttribute struct {
	attrName
	Packages []string
}

func parseModulePackages(in *AttributeInput) (Attribute, error) {
	indices, err := readU2s(in.Reader)
	if err != nil {
		return nil, err
	}
	a := &ModulePackagesAttribute{attrName: attrName{in.Name}, Packages: make([]string, len(indices))}
	for i, index := range indices {
		if a.Packages[i], err = in.Pool.PackageName(index); err != nil {
			return nil, err
		}
	}
	return a, nil
}

type RecordComponent struct {
	Name       string
	Descriptor string
	Attributes Attributes
}

type RecordAttribute struct {
	attrName
	Components []RecordComponent
}

func parseRecord(in *AttributeInput) (Attribute, error) {
	count, err := in.Reader.U2()
	if err != nil {
		return nil, err
	}
	a := &RecordAttribute{attrName: attrName{in.Name}, Components: make([]RecordComponent, count)}
	for i := range a.Components {
		c := &a.Components[i]
		nameIndex, err := in.Reader.U2()
		if err != nil {
			return nil, err
		}
		descIndex, err := in.Reader.U2()
		if err != nil {
			return nil, err
		}
		if c.Name, err = in.Pool.Utf8(nameIndex); err != nil {
			return nil, err
		}
		if c.Descriptor, err = in.Pool.Utf8(descIndex); err != nil {
			return nil, err
		}
		if c.Attributes, err = in.ReadAttributes(); err != nil {
			return nil, err
		}
	}
	return a, nil
}
