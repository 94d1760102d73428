package classfile

// ClassFile is the parsed form of one class file. It is built in a single
// pass by Parse and not modified afterwards.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   Attributes

	className      string
	superClassName string
	interfaceNames []string
}

func (cf *ClassFile) ClassName() string { return cf.className }

// SuperClassName is empty for java/lang/Object and module descriptors.
func (cf *ClassFile) SuperClassName() string { return cf.superClassName }

func (cf *ClassFile) InterfaceNames() []string {
	return append([]string(nil), cf.interfaceNames...)
}

func (cf *ClassFile) IsClass() bool {
	return !cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsModule()
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool { return cf.AccessFlags.IsAnnotation() }
func (cf *ClassFile) IsEnum() bool       { return cf.AccessFlags.IsEnum() }
func (cf *ClassFile) IsModule() bool     { return cf.AccessFlags.IsModule() }

func (cf *ClassFile) IsRecord() bool {
	return cf.superClassName == "java/lang/Record" && cf.Attributes.Has("Record")
}

func (cf *ClassFile) GetField(name string) *FieldInfo {
	for i := range cf.Fields {
		if cf.Fields[i].Name == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

// GetMethod finds a method by name, and by descriptor unless it is empty.
func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.Name == name && (descriptor == "" || m.Descriptor == descriptor) {
			return m
		}
	}
	return nil
}

func (cf *ClassFile) GetMethods(name string) []*MethodInfo {
	var methods []*MethodInfo
	for i := range cf.Methods {
		if cf.Methods[i].Name == name {
			methods = append(methods, &cf.Methods[i])
		}
	}
	return methods
}

func (cf *ClassFile) Attribute(name string) (Attribute, bool) {
	return cf.Attributes.Get(name)
}

func (cf *ClassFile) SourceFile() (string, bool) {
	a, ok := find[*SourceFileAttribute](cf.Attributes, "SourceFile")
	if !ok {
		return "", false
	}
	return a.FileName, true
}

func (cf *ClassFile) Signature() (string, bool) {
	a, ok := find[*SignatureAttribute](cf.Attributes, "Signature")
	if !ok {
		return "", false
	}
	return a.Signature, true
}

func (cf *ClassFile) IsDeprecated() bool {
	return cf.Attributes.Has("Deprecated")
}

func (cf *ClassFile) InnerClasses() ([]InnerClass, bool) {
	a, ok := find[*InnerClassesAttribute](cf.Attributes, "InnerClasses")
	if !ok {
		return nil, false
	}
	return a.Classes, true
}

func (cf *ClassFile) BootstrapMethods() ([]BootstrapMethod, bool) {
	a, ok := find[*BootstrapMethodsAttribute](cf.Attributes, "BootstrapMethods")
	if !ok {
		return nil, false
	}
	return a.Methods, true
}

func (cf *ClassFile) PermittedSubclasses() ([]string, bool) {
	a, ok := find[*ClassListAttribute](cf.Attributes, "PermittedSubclasses")
	if !ok {
		return nil, false
	}
	return a.ClassNames, true
}
