package classfile

import "fmt"

// Member is the part shared by fields and methods.
type Member struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Name            string
	Descriptor      string
	Attributes      Attributes
}

func (m *Member) Attribute(name string) (Attribute, bool) {
	return m.Attributes.Get(name)
}

func (m *Member) Signature() (string, bool) {
	a, ok := find[*SignatureAttribute](m.Attributes, "Signature")
	if !ok {
		return "", false
	}
	return a.Signature, true
}

// IsDeprecated reports whether the member carries a Deprecated attribute.
func (m *Member) IsDeprecated() bool {
	return m.Attributes.Has("Deprecated")
}

// IsSynthetic reports the synthetic flag or a Synthetic attribute.
func (m *Member) IsSynthetic() bool {
	return m.AccessFlags.IsSynthetic() || m.Attributes.Has("Synthetic")
}

func (m *Member) IsPublic() bool    { return m.AccessFlags.IsPublic() }
func (m *Member) IsPrivate() bool   { return m.AccessFlags.IsPrivate() }
func (m *Member) IsProtected() bool { return m.AccessFlags.IsProtected() }
func (m *Member) IsStatic() bool    { return m.AccessFlags.IsStatic() }
func (m *Member) IsFinal() bool     { return m.AccessFlags.IsFinal() }

type FieldInfo struct {
	Member
}

func (f *FieldInfo) IsVolatile() bool  { return f.AccessFlags&AccVolatile != 0 }
func (f *FieldInfo) IsTransient() bool { return f.AccessFlags&AccTransient != 0 }
func (f *FieldInfo) IsEnum() bool      { return f.AccessFlags.IsEnum() }

// ConstantValue returns the value of the ConstantValue attribute.
func (f *FieldInfo) ConstantValue() (any, bool) {
	a, ok := find[*ConstantValueAttribute](f.Attributes, "ConstantValue")
	if !ok {
		return nil, false
	}
	return a.Value, true
}

func (f *FieldInfo) ParsedDescriptor() (*FieldType, error) {
	return ParseFieldDescriptor(f.Descriptor)
}

type MethodInfo struct {
	Member
}

func (m *MethodInfo) IsSynchronized() bool { return m.AccessFlags&AccSynchronized != 0 }
func (m *MethodInfo) IsBridge() bool       { return m.AccessFlags&AccBridge != 0 }
func (m *MethodInfo) IsVarargs() bool      { return m.AccessFlags&AccVarargs != 0 }
func (m *MethodInfo) IsNative() bool       { return m.AccessFlags&AccNative != 0 }
func (m *MethodInfo) IsAbstract() bool     { return m.AccessFlags.IsAbstract() }

func (m *MethodInfo) IsConstructor() bool       { return m.Name == "<init>" }
func (m *MethodInfo) IsStaticInitializer() bool { return m.Name == "<clinit>" }

func (m *MethodInfo) Code() (*CodeAttribute, bool) {
	return find[*CodeAttribute](m.Attributes, "Code")
}

// Exceptions returns the class names listed in the throws clause.
func (m *MethodInfo) Exceptions() ([]string, bool) {
	a, ok := find[*ExceptionsAttribute](m.Attributes, "Exceptions")
	if !ok {
		return nil, false
	}
	return a.ClassNames, true
}

func (m *MethodInfo) ParsedDescriptor() (*MethodDescriptor, error) {
	return ParseMethodDescriptor(m.Descriptor)
}

func readMember(r *Reader, cp *ConstantPool, reg *Registry, kind string) (Member, error) {
	var m Member
	flags, err := r.U2()
	if err != nil {
		return m, err
	}
	m.AccessFlags = AccessFlags(flags)
	if m.NameIndex, err = r.U2(); err != nil {
		return m, err
	}
	if m.DescriptorIndex, err = r.U2(); err != nil {
		return m, err
	}
	if m.Name, err = cp.Utf8(m.NameIndex); err != nil {
		return m, fmt.Errorf("name: %w", err)
	}
	if m.Descriptor, err = cp.Utf8(m.DescriptorIndex); err != nil {
		return m, fmt.Errorf("descriptor: %w", err)
	}
	if m.Attributes, err = reg.readAttributes(r, cp, kind+" "+m.Name); err != nil {
		return m, err
	}
	return m, nil
}
