package classfile

import "encoding/binary"

type Constant interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }

// ConstantRefInfo is a Fieldref, Methodref or InterfaceMethodref.
type ConstantRefInfo struct {
	Kind             ConstantTag
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantRefInfo) Tag() ConstantTag { return c.Kind }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }

// ConstantDynamicInfo is a Dynamic or InvokeDynamic constant.
type ConstantDynamicInfo struct {
	Kind                     ConstantTag
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return c.Kind }

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }

// ConstantPool is the 1-indexed constant table of a class file. Slot 0 and
// the slot after every Long or Double hold nil.
type ConstantPool struct {
	entries []Constant
}

// NewConstantPool builds a pool from entries in slot order, starting at
// slot 1. A nil entry marks an unusable slot.
func NewConstantPool(entries ...Constant) *ConstantPool {
	return &ConstantPool{entries: append([]Constant{nil}, entries...)}
}

// Count returns the constant_pool_count of the class file, one more than
// the highest valid index.
func (cp *ConstantPool) Count() int {
	return len(cp.entries)
}

// Entry returns the constant at index regardless of its kind.
func (cp *ConstantPool) Entry(index uint16) (Constant, error) {
	if index == 0 {
		return nil, poolError("index 0 is reserved")
	}
	if int(index) >= len(cp.entries) {
		return nil, poolError("index %d out of range (count %d)", index, len(cp.entries))
	}
	c := cp.entries[index]
	if c == nil {
		return nil, poolError("index %d is the unusable slot after a wide constant", index)
	}
	return c, nil
}

// Resolve returns the constant at index if it has the expected tag.
func (cp *ConstantPool) Resolve(index uint16, tag ConstantTag) (Constant, error) {
	c, err := cp.Entry(index)
	if err != nil {
		return nil, err
	}
	if c.Tag() != tag {
		return nil, poolError("index %d is %v, expected %v", index, c.Tag(), tag)
	}
	return c, nil
}

func (cp *ConstantPool) Utf8(index uint16) (string, error) {
	c, err := cp.Resolve(index, ConstantUtf8)
	if err != nil {
		return "", err
	}
	return c.(*ConstantUtf8Info).Value, nil
}

// ClassName returns the internal name of the Class constant at index.
func (cp *ConstantPool) ClassName(index uint16) (string, error) {
	c, err := cp.Resolve(index, ConstantClass)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.(*ConstantClassInfo).NameIndex)
}

// OptionalClassName is ClassName except that index 0 yields "".
func (cp *ConstantPool) OptionalClassName(index uint16) (string, error) {
	if index == 0 {
		return "", nil
	}
	return cp.ClassName(index)
}

// StringValue returns the text of the String constant at index.
func (cp *ConstantPool) StringValue(index uint16) (string, error) {
	c, err := cp.Resolve(index, ConstantString)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.(*ConstantStringInfo).StringIndex)
}

func (cp *ConstantPool) Integer(index uint16) (int32, error) {
	c, err := cp.Resolve(index, ConstantInteger)
	if err != nil {
		return 0, err
	}
	return c.(*ConstantIntegerInfo).Value, nil
}

func (cp *ConstantPool) Float(index uint16) (float32, error) {
	c, err := cp.Resolve(index, ConstantFloat)
	if err != nil {
		return 0, err
	}
	return c.(*ConstantFloatInfo).Value, nil
}

func (cp *ConstantPool) Long(index uint16) (int64, error) {
	c, err := cp.Resolve(index, ConstantLong)
	if err != nil {
		return 0, err
	}
	return c.(*ConstantLongInfo).Value, nil
}

func (cp *ConstantPool) Double(index uint16) (float64, error) {
	c, err := cp.Resolve(index, ConstantDouble)
	if err != nil {
		return 0, err
	}
	return c.(*ConstantDoubleInfo).Value, nil
}

func (cp *ConstantPool) NameAndType(index uint16) (name, descriptor string, err error) {
	c, err := cp.Resolve(index, ConstantNameAndType)
	if err != nil {
		return "", "", err
	}
	nt := c.(*ConstantNameAndTypeInfo)
	if name, err = cp.Utf8(nt.NameIndex); err != nil {
		return "", "", err
	}
	if descriptor, err = cp.Utf8(nt.DescriptorIndex); err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// MemberRef is a resolved Fieldref, Methodref or InterfaceMethodref.
type MemberRef struct {
	Kind       ConstantTag
	ClassName  string
	Name       string
	Descriptor string
}

func (cp *ConstantPool) MemberRef(index uint16) (MemberRef, error) {
	c, err := cp.Entry(index)
	if err != nil {
		return MemberRef{}, err
	}
	ref, ok := c.(*ConstantRefInfo)
	if !ok {
		return MemberRef{}, poolError("index %d is %v, expected a member reference", index, c.Tag())
	}
	m := MemberRef{Kind: ref.Kind}
	if m.ClassName, err = cp.ClassName(ref.ClassIndex); err != nil {
		return MemberRef{}, err
	}
	if m.Name, m.Descriptor, err = cp.NameAndType(ref.NameAndTypeIndex); err != nil {
		return MemberRef{}, err
	}
	return m, nil
}

func (cp *ConstantPool) MethodHandle(index uint16) (*ConstantMethodHandleInfo, error) {
	c, err := cp.Resolve(index, ConstantMethodHandle)
	if err != nil {
		return nil, err
	}
	return c.(*ConstantMethodHandleInfo), nil
}

// MethodType returns the descriptor of the MethodType constant at index.
func (cp *ConstantPool) MethodType(index uint16) (string, error) {
	c, err := cp.Resolve(index, ConstantMethodType)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.(*ConstantMethodTypeInfo).DescriptorIndex)
}

func (cp *ConstantPool) ModuleName(index uint16) (string, error) {
	c, err := cp.Resolve(index, ConstantModule)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.(*ConstantModuleInfo).NameIndex)
}

func (cp *ConstantPool) PackageName(index uint16) (string, error) {
	c, err := cp.Resolve(index, ConstantPackage)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.(*ConstantPackageInfo).NameIndex)
}

// Loadable returns the Go value of a primitive or String constant: int32,
// float32, int64, float64 or string.
func (cp *ConstantPool) Loadable(index uint16) (any, error) {
	c, err := cp.Entry(index)
	if err != nil {
		return nil, err
	}
	switch c := c.(type) {
	case *ConstantIntegerInfo:
		return c.Value, nil
	case *ConstantFloatInfo:
		return c.Value, nil
	case *ConstantLongInfo:
		return c.Value, nil
	case *ConstantDoubleInfo:
		return c.Value, nil
	case *ConstantStringInfo:
		return cp.Utf8(c.StringIndex)
	}
	return nil, poolError("index %d is %v, expected a loadable constant", index, c.Tag())
}

func readConstantPool(r *Reader) (*ConstantPool, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, newError(ErrInvalidClassFile, r.Pos()-2, "constant pool count is 0")
	}

	cp := &ConstantPool{entries: make([]Constant, count)}
	for i := 1; i < int(count); i++ {
		entry, err := readConstant(r)
		if err != nil {
			return nil, err
		}
		cp.entries[i] = entry
		if entry.Tag().Wide() {
			if i+1 >= int(count) {
				return nil, poolError("%v at index %d has no room for its second slot", entry.Tag(), i)
			}
			i++
		}
	}

	if err := cp.link(); err != nil {
		return nil, err
	}
	return cp, nil
}

func readConstant(r *Reader) (Constant, error) {
	start := r.Pos()
	tagByte, err := r.U1()
	if err != nil {
		return nil, err
	}

	tag := ConstantTag(tagByte)
	switch tag {
	case ConstantUtf8:
		length, err := r.U2()
		if err != nil {
			return nil, err
		}
		s, err := r.ModifiedUTF8(int(length))
		if err != nil {
			return nil, err
		}
		return &ConstantUtf8Info{Value: s}, nil

	case ConstantInteger:
		v, err := r.S4()
		if err != nil {
			return nil, err
		}
		return &ConstantIntegerInfo{Value: v}, nil

	case ConstantFloat:
		v, err := r.F4()
		if err != nil {
			return nil, err
		}
		return &ConstantFloatInfo{Value: v}, nil

	case ConstantLong:
		v, err := r.S8()
		if err != nil {
			return nil, err
		}
		return &ConstantLongInfo{Value: v}, nil

	case ConstantDouble:
		v, err := r.F8()
		if err != nil {
			return nil, err
		}
		return &ConstantDoubleInfo{Value: v}, nil

	case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
		index, err := r.U2()
		if err != nil {
			return nil, err
		}
		switch tag {
		case ConstantClass:
			return &ConstantClassInfo{NameIndex: index}, nil
		case ConstantString:
			return &ConstantStringInfo{StringIndex: index}, nil
		case ConstantMethodType:
			return &ConstantMethodTypeInfo{DescriptorIndex: index}, nil
		case ConstantModule:
			return &ConstantModuleInfo{NameIndex: index}, nil
		default:
			return &ConstantPackageInfo{NameIndex: index}, nil
		}

	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref,
		ConstantNameAndType, ConstantDynamic, ConstantInvokeDynamic:
		raw, err := r.take(4)
		if err != nil {
			return nil, err
		}
		a, b := binary.BigEndian.Uint16(raw), binary.BigEndian.Uint16(raw[2:])
		switch tag {
		case ConstantNameAndType:
			return &ConstantNameAndTypeInfo{NameIndex: a, DescriptorIndex: b}, nil
		case ConstantDynamic, ConstantInvokeDynamic:
			return &ConstantDynamicInfo{Kind: tag, BootstrapMethodAttrIndex: a, NameAndTypeIndex: b}, nil
		default:
			return &ConstantRefInfo{Kind: tag, ClassIndex: a, NameAndTypeIndex: b}, nil
		}

	case ConstantMethodHandle:
		raw, err := r.take(3)
		if err != nil {
			return nil, err
		}
		return &ConstantMethodHandleInfo{ReferenceKind: MethodHandleKind(raw[0]), ReferenceIndex: binary.BigEndian.Uint16(raw[1:])}, nil
	}

	return nil, newError(ErrInvalidClassFile, start, "unknown constant pool tag %d", tagByte)
}

// link checks that every reference held by a pool entry points at an entry
// of the kind the format requires.
func (cp *ConstantPool) link() error {
	for i, c := range cp.entries {
		var err error
		switch c := c.(type) {
		case *ConstantClassInfo:
			_, err = cp.Utf8(c.NameIndex)
		case *ConstantStringInfo:
			_, err = cp.Utf8(c.StringIndex)
		case *ConstantMethodTypeInfo:
			_, err = cp.Utf8(c.DescriptorIndex)
		case *ConstantModuleInfo:
			_, err = cp.Utf8(c.NameIndex)
		case *ConstantPackageInfo:
			_, err = cp.Utf8(c.NameIndex)
		case *ConstantNameAndTypeInfo:
			_, _, err = cp.NameAndType(uint16(i))
		case *ConstantRefInfo:
			_, err = cp.MemberRef(uint16(i))
		case *ConstantDynamicInfo:
			_, _, err = cp.NameAndType(c.NameAndTypeIndex)
		case *ConstantMethodHandleInfo:
			err = cp.linkMethodHandle(c)
		}
		if err != nil {
			return poolError("entry %d (%v): %v", i, c.Tag(), err)
		}
	}
	return nil
}

func (cp *ConstantPool) linkMethodHandle(h *ConstantMethodHandleInfo) error {
	if h.ReferenceKind < RefGetField || h.ReferenceKind > RefInvokeInterface {
		return poolError("invalid method handle kind %d", h.ReferenceKind)
	}
	ref, err := cp.MemberRef(h.ReferenceIndex)
	if err != nil {
		return err
	}
	if h.ReferenceKind <= RefPutStatic && ref.Kind != ConstantFieldref {
		return poolError("method handle kind %d must reference a field, got %v", h.ReferenceKind, ref.Kind)
	}
	if h.ReferenceKind > RefPutStatic && ref.Kind == ConstantFieldref {
		return poolError("method handle kind %d must reference a method, got %v", h.ReferenceKind, ref.Kind)
	}
	return nil
}
