package classfile

import (
	"fmt"
	"io"
	"os"
)

type config struct {
	registry        *Registry
	maxMajorVersion uint16
}

type Option func(*config)

// WithRegistry parses attributes with reg instead of DefaultRegistry().
func WithRegistry(reg *Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithMaxMajorVersion sets the newest major version that is accepted.
func WithMaxMajorVersion(v uint16) Option {
	return func(c *config) { c.maxMajorVersion = v }
}

func ParseFile(path string, opts ...Option) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return Parse(data, opts...)
}

// ParseReader reads rd to the end and parses the result.
func ParseReader(rd io.Reader, opts ...Option) (*ClassFile, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return Parse(data, opts...)
}

// Parse parses one complete class file. On failure it returns a nil
// ClassFile and an error wrapping one of the Err* kinds.
func Parse(data []byte, opts ...Option) (*ClassFile, error) {
	c := config{
		registry:        DefaultRegistry(),
		maxMajorVersion: DefaultMaxMajorVersion,
	}
	for _, opt := range opts {
		opt(&c)
	}

	r := NewReader(data)

	magic, err := r.U4()
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != Magic {
		return nil, newError(ErrInvalidClassFile, 0, "invalid magic number 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf := &ClassFile{}
	if cf.MinorVersion, err = r.U2(); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if cf.MajorVersion, err = r.U2(); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if cf.MajorVersion < MinMajorVersion || cf.MajorVersion > c.maxMajorVersion {
		return nil, newError(ErrUnsupportedClassVersion, 4, "version %d.%d outside supported range %d-%d",
			cf.MajorVersion, cf.MinorVersion, MinMajorVersion, c.maxMajorVersion)
	}

	if cf.ConstantPool, err = readConstantPool(r); err != nil {
		return nil, fmt.Errorf("read constant pool: %w", err)
	}
	cp := cf.ConstantPool

	if err := readClassInfo(r, cf); err != nil {
		return nil, fmt.Errorf("read class info: %w", err)
	}

	fieldsCount, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("read fields count: %w", err)
	}
	cf.Fields = make([]FieldInfo, fieldsCount)
	for i := range cf.Fields {
		if cf.Fields[i].Member, err = readMember(r, cp, c.registry, "field"); err != nil {
			return nil, fmt.Errorf("read field %d: %w", i, err)
		}
	}

	methodsCount, err := r.U2()
	if err != nil {
		return nil, fmt.Errorf("read methods count: %w", err)
	}
	cf.Methods = make([]MethodInfo, methodsCount)
	for i := range cf.Methods {
		if cf.Methods[i].Member, err = readMember(r, cp, c.registry, "method"); err != nil {
			return nil, fmt.Errorf("read method %d: %w", i, err)
		}
	}

	if cf.Attributes, err = c.registry.readAttributes(r, cp, cf.className); err != nil {
		return nil, fmt.Errorf("read class attributes: %w", err)
	}

	if r.Remaining() != 0 {
		return nil, newError(ErrInvalidClassFile, r.Pos(), "%d trailing bytes after class file", r.Remaining())
	}
	return cf, nil
}

func readClassInfo(r *Reader, cf *ClassFile) error {
	cp := cf.ConstantPool
	flags, err := r.U2()
	if err != nil {
		return err
	}
	cf.AccessFlags = AccessFlags(flags)

	if cf.ThisClass, err = r.U2(); err != nil {
		return err
	}
	if cf.className, err = cp.ClassName(cf.ThisClass); err != nil {
		return fmt.Errorf("this class: %w", err)
	}

	superPos := r.Pos()
	if cf.SuperClass, err = r.U2(); err != nil {
		return err
	}
	if cf.SuperClass == 0 {
		if cf.className != "java/lang/Object" && !cf.AccessFlags.IsModule() {
			return newError(ErrInvalidClassFile, superPos, "%s has no super class", cf.className)
		}
	} else if cf.superClassName, err = cp.ClassName(cf.SuperClass); err != nil {
		return fmt.Errorf("super class: %w", err)
	}

	if cf.Interfaces, err = readU2s(r); err != nil {
		return err
	}
	cf.interfaceNames = make([]string, len(cf.Interfaces))
	for i, index := range cf.Interfaces {
		if cf.interfaceNames[i], err = cp.ClassName(index); err != nil {
			return fmt.Errorf("interface %d: %w", i, err)
		}
	}
	return nil
}
