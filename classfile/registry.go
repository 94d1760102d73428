package classfile

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// AttributeParser decodes the payload of one attribute. It must consume
// exactly in.Length bytes from in.Reader, which ends where the attribute
// does.
type AttributeParser func(in *AttributeInput) (Attribute, error)

// AttributeInput is what an AttributeParser gets to work with. The pool is
// borrowed for the duration of the call and must not be retained.
type AttributeInput struct {
	Name   string
	Length uint32
	Reader *Reader
	Pool   *ConstantPool

	registry *Registry
	owner    string
}

// ReadAttributes reads a nested attribute list with the same registry.
func (in *AttributeInput) ReadAttributes() (Attributes, error) {
	return in.registry.readAttributes(in.Reader, in.Pool, ownerName(in.owner)+"."+in.Name)
}

// Registry maps attribute names to parsers. Register is not safe to call
// concurrently with parsing; set a registry up before using it.
type Registry struct {
	parsers map[string]AttributeParser
}

func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]AttributeParser)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry holding the built-in attributes.
// Clone it before registering additional kinds.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func (reg *Registry) Register(name string, parser AttributeParser) {
	reg.parsers[name] = parser
}

func (reg *Registry) Lookup(name string) (AttributeParser, bool) {
	p, ok := reg.parsers[name]
	return p, ok
}

func (reg *Registry) Clone() *Registry {
	return &Registry{parsers: maps.Clone(reg.parsers)}
}

func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.parsers))
	for name := range reg.parsers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ReadAttribute reads one attribute_info structure.
func (reg *Registry) ReadAttribute(r *Reader, cp *ConstantPool) (Attribute, error) {
	return reg.readAttribute(r, cp, "")
}

// ReadAttributes reads a u2 count followed by that many attributes.
func (reg *Registry) ReadAttributes(r *Reader, cp *ConstantPool) (Attributes, error) {
	return reg.readAttributes(r, cp, "")
}

func (reg *Registry) readAttributes(r *Reader, cp *ConstantPool, owner string) (Attributes, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	attrs := make(Attributes, 0, count)
	for i := 0; i < int(count); i++ {
		attr, err := reg.readAttribute(r, cp, owner)
		if err != nil {
			return nil, fmt.Errorf("read attribute %d: %w", i, err)
		}
		if attrs.Has(attr.Name()) {
			log.Warningf("%s: duplicate %s attribute, keeping the first", ownerName(owner), attr.Name())
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (reg *Registry) readAttribute(r *Reader, cp *ConstantPool, owner string) (Attribute, error) {
	nameIndex, err := r.U2()
	if err != nil {
		return nil, err
	}
	name, err := cp.Utf8(nameIndex)
	if err != nil {
		return nil, fmt.Errorf("attribute name: %w", err)
	}
	length, err := r.U4()
	if err != nil {
		return nil, err
	}
	if int64(length) > int64(r.Remaining()) {
		return nil, newError(ErrUnexpectedEndOfData, r.Pos(), "%s attribute declares %d bytes, %d remaining", name, length, r.Remaining())
	}

	parse, ok := reg.parsers[name]
	if !ok {
		log.Debugf("%s: no parser for %s attribute, keeping %d raw bytes", ownerName(owner), name, length)
		parse = parseUnknownAttribute
	}

	start := r.Pos()
	end := start + int(length)
	body := &Reader{data: r.data[:end], pos: start}
	attr, err := parse(&AttributeInput{
		Name:     name,
		Length:   length,
		Reader:   body,
		Pool:     cp,
		registry: reg,
		owner:    owner,
	})
	if errors.Is(err, ErrUnexpectedEndOfData) {
		return nil, newError(ErrAttributeLengthMismatch, start, "%s attribute reads past its declared %d bytes: %v", name, length, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s attribute: %w", name, err)
	}
	if consumed := body.pos - start; consumed != int(length) {
		return nil, newError(ErrAttributeLengthMismatch, start, "%s attribute declares %d bytes, parser consumed %d", name, length, consumed)
	}
	r.pos = end
	return attr, nil
}

func ownerName(owner string) string {
	if owner == "" {
		return "class"
	}
	return owner
}
