package classfile

import (
	"encoding/binary"
	"math"
)

// poolBuilder assembles constant pool bytes and hands out indices.
type poolBuilder struct {
	buf  []byte
	next uint16
	utf8 map[string]uint16
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{next: 1, utf8: make(map[string]uint16)}
}

func (p *poolBuilder) add(width uint16, b ...byte) uint16 {
	idx := p.next
	p.buf = append(p.buf, b...)
	p.next += width
	return idx
}

// Utf8 adds an ASCII string constant, reusing an existing one.
func (p *poolBuilder) Utf8(s string) uint16 {
	if idx, ok := p.utf8[s]; ok {
		return idx
	}
	b := append([]byte{byte(ConstantUtf8)}, u2(uint16(len(s)))...)
	idx := p.add(1, append(b, s...)...)
	p.utf8[s] = idx
	return idx
}

func (p *poolBuilder) RawUtf8(raw []byte) uint16 {
	b := append([]byte{byte(ConstantUtf8)}, u2(uint16(len(raw)))...)
	return p.add(1, append(b, raw...)...)
}

func (p *poolBuilder) Class(name string) uint16 {
	n := p.Utf8(name)
	return p.add(1, append([]byte{byte(ConstantClass)}, u2(n)...)...)
}

func (p *poolBuilder) String(s string) uint16 {
	n := p.Utf8(s)
	return p.add(1, append([]byte{byte(ConstantString)}, u2(n)...)...)
}

func (p *poolBuilder) Integer(v int32) uint16 {
	return p.add(1, append([]byte{byte(ConstantInteger)}, u4(uint32(v))...)...)
}

func (p *poolBuilder) Float(v float32) uint16 {
	return p.add(1, append([]byte{byte(ConstantFloat)}, u4(math.Float32bits(v))...)...)
}

func (p *poolBuilder) Long(v int64) uint16 {
	return p.add(2, append([]byte{byte(ConstantLong)}, u8(uint64(v))...)...)
}

func (p *poolBuilder) Double(v float64) uint16 {
	return p.add(2, append([]byte{byte(ConstantDouble)}, u8(math.Float64bits(v))...)...)
}

func (p *poolBuilder) NameAndType(name, desc string) uint16 {
	n, d := p.Utf8(name), p.Utf8(desc)
	return p.add(1, cat([]byte{byte(ConstantNameAndType)}, u2(n), u2(d))...)
}

func (p *poolBuilder) Methodref(class, name, desc string) uint16 {
	c, nt := p.Class(class), p.NameAndType(name, desc)
	return p.add(1, cat([]byte{byte(ConstantMethodref)}, u2(c), u2(nt))...)
}

func (p *poolBuilder) MethodHandle(kind MethodHandleKind, ref uint16) uint16 {
	return p.add(1, cat([]byte{byte(ConstantMethodHandle), byte(kind)}, u2(ref))...)
}

// Raw appends an arbitrary single-slot entry.
func (p *poolBuilder) Raw(b ...byte) uint16 {
	return p.add(1, b...)
}

func (p *poolBuilder) Bytes() []byte {
	return cat(u2(p.next), p.buf)
}

// classBuilder assembles a complete class file around a poolBuilder.
type classBuilder struct {
	Pool       *poolBuilder
	Major      uint16
	Flags      AccessFlags
	This       uint16
	Super      uint16
	Interfaces []uint16
	Fields     [][]byte
	Methods    [][]byte
	Attributes [][]byte
}

func newClassBuilder(name string) *classBuilder {
	p := newPoolBuilder()
	return &classBuilder{
		Pool:  p,
		Major: 52,
		Flags: AccPublic | AccSuper,
		This:  p.Class(name),
		Super: p.Class("java/lang/Object"),
	}
}

func (b *classBuilder) Attr(name string, body []byte) []byte {
	return cat(u2(b.Pool.Utf8(name)), u4(uint32(len(body))), body)
}

func (b *classBuilder) Member(flags AccessFlags, name, desc string, attrs ...[]byte) []byte {
	out := cat(u2(uint16(flags)), u2(b.Pool.Utf8(name)), u2(b.Pool.Utf8(desc)), u2(uint16(len(attrs))))
	return cat(out, cat(attrs...))
}

func (b *classBuilder) Bytes() []byte {
	out := cat(u4(Magic), u2(0), u2(b.Major), b.Pool.Bytes())
	out = cat(out, u2(uint16(b.Flags)), u2(b.This), u2(b.Super), u2(uint16(len(b.Interfaces))))
	for _, i := range b.Interfaces {
		out = cat(out, u2(i))
	}
	out = cat(out, u2(uint16(len(b.Fields))), cat(b.Fields...))
	out = cat(out, u2(uint16(len(b.Methods))), cat(b.Methods...))
	return cat(out, u2(uint16(len(b.Attributes))), cat(b.Attributes...))
}

func u2(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func u4(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func u8(v uint64) []byte { return binary.BigEndian.AppendUint64(nil, v) }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
