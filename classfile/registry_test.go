package classfile

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

// attrBytes encodes a complete attribute_info with the given name.
func attrBytes(p *poolBuilder, name string, body []byte) []byte {
	return cat(u2(p.Utf8(name)), u4(uint32(len(body))), body)
}

func TestReadAttributeByteAccounting(t *testing.T) {
	p := newPoolBuilder()
	file := p.Utf8("Foo.java")
	sig := p.Utf8("Ljava/util/List<TT;>;")
	exc := p.Class("java/io/IOException")
	value := p.Integer(7)
	outer := p.Class("Outer")
	inner := p.Class("Outer$Inner")
	innerName := p.Utf8("Inner")
	annType := p.Utf8("Ljava/lang/Deprecated;")

	tests := []struct {
		name string
		body []byte
	}{
		{"SourceFile", u2(file)},
		{"Signature", u2(sig)},
		{"ConstantValue", u2(value)},
		{"Deprecated", nil},
		{"Synthetic", nil},
		{"LineNumberTable", cat(u2(2), u2(0), u2(10), u2(4), u2(11))},
		{"Exceptions", cat(u2(1), u2(exc))},
		{"InnerClasses", cat(u2(1), u2(inner), u2(outer), u2(innerName), u2(uint16(AccPublic|AccStatic)))},
		{"NestMembers", cat(u2(1), u2(inner))},
		{"NestHost", u2(outer)},
		{"RuntimeVisibleAnnotations", cat(u2(1), u2(annType), u2(0))},
		{"SourceDebugExtension", []byte("SMAP\n")},
		{"Code", cat(u2(1), u2(1), u4(1), []byte{0xB1}, u2(0), u2(0))},
		{"SomeVendorAttribute", []byte{1, 2, 3, 4, 5}},
		{"EmptyVendorAttribute", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := attrBytes(p, tt.name, tt.body)
			cp := buildPool(t, p)
			trailer := []byte{0xDE, 0xAD}
			r := NewReader(cat(data, trailer))

			attr, err := DefaultRegistry().ReadAttribute(r, cp)
			if err != nil {
				t.Fatalf("ReadAttribute: %v", err)
			}
			if attr.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", attr.Name(), tt.name)
			}
			if r.Pos() != 6+len(tt.body) {
				t.Errorf("Pos() = %d, want %d", r.Pos(), 6+len(tt.body))
			}
			if r.Remaining() != len(trailer) {
				t.Errorf("Remaining() = %d, want %d", r.Remaining(), len(trailer))
			}
		})
	}
}

func TestReadAttributeUnknownPreservesBytes(t *testing.T) {
	p := newPoolBuilder()
	body := []byte{0xCA, 0xFE, 0x00, 0x01}
	data := attrBytes(p, "org.example.Custom", body)
	cp := buildPool(t, p)

	attr, err := DefaultRegistry().ReadAttribute(NewReader(data), cp)
	if err != nil {
		t.Fatalf("ReadAttribute: %v", err)
	}
	unknown, ok := attr.(*UnknownAttribute)
	if !ok {
		t.Fatalf("attribute is %T, want *UnknownAttribute", attr)
	}
	if unknown.Name() != "org.example.Custom" {
		t.Errorf("Name() = %q", unknown.Name())
	}
	if !bytes.Equal(unknown.Data, body) {
		t.Errorf("Data = %x, want %x", unknown.Data, body)
	}
}

func TestReadAttributeLengthMismatch(t *testing.T) {
	p := newPoolBuilder()
	file := p.Utf8("Foo.java")
	sourceFile := p.Utf8("SourceFile")
	lineTable := p.Utf8("LineNumberTable")
	deprecated := p.Utf8("Deprecated")
	cp := buildPool(t, p)

	tests := []struct {
		name string
		data []byte
	}{
		{"declared longer", cat(u2(sourceFile), u4(4), u2(file), []byte{0, 0})},
		{"declared shorter", cat(u2(lineTable), u4(2), u2(1), u2(0), u2(1))},
		{"marker with payload", cat(u2(deprecated), u4(1), []byte{0})},
		{"declared too short with bytes after", cat(u2(sourceFile), u4(1), []byte{0}, []byte{0xFF, 0xFF, 0xFF})},
		{"declared too short at end of buffer", cat(u2(sourceFile), u4(1), []byte{0})},
		{"table longer than declared", cat(u2(lineTable), u4(2), u2(3), u2(0), u2(1), u2(4), u2(2), u2(8), u2(3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultRegistry().ReadAttribute(NewReader(tt.data), cp)
			if !errors.Is(err, ErrAttributeLengthMismatch) {
				t.Fatalf("error = %v, want ErrAttributeLengthMismatch", err)
			}
		})
	}
}

func TestReadAttributeStopsAtDeclaredLength(t *testing.T) {
	p := newPoolBuilder()
	file := p.Utf8("Foo.java")
	data := cat(attrBytes(p, "SourceFile", u2(file)), u2(0xBEEF))
	cp := buildPool(t, p)

	r := NewReader(data)
	attr, err := DefaultRegistry().ReadAttribute(r, cp)
	if err != nil {
		t.Fatalf("ReadAttribute: %v", err)
	}
	if sf := attr.(*SourceFileAttribute); sf.FileName != "Foo.java" {
		t.Errorf("FileName = %q", sf.FileName)
	}
	if r.Pos() != len(data)-2 {
		t.Errorf("Pos() = %d, want %d", r.Pos(), len(data)-2)
	}
	if v, err := r.U2(); err != nil || v != 0xBEEF {
		t.Errorf("next U2 = %#x, %v", v, err)
	}
}

func TestReadAttributeLengthBeyondBuffer(t *testing.T) {
	p := newPoolBuilder()
	data := cat(u2(p.Utf8("Whatever")), u4(100), []byte{1, 2})
	cp := buildPool(t, p)

	_, err := DefaultRegistry().ReadAttribute(NewReader(data), cp)
	if !errors.Is(err, ErrUnexpectedEndOfData) {
		t.Fatalf("error = %v, want ErrUnexpectedEndOfData", err)
	}
}

func TestReadAttributeBadName(t *testing.T) {
	p := newPoolBuilder()
	i := p.Integer(3)
	cp := buildPool(t, p)

	for _, index := range []uint16{0, i, 99} {
		data := cat(u2(index), u4(0))
		if _, err := DefaultRegistry().ReadAttribute(NewReader(data), cp); !errors.Is(err, ErrConstantPool) {
			t.Errorf("name index %d: error = %v, want ErrConstantPool", index, err)
		}
	}
}

func TestSourceFileRequiresUtf8(t *testing.T) {
	p := newPoolBuilder()
	class := p.Class("Foo")
	data := attrBytes(p, "SourceFile", u2(class))
	cp := buildPool(t, p)

	if _, err := DefaultRegistry().ReadAttribute(NewReader(data), cp); !errors.Is(err, ErrConstantPool) {
		t.Fatalf("error = %v, want ErrConstantPool", err)
	}
}

func TestCodeNestedAttributes(t *testing.T) {
	p := newPoolBuilder()
	exc := p.Class("java/lang/Exception")
	lvName, lvDesc := p.Utf8("this"), p.Utf8("LFoo;")
	nested := cat(
		attrBytes(p, "LineNumberTable", cat(u2(1), u2(0), u2(42))),
		attrBytes(p, "LocalVariableTable", cat(u2(1), u2(0), u2(5), u2(lvName), u2(lvDesc), u2(0))),
		attrBytes(p, "StackMapTable", cat(u2(1), []byte{0})),
	)
	code := []byte{0x2A, 0xB7, 0x00, 0x01, 0xB1}
	body := cat(
		u2(2), u2(1), u4(uint32(len(code))), code,
		u2(2),
		u2(0), u2(4), u2(4), u2(exc),
		u2(0), u2(4), u2(4), u2(0),
		u2(3), nested,
	)
	data := attrBytes(p, "Code", body)
	cp := buildPool(t, p)

	attr, err := DefaultRegistry().ReadAttribute(NewReader(data), cp)
	if err != nil {
		t.Fatalf("ReadAttribute: %v", err)
	}
	c := attr.(*CodeAttribute)
	if c.MaxStack != 2 || c.MaxLocals != 1 {
		t.Errorf("MaxStack/MaxLocals = %d/%d, want 2/1", c.MaxStack, c.MaxLocals)
	}
	if !bytes.Equal(c.Code, code) {
		t.Errorf("Code = %x, want %x", c.Code, code)
	}
	if len(c.ExceptionTable) != 2 {
		t.Fatalf("len(ExceptionTable) = %d, want 2", len(c.ExceptionTable))
	}
	if c.ExceptionTable[0].CatchClass != "java/lang/Exception" || c.ExceptionTable[1].CatchClass != "" {
		t.Errorf("catch classes = %q, %q", c.ExceptionTable[0].CatchClass, c.ExceptionTable[1].CatchClass)
	}

	if got := c.Attributes.Names(); !slices.Equal(got, []string{"LineNumberTable", "LocalVariableTable", "StackMapTable"}) {
		t.Errorf("nested attributes = %v", got)
	}
	lnt, ok := c.LineNumberTable()
	if !ok {
		t.Fatal("expected LineNumberTable")
	}
	if line, ok := lnt.LineFor(3); !ok || line != 42 {
		t.Errorf("LineFor(3) = %d, %v; want 42", line, ok)
	}
	lvt, ok := c.LocalVariableTable()
	if !ok || len(lvt.Variables) != 1 || lvt.Variables[0].Name != "this" || lvt.Variables[0].Descriptor != "LFoo;" {
		t.Errorf("LocalVariableTable = %+v", lvt)
	}
	if _, ok := c.Attributes.Get("StackMapTable"); !ok {
		t.Error("expected StackMapTable passthrough")
	}
}

func TestCodeNestedLengthMismatch(t *testing.T) {
	p := newPoolBuilder()
	// The nested LineNumberTable claims 2 bytes but holds a 1-entry table.
	nested := cat(u2(p.Utf8("LineNumberTable")), u4(2), u2(1), u2(0), u2(1))
	body := cat(u2(1), u2(1), u4(1), []byte{0xB1}, u2(0), u2(1), nested)
	data := attrBytes(p, "Code", body)
	cp := buildPool(t, p)

	_, err := DefaultRegistry().ReadAttribute(NewReader(data), cp)
	if !errors.Is(err, ErrAttributeLengthMismatch) {
		t.Fatalf("error = %v, want ErrAttributeLengthMismatch", err)
	}
}

type vendorAttribute struct {
	attrName
	Value uint16
}

func TestRegistryCustomParser(t *testing.T) {
	reg := DefaultRegistry().Clone()
	reg.Register("Vendor", func(in *AttributeInput) (Attribute, error) {
		v, err := in.Reader.U2()
		if err != nil {
			return nil, err
		}
		return &vendorAttribute{attrName{in.Name}, v}, nil
	})

	if _, ok := DefaultRegistry().Lookup("Vendor"); ok {
		t.Fatal("Clone().Register modified the default registry")
	}
	if _, ok := reg.Lookup("Code"); !ok {
		t.Fatal("clone lost the built-in Code parser")
	}

	p := newPoolBuilder()
	data := attrBytes(p, "Vendor", u2(0xBEEF))
	cp := buildPool(t, p)

	attr, err := reg.ReadAttribute(NewReader(data), cp)
	if err != nil {
		t.Fatalf("ReadAttribute: %v", err)
	}
	if v, ok := attr.(*vendorAttribute); !ok || v.Value != 0xBEEF {
		t.Errorf("attribute = %#v", attr)
	}

	attr, err = DefaultRegistry().ReadAttribute(NewReader(data), cp)
	if err != nil {
		t.Fatalf("ReadAttribute with default registry: %v", err)
	}
	if _, ok := attr.(*UnknownAttribute); !ok {
		t.Errorf("default registry produced %T, want *UnknownAttribute", attr)
	}
}

func TestEmptyRegistryTreatsEverythingAsUnknown(t *testing.T) {
	p := newPoolBuilder()
	file := p.Utf8("Foo.java")
	data := attrBytes(p, "SourceFile", u2(file))
	cp := buildPool(t, p)

	attr, err := NewRegistry().ReadAttribute(NewReader(data), cp)
	if err != nil {
		t.Fatalf("ReadAttribute: %v", err)
	}
	if u, ok := attr.(*UnknownAttribute); !ok || !bytes.Equal(u.Data, u2(file)) {
		t.Errorf("attribute = %#v", attr)
	}
}

func TestRegistryNames(t *testing.T) {
	names := DefaultRegistry().Names()
	if !slices.IsSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}
	for _, want := range []string{"Code", "Exceptions", "LineNumberTable", "SourceFile", "Signature", "RuntimeVisibleAnnotations"} {
		if !slices.Contains(names, want) {
			t.Errorf("Names() missing %s", want)
		}
	}
}

func TestReadAttributesKeepsDuplicatesFirstWins(t *testing.T) {
	p := newPoolBuilder()
	a, b := p.Utf8("A.java"), p.Utf8("B.java")
	data := cat(u2(2), attrBytes(p, "SourceFile", u2(a)), attrBytes(p, "SourceFile", u2(b)))
	cp := buildPool(t, p)

	attrs, err := DefaultRegistry().ReadAttributes(NewReader(data), cp)
	if err != nil {
		t.Fatalf("ReadAttributes: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("len = %d, want 2", len(attrs))
	}
	sf, ok := FindAttribute[*SourceFileAttribute](attrs)
	if !ok || sf.FileName != "A.java" {
		t.Errorf("first SourceFile = %+v", sf)
	}
	got, _ := attrs.Get("SourceFile")
	if got.(*SourceFileAttribute).FileName != "A.java" {
		t.Errorf("Get returned %+v", got)
	}
}
