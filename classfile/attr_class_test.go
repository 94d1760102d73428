package classfile

import (
	"errors"
	"slices"
	"testing"
)

func TestBootstrapMethods(t *testing.T) {
	p := newPoolBuilder()
	handle := p.MethodHandle(RefInvokeStatic, p.Methodref("java/lang/invoke/StringConcatFactory", "makeConcatWithConstants",
		"(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;Ljava/lang/String;[Ljava/lang/Object;)Ljava/lang/invoke/CallSite;"))
	recipe := p.String("Hello, \u0001!")
	class := p.Class("java/lang/Object")
	seven := p.Integer(7)
	data := attrBytes(p, "BootstrapMethods", cat(u2(1), u2(handle), u2(3), u2(recipe), u2(class), u2(seven)))
	cp := buildPool(t, p)

	attr, err := DefaultRegistry().ReadAttribute(NewReader(data), cp)
	if err != nil {
		t.Fatalf("ReadAttribute: %v", err)
	}
	methods := attr.(*BootstrapMethodsAttribute).Methods
	if len(methods) != 1 || methods[0].MethodRef != handle {
		t.Fatalf("methods = %+v", methods)
	}
	if want := []uint16{recipe, class, seven}; !slices.Equal(methods[0].Arguments, want) {
		t.Errorf("Arguments = %v, want %v", methods[0].Arguments, want)
	}
}

func TestBootstrapMethodsArgumentKind(t *testing.T) {
	p := newPoolBuilder()
	handle := p.MethodHandle(RefInvokeStatic, p.Methodref("Boot", "bsm", "()V"))
	text := p.Utf8("text")
	nameAndType := p.NameAndType("run", "()V")
	name := p.Utf8("BootstrapMethods")
	cp := buildPool(t, p)

	for _, arg := range []uint16{text, nameAndType, 0, 99} {
		data := cat(u2(name), u4(8), u2(1), u2(handle), u2(1), u2(arg))
		if _, err := DefaultRegistry().ReadAttribute(NewReader(data), cp); !errors.Is(err, ErrConstantPool) {
			t.Errorf("argument %d: error = %v, want ErrConstantPool", arg, err)
		}
	}
}
