package format

import (
	"encoding"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/jstruct/classfile"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(cf *classfile.ClassFile) error
}

// Names lists the formats accepted by New.
var Names = []string{"json", "line"}

// New returns the encoder registered under name.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format: %s (expected %s)", name, strings.Join(Names, " or "))
	}
}

func classKind(cf *classfile.ClassFile) string {
	switch {
	case cf.IsModule():
		return "module"
	case cf.IsAnnotation():
		return "annotation"
	case cf.IsInterface():
		return "interface"
	case cf.IsEnum():
		return "enum"
	case cf.IsRecord():
		return "record"
	default:
		return "class"
	}
}

func visibility(flags classfile.AccessFlags) string {
	switch {
	case flags.IsPublic():
		return "public"
	case flags.IsProtected():
		return "protected"
	case flags.IsPrivate():
		return "private"
	default:
		return "package"
	}
}

func classModifiers(cf *classfile.ClassFile) []string {
	var mods []string
	if cf.AccessFlags.IsFinal() {
		mods = append(mods, "final")
	}
	if cf.AccessFlags.IsAbstract() && !cf.AccessFlags.IsInterface() {
		mods = append(mods, "abstract")
	}
	if cf.AccessFlags.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if _, ok := cf.PermittedSubclasses(); ok {
		mods = append(mods, "sealed")
	}
	if cf.IsDeprecated() {
		mods = append(mods, "deprecated")
	}
	return mods
}

func fieldModifiers(f *classfile.FieldInfo) []string {
	var mods []string
	if f.IsStatic() {
		mods = append(mods, "static")
	}
	if f.IsFinal() {
		mods = append(mods, "final")
	}
	if f.IsVolatile() {
		mods = append(mods, "volatile")
	}
	if f.IsTransient() {
		mods = append(mods, "transient")
	}
	if f.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if f.IsEnum() {
		mods = append(mods, "enum")
	}
	if f.IsDeprecated() {
		mods = append(mods, "deprecated")
	}
	return mods
}

func methodModifiers(m *classfile.MethodInfo) []string {
	var mods []string
	if m.IsStatic() {
		mods = append(mods, "static")
	}
	if m.IsStaticInitializer() {
		mods = append(mods, "initializer")
	}
	if m.IsFinal() {
		mods = append(mods, "final")
	}
	if m.IsAbstract() {
		mods = append(mods, "abstract")
	}
	if m.IsSynchronized() {
		mods = append(mods, "synchronized")
	}
	if m.IsNative() {
		mods = append(mods, "native")
	}
	if m.IsBridge() {
		mods = append(mods, "bridge")
	}
	if m.IsVarargs() {
		mods = append(mods, "varargs")
	}
	if m.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if m.IsDeprecated() {
		mods = append(mods, "deprecated")
	}
	return mods
}
