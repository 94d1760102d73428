package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/jstruct/classfile"
)

// LineEncoder writes one tab-separated record per class, field, method and
// class attribute. Empty columns are written as "-".
type LineEncoder struct {
	w  io.Writer
	cf *classfile.ClassFile
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(cf *classfile.ClassFile) error {
	e.cf = cf
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	cf := e.cf

	mods := append([]string{visibility(cf.AccessFlags)}, classModifiers(cf)...)
	fmt.Fprintf(&sb, "%s\t%s\t%d.%d\t%s\n",
		classKind(cf),
		cf.ClassName(),
		cf.MajorVersion, cf.MinorVersion,
		strings.Join(mods, ","),
	)
	if super := cf.SuperClassName(); super != "" {
		fmt.Fprintf(&sb, "extends\t%s\n", super)
	}
	for _, iface := range cf.InterfaceNames() {
		fmt.Fprintf(&sb, "implements\t%s\n", iface)
	}

	for i := range cf.Fields {
		f := &cf.Fields[i]
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n",
			f.Name,
			fieldTypeStr(f),
			visibility(f.AccessFlags),
			joinOrDash(fieldModifiers(f)),
		)
	}

	for i := range cf.Methods {
		m := &cf.Methods[i]
		ret, params := methodTypeStrs(m)
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\t%s\n",
			m.Name,
			ret,
			params,
			visibility(m.AccessFlags),
			joinOrDash(methodModifiers(m)),
		)
	}

	for _, a := range cf.Attributes {
		fmt.Fprintf(&sb, "attribute\t%s\t%s\n", a.Name(), attributeSummary(a))
	}

	return []byte(sb.String()), nil
}

func fieldTypeStr(f *classfile.FieldInfo) string {
	ft, err := f.ParsedDescriptor()
	if err != nil {
		return f.Descriptor
	}
	return ft.String()
}

func methodTypeStrs(m *classfile.MethodInfo) (string, string) {
	md, err := m.ParsedDescriptor()
	if err != nil {
		return m.Descriptor, "-"
	}
	ret := "void"
	if md.ReturnType != nil {
		ret = md.ReturnType.String()
	}
	var parts []string
	for _, p := range md.Parameters {
		parts = append(parts, p.String())
	}
	return ret, joinOrDash(parts)
}

func attributeSummary(a classfile.Attribute) string {
	switch a := a.(type) {
	case *classfile.SourceFileAttribute:
		return a.FileName
	case *classfile.SignatureAttribute:
		return a.Signature
	case *classfile.InnerClassesAttribute:
		return fmt.Sprintf("%d classes", len(a.Classes))
	case *classfile.BootstrapMethodsAttribute:
		return fmt.Sprintf("%d methods", len(a.Methods))
	case *classfile.ClassRefAttribute:
		return a.ClassName
	case *classfile.ClassListAttribute:
		return joinOrDash(a.ClassNames)
	case *classfile.UnknownAttribute:
		return fmt.Sprintf("%d bytes", len(a.Data))
	default:
		return "-"
	}
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
