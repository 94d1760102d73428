package format

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/dhamidi/jstruct/classfile"
)

type JSONEncoder struct {
	w  io.Writer
	cf *classfile.ClassFile
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(cf *classfile.ClassFile) error {
	e.cf = cf
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildClassData(), "", "  ")
}

type jsonClass struct {
	Name         string          `json:"name"`
	SuperClass   string          `json:"superClass,omitempty"`
	Interfaces   []string        `json:"interfaces,omitempty"`
	Visibility   string          `json:"visibility"`
	Kind         string          `json:"kind"`
	Modifiers    []string        `json:"modifiers,omitempty"`
	Version      jsonVersion     `json:"version"`
	SourceFile   string          `json:"sourceFile,omitempty"`
	Signature    string          `json:"signature,omitempty"`
	Constants    int             `json:"constantPoolCount"`
	Fields       []jsonField     `json:"fields,omitempty"`
	Methods      []jsonMethod    `json:"methods,omitempty"`
	InnerClasses []jsonInner     `json:"innerClasses,omitempty"`
	Attributes   []jsonAttribute `json:"attributes,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonField struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	Type       string          `json:"type,omitempty"`
	Visibility string          `json:"visibility"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Signature  string          `json:"signature,omitempty"`
	Constant   any             `json:"constantValue,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonMethod struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	ReturnType string          `json:"returnType,omitempty"`
	Parameters []string        `json:"parameters,omitempty"`
	Visibility string          `json:"visibility"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Signature  string          `json:"signature,omitempty"`
	Exceptions []string        `json:"exceptions,omitempty"`
	Code       *jsonCode       `json:"code,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonCode struct {
	MaxStack   uint16          `json:"maxStack"`
	MaxLocals  uint16          `json:"maxLocals"`
	Length     int             `json:"length"`
	Handlers   int             `json:"exceptionHandlers,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonInner struct {
	Name       string `json:"name"`
	Outer      string `json:"outer,omitempty"`
	SimpleName string `json:"simpleName,omitempty"`
	Visibility string `json:"visibility"`
}

type jsonAttribute struct {
	Name   string `json:"name"`
	Parsed bool   `json:"parsed"`
	Length int    `json:"length,omitempty"`
}

func (e *JSONEncoder) buildClassData() jsonClass {
	cf := e.cf
	data := jsonClass{
		Name:       cf.ClassName(),
		SuperClass: cf.SuperClassName(),
		Interfaces: cf.InterfaceNames(),
		Visibility: visibility(cf.AccessFlags),
		Kind:       classKind(cf),
		Modifiers:  classModifiers(cf),
		Version: jsonVersion{
			Major: cf.MajorVersion,
			Minor: cf.MinorVersion,
		},
		Constants:  cf.ConstantPool.Count(),
		Fields:     e.buildFields(),
		Methods:    e.buildMethods(),
		Attributes: buildAttributes(cf.Attributes),
	}
	data.SourceFile, _ = cf.SourceFile()
	data.Signature, _ = cf.Signature()
	if inner, ok := cf.InnerClasses(); ok {
		for _, ic := range inner {
			data.InnerClasses = append(data.InnerClasses, jsonInner{
				Name:       ic.InnerClass,
				Outer:      ic.OuterClass,
				SimpleName: ic.InnerName,
				Visibility: visibility(ic.AccessFlags),
			})
		}
	}
	return data
}

func (e *JSONEncoder) buildFields() []jsonField {
	result := make([]jsonField, len(e.cf.Fields))
	for i := range e.cf.Fields {
		f := &e.cf.Fields[i]
		result[i] = jsonField{
			Name:       f.Name,
			Descriptor: f.Descriptor,
			Visibility: visibility(f.AccessFlags),
			Modifiers:  fieldModifiers(f),
			Attributes: buildAttributes(f.Attributes),
		}
		if ft, err := f.ParsedDescriptor(); err == nil {
			result[i].Type = ft.String()
		}
		result[i].Signature, _ = f.Signature()
		if v, ok := f.ConstantValue(); ok {
			result[i].Constant = jsonConstant(v)
		}
	}
	return result
}

func (e *JSONEncoder) buildMethods() []jsonMethod {
	result := make([]jsonMethod, len(e.cf.Methods))
	for i := range e.cf.Methods {
		m := &e.cf.Methods[i]
		jm := jsonMethod{
			Name:       m.Name,
			Descriptor: m.Descriptor,
			Visibility: visibility(m.AccessFlags),
			Modifiers:  methodModifiers(m),
			Attributes: buildAttributes(m.Attributes),
		}
		if md, err := m.ParsedDescriptor(); err == nil {
			jm.ReturnType = "void"
			if md.ReturnType != nil {
				jm.ReturnType = md.ReturnType.String()
			}
			for _, p := range md.Parameters {
				jm.Parameters = append(jm.Parameters, p.String())
			}
		}
		jm.Signature, _ = m.Signature()
		jm.Exceptions, _ = m.Exceptions()
		if code, ok := m.Code(); ok {
			jm.Code = &jsonCode{
				MaxStack:   code.MaxStack,
				MaxLocals:  code.MaxLocals,
				Length:     len(code.Code),
				Handlers:   len(code.ExceptionTable),
				Attributes: buildAttributes(code.Attributes),
			}
		}
		result[i] = jm
	}
	return result
}

func buildAttributes(as classfile.Attributes) []jsonAttribute {
	if len(as) == 0 {
		return nil
	}
	result := make([]jsonAttribute, len(as))
	for i, a := range as {
		result[i] = jsonAttribute{Name: a.Name(), Parsed: true}
		if u, ok := a.(*classfile.UnknownAttribute); ok {
			result[i].Parsed = false
			result[i].Length = len(u.Data)
		}
	}
	return result
}

// jsonConstant keeps numbers as numbers except the float values JSON cannot
// represent.
func jsonConstant(v any) any {
	switch f := v.(type) {
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Sprint(f)
		}
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
	}
	return v
}
