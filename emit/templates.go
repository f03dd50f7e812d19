package emit

// fileTemplate renders one self-contained Go source file: every generated
// symbol is reachable through plain fixed-width types, bool and float32, so
// a consumer of the generated package never imports dbcgen, planner or
// emit itself.
const fileTemplate = `// Code generated by dbcgen. DO NOT EDIT.

package {{.Package}}

import (
{{- if .NeedsBinary}}
	"encoding/binary"
{{- end}}
	"errors"
{{- if .NeedsMath}}
	"math"
{{- end}}
)

// ErrBadLength is returned by a message's Decode method when the supplied
// payload's length does not match the message's DLC.
var ErrBadLength = errors.New("payload length does not match DLC")

{{range .Messages}}
{{$msg := .}}
const (
	{{.Name}}ID  uint32 = {{.ID}}
	{{.Name}}DLC int    = {{.DLC}}
{{- if .Extended}}
	{{.Name}}Extended = true
{{- end}}
{{- if .HasCycle}}
	{{.Name}}CycleTimeMillis uint32 = {{.CycleTime}}
{{- end}}
)

{{range .Signals}}
{{- if .Labels}}
const (
{{- range .Labels}}
	{{.ConstName}} int64 = {{.Raw}}
{{- end}}
)
{{- end}}
{{- end}}

// {{.Name}} holds one decoded instance of the {{.Name}} message.
type {{.Name}} struct {
{{- range .Signals}}
	{{.FieldName}} {{.GoType}}
{{- end}}
}

{{range .Signals}}
// Decode{{$msg.Name}}{{.FieldName}} extracts {{.FieldName}} from a {{$msg.Name}} payload.
func Decode{{$msg.Name}}{{.FieldName}}(payload []byte) {{.GoType}} {
	{{.DecodeBody}}
}
{{if .HasEncode}}
// Encode{{$msg.Name}}{{.FieldName}} writes {{.FieldName}} into a {{$msg.Name}} payload.
func Encode{{$msg.Name}}{{.FieldName}}(payload []byte, v {{.GoType}}) {
	{{.EncodeBody}}
}
{{end}}
{{end}}

// Decode validates payload against {{.Name}}DLC and, on success, populates
// every field of m from it. It reports false and ErrBadLength without
// touching m if the length does not match.
func (m *{{.Name}}) Decode(payload []byte) (bool, error) {
	if len(payload) != {{.Name}}DLC {
		return false, ErrBadLength
	}
{{- range .Signals}}
	m.{{.FieldName}} = Decode{{$msg.Name}}{{.FieldName}}(payload)
{{- end}}
	return true, nil
}

// UnmarshalBinary resets m to its zero value and decodes payload into it.
func (m *{{.Name}}) UnmarshalBinary(payload []byte) error {
	*m = {{.Name}}{}
	_, err := m.Decode(payload)
	return err
}

// MarshalBinary renders m into a new {{.Name}}DLC-byte payload.
func (m {{.Name}}) MarshalBinary() ([]byte, error) {
	payload := make([]byte, {{.Name}}DLC)
{{- range .Signals}}
{{- if .HasEncode}}
	Encode{{$msg.Name}}{{.FieldName}}(payload, m.{{.FieldName}})
{{- end}}
{{- end}}
	return payload, nil
}
{{end}}
`
