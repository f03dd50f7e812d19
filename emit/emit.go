// Package emit renders planner.AccessorPlan values into zero-dependency Go
// source. Generated code depends on nothing beyond
// fixed-width integer primitives, bool, float32 scaling and raw byte
// buffers — encoding/binary and math are used only where a plan's own
// semantics need them (aligned multi-byte loads and stores, rounding in a
// scaled signal's encode function), never as a dependency the caller of
// generated code must think about.
package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"

	"github.com/tegimeki/dbcgen/planner"
)

// Generate renders one Go source file containing an accessor bundle per
// plan, in package pkg. The output is gofmt-canonicalised before return.
func Generate(pkg string, plans []planner.AccessorPlan) ([]byte, error) {
	tmpl, err := template.New("file").Parse(fileTemplate)
	if err != nil {
		return nil, fmt.Errorf("emit: parse template: %w", err)
	}

	data := struct {
		Package     string
		NeedsBinary bool
		NeedsMath   bool
		Messages    []renderMessage
	}{
		Package:     pkg,
		NeedsBinary: needsBinary(plans),
		NeedsMath:   needsMath(plans),
		Messages:    buildMessages(plans),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("emit: render: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("emit: gofmt generated source: %w\n%s", err, buf.String())
	}
	return formatted, nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// needsBinary reports whether any signal's raw load/store goes through
// encoding/binary. Only widths of exactly 16, 32 or 64 bits take that path
// (see rawLoadStatements/storeStatements); other aligned widths such as 24
// or 40 bits fall back to the bit-walk and must not pull in the import.
func needsBinary(plans []planner.AccessorPlan) bool {
	for _, p := range plans {
		for _, sp := range p.Signals {
			if !sp.Aligned {
				continue
			}
			switch sp.Signal.Width {
			case 16, 32, 64:
				return true
			}
		}
	}
	return false
}

func needsMath(plans []planner.AccessorPlan) bool {
	for _, p := range plans {
		for _, sp := range p.Signals {
			// only a scaled signal's encode body calls math.Round
			if sp.EncodeOK && sp.Signal.IsScaled() {
				return true
			}
		}
	}
	return false
}
