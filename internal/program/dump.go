package program

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Dump writes a readable listing of both programs: dependencies, parameters
// and the invocation body grouped by execution order.
func (s *Set) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, prog := range []*Program{s.Vertex, s.Fragment} {
		prog.dump(bw)
	}
	return bw.Flush()
}

func (p *Program) dump(w *bufio.Writer) {
	fmt.Fprintf(w, "%s program\n", p.kind)
	if len(p.deps) > 0 {
		fmt.Fprintf(w, "  dependencies: %s\n", strings.Join(p.deps, ", "))
	}
	for _, u := range p.uniforms {
		if u.auto != AutoNone {
			fmt.Fprintf(w, "  uniform %s %s [auto]\n", u.typ, u.name)
		} else {
			fmt.Fprintf(w, "  uniform %s %s\n", u.typ, u.name)
		}
	}
	fn := p.main
	for _, group := range [][]*Parameter{fn.inputs, fn.outputs, fn.locals} {
		for _, param := range group {
			fmt.Fprintf(w, "  %s %s %s\n", param.scope, param.typ, param.name)
		}
	}
	fmt.Fprintf(w, "  %s {\n", fn.name)
	for _, inv := range fn.Invocations() {
		fmt.Fprintf(w, "    [%d] %s\n", inv.GroupOrder, inv)
	}
	fmt.Fprintln(w, "  }")
}
