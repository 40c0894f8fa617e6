package ir

import (
	"fmt"
	"io"
)

// DumpTo writes a debug listing of fd to w: one line per block header,
// one column-aligned line per op beneath it, blocks in fd.Blocks order and
// each block's ops in the order of its Ops list.
// This is for debugging only — it is never parsed back in, and its format
// is not part of any persisted state.
func (fd *Funcdata) DumpTo(w io.Writer) {
	fmt.Fprintf(w, "%s @ %s:\n", fd.Name, fd.Entry)

	maxOpName := 0
	for _, b := range fd.Blocks {
		for _, op := range b.Ops {
			if l := len(op.Opcode.String()); l > maxOpName {
				maxOpName = l
			}
		}
	}

	for _, b := range fd.Blocks {
		fmt.Fprintf(w, "  block%d:\n", b.Index)
		for _, op := range b.Ops {
			line := fmt.Sprintf("%-*s", maxOpName, op.Opcode.String())
			if op.Output != nil {
				line = op.Output.String() + " = " + line
			}
			for i, in := range op.Input {
				if i > 0 {
					line += ","
				}
				line += " " + in.String()
			}
			fmt.Fprintf(w, "    %-6s %s\n", op.Seq.Addr, line)
		}
	}
}
