package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tokenseq/seqvm/pkg/parser"
	"github.com/tokenseq/seqvm/pkg/seqvm"
)

// programTable lays the program out one instruction per row.
func programTable(u *parser.Unit) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s %s", unitTitle(u), u.Type))
	t.AppendHeader(table.Row{"IC", "Label", "Instruction"})
	for pc, in := range u.Program.Insts() {
		t.AppendRow(table.Row{pc, in.Label, in.String()})
	}
	return t.Render()
}

// threadTable lists the live threads of ctx.
func threadTable(ctx *seqvm.ExecutionContext) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Step %d: %s", ctx.Steps(), ctx.Result()))
	t.AppendHeader(table.Row{"Thread", "IC", "Status", "Waiting on"})
	prog := ctx.Program()
	for _, th := range ctx.Threads() {
		t.AppendRow(table.Row{fmt.Sprintf("t%d", th.ID), th.IC, th.Status, prog.Inst(th.IC)})
	}
	return t.Render()
}
