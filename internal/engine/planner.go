// Package engine plans the statements turning a destination schema into a
// source schema and runs them.
package engine

import (
	"db-sync/internal/schema"
)

// Action tells what happens to one table.
type Action string

const (
	ActionCreate    Action = "create"
	ActionAlter     Action = "alter"
	ActionRename    Action = "rename"
	ActionUnchanged Action = "unchanged"
	ActionDrop      Action = "drop"
)

// Options tunes the planner. The zero value pairs tables by name and keeps
// the source order.
type Options struct {
	// Renames maps a destination table name to the source table it becomes.
	Renames map[string]string
	// OrderByDependencies plans referenced tables before the tables holding
	// foreign keys to them.
	OrderByDependencies bool
}

// TableReport describes the statements planned for one table.
type TableReport struct {
	Name       string
	Previous   string // destination name when the table is renamed
	Action     Action
	Statements []string
}

// Plan is the result of a comparison.
type Plan struct {
	Statements []string
	Tables     []TableReport
	// Warnings lists elements the dialect cannot express. Statements touching
	// them are incomplete.
	Warnings []string
}

// Changes counts the planned statements of the table named name.
func (p *Plan) Changes(name string) int {
	for _, r := range p.Tables {
		if r.Name == name {
			return len(r.Statements)
		}
	}
	return 0
}

type Planner struct {
	dialect schema.Dialect
	opts    Options
}

func NewPlanner(d schema.Dialect, opts Options) *Planner {
	return &Planner{dialect: d, opts: opts}
}

// Plan compares the source tables with the destination tables. Every source
// table is altered from its destination counterpart, or created when it has
// none. Destination tables left unpaired are dropped afterwards, in
// destination order. Renamed destination tables are updated in place.
func (p *Planner) Plan(source, destination []*schema.Table) *Plan {
	if p.opts.OrderByDependencies {
		source = schema.SortByDependencies(source)
	}

	plan := &Plan{}
	paired := make([]bool, len(destination))
	for _, src := range source {
		report := TableReport{Name: src.Name}
		if i := p.pair(src, destination, paired); i < 0 {
			report.Action = ActionCreate
			report.Statements = src.Create(p.dialect)
		} else {
			paired[i] = true
			dst := destination[i]
			from := dst.Name
			report.Statements = dst.Alter(p.dialect, src)
			switch {
			case from != src.Name:
				report.Action, report.Previous = ActionRename, from
			case len(report.Statements) == 0:
				report.Action = ActionUnchanged
			default:
				report.Action = ActionAlter
			}
		}
		if len(report.Statements) > 0 {
			plan.Warnings = append(plan.Warnings, schema.Unavailable(p.dialect, src)...)
		}
		plan.add(report)
	}

	for i, dst := range destination {
		if paired[i] {
			continue
		}
		plan.add(TableReport{Name: dst.Name, Action: ActionDrop, Statements: dst.Drop(p.dialect)})
	}
	return plan
}

func (p *Plan) add(r TableReport) {
	p.Tables = append(p.Tables, r)
	p.Statements = append(p.Statements, r.Statements...)
}

// pair returns the index of the destination table src is compared with, or
// -1. An explicit rename wins over a table of the same name.
func (p *Planner) pair(src *schema.Table, destination []*schema.Table, paired []bool) int {
	for i, dst := range destination {
		if !paired[i] && p.opts.Renames[dst.Name] == src.Name && dst.Name != src.Name {
			return i
		}
	}
	for i, dst := range destination {
		if paired[i] || dst.Name != src.Name {
			continue
		}
		if to, ok := p.opts.Renames[dst.Name]; ok && to != dst.Name {
			continue
		}
		return i
	}
	return -1
}

// Statements returns the statements turning destination into source, in
// source order followed by drops.
func Statements(d schema.Dialect, source, destination []*schema.Table) []string {
	return NewPlanner(d, Options{}).Plan(source, destination).Statements
}
