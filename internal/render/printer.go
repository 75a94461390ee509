// Package render prints the human-readable output of opfyx commands:
// bordered tables and key-value detail blocks.
package render

import (
	"fmt"
	"io"
	"strings"

	awsecs "tasnim.dev/opfyx/internal/aws/ecs"
	awslogs "tasnim.dev/opfyx/internal/aws/logs"
	"tasnim.dev/opfyx/internal/utils"
)

var (
	ClusterHeaders   = []string{"Arn", "Name", "Status", "Running", "Services"}
	TaskHeaders      = []string{"Task Id", "Group", "AZ", "Cpu", "Memory", "Status", "Task Def"}
	ContainerHeaders = []string{"Name", "ID", "Image", "Exit Code", "Status"}
)

type Printer struct {
	w     io.Writer
	theme Theme
}

// NewPrinter returns a printer writing to w. Colors are used only when
// color is set, normally when w is a terminal.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, theme: NewTheme(color)}
}

func (p *Printer) Table(t *Table) error {
	_, err := fmt.Fprintln(p.w, t.render(p.theme))
	return err
}

// Detail returns a detail builder styled for this printer.
func (p *Printer) Detail(labelWidth int) *DetailBuilder {
	return newDetailBuilder(labelWidth, p.theme)
}

func (p *Printer) PrintDetail(d *DetailBuilder) error {
	_, err := fmt.Fprint(p.w, d.String())
	return err
}

func (p *Printer) ClusterRow(c awsecs.ECSCluster) []string {
	return []string{
		c.ARN,
		c.Name,
		p.theme.Status(c.Status),
		fmt.Sprint(c.RunningTasks),
		fmt.Sprint(c.ActiveServices),
	}
}

func (p *Printer) TaskRow(t awsecs.ECSTask) []string {
	return []string{
		t.TaskID,
		t.Group,
		t.AvailabilityZone,
		t.CPU,
		t.Memory,
		p.theme.Status(t.LastStatus),
		t.TaskDef,
	}
}

func (p *Printer) ContainerRow(c awsecs.ECSContainer) []string {
	return []string{
		c.Name,
		c.RuntimeID,
		c.Image,
		utils.IntOrEmpty(c.ExitCode),
		p.theme.Status(c.LastStatus),
	}
}

// TaskDetail writes the header block shown above a task's containers.
func (p *Printer) TaskDetail(snap *awsecs.ECSTaskSnapshot) error {
	d := p.Detail(14)
	d.Section("Task " + snap.TaskID)
	d.Row("Status", p.theme.Status(snap.LastStatus))
	d.Row("Task Def", snap.TaskDef)
	d.Row("Group", snap.Group)
	d.Row("AZ", snap.AvailabilityZone)
	d.Row("Cpu", snap.CPU)
	d.Row("Memory", snap.Memory)
	return p.PrintDetail(d)
}

// LogEvents writes one line per event, prefixed by its timestamp.
func (p *Printer) LogEvents(events []awslogs.LogEvent) error {
	for _, e := range events {
		ts := utils.TimeOrDash(e.Timestamp, utils.DateTimeSec)
		if p.theme.Color {
			ts = p.theme.Label.Render(ts)
		}
		if _, err := fmt.Fprintf(p.w, "%s  %s\n", ts, strings.TrimRight(e.Message, "\n")); err != nil {
			return err
		}
	}
	return nil
}
