package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planboard/internal/plan"
)

type groupMode int

const (
	groupResponsible groupMode = iota
	groupSector
)

func (g groupMode) String() string {
	if g == groupSector {
		return "By Sector"
	}
	return "By Responsible"
}

type chartsModel struct {
	width  int
	height int

	actions   []plan.ProcessedAction
	breakdown []plan.StatusSlice
	groups    []plan.GroupCount
	mode      groupMode

	chart barchart.Model
}

func newChartsModel() chartsModel {
	return chartsModel{
		chart: barchart.New(60, 12),
	}
}

func (c *chartsModel) setSize(w, h int) {
	c.width = w
	c.height = h
	c.buildChart()
}

func (c *chartsModel) setActions(actions []plan.ProcessedAction) {
	c.actions = actions
	c.breakdown = plan.StatusBreakdown(actions)
	c.buildChart()
}

func (c chartsModel) update(msg tea.Msg) (chartsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			if c.mode == groupResponsible {
				c.mode = groupSector
			} else {
				c.mode = groupResponsible
			}
			c.buildChart()
		}
	}
	return c, nil
}

func (c *chartsModel) buildChart() {
	if c.mode == groupSector {
		c.groups = plan.BySector(c.actions)
	} else {
		c.groups = plan.ByResponsible(c.actions)
	}

	chartWidth := c.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if c.height > 34 {
		chartHeight = 14
	}

	c.chart = barchart.New(chartWidth, chartHeight)

	lateStyle := lipgloss.NewStyle().Foreground(colorError)
	onTimeStyle := lipgloss.NewStyle().Foreground(colorHighlight)
	doneStyle := lipgloss.NewStyle().Foreground(colorSuccess)

	labelWidth := 12
	if n := len(c.groups); n > 0 {
		labelWidth = max(4, min(16, chartWidth/n-1))
	}

	var bars []barchart.BarData
	for _, g := range c.groups {
		bars = append(bars, barchart.BarData{
			Label: truncate(g.Name, labelWidth),
			Values: []barchart.BarValue{
				{Name: string(plan.DelayLate), Value: float64(g.Late), Style: lateStyle},
				{Name: string(plan.DelayOnTime), Value: float64(g.OnTime), Style: onTimeStyle},
				{Name: string(plan.DelayDone), Value: float64(g.Done), Style: doneStyle},
			},
		})
	}

	c.chart.PushAll(bars)
	c.chart.Draw()
}

func (c chartsModel) view() string {
	w := c.width - 4

	if len(c.actions) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Charts"), "", mutedStyle.Render("No actions to chart."),
		))
	}

	respTab := inactiveTabStyle.Render(groupResponsible.String())
	sectorTab := inactiveTabStyle.Render(groupSector.String())
	if c.mode == groupResponsible {
		respTab = activeTabStyle.Render(groupResponsible.String())
	} else {
		sectorTab = activeTabStyle.Render(groupSector.String())
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Charts"), "  ", respTab, sectorTab,
	)

	nav := mutedStyle.Render("  ←/→: switch grouping")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			c.renderBreakdown(w), "",
			c.chart.View(), "",
			c.renderLegend(), "",
			c.renderGroupTable(w), "",
			nav,
		),
	)
}

func (c chartsModel) renderBreakdown(w int) string {
	barWidth := max(10, min(40, w-40))
	var rows []string
	rows = append(rows, subtitleStyle.Render("Status"))
	for _, s := range c.breakdown {
		filled := s.Percentage * barWidth / 100
		bar := lipgloss.NewStyle().Foreground(delayColor(s.Status)).Render(strings.Repeat("█", filled)) +
			lipgloss.NewStyle().Foreground(colorSubtle).Render(strings.Repeat("░", barWidth-filled))
		rows = append(rows, fmt.Sprintf("  %-10s %s %3d  %3d%%", s.Status, bar, s.Count, s.Percentage))
	}
	return strings.Join(rows, "\n")
}

func (c chartsModel) renderLegend() string {
	var items []string
	for _, s := range []plan.DelayStatus{plan.DelayLate, plan.DelayOnTime, plan.DelayDone} {
		dot := lipgloss.NewStyle().Foreground(delayColor(s)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, s))
	}
	return "  " + strings.Join(items, "  ")
}

func (c chartsModel) renderGroupTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %9s %9s %9s", "Name", "Em Atraso", "No Prazo", "Concluído")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))
	for _, g := range c.groups {
		rows = append(rows, fmt.Sprintf("  %-24s %9d %9d %9d", truncate(g.Name, 24), g.Late, g.OnTime, g.Done))
	}
	return strings.Join(rows, "\n")
}
