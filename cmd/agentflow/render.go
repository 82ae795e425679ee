package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Siddhant-K-code/agentflow-go/stream"
	"github.com/Siddhant-K-code/agentflow-go/workflow"
)

var (
	styleSucceeded = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleRunning   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	stylePending   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleUnknown   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleDim       = lipgloss.NewStyle().Faint(true)
)

// renderPhase colors a workflow or agent phase for terminal output.
func renderPhase(p workflow.Phase) string {
	switch p {
	case workflow.PhaseSucceeded:
		return styleSucceeded.Render(string(p))
	case workflow.PhaseFailed:
		return styleFailed.Render(string(p))
	case workflow.PhaseRunning:
		return styleRunning.Render(string(p))
	case workflow.PhasePending:
		return stylePending.Render(string(p))
	default:
		return styleUnknown.Render(string(p))
	}
}

// renderLog formats one log entry the way `kubectl logs` would: timestamp,
// level, agent, message.
func renderLog(entry workflow.LogEntry) string {
	ts := entry.Timestamp.Format("15:04:05")
	level := strings.ToUpper(entry.Level)
	var styled string
	switch level {
	case "ERROR":
		styled = styleFailed.Render(level)
	case "WARN", "WARNING":
		styled = stylePending.Render(level)
	case "DEBUG":
		styled = styleDim.Render(level)
	default:
		styled = styleRunning.Render(level)
	}
	agent := ""
	if entry.AgentName != "" {
		agent = "[" + entry.AgentName + "] "
	}
	return fmt.Sprintf("%s %s %s%s", styleDim.Render(ts), styled, agent, entry.Message)
}

// renderEvent formats one live stream event.
func renderEvent(evt stream.Event) string {
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	prefix := styleDim.Render(ts.Format("15:04:05"))

	switch evt.Type {
	case stream.EventLogEmitted:
		if evt.Log != nil {
			return renderLog(*evt.Log)
		}
		return fmt.Sprintf("%s %s", prefix, evt.Message)
	case stream.EventStatusChanged:
		line := fmt.Sprintf("%s status changed", prefix)
		if evt.Status != nil {
			line += " → " + renderPhase(evt.Status.Phase)
			for _, exec := range evt.Status.AgentExecutions {
				line += fmt.Sprintf("\n  %s %s", exec.AgentName, renderPhase(exec.State))
			}
		}
		return line
	case stream.EventCompleted:
		return fmt.Sprintf("%s %s %s", prefix, styleSucceeded.Render("completed"), evt.Message)
	case stream.EventFailed:
		return fmt.Sprintf("%s %s %s", prefix, styleFailed.Render("failed"), evt.Message)
	default:
		if evt.Err != nil {
			return fmt.Sprintf("%s %s %v", prefix, stylePending.Render("undecodable frame:"), evt.Err)
		}
		return fmt.Sprintf("%s %s %s", prefix, styleUnknown.Render(string(evt.Type)), evt.Message)
	}
}
