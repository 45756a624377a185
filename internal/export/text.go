package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"haccpcore/pkg/domain"
)

// WriteText renders the report in the plain-text layout shared with staff:
// a header line, the facility logs, then HACCP monitoring logs and corrective
// actions.
func WriteText(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) { fmt.Fprintf(bw, format, args...) }

	p("HACCP Export - %s to %s\n\n", formatDate(r.Window.Start), formatDate(r.Window.End))

	p("TEMPERATURE LOGS\n")
	p("----------------\n")
	if len(r.TemperatureLogs) == 0 {
		p("No temperature logs for this period.\n")
	}
	for _, l := range r.TemperatureLogs {
		verdict := "(Within Range)"
		if !l.WithinRange {
			verdict = "(OUT OF RANGE)"
		}
		p("%s - %s: %s %s\n", formatDate(l.Timestamp), r.EquipmentName(l.EquipmentID), domain.FormatTemperature(l.Temperature), verdict)
	}
	p("\n")

	p("CHECKLISTS\n")
	p("----------\n")
	if len(r.Checklists) == 0 {
		p("No checklists for this period.\n")
	}
	for _, c := range r.Checklists {
		state := "(INCOMPLETE)"
		if c.Completed {
			state = "(COMPLETED)"
		}
		p("%s - %s Checklist: %d/%d completed %s\n", formatDate(c.Date), strings.ToUpper(string(c.Type)), c.CompletedItems(), len(c.Items), state)
		for _, it := range c.Items {
			mark := "✗"
			if it.Completed {
				mark = "✓"
			}
			p("  - %s: %s", it.Text, mark)
			if it.Notes != "" {
				p(" (Note: %s)", it.Notes)
			}
			p("\n")
		}
		p("\n")
	}

	p("COOLING LOGS\n")
	p("------------\n")
	if len(r.CoolingLogs) == 0 {
		p("No cooling logs for this period.\n")
	}
	for _, l := range r.CoolingLogs {
		p("%s - %s\n", formatDate(l.StartTime), l.FoodItem)
		if step := r.ccpStep(l.CCPID); step != "" {
			p("  CCP: %s\n", step)
		}
		for i, reading := range l.Readings {
			label := "Start"
			if i > 0 {
				label = "Reading " + strconv.Itoa(i)
			}
			p("  %s: %s at %s\n", label, domain.FormatTemperature(reading.Temperature), formatClock(reading.Timestamp))
		}
		status := "In Progress"
		if l.Completed {
			status = "Completed"
		}
		p("  Status: %s\n", status)
		p("\n")
	}

	p("SANITATION LOGS\n")
	p("--------------\n")
	if len(r.SanitationLogs) == 0 {
		p("No sanitation logs for this period.\n")
	}
	for _, l := range r.SanitationLogs {
		p("%s - %s\n", formatDate(l.Timestamp), r.TaskName(l.TaskID))
		p("  Completed by: %s\n", orUnknown(l.CompletedBy))
		if l.Notes != "" {
			p("  Notes: %s\n", l.Notes)
		}
		p("\n")
	}

	p("HACCP MONITORING LOGS\n")
	p("--------------------\n")
	if len(r.MonitoringLogs) == 0 {
		p("No HACCP monitoring logs for this period.\n")
	}
	for _, l := range r.MonitoringLogs {
		plan, ccp := r.Labels(l.CCPID)
		p("%s - %s: %s\n", formatDate(l.Timestamp), plan, ccp)
		for _, reading := range l.Parameters {
			p("  Measurement: %s\n", domain.FormatReading(reading))
			p("  Within limits: %s\n", yesNo(reading.WithinLimits))
		}
		p("  Monitored by: %s\n", orUnknown(l.MonitoredBy))
		if l.Notes != "" {
			p("  Notes: %s\n", l.Notes)
		}
		p("  Verified: %s\n", yesNo(l.Verified))
		if l.VerifiedBy != "" {
			p("  Verified by: %s\n", l.VerifiedBy)
		}
		p("\n")
	}
	p("\n")

	p("HACCP CORRECTIVE ACTIONS\n")
	p("------------------------\n")
	if len(r.CorrectiveActions) == 0 {
		p("No corrective actions for this period.\n")
	}
	for _, l := range r.CorrectiveActions {
		plan, ccp := r.Labels(l.CCPID)
		p("%s - %s: %s\n", formatDate(l.Timestamp), plan, ccp)
		p("  Description: %s\n", l.Description)
		p("  Action taken: %s\n", l.ActionTaken)
		p("  Performed by: %s\n", orUnknown(l.TakenBy))
		p("  Follow-up required: %s\n", yesNo(l.FollowUpRequired))
		if l.FollowUpRequired {
			p("  Follow-up completed: %s\n", yesNo(l.FollowUpCompleted))
			if l.FollowUpDescription != "" {
				p("  Follow-up notes: %s\n", l.FollowUpDescription)
			}
		}
		p("  Verified: %s\n", yesNo(l.Verified))
		if l.VerifiedBy != "" {
			p("  Verified by: %s\n", l.VerifiedBy)
		}
		p("\n")
	}
	return bw.Flush()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
