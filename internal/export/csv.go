package export

import (
	"encoding/csv"
	"io"
	"time"

	"haccpcore/pkg/domain"
)

// subject is the plan, equipment, checklist, food item or task a row is
// about; point is the CCP step or checklist type beneath it.
var csvHeader = []string{
	"record", "id", "timestamp", "subject", "point",
	"parameter", "value", "units", "within_limits",
	"by", "description", "status", "follow_up_required", "follow_up_completed",
	"verified", "verified_by",
}

func csvTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// WriteCSV writes one row per temperature log, checklist item, cooling
// reading, sanitation completion, monitoring reading and corrective action.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	rows := [][]string{csvHeader}

	for _, l := range r.TemperatureLogs {
		rows = append(rows, []string{
			"temperature", l.ID, csvTime(l.Timestamp), r.EquipmentName(l.EquipmentID), "",
			"Temperature", formatFloat(l.Temperature), domain.TemperatureUnits, yesNo(l.WithinRange),
			l.RecordedBy, l.Notes, "", "", "",
			"", "",
		})
	}
	for _, c := range r.Checklists {
		for _, it := range c.Items {
			status, ts := "open", c.Date
			if it.Completed {
				status = "completed"
				if it.CompletedAt != nil {
					ts = *it.CompletedAt
				}
			}
			rows = append(rows, []string{
				"checklist_item", it.ID, csvTime(ts), c.Name, string(c.Type),
				it.Text, "", "", "",
				it.CompletedBy, it.Notes, status, "", "",
				"", "",
			})
		}
	}
	for _, l := range r.CoolingLogs {
		status := "in_progress"
		if l.Completed {
			status = "completed"
		}
		for _, reading := range l.Readings {
			rows = append(rows, []string{
				"cooling_reading", l.ID, csvTime(reading.Timestamp), l.FoodItem, r.ccpStep(l.CCPID),
				"Temperature", formatFloat(reading.Temperature), domain.TemperatureUnits, "",
				l.StartedBy, l.Notes, status, "", "",
				"", "",
			})
		}
	}
	for _, l := range r.SanitationLogs {
		rows = append(rows, []string{
			"sanitation", l.ID, csvTime(l.Timestamp), r.TaskName(l.TaskID), "",
			"", "", "", "",
			l.CompletedBy, l.Notes, "completed", "", "",
			"", "",
		})
	}
	for _, l := range r.MonitoringLogs {
		plan, ccp := r.Labels(l.CCPID)
		for _, reading := range l.Parameters {
			rows = append(rows, []string{
				"monitoring", l.ID, csvTime(l.Timestamp), plan, ccp,
				reading.Parameter, formatFloat(reading.Value), reading.Units, yesNo(reading.WithinLimits),
				l.MonitoredBy, l.Notes, "", "", "",
				yesNo(l.Verified), l.VerifiedBy,
			})
		}
	}
	for _, l := range r.CorrectiveActions {
		plan, ccp := r.Labels(l.CCPID)
		rows = append(rows, []string{
			"corrective_action", l.ID, csvTime(l.Timestamp), plan, ccp,
			"", "", "", "",
			l.TakenBy, l.Description, string(l.Status()), yesNo(l.FollowUpRequired), yesNo(l.FollowUpCompleted),
			yesNo(l.Verified), l.VerifiedBy,
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
