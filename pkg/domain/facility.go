package domain

import (
	"fmt"
	"time"
)

// Facility entity types. They share the audit and error vocabulary of the
// HACCP records.
const (
	EntityEquipment      EntityType = "equipment"
	EntityTemperatureLog EntityType = "temperature_log"
	EntityAlert          EntityType = "alert"
	EntityCoolingLog     EntityType = "cooling_log"
	EntityChecklist      EntityType = "checklist"
	EntityChecklistItem  EntityType = "checklist_item"
	EntitySanitationTask EntityType = "sanitation_task"
	EntitySanitationLog  EntityType = "sanitation_log"
)

// TemperatureUnits is the scale every equipment range and reading uses.
const TemperatureUnits = "°F"

// FormatTemperature renders a reading as e.g. "38°F".
func FormatTemperature(v float64) string {
	return formatValue(v) + TemperatureUnits
}

// EquipmentType classifies cold-holding equipment.
type EquipmentType string

const (
	EquipmentCooler  EquipmentType = "cooler"
	EquipmentFreezer EquipmentType = "freezer"
)

// Valid reports whether t is a known equipment type.
func (t EquipmentType) Valid() bool {
	return t == EquipmentCooler || t == EquipmentFreezer
}

// Equipment is a cooler or freezer with a safe temperature range.
type Equipment struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Type    EquipmentType `json:"type"`
	MinTemp float64       `json:"minTemp"`
	MaxTemp float64       `json:"maxTemp"`
}

// Within reports whether temp lies in the safe range, bounds included.
func (e Equipment) Within(temp float64) bool {
	return temp >= e.MinTemp && temp <= e.MaxTemp
}

// TemperatureLog is one equipment temperature check.
type TemperatureLog struct {
	ID          string    `json:"id"`
	EquipmentID string    `json:"equipmentId"`
	Temperature float64   `json:"temperature"`
	Timestamp   time.Time `json:"timestamp"`
	WithinRange bool      `json:"isWithinRange"`
	Notes       string    `json:"notes,omitempty"`
	RecordedBy  string    `json:"recordedBy,omitempty"`
}

// AlertType is the severity of an alert.
type AlertType string

const (
	AlertDanger  AlertType = "danger"
	AlertWarning AlertType = "warning"
	AlertInfo    AlertType = "info"
)

// Alert is raised by the core when a check needs attention.
type Alert struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	Type            AlertType  `json:"type"`
	Timestamp       time.Time  `json:"timestamp"`
	Read            bool       `json:"isRead"`
	RelatedItemID   string     `json:"relatedItemId,omitempty"`
	RelatedItemType EntityType `json:"relatedItemType,omitempty"`
}

// CoolingReading is one temperature taken while food cools.
type CoolingReading struct {
	Temperature float64   `json:"temperature"`
	Timestamp   time.Time `json:"timestamp"`
}

// CoolingLog tracks a batch of food from hot to cold holding. CCPID links the
// batch to a CCP that monitors cooling.
type CoolingLog struct {
	ID            string           `json:"id"`
	FoodItem      string           `json:"foodItem"`
	CCPID         string           `json:"ccpId,omitempty"`
	StartTime     time.Time        `json:"startTime"`
	TargetEndTime time.Time        `json:"targetEndTime"`
	Readings      []CoolingReading `json:"readings"`
	Completed     bool             `json:"isCompleted"`
	CompletedAt   *time.Time       `json:"completedAt,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	StartedBy     string           `json:"startedBy,omitempty"`
}

// OnTrack reports whether the latest reading is below the first one. Logs with
// fewer than two readings are on track.
func (l CoolingLog) OnTrack() bool {
	if len(l.Readings) < 2 {
		return true
	}
	return l.Readings[len(l.Readings)-1].Temperature < l.Readings[0].Temperature
}

// ChecklistType names the shift a checklist belongs to.
type ChecklistType string

const (
	ChecklistOpening  ChecklistType = "opening"
	ChecklistClosing  ChecklistType = "closing"
	ChecklistCritical ChecklistType = "critical"
)

// Valid reports whether t is a known checklist type.
func (t ChecklistType) Valid() bool {
	switch t {
	case ChecklistOpening, ChecklistClosing, ChecklistCritical:
		return true
	}
	return false
}

// ChecklistItem is one tick box.
type ChecklistItem struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"timestamp,omitempty"`
	CompletedBy string     `json:"completedBy,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Checklist is a dated list of items. Completed is derived from the items.
type Checklist struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      ChecklistType   `json:"type"`
	Items     []ChecklistItem `json:"items"`
	Date      time.Time       `json:"date"`
	Completed bool            `json:"isCompleted"`
}

// CompletedItems counts ticked items.
func (c Checklist) CompletedItems() int {
	n := 0
	for _, it := range c.Items {
		if it.Completed {
			n++
		}
	}
	return n
}

// AllItemsCompleted reports whether the checklist has items and all are ticked.
func (c Checklist) AllItemsCompleted() bool {
	return len(c.Items) > 0 && c.CompletedItems() == len(c.Items)
}

// SanitationFrequency sets how often a cleaning task recurs.
type SanitationFrequency string

const (
	SanitationDaily     SanitationFrequency = "daily"
	SanitationWeekly    SanitationFrequency = "weekly"
	SanitationMonthly   SanitationFrequency = "monthly"
	SanitationQuarterly SanitationFrequency = "quarterly"
	SanitationCustom    SanitationFrequency = "custom"
)

// Valid reports whether f is a known frequency.
func (f SanitationFrequency) Valid() bool {
	switch f {
	case SanitationDaily, SanitationWeekly, SanitationMonthly, SanitationQuarterly, SanitationCustom:
		return true
	}
	return false
}

// SanitationArea is where a cleaning task happens.
type SanitationArea string

const (
	AreaKitchen  SanitationArea = "kitchen"
	AreaDining   SanitationArea = "dining"
	AreaStorage  SanitationArea = "storage"
	AreaRestroom SanitationArea = "restroom"
	AreaExterior SanitationArea = "exterior"
	AreaOther    SanitationArea = "other"
)

// Valid reports whether a is a known area.
func (a SanitationArea) Valid() bool {
	switch a {
	case AreaKitchen, AreaDining, AreaStorage, AreaRestroom, AreaExterior, AreaOther:
		return true
	}
	return false
}

// DefaultCustomDays applies to custom tasks without an interval.
const DefaultCustomDays = 14

// sanitationDueHour is the hour of day scheduled tasks fall due.
const sanitationDueHour = 9

// NextDue returns when a task with frequency f is next due after from.
// Daily, weekly and custom tasks fall due at 09:00 that many days later;
// monthly and quarterly tasks at 09:00 on the first of the month one or three
// months later. customDays below one uses DefaultCustomDays.
func NextDue(f SanitationFrequency, customDays int, from time.Time) time.Time {
	y, m, d := from.Date()
	at := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, sanitationDueHour, 0, 0, 0, from.Location())
	}
	switch f {
	case SanitationWeekly:
		return at(y, m, d+7)
	case SanitationMonthly:
		return at(y, m+1, 1)
	case SanitationQuarterly:
		return at(y, m+3, 1)
	case SanitationCustom:
		if customDays < 1 {
			customDays = DefaultCustomDays
		}
		return at(y, m, d+customDays)
	default:
		return at(y, m, d+1)
	}
}

// DueState classifies a task against the clock.
type DueState string

const (
	DueOverdue  DueState = "overdue"
	DueSoon     DueState = "due_soon"
	DueUpcoming DueState = "upcoming"
	DueInactive DueState = "inactive"
)

// DueSoonWindow is how close NextDue must be for a task to be due soon.
const DueSoonWindow = 24 * time.Hour

// SanitationTask is a recurring cleaning duty.
type SanitationTask struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Frequency     SanitationFrequency `json:"frequency"`
	CustomDays    int                 `json:"customDays,omitempty"`
	Area          SanitationArea      `json:"area"`
	AssignedTo    string              `json:"assignedTo,omitempty"`
	LastCompleted *time.Time          `json:"lastCompleted,omitempty"`
	NextDue       time.Time           `json:"nextDue"`
	Active        bool                `json:"isActive"`
}

// DueState reports whether the task is overdue, due within DueSoonWindow or
// further out. Inactive tasks are never due.
func (t SanitationTask) DueState(now time.Time) DueState {
	switch {
	case !t.Active:
		return DueInactive
	case t.NextDue.Before(now):
		return DueOverdue
	case t.NextDue.Before(now.Add(DueSoonWindow)):
		return DueSoon
	default:
		return DueUpcoming
	}
}

// SanitationLog records one completion of a task.
type SanitationLog struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	CompletedBy string    `json:"completedBy"`
	Timestamp   time.Time `json:"timestamp"`
	Notes       string    `json:"notes,omitempty"`
	PhotoURI    string    `json:"photoUri,omitempty"`
}

// Clone returns a deep copy of the cooling log.
func (l CoolingLog) Clone() CoolingLog {
	cp := l
	cp.Readings = append([]CoolingReading(nil), l.Readings...)
	cp.CompletedAt = cloneTimePtr(l.CompletedAt)
	return cp
}

// Clone returns a deep copy of the checklist.
func (c Checklist) Clone() Checklist {
	cp := c
	if c.Items != nil {
		cp.Items = make([]ChecklistItem, len(c.Items))
		for i, it := range c.Items {
			it.CompletedAt = cloneTimePtr(it.CompletedAt)
			cp.Items[i] = it
		}
	}
	return cp
}

// Clone returns a deep copy of the task.
func (t SanitationTask) Clone() SanitationTask {
	cp := t
	cp.LastCompleted = cloneTimePtr(t.LastCompleted)
	return cp
}

// TemperatureAlertMessage describes an out-of-range equipment reading.
func TemperatureAlertMessage(e Equipment, temp float64) string {
	side := "below"
	if temp > e.MaxTemp {
		side = "above"
	}
	return fmt.Sprintf("%s temperature is %s safe range (%s)", e.Name, side, FormatTemperature(temp))
}
