package plan

import "strconv"

// Status is the stored progress of an action.
type Status string

const (
	StatusDone       Status = "Concluído"
	StatusInProgress Status = "Em Andamento"
	StatusPlanned    Status = "Planejado"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDone, StatusInProgress, StatusPlanned:
		return true
	}
	return false
}

// DelayStatus is the on-time/late/done classification derived from an
// action's status and end date.
type DelayStatus string

const (
	DelayDone   DelayStatus = "Concluído"
	DelayOnTime DelayStatus = "No Prazo"
	DelayLate   DelayStatus = "Em Atraso"
)

// DelayOrder is the fixed display order used by the status chart.
var DelayOrder = []DelayStatus{DelayDone, DelayOnTime, DelayLate}

type Plan struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Code     string `yaml:"code"`
	Subtitle string `yaml:"subtitle"`
	Link     string `yaml:"link"`
	Icon     string `yaml:"icon"`
}

type Action struct {
	ID          int    `yaml:"id" json:"id"`
	Description string `yaml:"action" json:"action"`
	Responsible string `yaml:"responsible" json:"responsible"`
	Sector      string `yaml:"sector" json:"sector"`
	StartDate   string `yaml:"start_date" json:"startDate"`
	EndDate     string `yaml:"end_date" json:"endDate"`
	Status      Status `yaml:"status" json:"status"`
	FollowUp    string `yaml:"follow_up" json:"followUp"`
}

// ProcessedAction is an Action with its derived delay status.
type ProcessedAction struct {
	Action
	DelayStatus DelayStatus `json:"delayStatus"`
}

// ActionKey identifies an action across plans. Action ids are only unique
// within their plan.
func ActionKey(planID string, actionID int) string {
	return planID + "/" + strconv.Itoa(actionID)
}
