package tasks

import (
	"math"
	"time"
)

// SubStatus is the progress of a single task.
type SubStatus string

const (
	SubNotStarted SubStatus = "Não Iniciado"
	SubInProgress SubStatus = "Em Andamento"
	SubDone       SubStatus = "Concluído"
)

var SubStatuses = []SubStatus{SubNotStarted, SubInProgress, SubDone}

func (s SubStatus) Valid() bool {
	switch s {
	case SubNotStarted, SubInProgress, SubDone:
		return true
	}
	return false
}

// Next cycles NotStarted -> InProgress -> Done -> NotStarted.
func (s SubStatus) Next() SubStatus {
	switch s {
	case SubNotStarted:
		return SubInProgress
	case SubInProgress:
		return SubDone
	}
	return SubNotStarted
}

// Task is a sub-division of an action. ActionID is a plan.ActionKey.
type Task struct {
	ID          string    `json:"id"`
	ActionID    string    `json:"actionId"`
	Description string    `json:"action"`
	Responsible string    `json:"responsible"`
	Sector      string    `json:"sector"`
	Status      SubStatus `json:"status"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Order       int       `json:"order"`
	FollowUp    string    `json:"followUp,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Draft holds user-entered task fields.
type Draft struct {
	Description string
	Responsible string
	Sector      string
	Status      SubStatus
	StartDate   string
	EndDate     string
	FollowUp    string
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Description *string
	Responsible *string
	Sector      *string
	Status      *SubStatus
	StartDate   *string
	EndDate     *string
	FollowUp    *string
}

// DateRange is the owning action's [Start, End] window. Empty bounds are
// not enforced.
type DateRange struct {
	Start string
	End   string
}

type Progress struct {
	Total      int
	Completed  int
	Percentage int
}

// ComputeProgress counts done tasks. Percentage is 0 for an empty list.
func ComputeProgress(list []Task) Progress {
	p := Progress{Total: len(list)}
	for _, t := range list {
		if t.Status == SubDone {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Completed) * 100 / float64(p.Total)))
	}
	return p
}

func (t Task) draft() Draft {
	return Draft{
		Description: t.Description,
		Responsible: t.Responsible,
		Sector:      t.Sector,
		Status:      t.Status,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		FollowUp:    t.FollowUp,
	}
}

func (p Patch) apply(t Task) Task {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Responsible != nil {
		t.Responsible = *p.Responsible
	}
	if p.Sector != nil {
		t.Sector = *p.Sector
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.FollowUp != nil {
		t.FollowUp = *p.FollowUp
	}
	return t
}
