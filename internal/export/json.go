package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/planboard/internal/plan"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	Plan       jsonPlan     `json:"plan"`
	Count      int          `json:"count"`
	Actions    []jsonAction `json:"actions"`
}

type jsonPlan struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Subtitle string `json:"subtitle,omitempty"`
}

type jsonAction struct {
	ID          int    `json:"id"`
	Action      string `json:"action"`
	Responsible string `json:"responsible"`
	Sector      string `json:"sector"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
	DelayStatus string `json:"delay_status"`
	FollowUp    string `json:"follow_up,omitempty"`
}

// ToJSON writes the plan's actions to a new file at path.
func ToJSON(p plan.Plan, actions []plan.ProcessedAction, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, p, actions, time.Now()); err != nil {
		return err
	}
	return f.Close()
}

func WriteJSON(w io.Writer, p plan.Plan, actions []plan.ProcessedAction, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Plan:       jsonPlan{ID: p.ID, Name: p.Name, Code: p.Code, Subtitle: p.Subtitle},
		Count:      len(actions),
		Actions:    make([]jsonAction, 0, len(actions)),
	}

	for _, a := range actions {
		export.Actions = append(export.Actions, jsonAction{
			ID:          a.ID,
			Action:      a.Description,
			Responsible: a.Responsible,
			Sector:      a.Sector,
			StartDate:   a.StartDate,
			EndDate:     a.EndDate,
			Status:      string(a.Status),
			DelayStatus: string(a.DelayStatus),
			FollowUp:    a.FollowUp,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
