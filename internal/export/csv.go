package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sadopc/planboard/internal/plan"
)

var csvHeader = []string{"ID", "Ação", "Responsável", "Setor", "Início", "Fim", "Status", "Situação", "Acompanhamento"}

// ToCSV writes the actions to a new file at path.
func ToCSV(actions []plan.ProcessedAction, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, actions); err != nil {
		return err
	}
	return f.Close()
}

func WriteCSV(out io.Writer, actions []plan.ProcessedAction) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, a := range actions {
		row := []string{
			strconv.Itoa(a.ID),
			a.Description,
			a.Responsible,
			a.Sector,
			a.StartDate,
			a.EndDate,
			string(a.Status),
			string(a.DelayStatus),
			a.FollowUp,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
