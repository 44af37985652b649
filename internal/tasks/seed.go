package tasks

import (
	"time"

	"github.com/sadopc/planboard/internal/plan"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedTasks returns the sample sub-tasks for the health accreditation plan.
func SeedTasks() map[string][]Task {
	const planID = "saude_ona"
	a1 := plan.ActionKey(planID, 1)
	a2 := plan.ActionKey(planID, 2)
	a3 := plan.ActionKey(planID, 3)

	return map[string][]Task{
		a1: {
			{ID: "task-1-1", ActionID: a1, Description: "Revisar políticas existentes e benchmarks", Responsible: "Ana Lima", Sector: "Qualidade", Status: SubDone, StartDate: "2024-05-10", EndDate: "2024-05-20", Order: 0, CreatedAt: ts("2024-05-10T10:00:00Z"), UpdatedAt: ts("2024-05-20T15:30:00Z")},
			{ID: "task-1-2", ActionID: a1, Description: "Elaborar minuta da política", Responsible: "Ana Lima", Sector: "Qualidade", Status: SubDone, StartDate: "2024-05-21", EndDate: "2024-05-30", Order: 1, CreatedAt: ts("2024-05-10T10:00:00Z"), UpdatedAt: ts("2024-05-30T16:00:00Z")},
			{ID: "task-1-3", ActionID: a1, Description: "Submeter para aprovação da diretoria", Responsible: "Ana Lima", Sector: "Qualidade", Status: SubDone, StartDate: "2024-06-01", EndDate: "2024-06-10", Order: 2, CreatedAt: ts("2024-05-10T10:00:00Z"), UpdatedAt: ts("2024-06-10T14:00:00Z")},
			{ID: "task-1-4", ActionID: a1, Description: "Comunicar política aprovada aos colaboradores", Responsible: "Ana Lima", Sector: "Qualidade", Status: SubDone, StartDate: "2024-06-11", EndDate: "2024-06-15", Order: 3, CreatedAt: ts("2024-05-10T10:00:00Z"), UpdatedAt: ts("2024-06-15T11:00:00Z")},
		},
		a2: {
			{ID: "task-2-1", ActionID: a2, Description: "Desenvolver material didático do treinamento", Responsible: "Carlos Souza", Sector: "Enfermagem", Status: SubDone, StartDate: "2024-06-01", EndDate: "2024-06-15", Order: 0, CreatedAt: ts("2024-06-01T09:00:00Z"), UpdatedAt: ts("2024-06-15T17:00:00Z")},
			{ID: "task-2-2", ActionID: a2, Description: "Agendar sessões de treinamento", Responsible: "Carlos Souza", Sector: "Enfermagem", Status: SubDone, StartDate: "2024-06-16", EndDate: "2024-06-20", Order: 1, CreatedAt: ts("2024-06-01T09:00:00Z"), UpdatedAt: ts("2024-06-20T10:00:00Z")},
			{ID: "task-2-3", ActionID: a2, Description: "Realizar treinamento turno manhã", Responsible: "Carlos Souza", Sector: "Enfermagem", Status: SubDone, StartDate: "2024-06-21", EndDate: "2024-07-05", Order: 2, CreatedAt: ts("2024-06-01T09:00:00Z"), UpdatedAt: ts("2024-07-05T12:00:00Z")},
			{ID: "task-2-4", ActionID: a2, Description: "Realizar treinamento turno tarde", Responsible: "Carlos Souza", Sector: "Enfermagem", Status: SubInProgress, StartDate: "2024-07-06", EndDate: "2024-07-15", Order: 3, CreatedAt: ts("2024-06-01T09:00:00Z"), UpdatedAt: ts("2024-07-10T14:00:00Z")},
			{ID: "task-2-5", ActionID: a2, Description: "Realizar treinamento turno noite", Responsible: "Carlos Souza", Sector: "Enfermagem", Status: SubNotStarted, StartDate: "2024-07-16", EndDate: "2024-07-25", Order: 4, CreatedAt: ts("2024-06-01T09:00:00Z"), UpdatedAt: ts("2024-06-01T09:00:00Z")},
		},
		a3: {
			{ID: "task-3-1", ActionID: a3, Description: "Adaptar checklist OMS para realidade local", Responsible: "Mariana Costa", Sector: "Centro Cirúrgico", Status: SubDone, StartDate: "2024-06-05", EndDate: "2024-06-20", Order: 0, CreatedAt: ts("2024-06-05T08:00:00Z"), UpdatedAt: ts("2024-06-20T16:00:00Z")},
			{ID: "task-3-2", ActionID: a3, Description: "Treinar equipe cirúrgica no uso do checklist", Responsible: "Mariana Costa", Sector: "Centro Cirúrgico", Status: SubInProgress, StartDate: "2024-06-21", EndDate: "2024-07-05", Order: 1, CreatedAt: ts("2024-06-05T08:00:00Z"), UpdatedAt: ts("2024-07-01T10:00:00Z")},
			{ID: "task-3-3", ActionID: a3, Description: "Implementar fase piloto em 5 cirurgias", Responsible: "Mariana Costa", Sector: "Centro Cirúrgico", Status: SubNotStarted, StartDate: "2024-07-06", EndDate: "2024-07-15", Order: 2, CreatedAt: ts("2024-06-05T08:00:00Z"), UpdatedAt: ts("2024-06-05T08:00:00Z")},
			{ID: "task-3-4", ActionID: a3, Description: "Coletar feedback e ajustar checklist", Responsible: "Mariana Costa", Sector: "Centro Cirúrgico", Status: SubNotStarted, StartDate: "2024-07-16", EndDate: "2024-07-20", Order: 3, CreatedAt: ts("2024-06-05T08:00:00Z"), UpdatedAt: ts("2024-06-05T08:00:00Z")},
		},
	}
}
