package plan

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func processedHealth(t *testing.T, today string) []ProcessedAction {
	t.Helper()
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	out, err := Process(reg.Actions("saude_ona"), day(t, today))
	require.NoError(t, err)
	return out
}

func TestDefaultRegistry(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	plans := reg.Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, "saude_ona", plans[0].ID)
	assert.Equal(t, "10717", plans[0].Code)
	assert.Equal(t, "ambiental_iso14001", plans[2].ID)

	for _, p := range plans {
		assert.Len(t, reg.Actions(p.ID), 3, p.ID)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	p, err := reg.Plan("sst_iso45001")
	require.NoError(t, err)
	assert.Equal(t, "SST (ISO 45001)", p.Name)

	_, err = reg.Plan("nope")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	assert.NotNil(t, reg.Actions("nope"))
	assert.Empty(t, reg.Actions("nope"))
}

func TestRegistryActionsAreCopies(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	a := reg.Actions("saude_ona")
	a[0].Description = "changed"
	assert.NotEqual(t, "changed", reg.Actions("saude_ona")[0].Description)
}

func TestLoadRegistryRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad status",
			yaml: `
plans:
  - id: p
    actions:
      - {id: 1, action: a, start_date: "2024-01-01", end_date: "2024-01-02", status: "Feito"}
`,
			want: "invalid status",
		},
		{
			name: "bad date",
			yaml: `
plans:
  - id: p
    actions:
      - {id: 1, action: a, start_date: "2024-01-01", end_date: "02/01/2024", status: "Planejado"}
`,
			want: "parse date",
		},
		{
			name: "duplicate plan",
			yaml: `
plans:
  - id: p
  - id: p
`,
			want: "duplicate id",
		},
		{
			name: "duplicate action",
			yaml: `
plans:
  - id: p
    actions:
      - {id: 1, action: a, start_date: "2024-01-01", end_date: "2024-01-02", status: "Planejado"}
      - {id: 1, action: b, start_date: "2024-01-01", end_date: "2024-01-02", status: "Planejado"}
`,
			want: "duplicate action id",
		},
		{
			name: "end before start",
			yaml: `
plans:
  - id: p
    actions:
      - {id: 1, action: a, start_date: "2024-02-01", end_date: "2024-01-02", status: "Planejado"}
`,
			want: "before start date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestActionKey(t *testing.T) {
	assert.Equal(t, "saude_ona/2", ActionKey("saude_ona", 2))
	assert.NotEqual(t, ActionKey("a", 1), ActionKey("b", 1))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-07-15")
	require.NoError(t, err)
	_, offset := d.Zone()
	assert.Equal(t, -3*60*60, offset)
	assert.Equal(t, 15, d.Day())

	_, err = ParseDate("15/07/2024")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestClassifyExampleScenario(t *testing.T) {
	a := Action{ID: 1, Status: StatusInProgress, EndDate: "2024-07-15"}

	p, err := Classify(a, day(t, "2024-07-20"))
	require.NoError(t, err)
	assert.Equal(t, DelayLate, p.DelayStatus)

	p, err = Classify(a, day(t, "2024-07-10"))
	require.NoError(t, err)
	assert.Equal(t, DelayOnTime, p.DelayStatus)
}

func TestClassifyEndDateInclusive(t *testing.T) {
	a := Action{ID: 1, Status: StatusPlanned, EndDate: "2024-07-15"}

	lastMinute := time.Date(2024, 7, 15, 23, 59, 0, 0, Location)
	p, err := Classify(a, lastMinute)
	require.NoError(t, err)
	assert.Equal(t, DelayOnTime, p.DelayStatus)

	nextDay := time.Date(2024, 7, 16, 0, 0, 1, 0, Location)
	p, err = Classify(a, nextDay)
	require.NoError(t, err)
	assert.Equal(t, DelayLate, p.DelayStatus)
}

func TestClassifyUsesFixedOffset(t *testing.T) {
	a := Action{ID: 1, Status: StatusInProgress, EndDate: "2024-07-15"}

	// 02:00 UTC on the 16th is still the 15th at -03:00.
	p, err := Classify(a, time.Date(2024, 7, 16, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, DelayOnTime, p.DelayStatus)

	p, err = Classify(a, time.Date(2024, 7, 16, 4, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, DelayLate, p.DelayStatus)
}

func TestClassifyDoneIgnoresEndDate(t *testing.T) {
	for _, today := range []string{"2020-01-01", "2024-07-15", "2030-12-31"} {
		p, err := Classify(Action{Status: StatusDone, EndDate: "2024-07-15"}, day(t, today))
		require.NoError(t, err)
		assert.Equal(t, DelayDone, p.DelayStatus, today)
	}
}

func TestClassifyMalformedDate(t *testing.T) {
	_, err := Classify(Action{ID: 9, Status: StatusDone, EndDate: "soon"}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action 9")

	_, err = Process([]Action{{EndDate: "2024-01-01"}, {EndDate: "bad"}}, time.Now())
	assert.Error(t, err)
}

func TestProcessPreservesOrder(t *testing.T) {
	got := processedHealth(t, "2024-07-22")
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, DelayDone, got[0].DelayStatus)
	assert.Equal(t, DelayOnTime, got[1].DelayStatus)
	assert.Equal(t, DelayLate, got[2].DelayStatus)
}

func TestFilterAllEmptyReturnsOriginal(t *testing.T) {
	all := processedHealth(t, "2024-07-22")
	assert.Equal(t, all, Filter(all, FilterAll, ""))
}

func TestFilterByStatus(t *testing.T) {
	all := processedHealth(t, "2024-07-22")

	late := Filter(all, FilterLate, "")
	require.Len(t, late, 1)
	assert.Equal(t, 3, late[0].ID)

	done := Filter(all, FilterDone, "")
	require.Len(t, done, 1)
	assert.Equal(t, 1, done[0].ID)
}

func TestFilterSearchResponsible(t *testing.T) {
	all := processedHealth(t, "2024-07-22")

	// "Mariana" contains "ana" too.
	got := Filter(all, FilterAll, "ana")
	require.Len(t, got, 2)
	assert.Equal(t, "Ana Lima", got[0].Responsible)
	assert.Equal(t, "Mariana Costa", got[1].Responsible)

	// Status and query are a conjunction.
	late := Filter(all, FilterLate, "Ana")
	require.Len(t, late, 1)
	assert.Equal(t, "Mariana Costa", late[0].Responsible)

	done := Filter(all, FilterDone, "ANA")
	require.Len(t, done, 1)
	assert.Equal(t, "Ana Lima", done[0].Responsible)

	assert.Empty(t, Filter(all, FilterOnTime, "ana"))
}

func TestFilterSearchFields(t *testing.T) {
	all := processedHealth(t, "2024-07-22")

	assert.Len(t, Filter(all, FilterAll, "cirúrgico"), 1, "sector")
	assert.Len(t, Filter(all, FilterAll, "HIGIENE"), 1, "description")
	assert.Len(t, Filter(all, FilterAll, "2"), 1, "stringified id")
	assert.Empty(t, Filter(all, FilterAll, "zzz"))
}

func TestFilterIdempotent(t *testing.T) {
	all := processedHealth(t, "2024-07-22")
	for _, f := range StatusFilters {
		for _, q := range []string{"", "a", "Souza", "qualidade"} {
			once := Filter(all, f, q)
			assert.Equal(t, once, Filter(once, f, q), "%s/%q", f, q)
		}
	}
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	all := processedHealth(t, "2024-07-22")
	got := Filter(all, FilterAll, "")
	got[0].Description = "changed"
	assert.NotEqual(t, "changed", all[0].Description)
}

func TestParseStatusFilter(t *testing.T) {
	f, err := ParseStatusFilter(" Late ")
	require.NoError(t, err)
	assert.Equal(t, FilterLate, f)

	_, err = ParseStatusFilter("overdue")
	assert.Error(t, err)

	assert.Equal(t, FilterLate, FilterAll.Next())
	assert.Equal(t, FilterAll, FilterDone.Next())
	assert.Equal(t, "Em Atraso", FilterLate.Label())
}

func TestStatusBreakdown(t *testing.T) {
	all := processedHealth(t, "2024-07-22")

	got := StatusBreakdown(all)
	require.Len(t, got, 3)
	assert.Equal(t, StatusSlice{Status: DelayDone, Count: 1, Percentage: 33}, got[0])
	assert.Equal(t, DelayOnTime, got[1].Status)
	assert.Equal(t, DelayLate, got[2].Status)
}

func TestStatusBreakdownOmitsEmpty(t *testing.T) {
	all := processedHealth(t, "2024-06-01")

	got := StatusBreakdown(all)
	require.Len(t, got, 2)
	assert.Equal(t, DelayDone, got[0].Status)
	assert.Equal(t, StatusSlice{Status: DelayOnTime, Count: 2, Percentage: 67}, got[1])

	assert.Empty(t, StatusBreakdown(nil))
}

func TestGroupAggregations(t *testing.T) {
	actions := []ProcessedAction{
		{Action: Action{Responsible: "Ana", Sector: "RH"}, DelayStatus: DelayLate},
		{Action: Action{Responsible: "Bia", Sector: "RH"}, DelayStatus: DelayDone},
		{Action: Action{Responsible: "Ana", Sector: "TI"}, DelayStatus: DelayOnTime},
		{Action: Action{Responsible: "Ana", Sector: "RH"}, DelayStatus: DelayLate},
	}

	byResp := ByResponsible(actions)
	require.Len(t, byResp, 2)
	assert.Equal(t, GroupCount{Name: "Ana", Late: 2, OnTime: 1}, byResp[0])
	assert.Equal(t, GroupCount{Name: "Bia", Done: 1}, byResp[1])

	bySector := BySector(actions)
	require.Len(t, bySector, 2)
	assert.Equal(t, GroupCount{Name: "RH", Late: 2, Done: 1}, bySector[0])
	assert.Equal(t, 3, bySector[0].Total())
	assert.Equal(t, GroupCount{Name: "TI", OnTime: 1}, bySector[1])
}
