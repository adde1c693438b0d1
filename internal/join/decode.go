package join

import (
	"github.com/shopspring/decimal"

	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/normalize"
)

// DecodeParticipants reads a normalized participant table and derives the
// degenerative flag for every row.
func DecodeParticipants(t *model.Table, cls *normalize.Classifier) []model.Participant {
	var (
		id    = t.Index(model.ColParticipantID)
		state = t.Index(model.ColState)
		mmm   = t.Index(model.ColMMMCode)
		age   = t.Index(model.ColAgeBand)
		dis   = t.Index(model.ColPrimaryDisability)
	)
	out := make([]model.Participant, t.Len())
	for i := range out {
		p := &out[i]
		p.ID, _ = t.Cell(i, id)
		p.State = t.Ptr(i, state)
		p.MMMCode = t.Ptr(i, mmm)
		p.AgeBand = t.Ptr(i, age)
		p.PrimaryDisability = t.Ptr(i, dis)
		p.Degenerative = cls.Degenerative(p.PrimaryDisability)
	}
	return out
}

// DecodePlans reads a normalized plan table. Unparseable dates and budgets
// become null.
func DecodePlans(t *model.Table) []model.Plan {
	var (
		id     = t.Index(model.ColPlanID)
		part   = t.Index(model.ColParticipantID)
		start  = t.Index(model.ColPlanStartDate)
		budget = t.Index(model.ColBudget)
		mode   = t.Index(model.ColPlanMode)
	)
	out := make([]model.Plan, t.Len())
	for i := range out {
		p := &out[i]
		p.ID, _ = t.Cell(i, id)
		p.ParticipantID = t.Ptr(i, part)
		if v, ok := t.Cell(i, start); ok {
			p.StartDate = normalize.ParseDate(v)
		}
		if v, ok := t.Cell(i, budget); ok {
			p.Budget = normalize.ParseMoney(v)
		}
		p.ManagementMode = t.Ptr(i, mode)
	}
	return out
}

// DecodeClaims reads a normalized claim-line table.
func DecodeClaims(t *model.Table) []model.ClaimLine {
	var (
		claim     = t.Index(model.ColClaimID)
		plan      = t.Index(model.ColPlanID)
		part      = t.Index(model.ColParticipantID)
		service   = t.Index(model.ColServiceDate)
		item      = t.Index(model.ColSupportItem)
		claimed   = t.Index(model.ColClaimedPrice)
		paid      = t.Index(model.ColPaidPrice)
		benchmark = t.Index(model.ColBenchmarkPrice)
		source    = t.Index(model.ColSourceSystem)
	)
	out := make([]model.ClaimLine, t.Len())
	for i := range out {
		c := &out[i]
		c.ClaimID = t.Ptr(i, claim)
		c.PlanID = t.Ptr(i, plan)
		c.ParticipantID = t.Ptr(i, part)
		if v, ok := t.Cell(i, service); ok {
			c.ServiceDate = normalize.ParseDate(v)
		}
		c.SupportItem = t.Ptr(i, item)
		c.ClaimedPrice = money(t, i, claimed)
		c.PaidPrice = money(t, i, paid)
		c.BenchmarkPrice = money(t, i, benchmark)
		c.SourceSystem = t.Ptr(i, source)
	}
	return out
}

func money(t *model.Table, row, idx int) decimal.NullDecimal {
	v, ok := t.Cell(row, idx)
	if !ok {
		return decimal.NullDecimal{}
	}
	return normalize.ParseMoney(v)
}
