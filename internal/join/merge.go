package join

import "github.com/gyeh/atexplorer/internal/model"

// Result is the output of Merge.
type Result struct {
	// Records holds exactly one row per input claim line, in input order.
	Records []model.MergedRecord
	// Plans is the deduplicated plan list in first-seen order.
	Plans []model.Plan
	// Participants indexes participants by identifier; first row wins.
	Participants map[string]*model.Participant

	UnmatchedPlan         int // claims whose Plan_ID found no plan
	UnmatchedParticipant  int // claims whose participant found no row
	DuplicatePlans        int
	DuplicateParticipants int
}

// Merge left-joins claims to plans on Plan_ID, then the result to
// participants on Hashed_Participant_ID. Null keys never match. Duplicate
// keys keep their first row so no claim line is ever repeated.
func Merge(parts []model.Participant, plans []model.Plan, claims []model.ClaimLine) *Result {
	res := &Result{
		Records:      make([]model.MergedRecord, len(claims)),
		Participants: make(map[string]*model.Participant, len(parts)),
	}

	for i := range parts {
		p := &parts[i]
		if p.ID == "" {
			continue
		}
		if _, dup := res.Participants[p.ID]; dup {
			res.DuplicateParticipants++
			continue
		}
		res.Participants[p.ID] = p
	}

	planIdx := make(map[string]*model.Plan, len(plans))
	for i := range plans {
		p := &plans[i]
		if p.ID == "" {
			continue
		}
		if _, dup := planIdx[p.ID]; dup {
			res.DuplicatePlans++
			continue
		}
		planIdx[p.ID] = p
		res.Plans = append(res.Plans, *p)
	}

	for i := range claims {
		c := &claims[i]
		r := &res.Records[i]
		r.ClaimID = c.ClaimID
		r.PlanID = c.PlanID
		r.ServiceDate = c.ServiceDate
		r.SupportItem = c.SupportItem
		r.ClaimedPrice = c.ClaimedPrice
		r.PaidPrice = c.PaidPrice
		r.BenchmarkPrice = c.BenchmarkPrice
		r.SourceSystem = c.SourceSystem
		r.ParticipantID = c.ParticipantID

		// claim left join plan
		var plan *model.Plan
		if c.PlanID != nil {
			plan = planIdx[*c.PlanID]
		}
		if plan != nil {
			r.ParticipantID = plan.ParticipantID
			r.PlanStartDate = plan.StartDate
			r.Budget = plan.Budget
			r.ManagementMode = plan.ManagementMode
		} else {
			res.UnmatchedPlan++
		}

		// then left join participant
		var part *model.Participant
		if r.ParticipantID != nil {
			part = res.Participants[*r.ParticipantID]
		}
		if part == nil {
			res.UnmatchedParticipant++
			continue
		}
		r.State = part.State
		r.MMMCode = part.MMMCode
		r.AgeBand = part.AgeBand
		flag := part.Degenerative
		r.Degenerative = &flag
	}

	return res
}

// PlanBase returns one draw row per plan enriched with its participant's
// State, MMM_Code and Age_Band. Paid is zero and DrawPct unset.
func (r *Result) PlanBase() []model.PlanDraw {
	out := make([]model.PlanDraw, len(r.Plans))
	for i, p := range r.Plans {
		d := &out[i]
		d.PlanID = p.ID
		d.ParticipantID = p.ParticipantID
		d.ManagementMode = p.ManagementMode
		d.StartDate = p.StartDate
		d.Budget = p.Budget
		if p.ParticipantID == nil {
			continue
		}
		if part := r.Participants[*p.ParticipantID]; part != nil {
			d.State = part.State
			d.MMMCode = part.MMMCode
			d.AgeBand = part.AgeBand
		}
	}
	return out
}
