package domain

import (
	"errors"
	"time"
)

var ErrInvalidBudget = errors.New("budget must be positive")
var ErrUnknownPaymentTerm = errors.New("unknown payment term")

// PaymentTerm selects how a proposal's budget is split into milestones.
// The wire values match the public API contract.
type PaymentTerm string

const (
	// TermEqualSplit splits the budget 50/50 between deposit and completion.
	TermEqualSplit PaymentTerm = "50-50"
	// TermUpfront bills the full budget at project start.
	TermUpfront PaymentTerm = "upfront"
	// TermThreeWay splits the budget 33/33/34 across start, midpoint and completion.
	TermThreeWay PaymentTerm = "milestones"
)

// Valid reports whether the term is one of the supported payment terms.
func (t PaymentTerm) Valid() bool {
	switch t {
	case TermEqualSplit, TermUpfront, TermThreeWay:
		return true
	}
	return false
}

// ScheduledPayment is a single entry of a computed milestone schedule, before
// it is persisted as a PaymentMilestone.
type ScheduledPayment struct {
	Title       string
	Amount      float64
	Description string
	DueDate     *time.Time
}

// MilestoneSchedule is an ordered payment plan. The first entry is always due
// at the project start date; every later entry has a nil due date, to be set
// by a follow-up workflow.
type MilestoneSchedule []ScheduledPayment

// Total returns the sum of all scheduled amounts.
func (ms MilestoneSchedule) Total() float64 {
	var sum float64
	for _, m := range ms {
		sum += m.Amount
	}
	return sum
}

// ComputeSchedule maps a budget and payment term onto a milestone schedule.
// It assumes a positive budget and a valid term; callers validate first.
//
// The split fractions are fixed literals. For the three-way term the final
// amount is computed as the remainder (budget minus the first two amounts) so
// the schedule always sums exactly to the budget, with no rounding gap.
func ComputeSchedule(totalBudget float64, term PaymentTerm, startDate time.Time) MilestoneSchedule {
	start := startDate

	switch term {
	case TermUpfront:
		return MilestoneSchedule{
			{
				Title:       "Full Payment (100%)",
				Amount:      totalBudget,
				Description: "100% upfront payment",
				DueDate:     &start,
			},
		}

	case TermThreeWay:
		first := totalBudget * 0.33
		second := totalBudget * 0.33
		// Remainder goes to completion. Subtracting the partial sum (not the
		// two terms one by one) keeps first+second+final bit-exact equal to
		// the budget.
		final := totalBudget - (first + second)
		return MilestoneSchedule{
			{
				Title:       "Start (33%)",
				Amount:      first,
				Description: "33% at project start",
				DueDate:     &start,
			},
			{
				Title:       "Midpoint (33%)",
				Amount:      second,
				Description: "33% at project midpoint",
			},
			{
				Title:       "Completion (34%)",
				Amount:      final,
				Description: "34% upon project completion",
			},
		}

	default: // TermEqualSplit
		half := totalBudget / 2
		return MilestoneSchedule{
			{
				Title:       "Deposit (50%)",
				Amount:      half,
				Description: "50% upfront payment",
				DueDate:     &start,
			},
			{
				Title:       "Completion (50%)",
				Amount:      half,
				Description: "50% upon project completion",
			},
		}
	}
}
