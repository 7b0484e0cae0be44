// internal/workers/loan/sequence-questions/sequencer.go
package sequencequestions

import "github.com/Kathan1010/LoanAdviser/internal/models"

// HistoryWindow is how many trailing messages are searched for an earlier question.
const HistoryWindow = 20

var (
	employmentKeywords = []string{"salaried", "self-employed", "employment", "employed", "working"}
	debtKeywords       = []string{"existing", "debt", "obligation", "emi", "credit card"}
)

type rule struct {
	slot  models.Slot
	fires func(p models.Profile, history []models.Message) bool
}

// rules are evaluated top to bottom; the first one that fires is the next question.
// A fact is unset when Profile.Has reports it absent; a stated zero is an answer.
var rules = []rule{
	{models.SlotGreeting, func(_ models.Profile, h []models.Message) bool {
		return !hasAssistantMessage(h)
	}},
	{models.SlotLoanAmount, func(p models.Profile, _ []models.Message) bool {
		return !p.Has(models.FieldLoanAmount)
	}},
	{models.SlotLoanType, func(p models.Profile, _ []models.Message) bool {
		return !p.LoanType.Valid()
	}},
	{models.SlotMonthlyIncome, func(p models.Profile, _ []models.Message) bool {
		return !p.Has(models.FieldMonthlyIncome)
	}},
	{models.SlotAge, func(p models.Profile, _ []models.Message) bool {
		return !p.Has(models.FieldAge)
	}},
	{models.SlotLoanTenure, func(p models.Profile, _ []models.Message) bool {
		return !p.Has(models.FieldLoanTenure)
	}},
	{models.SlotEmploymentStatus, func(p models.Profile, h []models.Message) bool {
		if models.Float64Value(p.MonthlyIncome) <= 0 {
			return false
		}
		if !models.AssistantMentioned(h, employmentKeywords...) {
			return true
		}
		return !p.Has(models.FieldEmploymentMonths)
	}},
	{models.SlotExistingDebts, func(_ models.Profile, h []models.Message) bool {
		return !models.AssistantMentioned(h, debtKeywords...)
	}},
}

// Next returns the slot to ask for, or SlotReady once every rule is satisfied.
// It depends only on its arguments.
func Next(profile models.Profile, history []models.Message) models.Slot {
	history = window(history)
	for _, r := range rules {
		if r.fires(profile, history) {
			return r.slot
		}
	}
	return models.SlotReady
}

// Remaining lists every slot whose rule still fires, in asking order.
func Remaining(profile models.Profile, history []models.Message) []models.Slot {
	history = window(history)
	out := []models.Slot{}
	for _, r := range rules {
		if r.fires(profile, history) {
			out = append(out, r.slot)
		}
	}
	return out
}

func window(history []models.Message) []models.Message {
	if len(history) > HistoryWindow {
		return history[len(history)-HistoryWindow:]
	}
	return history
}

func hasAssistantMessage(history []models.Message) bool {
	for _, m := range history {
		if m.Role == models.RoleAssistant {
			return true
		}
	}
	return false
}
