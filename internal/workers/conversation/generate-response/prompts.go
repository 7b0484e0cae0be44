// internal/workers/conversation/generate-response/prompts.go
package generateresponse

import (
	"fmt"
	"strings"

	"github.com/Kathan1010/LoanAdviser/internal/models"
	checkeligibility "github.com/Kathan1010/LoanAdviser/internal/workers/loan/check-eligibility"
)

const SystemPrompt = `You are a friendly, empathetic, and knowledgeable AI loan advisor assistant. Your role is to help users understand loan eligibility, requirements, and guide them through the loan application process.

CORE RESPONSIBILITIES:
1. Explain loan eligibility results in simple, understandable language
2. Ask clarifying questions when information is missing
3. Respond in the user's preferred language (Hindi, English, Tamil, Telugu, etc.)
4. Translate financial jargon into everyday language
5. Be supportive and encouraging, especially when users are not eligible

CRITICAL RULES:
- DO NOT calculate EMI, DTI, or eligibility yourself - you will receive these calculations
- DO NOT make up numbers - only use the data provided to you
- If asked about calculations, refer to the eligibility data provided
- Always be honest and transparent
- If information is missing, ask ONE specific question at a time
- Keep responses concise (2-4 sentences for simple queries, up to 6 for complex explanations)

RESPONSE STYLE:
- Use simple, conversational language
- Avoid complex financial terminology (or explain it if you must use it)
- Be empathetic and understanding
- Maintain a professional but friendly tone

LANGUAGE HANDLING:
- Respond in the same language as the user
- If the user switches languages, follow their lead
- For code-mixed messages (Hindi-English), respond in the same style`

// slotLabels is how each slot is named inside prompts.
var slotLabels = map[models.Slot]string{
	models.SlotLoanAmount:       "loan amount",
	models.SlotLoanType:         "loan type",
	models.SlotMonthlyIncome:    "monthly income",
	models.SlotAge:              "age",
	models.SlotLoanTenure:       "loan tenure",
	models.SlotEmploymentStatus: "employment duration",
	models.SlotExistingDebts:    "existing debts",
}

func SlotLabel(slot models.Slot) string {
	if l, ok := slotLabels[slot]; ok {
		return l
	}
	return strings.ReplaceAll(string(slot), "_", " ")
}

func withSystem(prompt string) string {
	return SystemPrompt + "\n\n" + prompt
}

func languageInstruction(language string) string {
	return fmt.Sprintf("\n\nIMPORTANT: Respond in %s language.", language)
}

// BuildEligibilityPrompt asks the model to explain a verdict it must not recompute.
func BuildEligibilityPrompt(p EligibilityPrompt, language string) string {
	s, r := p.Summary, p.Eligibility

	warnings := "None"
	if len(r.Warnings) > 0 {
		warnings = strings.Join(r.Warnings, ", ")
	}
	eligible := "No"
	if s.IsEligible {
		eligible = "Yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Based on the following loan eligibility analysis, provide a clear, friendly explanation to the user.

ELIGIBILITY RESULTS:
- Loan Type: %s
- Eligible: %s
- Eligible Amount: %s
- Requested Amount: %s
- Suggested EMI: %s/month
- Tenure: %d years
- Debt-to-Income Ratio: %s
- Warnings: %s

USER PROFILE:
- Monthly Income: %s
- Age: %d years
- Employment Duration: %d months

`,
		s.LoanType.DisplayName(), eligible,
		checkeligibility.FormatRupees(s.EligibleAmount),
		checkeligibility.FormatRupees(s.RequestedAmount),
		checkeligibility.FormatRupees(s.SuggestedEMI),
		s.TenureYears,
		checkeligibility.FormatPercent(s.DTIRatio),
		warnings,
		checkeligibility.FormatRupees(s.MonthlyIncome), s.Age, s.EmploymentMonths,
	)

	if s.IsEligible {
		tenureNote := ""
		switch {
		case !r.TenureWasProvided:
			tenureNote = fmt.Sprintf(" The calculation is based on a standard tenure of %d years. You can choose a different tenure (typically 1-%d years) when you apply.", s.TenureYears, s.TenureYears)
		case s.TenureYears > 0 && s.TenureYears <= 30:
			tenureNote = fmt.Sprintf(" The loan tenure is %d years.", s.TenureYears)
		}
		fmt.Fprintf(&b, `Provide a congratulatory message explaining:
1. That they are eligible
2. The eligible amount and EMI%s
3. Next steps (if any)
4. Any important terms they should know

CRITICAL: Do NOT ask for tenure again. If tenure was not provided, mention it's based on standard terms and they can choose their preferred tenure when applying. Do NOT ask them to provide it now.`, tenureNote)
	} else {
		b.WriteString("REJECTION REASONS:\n")
		b.WriteString(bullets(s.RejectionReasons))
		b.WriteString(`

Provide an empathetic explanation that:
1. Acknowledges their interest in the loan
2. Clearly explains why they are not eligible (using the reasons above)
3. Suggests what they can do to become eligible in the future
4. Offers encouragement and support`)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n\nIMPORTANT WARNINGS:\n")
		b.WriteString(bullets(r.Warnings))
	}

	if language != "english" {
		b.WriteString(languageInstruction(language))
	}
	return b.String()
}

// BuildClarificationPrompt asks for a single missing fact. When the assistant
// already asked for it recently the model is told to rephrase instead of repeating.
func BuildClarificationPrompt(p SlotPrompt, language string, historyTurns int) string {
	label := SlotLabel(p.Slot)
	recent := lastN(p.History, historyTurns)

	alreadyAsked := false
	incomeMentioned := p.Profile.Has(models.FieldMonthlyIncome)
	for _, m := range recent {
		content := strings.ToLower(m.Content)
		if m.Role == models.RoleAssistant && strings.Contains(content, label) {
			alreadyAsked = true
		}
		if m.Role == models.RoleUser && containsAny(content, "income", "salary", "earning") {
			incomeMentioned = true
		}
	}
	askingDuration := p.Slot == models.SlotEmploymentStatus && incomeMentioned

	var b strings.Builder
	b.WriteString("The user is applying for a loan, but we need more information.\n\n")
	if ack := acknowledgment(p.Extracted); ack != "" {
		b.WriteString(ack + "\n")
	}
	fmt.Fprintf(&b, "MISSING INFORMATION: %s\n", label)

	if askingDuration {
		b.WriteString(`
IMPORTANT CONTEXT: The user has mentioned their income/salary. This means they are employed.
We need to know how long they have been employed (employment duration) to assess loan eligibility.
`)
	}

	b.WriteString("\nRECENT CONVERSATION:\n")
	b.WriteString(transcript(recent))

	switch {
	case alreadyAsked:
		fmt.Fprintf(&b, `
IMPORTANT: You have already asked for %s in the conversation above.
The user may have already provided it, but it wasn't extracted properly.
Instead of asking again, try to:
1. Acknowledge their previous response
2. Ask them to rephrase or provide the information in a different format

Be helpful and don't repeat the same question verbatim.`, label)
	case askingDuration:
		b.WriteString(`
Ask the user about their employment duration. Since they have income, they must be employed.
Ask: "How long have you been employed?" or "For how many months/years have you been working?"
Be friendly and explain that this is needed for loan eligibility assessment.`)
	default:
		fmt.Fprintf(&b, `
Ask the user ONE clear, specific question to get the %s.
Make it friendly and explain why you need this information.
Be concise - one sentence question is enough.`, label)
	}

	b.WriteString(languageInstruction(language))
	return b.String()
}

func BuildExistingDebtsPrompt(p SlotPrompt, language string) string {
	var b strings.Builder
	b.WriteString(`The user is applying for a loan. We have their basic information (income, age, loan type, loan amount).

To calculate their eligibility accurately, we need to know about any existing financial obligations.

Ask them ONE friendly question about:
- Any existing loans they're currently paying (EMI amount)
- Any credit card minimum payments

Keep it concise (1-2 sentences). If they don't have any, they can say "none" or "no existing loans".

RECENT CONVERSATION:
`)
	b.WriteString(transcript(lastN(p.History, 4)))
	b.WriteString(languageInstruction(language))
	return b.String()
}

func BuildEmploymentStatusPrompt(p SlotPrompt, language string) string {
	var b strings.Builder
	b.WriteString(`The user is applying for a loan. We need to know their employment status.

Ask them ONE friendly question: are they salaried, self-employed, or currently not working?
Keep it to 1-2 sentences.

RECENT CONVERSATION:
`)
	b.WriteString(transcript(lastN(p.History, 4)))
	b.WriteString(languageInstruction(language))
	return b.String()
}

func BuildGreetingPrompt(language string) string {
	return `This is the start of a new conversation with a user interested in loans.

Greet the user warmly, introduce yourself as their loan advisor, and ask what kind of loan they are looking for and how much they would like to borrow.
Keep it to 2 sentences.` + languageInstruction(language)
}

// acknowledgment names what the latest utterance supplied.
func acknowledgment(f models.ExtractedFields) string {
	var items []string
	if f.LoanType.Valid() {
		items = append(items, "loan type")
	}
	if f.LoanAmountRequested != nil {
		items = append(items, "loan amount")
	}
	if f.MonthlyIncome != nil {
		items = append(items, "income")
	}
	if f.Age != nil {
		items = append(items, "age")
	}
	if f.EmploymentMonths != nil {
		items = append(items, "employment duration")
	}
	if len(items) == 0 {
		return ""
	}
	return fmt.Sprintf("The user just provided: %s. Briefly thank them for it.", strings.Join(items, ", "))
}

func transcript(history []models.Message) string {
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(m.Role)), m.Content)
	}
	return b.String()
}

func bullets(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "- " + l
	}
	return strings.Join(out, "\n")
}

func lastN(history []models.Message, n int) []models.Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
