package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Kathan1010/LoanAdviser/internal/models"
	checkeligibility "github.com/Kathan1010/LoanAdviser/internal/workers/loan/check-eligibility"

	"github.com/spf13/cobra"
)

type checkOptions struct {
	loanType         string
	income           float64
	age              int
	employmentMonths int
	amount           float64
	tenure           int
	existingEMI      float64
	creditCardMin    float64
	asJSON           bool
}

func newCheckCommand() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "evaluate eligibility for a complete profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := opts.profile(cmd)
			if err != nil {
				return err
			}
			return runCheck(profile, opts.asJSON, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.loanType, "type", "t", "", "loan type: personal, home, car, education or business")
	f.Float64Var(&opts.income, "income", 0, "monthly income in rupees")
	f.IntVar(&opts.age, "age", 0, "age in years")
	f.IntVar(&opts.employmentMonths, "employment-months", 0, "months in current employment")
	f.Float64Var(&opts.amount, "amount", 0, "requested loan amount")
	f.IntVar(&opts.tenure, "tenure", 0, "tenure in years; defaults to the product maximum")
	f.Float64Var(&opts.existingEMI, "existing-emi", 0, "EMI already paid on other loans")
	f.Float64Var(&opts.creditCardMin, "card-min", 0, "credit card minimum payments per month")
	f.BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("income")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

// profile only sets the optional facts whose flags were given.
func (o *checkOptions) profile(cmd *cobra.Command) (models.Profile, error) {
	loanType, ok := models.ParseLoanType(o.loanType)
	if !ok {
		return models.Profile{}, fmt.Errorf("unknown loan type %q", o.loanType)
	}
	p := models.Profile{
		LoanType:      loanType,
		MonthlyIncome: models.Float64(o.income),
		Age:           models.Int(o.age),
	}
	changed := cmd.Flags().Changed
	if changed("employment-months") {
		p.EmploymentMonths = models.Int(o.employmentMonths)
	}
	if changed("amount") {
		p.LoanAmountRequested = models.Float64(o.amount)
	}
	if changed("tenure") {
		p.LoanTenureYears = models.Int(o.tenure)
	}
	if changed("existing-emi") {
		p.ExistingLoansEMI = models.Float64(o.existingEMI)
	}
	if changed("card-min") {
		p.ExistingCreditCardsMinPayment = models.Float64(o.creditCardMin)
	}
	return p, nil
}

func runCheck(profile models.Profile, asJSON bool, out io.Writer) error {
	result, err := checkeligibility.Evaluate(profile)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Summary models.LoanSummary       `json:"summary"`
			Result  models.EligibilityResult `json:"result"`
		}{checkeligibility.Summary(profile, result), result})
	}

	fmt.Fprintf(out, "%s, %d years, DTI %s\n",
		profile.LoanType.DisplayName(), result.TenureYears, checkeligibility.FormatPercent(result.DTIRatio))
	if result.IsEligible {
		fmt.Fprintln(out, result.ApprovalMessage)
	}
	printVerdict(out, result)
	return nil
}
