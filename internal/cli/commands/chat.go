package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	commonhttp "github.com/Kathan1010/LoanAdviser/internal/common/http"
	"github.com/Kathan1010/LoanAdviser/internal/models"
	checkeligibility "github.com/Kathan1010/LoanAdviser/internal/workers/loan/check-eligibility"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type chatOptions struct {
	server    string
	sessionID string
	language  string
	timeout   time.Duration
}

type chatTurnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Language  string `json:"language,omitempty"`
}

type chatTurnResponse struct {
	Response    string                    `json:"response"`
	NextSlot    models.Slot               `json:"next_slot"`
	Ready       bool                      `json:"ready"`
	Eligibility *models.EligibilityResult `json:"eligibility_result"`
}

func newChatCommand() *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "start an interactive conversation with the advisor",
		Long: `Start an interactive conversation. Each line you type is one turn;
type "exit" or send EOF to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.sessionID == "" {
				opts.sessionID = uuid.NewString()
			}
			return runChat(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.server, "server", "s", "http://localhost:8000", "advisor server base URL")
	cmd.Flags().StringVar(&opts.sessionID, "session", "", "resume an existing session id")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "language hint, e.g. en or hi")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 90*time.Second, "per-turn timeout")
	return cmd
}

func runChat(ctx context.Context, opts *chatOptions, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := commonhttp.NewClient(opts.timeout)
	url := strings.TrimRight(opts.server, "/") + "/api/v1/chat"

	fmt.Fprintf(out, "session %s\n", opts.sessionID)
	scanner := bufio.NewScanner(in)
	for {
		promptColor.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		var resp chatTurnResponse
		err := client.PostJSON(ctx, url, chatTurnRequest{
			SessionID: opts.sessionID,
			Message:   line,
			Language:  opts.language,
		}, &resp)
		if err != nil {
			return fmt.Errorf("chat turn failed: %w", err)
		}

		advisorColor.Fprintln(out, resp.Response)
		if resp.Ready && resp.Eligibility != nil {
			printVerdict(out, *resp.Eligibility)
		}
	}
}

func printVerdict(out io.Writer, r models.EligibilityResult) {
	if r.IsEligible {
		eligibleColor.Fprintf(out, "eligible: %s at EMI %s for %d years\n",
			checkeligibility.FormatRupees(r.EligibleAmount),
			checkeligibility.FormatRupees(r.SuggestedEMI),
			r.TenureYears)
	} else {
		rejectedColor.Fprintln(out, "not eligible:")
		for _, reason := range r.RejectionReasons {
			fmt.Fprintf(out, "  - %s\n", reason)
		}
	}
	for _, w := range r.Warnings {
		warningColor.Fprintf(out, "  ! %s\n", w)
	}
}
