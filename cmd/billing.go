package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gpc/timesheets/internal/billing"
	"github.com/gpc/timesheets/internal/config"
	"github.com/gpc/timesheets/internal/model"
	"github.com/gpc/timesheets/internal/report"
	"github.com/gpc/timesheets/internal/timecalc"
	"github.com/gpc/timesheets/internal/trackingtime"
)

var (
	billingFrom   string
	billingTo     string
	billingOutput string
	billingBill   bool
)

var billingCmd = &cobra.Command{
	Use:   "billing <customer-name-or-id>",
	Short: "Generate a timesheet for a customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runBilling,
}

func init() {
	billingCmd.Flags().StringVar(&billingFrom, "from", "", "Start date (YYYY-MM-DD); defaults to January 1 of the current year")
	billingCmd.Flags().StringVar(&billingTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	billingCmd.Flags().StringVar(&billingOutput, "output", "", "Output HTML file (defaults to output_path from the config)")
	billingCmd.Flags().BoolVar(&billingBill, "bill", false, "After writing the report, mark the fetched events as billed")
}

func runBilling(cmd *cobra.Command, args []string) error {
	now := time.Now()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	from := timecalc.StartOfYear(now)
	if billingFrom != "" {
		d, err := time.Parse("2006-01-02", billingFrom)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --from value %q: %v\n", billingFrom, err)
			os.Exit(1)
		}
		from = timecalc.StartOfDay(d)
	}
	to := timecalc.EndOfDay(now)
	if billingTo != "" {
		d, err := time.Parse("2006-01-02", billingTo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --to value %q: %v\n", billingTo, err)
			os.Exit(1)
		}
		to = timecalc.EndOfDay(d)
	}

	ctx := context.Background()
	client := trackingtime.NewClient(cfg.BaseURL, cfg.AccountID, creds.Username, creds.Password)

	user, err := client.AuthenticateUser(ctx, cfg.AccountID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		os.Exit(1)
	}

	customer, err := resolveCustomer(ctx, client, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	events, err := client.UnbilledEvents(ctx, customer.ID, user.ID, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch events: %v\n", err)
		os.Exit(1)
	}

	rows, err := report.Aggregate(events, report.Options{
		SpanColumns: cfg.SpanColumns,
		DateFormat:  cfg.DateFormat,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	doc, err := report.Render(customer, user, rows, cfg.SpanColumns)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out := billingOutput
	if out == "" {
		out = cfg.OutputPath
	}
	if err := report.WriteFile(out, doc); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Timesheet written to %s (%d events)\n", out, len(events))

	if !billingBill {
		return nil
	}
	if !confirm(fmt.Sprintf("Mark %d events as billed for %s?", len(events), customer.Name)) {
		fmt.Println("Leaving events unbilled.")
		return nil
	}

	result, err := billing.MarkAllBilled(ctx, client, customer.ID, user.ID, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Marked %d of %d events before failing: %v\n", result.Marked, result.Total, err)
		os.Exit(1)
	}
	fmt.Printf("Marked %d events as billed.\n", result.Marked)
	return nil
}

// resolveCustomer looks the customer up by numeric ID when the argument
// parses as one, by exact name otherwise, and prints the resolved
// counterpart.
func resolveCustomer(ctx context.Context, client *trackingtime.Client, arg string) (model.Customer, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id != 0 {
		customer, err := client.CustomerByID(ctx, id)
		if err != nil {
			return model.Customer{}, err
		}
		fmt.Printf("(Customer name: %s)\n", customer.Name)
		return customer, nil
	}
	customer, err := client.CustomerByName(ctx, arg)
	if err != nil {
		return model.Customer{}, err
	}
	fmt.Printf("(Customer ID: %d)\n", customer.ID)
	return customer, nil
}

// confirm asks a yes/no question on the terminal, defaulting to no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
