package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gpc/timesheets/internal/config"
	"github.com/gpc/timesheets/internal/trackingtime"
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List the account's customers",
	Args:  cobra.NoArgs,
	RunE:  runCustomers,
}

func runCustomers(cmd *cobra.Command, args []string) error {
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

	client := trackingtime.NewClient(cfg.BaseURL, cfg.AccountID, creds.Username, creds.Password)
	customers, err := client.Customers(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch customers: %v\n", err)
		os.Exit(1)
	}

	if len(customers) == 0 {
		fmt.Println("No customers found.")
		return nil
	}
	for _, customer := range customers {
		fmt.Printf("%8d  %s\n", customer.ID, customer.Name)
	}
	return nil
}
