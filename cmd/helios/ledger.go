package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the node's claim ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cliCtx()
		defer cancel()

		overview, err := newClient().Ledger(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("entries:   %d\ntail hash: %s\n", overview.Entries, overview.TailHash)
		return nil
	},
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the chain's hash linkage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cliCtx()
		defer cancel()

		valid, err := newClient().VerifyChain(ctx)
		if err != nil {
			return err
		}
		if !valid {
			fmt.Println("chain linkage BROKEN")
			os.Exit(1)
		}
		fmt.Println("chain linkage intact")
		return nil
	},
}

var entriesJSON bool

var ledgerEntriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List all ledger entries in append order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cliCtx()
		defer cancel()

		entries, err := newClient().Entries(ctx)
		if err != nil {
			return err
		}

		if entriesJSON {
			out, _ := json.MarshalIndent(entries, "", "  ")
			fmt.Println(string(out))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tCLAIM ID\tSTATUS\tHASH")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.16s…\n", e.Index, e.Claim.ClaimID, e.Claim.Status, e.Hash)
		}
		return w.Flush()
	},
}

func init() {
	ledgerEntriesCmd.Flags().BoolVar(&entriesJSON, "json", false, "print raw JSON entries")
	ledgerCmd.AddCommand(ledgerVerifyCmd)
	ledgerCmd.AddCommand(ledgerEntriesCmd)
}
