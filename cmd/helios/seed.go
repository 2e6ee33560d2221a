package main

import (
	"fmt"

	"github.com/helios-protocol/helios/pkg/client"
	"github.com/spf13/cobra"
)

// seedClaims are the demo submissions. The first carries a plausible hash
// and passes the preliminary check; the second's hash is deliberately short
// and is rejected.
var seedClaims = []client.SubmitRequest{
	{
		ContentHash: "sha256_demo_a1b2c3d4e5f60718",
		ContentType: "text/plain",
		SubmitterID: "demo_user_alice",
		Metadata:    map[string]any{"description": "First test document submission."},
	},
	{
		ContentHash: "xyz",
		ContentType: "application/json",
		SubmitterID: "demo_user_bob",
		Metadata:    map[string]any{"source_app": "DemoApp v0.1", "notes": "This content is critical."},
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Submit demo claims and run verification against each",
	Long: `seed submits a pair of sample claims to the node and immediately
triggers a verification run for each, then prints the resulting ledger
overview. Useful for demos and for smoke-testing a fresh node.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cliCtx()
		defer cancel()

		c := newClient()
		for _, req := range seedClaims {
			claim, err := c.SubmitClaim(ctx, req)
			if err != nil {
				return fmt.Errorf("submit %q: %w", req.ContentHash, err)
			}
			fmt.Printf("submitted %s (%s)\n", claim.ClaimID, claim.ContentType)

			verified, err := c.VerifyClaim(ctx, claim.ClaimID, "")
			if err != nil {
				return fmt.Errorf("verify %s: %w", claim.ClaimID, err)
			}
			fmt.Printf("  → status %s after %d verdict(s)\n",
				verified.Status, len(verified.VerificationHistory))
		}

		overview, err := c.Ledger(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("ledger now holds %d entries, tail %s\n", overview.Entries, overview.TailHash)
		return nil
	},
}
