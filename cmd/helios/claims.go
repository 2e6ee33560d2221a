package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/helios-protocol/helios/pkg/client"
	"github.com/spf13/cobra"
)

const requestTimeout = 15 * time.Second

func newClient() *client.Client {
	return client.New(nodeURL)
}

func cliCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// parseMetadata turns repeated key=value flags into a metadata map.
func parseMetadata(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("metadata must be key=value, got %q", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}

func printClaim(claim *client.Claim) {
	out, _ := json.MarshalIndent(claim, "", "  ")
	fmt.Println(string(out))
}

// ── submit ───────────────────────────────────────────────────────────────────

var (
	submitContentType string
	submitSubmitter   string
	submitMetadata    []string
)

var submitCmd = &cobra.Command{
	Use:   "submit <content-hash>",
	Short: "Submit a new claim to the node's ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metadata, err := parseMetadata(submitMetadata)
		if err != nil {
			return err
		}

		ctx, cancel := cliCtx()
		defer cancel()

		claim, err := newClient().SubmitClaim(ctx, client.SubmitRequest{
			ContentHash: args[0],
			ContentType: submitContentType,
			SubmitterID: submitSubmitter,
			Metadata:    metadata,
		})
		if err != nil {
			return err
		}

		fmt.Printf("claim submitted: %s (status %s)\n", claim.ClaimID, claim.Status)
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitContentType, "content-type", "text/plain", "MIME type of the referenced content")
	submitCmd.Flags().StringVar(&submitSubmitter, "submitter", "", "submitter identity (required)")
	submitCmd.Flags().StringArrayVar(&submitMetadata, "meta", nil, "metadata key=value (repeatable)")
	_ = submitCmd.MarkFlagRequired("submitter")
}

// ── show ─────────────────────────────────────────────────────────────────────

var showCmd = &cobra.Command{
	Use:   "show <claim-id>",
	Short: "Show a claim and its verification history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cliCtx()
		defer cancel()

		claim, err := newClient().GetClaim(ctx, args[0])
		if err != nil {
			return err
		}
		printClaim(claim)
		return nil
	},
}

// ── verify ───────────────────────────────────────────────────────────────────

var verifyAgentID string

var verifyCmd = &cobra.Command{
	Use:   "verify <claim-id>",
	Short: "Trigger a verification run for a claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cliCtx()
		defer cancel()

		claim, err := newClient().VerifyClaim(ctx, args[0], verifyAgentID)
		if err != nil {
			return err
		}

		fmt.Printf("claim %s: status %s, %d verdict(s) recorded\n",
			claim.ClaimID, claim.Status, len(claim.VerificationHistory))
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyAgentID, "agent", "", "run exactly this agent (default: all applicable)")
}

// ── agents ───────────────────────────────────────────────────────────────────

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the node's registered verification agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cliCtx()
		defer cancel()

		agents, err := newClient().Agents(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "AGENT ID\tVERSION\tCONTENT TYPES")
		for _, a := range agents {
			types := "(all)"
			if len(a.ContentTypes) > 0 {
				types = strings.Join(a.ContentTypes, ",")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Version, types)
		}
		return w.Flush()
	},
}
