package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"portfolio/internal/config"
	"portfolio/internal/domain"
	"portfolio/internal/store"
)

var errNoStore = errors.New("no record store configured (set MONGODB_URI)")

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntP("limit", "n", 0, "Maximum number of submissions to show (0 shows all)")
	listCmd.Flags().Bool("json", false, "Print submissions as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Database.Enabled() {
		return errNoStore
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Database.Timeout)
	defer cancel()

	st, err := store.Open(ctx, cfg.Database, zerolog.Nop())
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer st.Close(context.Background())

	contacts, err := st.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}
	return printContacts(cmd.OutOrStdout(), contacts, asJSON)
}

func printContacts(w io.Writer, contacts []domain.Contact, asJSON bool) error {
	if asJSON {
		if contacts == nil {
			contacts = []domain.Contact{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(contacts)
	}

	if len(contacts) == 0 {
		_, err := fmt.Fprintln(w, "No submissions.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tNAME\tEMAIL\tSUBJECT\tSTATUS")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.CreatedAt.UTC().Format(time.RFC3339),
			oneLine(c.Name, 30),
			c.Email,
			oneLine(c.Subject, 40),
			c.Status,
		)
	}
	return tw.Flush()
}

// oneLine collapses whitespace and truncates s to max runes.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
