package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driveshelf/driveshelf/internal/overlay"
)

// newTokenCmd forces a token exchange and reports success. Diagnostic
// for checking service-account credentials without touching listings.
func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Exchange credentials for an access token (diagnostic)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if a.token == nil {
				return errors.New("service account not configured")
			}

			a.token.Invalidate()

			if _, err := a.token.Token(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, "token exchange succeeded")

			return nil
		},
	}
}

// newCacheCmd groups cache maintenance subcommands.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Cache maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <key>",
		Short: "Delete a cache entry (e.g. newsletters, recordings)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if a.cache.Delete(cmd.Context(), args[0]) {
				fmt.Fprintf(os.Stdout, "cleared %s\n", args[0])
			} else {
				fmt.Fprintf(os.Stdout, "no entry for %s\n", args[0])
			}

			return nil
		},
	})

	return cmd
}

// newOverlayCmd groups overlay record administration: the display-name,
// password, and category overrides merged onto remote listings.
func newOverlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Manage overlay metadata records",
	}

	var (
		flagDisplayName string
		flagPassword    string
		flagCategory    string
	)

	setCmd := &cobra.Command{
		Use:   "set <item-id>",
		Short: "Create or replace the overlay record for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			store, ok := a.overlay.(*overlay.SQLite)
			if !ok {
				return errors.New("overlay store not configured (set cache.path)")
			}

			return store.Put(cmd.Context(), args[0], overlay.Record{
				DisplayName: flagDisplayName,
				Password:    flagPassword,
				Category:    flagCategory,
			})
		},
	}

	setCmd.Flags().StringVar(&flagDisplayName, "display-name", "", "display name override")
	setCmd.Flags().StringVar(&flagPassword, "password", "", "access password (marks the file protected)")
	setCmd.Flags().StringVar(&flagCategory, "category", "", "committee grouping category")

	rmCmd := &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Delete the overlay record for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			store, ok := a.overlay.(*overlay.SQLite)
			if !ok {
				return errors.New("overlay store not configured (set cache.path)")
			}

			removed, err := store.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !removed {
				fmt.Fprintf(os.Stdout, "no record for %s\n", args[0])
			}

			return nil
		},
	}

	cmd.AddCommand(setCmd)
	cmd.AddCommand(rmCmd)

	return cmd
}
