package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mosaic-hrd/website/internal/config"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/module/contact"
)

func newMessagesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Manage stored contact messages",
	}
	cmd.AddCommand(newMessagesListCmd(opts), newMessagesPurgeCmd(opts))
	return cmd
}

func newMessagesListCmd(opts *options) *cobra.Command {
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contact messages, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openContactService(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.List(cmd.Context(), domain.PageRequest{Page: page, PerPage: perPage})
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REFERENCE\tRECEIVED\tLOCALE\tNAME\tEMAIL\tSUBJECT")
			for _, m := range res.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					m.Reference, m.CreatedAt.Format(time.DateTime), m.Locale, m.Name, m.Email, m.Subject)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "\npage %d/%d, %d total\n", res.CurrentPage, res.TotalPages, res.Total)
			return err
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "page size")
	return cmd
}

func newMessagesPurgeCmd(opts *options) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete contact messages older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openContactService(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := svc.Purge(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d message(s) older than %s\n", n, olderThan)
			return err
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "minimum message age to delete")
	return cmd
}

func openContactService(opts *options) (domain.ContactService, func(), error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, nil, err
	}
	db, err := config.SetupDatabase(&cfg.Database, slog.Default(), &domain.ContactMessage{})
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}
	return contact.NewService(contact.NewRepository(db)), func() { closeDB(db) }, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
