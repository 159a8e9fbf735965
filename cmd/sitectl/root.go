package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mosaic-hrd/website/internal/cache"
	"github.com/mosaic-hrd/website/internal/config"
	"github.com/mosaic-hrd/website/internal/content"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	locale     string
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "sitectl",
		Short: "Operate the Mosaic website",
		Long: `sitectl inspects the remote content API through the same client,
normalisation and pagination rules the website uses, and manages the
contact messages stored in the local database.

Examples:
  # Page 2 of the projects tagged 5, in English
  sitectl fetch projects --page 2 --tag 5 --locale en

  # Every center, following pagination
  sitectl browse centers

  # The pagination window of page 5 out of 10
  sitectl window 5 10

  # Delete contact messages older than 90 days
  sitectl messages purge --older-than 2160h`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "path to configuration file")
	cmd.PersistentFlags().StringVarP(&opts.locale, "locale", "l", "", "content locale (ar|en); defaults to content.default_locale")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format: table|json")

	cmd.AddCommand(
		newFetchCmd(opts),
		newBrowseCmd(opts),
		newWindowCmd(),
		newMessagesCmd(opts),
	)
	return cmd
}

func (o *options) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

func (o *options) resolveLocale(cfg *config.Config) string {
	if o.locale != "" {
		return o.locale
	}
	return cfg.Content.DefaultLocale
}

// contentClient builds an uncached client; the CLI always wants fresh data.
func contentClient(cfg *config.Config) (*content.Client, error) {
	return content.New(content.Options{
		BaseURL: cfg.Content.BaseURL,
		Timeout: config.Duration(cfg.Content.Timeout, 10*time.Second),
		Store:   cache.Noop{},
	})
}
