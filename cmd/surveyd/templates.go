package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	templaterepo "github.com/kailas-cloud/surveyd/internal/repository/template"
)

var flagTemplatesDir string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect and publish prompt templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bundled templates (or those in --dir)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTemplatesList(templatesSourceFromFlags(), cmd.OutOrStdout())
	},
}

var templatesPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Copy templates into the Redis store configured under templates.redis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		store, err := newRedisStore(cfg.Templates.Redis)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := store.WaitForReady(ctx, 10*time.Second); err != nil {
			return fmt.Errorf("redis not ready: %w", err)
		}

		dst := templaterepo.NewKV(store, cfg.Templates.Redis.KeyPrefix)
		keys, err := templaterepo.Sync(ctx, templatesSourceFromFlags(), dst)
		if err != nil {
			return fmt.Errorf("push templates: %w", err)
		}
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %s%s\n", cfg.Templates.Redis.KeyPrefix, k)
		}
		return nil
	},
}

func init() {
	templatesCmd.PersistentFlags().StringVar(&flagTemplatesDir, "dir", "", "read templates from this directory instead of the bundled set")
	templatesCmd.AddCommand(templatesListCmd, templatesPushCmd)
}

func templatesSourceFromFlags() *templaterepo.FSSource {
	if flagTemplatesDir != "" {
		return templaterepo.NewDir(flagTemplatesDir)
	}
	return templaterepo.NewEmbedded()
}

func runTemplatesList(src *templaterepo.FSSource, w io.Writer) error {
	keys, err := src.Keys()
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
	return nil
}
