// Package main provides the kontakty binary: the contacts REST API together
// with its migrate and seed maintenance commands.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	_ "github.com/kontakty/contacts-api/docs"
)

const appName = "kontakty"

// @title                      Kontakty API
// @version                    1.0
// @description                Contact management REST API with JWT authentication.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the JWT.
func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Contact management REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Migrate, seed and start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrateOnly(cmd.Context())
		},
	})

	var withSamples bool
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create default roles, categories and optional sample contacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return seedOnly(cmd.Context(), withSamples, cmd.Flags().Changed("samples"))
		},
	}
	seedCmd.Flags().BoolVar(&withSamples, "samples", false, "Add the sample contacts (overrides SEED_SAMPLE_CONTACTS)")
	cmd.AddCommand(seedCmd)

	return cmd
}
