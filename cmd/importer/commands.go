package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/app/services"
	"github.com/yigit/examportal/internal/bootstrap"
	"github.com/yigit/examportal/internal/pkg/apperrors"
	"github.com/yigit/examportal/internal/pkg/auth"
	"github.com/yigit/examportal/internal/pkg/validation"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "importer",
		Short:        "Import analyzed hierarchy batches into the exam portal",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", filepath.Join("configs", "config.yaml"), "path to the configuration file")

	root.AddCommand(newSaveCommand(&configPath))
	root.AddCommand(newTokenCommand(&configPath))
	return root
}

func newSaveCommand(configPath *string) *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Reconcile an analyzed entity batch and commit it",
		Long: `Reads a batch of analyzed entities and saves every new college, department,
program, level and course in one atomic commit. The file may hold either a JSON
array of entities or an object with an "entities" array.`,
		Example: `  importer save --file batch.json
  importer save --file batch.json --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entities, err := readBatch(file)
			if err != nil {
				return err
			}

			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store, closeStore, err := bootstrap.OpenStore(ctx, cfg, lgr)
			if err != nil {
				return err
			}
			defer closeStore()

			if dryRun {
				store = services.NewDryRunStore(store)
			}

			svc := services.NewImportService(store, validation.New(), lgr, cfg.Import.Timeout)
			result := svc.SaveAnalyzedData(ctx, entities)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}

			if !result.Success {
				return fmt.Errorf("%w: %s", apperrors.ErrImportRejected, result.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "batch file to import")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "reconcile against stored data without committing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTokenCommand(configPath *string) *cobra.Command {
	var subject, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the import API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := bootstrap.LoadConfigAndSetupLogger(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			token, expiresIn, err := bootstrap.NewJWTService(cfg).GenerateToken(subject, role)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires in %ds\n", expiresIn)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "token role")
	return cmd
}

// readBatch accepts a bare entity array or a save request object
func readBatch(path string) ([]dto.AnalyzedEntity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entities []dto.AnalyzedEntity
		if err := json.Unmarshal(trimmed, &entities); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
		}
		return entities, nil
	}

	var req dto.SaveAnalyzedDataRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
	}
	return req.Entities, nil
}
