package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/logger"
	"github.com/gantryci/gantry/pkg/auth"
	"github.com/gantryci/gantry/pkg/config"
	"github.com/gantryci/gantry/pkg/dist"
	"github.com/gantryci/gantry/pkg/errors"
	"github.com/gantryci/gantry/pkg/publish"
)

// NewPublishCmd creates the 'publish' command: the release publisher.
func NewPublishCmd() *cobra.Command {
	var (
		releaseVersion string
		sourceDir      string
		outputDir      string
		indexURL       string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build and upload the release artifact pair",
		Long: `Build one source distribution and one built distribution from the
configured source tree, verify both, then upload them to the package index.
The build always completes before any upload starts; if it fails, nothing
is uploaded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if sourceDir != "" {
				cfg.Publish.SourceDir = sourceDir
			}
			if outputDir != "" {
				cfg.Publish.OutputDir = outputDir
			}
			if indexURL != "" {
				cfg.Publish.IndexURL = indexURL
			}
			return runPublish(cmd.Context(), cfg, releaseVersion)
		},
	}

	cmd.Flags().StringVar(&releaseVersion, "version", "", "release version (overrides configured metadata version)")
	cmd.Flags().StringVarP(&sourceDir, "source", "s", "", "source directory to package")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for built distributions")
	cmd.Flags().StringVar(&indexURL, "index-url", "", "package index upload endpoint")

	return cmd
}

// runPublish executes the release pipeline. It is shared by 'publish' and
// 'run'.
func runPublish(ctx context.Context, cfg *config.Config, releaseVersion string) error {
	if cfg.Publish.IndexURL == "" {
		return errors.Wrap(errors.ErrConfigValidation, "publish.index_url is not configured")
	}

	meta := cfg.Publish.Metadata
	if releaseVersion != "" {
		meta.Version = releaseVersion
	}

	authenticator, err := auth.FromEnv(cfg.Publish.CredentialEnv)
	if err != nil {
		return err
	}

	builder := dist.NewBuilder(&meta, cfg.Publish.SourceDir, cfg.Publish.OutputDir)
	builder.Exclude = cfg.Publish.Exclude

	publisher := &publish.Publisher{
		Builder:  builder,
		Verifier: dist.NewVerifier(),
		Uploader: publish.NewHTTPUploader(cfg.Publish.IndexURL, authenticator, cfg.Settings.HTTPTimeout),
		Metadata: &meta,
		Hooks: publish.Hooks{OnEvent: func(e publish.Event) {
			if e.Phase == "error" {
				logger.Error("publish step failed", logger.Fields{"detail": e.Msg})
				return
			}
			logger.Info(e.Phase, logger.Fields{"detail": e.Msg})
		}},
	}

	pair, err := publisher.Run(ctx)
	if err != nil {
		return err
	}

	logger.Success("release published", logger.Fields{
		"sdist": pair.Source.Path,
		"bdist": pair.Binary.Path,
	})
	return nil
}
