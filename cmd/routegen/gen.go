package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/internal/publish"
	"github.com/vango-dev/routegen/pkg/routes"
)

func (a *app) genCmd() *cobra.Command {
	var doPublish bool

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the route table",
		Long: `Scan the pages folder and write the generated route module.

The output is deterministic: running gen twice without changing any page
leaves the file byte-for-byte identical. When manifest is configured, a YAML
summary of every route is written next to it.

Examples:
  routegen gen
  routegen gen --pages-dir app/pages --output app/routes.jsx
  routegen gen --publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGen(cmd.Context(), doPublish)
		},
	}

	cmd.Flags().BoolVar(&doPublish, "publish", false, "Upload the generated files to the configured S3 bucket")

	return cmd
}

func (a *app) runGen(ctx context.Context, doPublish bool) error {
	result, err := a.compile(ctx, false)
	if err != nil {
		return err
	}

	routeCount := len(result.Tree.Pages())
	if result.Changed {
		a.success("Generated %s (%d routes) in %s", a.cfg.Output, routeCount, result.Duration.Round(time.Millisecond))
	} else {
		a.success("%s is up to date (%d routes)", a.cfg.Output, routeCount)
	}

	manifest := result.Manifest(a.cfg.PagesDir)
	if p := a.cfg.ManifestPath(); p != "" {
		written, err := routes.WriteManifest(a.fs, p, manifest)
		if err != nil {
			return errors.FromError(err, errors.CodeWriteFailed).WithPath(p)
		}
		if written {
			a.info("Wrote manifest %s", a.cfg.Manifest)
		}
	}

	if !doPublish {
		return nil
	}
	return a.publish(ctx, result, manifest)
}

func (a *app) publish(ctx context.Context, result *routes.Result, manifest routes.Manifest) error {
	if !a.cfg.PublishEnabled() {
		return errors.New(errors.CodePublishFailed).WithDetail("publish.s3.bucket is not set")
	}

	manifestYAML, err := manifest.YAML()
	if err != nil {
		return errors.New(errors.CodePublishFailed).Wrap(err)
	}
	outputName := filepath.Base(result.OutputFile)
	manifestName := "routes.yaml"
	if a.cfg.Manifest != "" {
		manifestName = filepath.Base(a.cfg.Manifest)
	}

	p, err := a.newPublisher(ctx, a.cfg.Publish.S3, a.logger)
	if err != nil {
		return err
	}
	uploaded, err := p.Publish(ctx,
		publish.Artifact{Name: outputName, Body: result.Output, ContentType: publish.ContentType(outputName)},
		publish.Artifact{Name: manifestName, Body: manifestYAML, ContentType: publish.ContentType(manifestName)},
	)
	if err != nil {
		return err
	}
	for _, u := range uploaded {
		a.info("Published s3://%s/%s (%s, %s)", a.cfg.Publish.S3.Bucket, u.Key, publish.FormatSize(u.Size), u.Hash)
	}
	return nil
}
