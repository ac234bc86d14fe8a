package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dukex/flywheel/pkg/log"
	"github.com/dukex/flywheel/pkg/web"
	"github.com/dukex/flywheel/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

var errInvalidWorkflowOptions = errors.New("invalid workflow configuration")

func workerBaseURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "worker-base-url",
		Usage:   "Base URL the workflow's HTTP nodes call",
		Value:   workflow.DefaultBaseURL,
		Sources: cli.EnvVars("WORKER_BASE_URL", "NEXT_PUBLIC_WORKER_BASE_URL"),
	}
}

func WorkflowCommand() *cli.Command {
	return &cli.Command{
		Name:    "workflow",
		Aliases: []string{"w"},
		Usage:   "Build an n8n workflow document without running the server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Workflow name",
				Value: "Twitter AI Flywheel",
			},
			&cli.StringFlag{
				Name:  "form-path",
				Usage: "Webhook path of the intake form",
				Value: "twitter-ai-brief",
			},
			&cli.StringFlag{
				Name:  "openai-credential",
				Usage: "Name of the OpenAI credential in n8n",
				Value: "OpenAI",
			},
			&cli.StringFlag{
				Name:  "twitter-credential",
				Usage: "Name of the Twitter credential in n8n",
				Value: "Twitter",
			},
			&cli.StringFlag{
				Name:  "tone",
				Usage: "Default tone of the intake form",
				Value: "professional",
			},
			&cli.BoolFlag{
				Name:  "include-image",
				Usage: "Generate an image by default",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "include-engagement",
				Usage: "Enable the engagement branch",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "include-dm",
				Usage: "Enable the direct message branch",
				Value: true,
			},
			&cli.StringSliceFlag{
				Name:  "hashtag",
				Usage: "Default engagement hashtag (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "dm-handle",
				Usage: "Default direct message handle (repeatable)",
			},
			workerBaseURLFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the document to this file; stdout when empty or \"-\"",
			},
		},
		Action: buildWorkflow,
	}
}

func buildWorkflow(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("workflow")

	includeImage := command.Bool("include-image")
	includeEngagement := command.Bool("include-engagement")
	includeDM := command.Bool("include-dm")
	tone := command.String("tone")

	req := web.WorkflowRequest{
		WorkflowName:          command.String("name"),
		FormPath:              command.String("form-path"),
		OpenAICredentialName:  command.String("openai-credential"),
		TwitterCredentialName: command.String("twitter-credential"),
		Tone:                  &tone,
		IncludeImage:          &includeImage,
		IncludeEngagement:     &includeEngagement,
		IncludeDM:             &includeDM,
		EngagementHashtags:    command.StringSlice("hashtag"),
		DMHandles:             command.StringSlice("dm-handle"),
	}
	req.ApplyDefaults()

	err := web.NewValidator().Struct(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidWorkflowOptions, err)
	}

	builder := workflow.NewBuilder(workflow.WithBaseURL(command.String("worker-base-url")))
	result := builder.Build(req.Options())

	document, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workflow: %w", err)
	}

	output := command.String("output")
	if output == "" || output == "-" {
		return writeDocument(command.Root().Writer, document)
	}

	err = os.WriteFile(output, append(document, '\n'), 0o644)
	if err != nil {
		return fmt.Errorf("failed to write workflow: %w", err)
	}

	logger.InfoContext(ctx, "Wrote workflow",
		"path", output,
		"version_id", result.Workflow.VersionID,
		"suggested_name", result.Metadata.DownloadName)

	return nil
}

func writeDocument(w io.Writer, document []byte) error {
	if w == nil {
		w = os.Stdout
	}

	_, err := w.Write(append(document, '\n'))

	return err
}
