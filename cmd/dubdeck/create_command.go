package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dubdeck/internal/config"
	"dubdeck/internal/creation"
	"dubdeck/internal/draft"
	"dubdeck/internal/history"
	"dubdeck/internal/language"
	"dubdeck/internal/submit"
	"dubdeck/internal/wizard"
)

type createOptions struct {
	filePath   string
	youtubeURL string
	title      string
	sourceLang string
	targets    []string
	speakers   int
	detect     bool
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dubbing project from a file or a YouTube link",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runCreate(cmd, ctx, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "Path to a local media file")
	cmd.Flags().StringVarP(&opts.youtubeURL, "url", "u", "", "YouTube video URL")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Project title (defaults to the source's own title)")
	cmd.Flags().StringVar(&opts.sourceLang, "source-lang", "", "Source language (name or code; default from config)")
	cmd.Flags().StringSliceVar(&opts.targets, "target", nil, "Target language, repeatable")
	cmd.Flags().IntVar(&opts.speakers, "speakers", 2, "Number of speakers in the source")
	cmd.Flags().BoolVar(&opts.detect, "detect", true, "Detect the source language automatically")

	return cmd
}

func runCreate(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, opts createOptions) error {
	if (opts.filePath == "") == (opts.youtubeURL == "") {
		return fmt.Errorf("exactly one of --file or --url is required")
	}

	sourceCode := cfg.Languages.DefaultSource
	if strings.TrimSpace(opts.sourceLang) != "" {
		code, ok := language.Normalize(opts.sourceLang)
		if !ok {
			return fmt.Errorf("unknown source language %q", opts.sourceLang)
		}
		sourceCode = code
	}

	targetCodes, unknown := language.NormalizeAll(opts.targets)
	if len(unknown) > 0 {
		return fmt.Errorf("unknown target languages: %s", strings.Join(unknown, ", "))
	}
	if len(targetCodes) == 0 {
		return fmt.Errorf("at least one --target is required")
	}
	if err := checkAllowedTargets(cfg, targetCodes); err != nil {
		return err
	}

	source, title, err := resolveSource(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := ctx.newLogger()
	if err != nil {
		return err
	}
	client, err := ctx.newClient()
	if err != nil {
		return err
	}
	notifier, err := ctx.newNotifier()
	if err != nil {
		return err
	}
	flow, err := wizard.FlowFromConfig(cfg.Wizard.Flow)
	if err != nil {
		return err
	}

	orch := creation.New(creation.Deps{
		Flow:        flow,
		Client:      client,
		Notifier:    notifier,
		Logger:      logger,
		Defaults:    draft.Defaults{SourceLanguage: sourceCode, SpeakerCount: opts.speakers},
		CloseDelay:  time.Duration(cfg.Upload.CloseDelayMS) * time.Millisecond,
		ContentType: cfg.Upload.DefaultContentType,
	})

	orch.Open("")
	if err := orch.SubmitSource(source); err != nil {
		return err
	}

	settings := draft.Settings{
		Title:               title,
		DetectAutomatically: opts.detect,
		SourceLanguage:      sourceCode,
		TargetLanguages:     targetCodes,
		SpeakerCount:        opts.speakers,
	}

	resultCh := make(chan submitResult, 1)
	go func() {
		id, err := orch.SubmitDetails(cmd.Context(), settings)
		resultCh <- submitResult{projectID: id, err: err}
	}()

	projectID, runErr := watchCreation(cmd, orch, resultCh)

	record := history.Record{
		ProjectID:       projectID,
		Title:           title,
		SourceType:      string(source.Kind()),
		SourceRef:       sourceRef(source),
		TargetLanguages: targetCodes,
		Outcome:         history.OutcomeCompleted,
	}
	if runErr != nil {
		record.Outcome = history.OutcomeFailed
		record.Detail = runErr.Error()
	}
	appendHistory(cmd, cfg, record)

	if runErr != nil {
		return runErr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Project %s created: %s\n", projectID, title)
	return nil
}

func resolveSource(cmd *cobra.Command, opts createOptions) (draft.Source, string, error) {
	title := strings.TrimSpace(opts.title)

	if opts.youtubeURL != "" {
		if err := submit.ValidateYouTubeURL(opts.youtubeURL); err != nil {
			return nil, "", fmt.Errorf("invalid YouTube url: %w", err)
		}
		if title == "" {
			// Best effort: an unreachable page just means the user has
			// to pass --title.
			if probed, err := submit.NewTitleProber(nil).ProbeTitle(cmd.Context(), opts.youtubeURL); err == nil {
				title = probed
			}
		}
		if title == "" {
			return nil, "", fmt.Errorf("could not determine a title; pass --title")
		}
		return draft.YouTubeSource{URL: opts.youtubeURL}, title, nil
	}

	info, err := os.Stat(opts.filePath)
	if err != nil {
		return nil, "", fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("%s is a directory", opts.filePath)
	}
	if title == "" {
		base := filepath.Base(opts.filePath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return draft.NewFileSource(opts.filePath, info.Size()), title, nil
}

func checkAllowedTargets(cfg *config.Config, targets []string) error {
	if len(cfg.Languages.AllowedTargets) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(cfg.Languages.AllowedTargets))
	for _, code := range cfg.Languages.AllowedTargets {
		allowed[code] = true
	}
	for _, code := range targets {
		if !allowed[code] {
			return fmt.Errorf("target language %s is not in languages.allowed_targets", code)
		}
	}
	return nil
}

func sourceRef(source draft.Source) string {
	switch s := source.(type) {
	case draft.FileSource:
		return s.Name
	case draft.YouTubeSource:
		return s.URL
	default:
		return ""
	}
}

func appendHistory(cmd *cobra.Command, cfg *config.Config, record history.Record) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "history not recorded: %v\n", err)
		return
	}
	defer store.Close()
	if _, err := store.Append(cmd.Context(), record); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "history not recorded: %v\n", err)
	}
}
