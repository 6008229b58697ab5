// Package retrievecmder provides the retrieve command for running a single
// knowledge base search the way the assistant does.
package retrievecmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/leadline/cmd/leadline/backends"
	"github.com/papercomputeco/leadline/pkg/cliui"
	"github.com/papercomputeco/leadline/pkg/config"
	"github.com/papercomputeco/leadline/pkg/credentials"
	"github.com/papercomputeco/leadline/pkg/logger"
	"github.com/papercomputeco/leadline/pkg/retrieval"
	"github.com/papercomputeco/leadline/pkg/stage"
)

// retrieveFlags are the registry flags "leadline retrieve" accepts.
var retrieveFlags = []string{
	config.FlagRetrievalProvider,
	config.FlagRetrievalEngine,
	config.FlagRetrievalTarget,
	config.FlagCollection,
	config.FlagTopK,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
}

type retrieveCommander struct {
	stage     string
	jsonOut   bool
	topK      uint
	debug     bool
	configDir string

	cfg      *config.Config
	logger   *slog.Logger
	progress io.Writer
}

type retrieveOutput struct {
	Query    string              `json:"query"`
	Stage    stage.Stage         `json:"stage"`
	TopK     int                 `json:"top_k"`
	Snippets []retrieval.Snippet `json:"snippets"`
}

const retrieveLongDesc string = `Run one knowledge base search.

The query goes through the same depth, relevance filtering and truncation
the assistant applies before building a prompt. Late stages
(enrollment_collection, enrollment_ready, post_enrollment, completion)
search less deeply.

Examples:
  leadline retrieve "how much is the esthetics program"
  leadline retrieve --stage pricing "nails tuition"
  leadline retrieve --json --retrieval-provider qdrant "campus hours"`

const retrieveShortDesc string = "Run one knowledge base search"

var errRetrievalDisabled = errors.New("retrieval is disabled; set retrieval.provider to vertexsearch or qdrant")

func NewRetrieveCmd() *cobra.Command {
	cmder := &retrieveCommander{}

	cmd := &cobra.Command{
		Use:   "retrieve <query>",
		Short: retrieveShortDesc,
		Long:  retrieveLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, retrieveFlags)

			cmder.cfg, err = config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logger = logger.New(logger.WithPretty(true), logger.WithDebug(cmder.debug), logger.WithWriter(os.Stderr))
			cmder.progress = os.Stderr

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			creds, err := credentials.NewManager(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading credentials: %w", err)
			}

			r, closer, err := backends.NewRetriever(ctx, cmder.cfg, creds)
			if err != nil {
				return err
			}
			defer closer()

			return cmder.run(ctx, cmd.OutOrStdout(), r, strings.Join(args, " "))
		},
	}

	for _, key := range retrieveFlags {
		if key == config.FlagTopK {
			config.AddUintFlag(cmd, config.Flags, key, &cmder.topK)
			continue
		}
		var target string
		config.AddStringFlag(cmd, config.Flags, key, &target)
	}
	cmd.Flags().StringVar(&cmder.stage, "stage", string(stage.Default), "Conversation stage used to pick the search depth")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the result as JSON")

	return cmd
}

func (c *retrieveCommander) run(ctx context.Context, w io.Writer, r retrieval.Retriever, query string) error {
	if r == nil {
		return errRetrievalDisabled
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("query cannot be empty")
	}

	st := stage.Stage(strings.TrimSpace(c.stage))
	if st == "" {
		st = stage.Default
	}

	client := retrieval.NewClient(r,
		retrieval.WithTopK(int(c.cfg.Retrieval.TopK)),
		retrieval.WithLogger(c.logger),
	)

	progress := c.progress
	if progress == nil {
		progress = io.Discard
	}

	var result retrieval.Result
	err := cliui.Step(progress, "Searching", func() error {
		result = client.Retrieve(ctx, query, st)
		return nil
	})
	if err != nil {
		return err
	}

	out := retrieveOutput{
		Query:    query,
		Stage:    st,
		TopK:     client.TopK(st),
		Snippets: result.Snippets,
	}
	if out.Snippets == nil {
		out.Snippets = []retrieval.Snippet{}
	}

	if c.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "\n  %s %s\n", cliui.KeyStyle.Render("Query:"), cliui.ValueStyle.Render(out.Query))
	fmt.Fprintf(w, "  %s %s %s\n\n",
		cliui.KeyStyle.Render("Stage:"),
		cliui.StageStyle.Render(string(out.Stage)),
		cliui.DimStyle.Render(fmt.Sprintf("(top %d)", out.TopK)),
	)

	if len(out.Snippets) == 0 {
		fmt.Fprintf(w, "  %s No relevant snippets.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	for i, s := range out.Snippets {
		label := s.Source.Label
		if s.Source.Folder != "" {
			label += " " + cliui.DimStyle.Render("("+s.Source.Folder+")")
		}
		fmt.Fprintf(w, "  %s %s\n", cliui.HeaderStyle.Render(fmt.Sprintf("%d.", i+1)), cliui.NameStyle.Render(label))
		fmt.Fprintf(w, "     %s\n\n", s.Text)
	}
	return nil
}
