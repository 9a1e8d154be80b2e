package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/faq-chatbot/internal/seed"
	"github.com/sakif/faq-chatbot/internal/service"
)

func newQuestionsCmd(opts *options) *cobra.Command {
	questionsCmd := &cobra.Command{
		Use:   "questions",
		Short: "Inspect stored questions",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored questions in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			questions, err := service.NewQuestionService(db, opts.logger(cmd)).List(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			for _, q := range questions {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n      → %s\n", q.ID, q.QuestionText, q.AnswerText)
			}
			return nil
		},
	}
	listCmd.Flags().Int("limit", 0, "Maximum number of questions to show (0 = all)")

	questionsCmd.AddCommand(listCmd)
	return questionsCmd
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file.yaml]",
		Short: "Load question/answer pairs from a YAML file, skipping known questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			logger := opts.logger(cmd)
			res, err := seed.ApplyFile(cmd.Context(), service.NewQuestionService(db, logger), args[0], logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d, skipped %d\n", res.Added, res.Skipped)
			return nil
		},
	}
}

func newAskCmd(opts *options) *cobra.Command {
	var record bool

	askCmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask the chatbot a question from the stored answers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			lookup := service.NewLookupService(db, nil, service.SourceStore, opts.logger(cmd))
			question := strings.Join(args, " ")

			answer := lookup.Answer
			if record {
				answer = lookup.AnswerOrRecord
			}
			res, err := answer(cmd.Context(), question)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Response)
			return nil
		},
	}
	askCmd.Flags().BoolVar(&record, "record", false, "Store the question with a placeholder answer when unknown")

	return askCmd
}
