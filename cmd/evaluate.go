package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studykit/studykit/internal/quiz"
)

var evaluateCmd = &cobra.Command{
	Use:     "evaluate",
	Short:   "Grade an answer to a question",
	Example: `  studykit evaluate --question "Explain WAL mode in SQLite" --answer "It logs writes before applying them"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		question, _ := cmd.Flags().GetString("question")
		answer, _ := cmd.Flags().GetString("answer")
		reference, _ := cmd.Flags().GetString("reference")
		kind, _ := cmd.Flags().GetString("kind")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		svc, settings, closer, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer closer()

		result, err := svc.EvaluateAnswer(context.Background(), quiz.EvaluationRequest{
			Question:      question,
			UserAnswer:    answer,
			CorrectAnswer: reference,
			Kind:          quiz.QuestionKind(kind),
			Language:      cfg.PromptLanguage(),
		}, settings)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, result.Feedback)
		verdict := "needs work"
		if result.Correct {
			verdict = "correct"
		}
		fmt.Fprintf(out, "\nVerdict: %s (score %d/100)\n", verdict, result.Score)
		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringP("question", "q", "", "The question that was asked")
	evaluateCmd.Flags().StringP("answer", "a", "", "The student's answer")
	evaluateCmd.Flags().String("reference", "", "Known correct answer, if any")
	evaluateCmd.Flags().String("kind", string(quiz.KindDissertative), "Question kind: multipleChoice or dissertative")
	evaluateCmd.Flags().Bool("json", false, "Print the full result as JSON")
	evaluateCmd.MarkFlagRequired("question")
	evaluateCmd.MarkFlagRequired("answer")
}
