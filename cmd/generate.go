package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studykit/studykit/internal/quiz"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one quiz question from study material",
	Example: `  studykit generate --context "Photosynthesis converts light into chemical energy"
  studykit generate --kind dissertative --context @notes.txt --difficulty hard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		contexts, _ := cmd.Flags().GetStringArray("context")
		instructions, _ := cmd.Flags().GetStringArray("instruction")
		kind, _ := cmd.Flags().GetString("kind")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		asJSON, _ := cmd.Flags().GetBool("json")

		expanded, err := expandFileArgs(contexts)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		svc, settings, closer, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer closer()

		q, err := svc.GenerateQuestion(context.Background(), quiz.GenerationRequest{
			Contexts:     expanded,
			Instructions: instructions,
			Kind:         quiz.QuestionKind(kind),
			Difficulty:   difficulty,
			Language:     cfg.PromptLanguage(),
		}, settings)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(q)
		}

		printQuestion(cmd, q)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringArrayP("context", "c", nil, "Study material (repeatable; @file reads from a file)")
	generateCmd.Flags().StringArrayP("instruction", "i", nil, "Extra instruction for the generator (repeatable)")
	generateCmd.Flags().String("kind", string(quiz.KindMultipleChoice), "Question kind: multipleChoice or dissertative")
	generateCmd.Flags().String("difficulty", "medium", "Difficulty: easy, medium or hard")
	generateCmd.Flags().Bool("json", false, "Print the full result as JSON")
}

// expandFileArgs replaces @path arguments with the file's content.
func expandFileArgs(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) > 1 && a[0] == '@' {
			data, err := os.ReadFile(a[1:])
			if err != nil {
				return nil, fmt.Errorf("read context file: %w", err)
			}
			out = append(out, string(data))
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func printQuestion(cmd *cobra.Command, q *quiz.GeneratedQuestion) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, q.Question)
	fmt.Fprintln(out)

	switch q.Kind {
	case quiz.KindMultipleChoice:
		for i, opt := range q.Options {
			marker := " "
			if i == q.CorrectAnswer {
				marker = "*"
			}
			fmt.Fprintf(out, " %s %c) %s\n", marker, 'a'+i, opt)
		}
		if q.Explanation != "" {
			fmt.Fprintf(out, "\nExplanation: %s\n", q.Explanation)
		}
	case quiz.KindDissertative:
		fmt.Fprintf(out, "Sample answer: %s\n", q.SampleAnswer)
		if len(q.EvaluationCriteria) > 0 {
			fmt.Fprintln(out, "Evaluation criteria:")
			for _, c := range q.EvaluationCriteria {
				fmt.Fprintf(out, "  - %s\n", c)
			}
		}
	}

	fmt.Fprintf(out, "\n[%s/%s, %d+%d tokens, %dms]\n",
		q.Meta.Provider, q.Meta.Model,
		q.Meta.PromptTokens, q.Meta.CompletionTokens, q.Meta.Elapsed.Milliseconds())
}
