package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/tonesnap/internal/frame"
	"github.com/abhisek/tonesnap/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a quiz for an image without the TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("image")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		b, err := openBackend(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer b.Close()

		f, err := frame.NewFileSource(path, frame.DefaultOptions()).Capture(ctx)
		if err != nil {
			return fmt.Errorf("load image: %w", err)
		}

		res, err := quiz.NewGenerator(b.provider, quiz.DefaultConfig(), b.log).Generate(ctx, f)
		if err != nil {
			// Generation failures reach main as a non-zero exit.
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(res)
		}
		printQuiz(os.Stdout, res)
		return nil
	},
}

func printQuiz(w io.Writer, res *quiz.AnalysisResult) {
	fmt.Fprintf(w, "%s  %s  (%s)\n", res.DetectedObject, res.Pinyin, res.EnglishMeaning)
	fmt.Fprintln(w, strings.Repeat("─", 40))
	for _, q := range res.Questions {
		fmt.Fprintf(w, "\n%d. [%s] %s\n", q.ID, q.Type, q.QuestionText)
		if q.IsTone() {
			fmt.Fprintf(w, "   answer: %s\n", q.CorrectOptionID)
		}
		for _, o := range q.Options {
			mark := " "
			if o.ID == q.CorrectOptionID {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %s) %s\n", mark, o.ID, o.Text)
		}
		if q.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", q.Explanation)
		}
	}
}

func init() {
	quizCmd.Flags().String("image", "", "Photo to analyse (jpeg, png, webp or bmp)")
	_ = quizCmd.MarkFlagRequired("image")
	quizCmd.Flags().Bool("json", false, "Print the quiz as JSON")
}
