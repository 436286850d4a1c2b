package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/tonesnap/internal/quiz"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Ask the model whether a drawing shows a tone mark",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("image")
		expected, _ := cmd.Flags().GetString("expect")
		expected = strings.TrimSpace(expected)
		if quiz.ToneNumber(expected) == 0 {
			return fmt.Errorf("--expect must be one of %s", strings.Join(quiz.ToneGlyphs, " "))
		}

		drawing, err := loadPNG(path)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		b, err := openBackend(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer b.Close()

		if quiz.NewToneChecker(b.provider, b.log).Check(ctx, drawing, expected) {
			fmt.Println("match")
		} else {
			fmt.Println("no match")
		}
		return nil
	},
}

// loadPNG reads any supported image and re-encodes it as PNG, the format
// the tone check sends.
func loadPNG(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read drawing: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode drawing: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode drawing: %w", err)
	}
	return buf.Bytes(), nil
}

func init() {
	checkCmd.Flags().String("image", "", "Drawing to check")
	checkCmd.Flags().String("expect", "", "Expected tone mark: ˉ ˊ ˇ ˋ or ˙")
	_ = checkCmd.MarkFlagRequired("image")
	_ = checkCmd.MarkFlagRequired("expect")
}
