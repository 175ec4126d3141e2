package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/andresmejia3/facecam/internal/config"
	"github.com/andresmejia3/facecam/internal/matcher"
	"github.com/andresmejia3/facecam/internal/reference"
	"github.com/andresmejia3/facecam/internal/utils"
	"github.com/andresmejia3/facecam/internal/video"
	"github.com/spf13/cobra"
)

var matchOutput string

var matchCmd = &cobra.Command{
	Use:   "match <image_path>",
	Short: "Label every face in a still image against the reference folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runMatch(cmd.Context(), args[0], matchOutput, Cfg)
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchOutput, "output", "o", "", "Write an annotated copy of the image to this path")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(ctx context.Context, imagePath, output string, cfg config.Config) error {
	if _, err := os.Stat(imagePath); err != nil {
		return utils.Report("Input file does not exist", err)
	}

	w, refs, err := loadReferences(ctx, cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	data, err := reference.LoadJPEG(imagePath)
	if err != nil {
		return utils.Report("Failed to read image file", err)
	}

	fmt.Fprintln(os.Stderr, "🔍 Analyzing faces...")
	faces, err := w.ProcessFrame(data)
	if err != nil {
		return utils.Report("Face recognition failed", err)
	}
	if len(faces) == 0 {
		fmt.Println("❌ No faces detected in the provided image.")
		return nil
	}

	annotations := matcher.New(refs, cfg.Threshold).Annotate(faces)
	for _, a := range annotations {
		fmt.Printf("%s\t[top=%d right=%d bottom=%d left=%d]\n", a.Label, a.Box.Top, a.Box.Right, a.Box.Bottom, a.Box.Left)
	}

	if output != "" {
		if err := video.AnnotateFile(imagePath, output, annotations); err != nil {
			return utils.Report("Failed to write annotated image", err)
		}
		fmt.Fprintf(os.Stderr, "🖼️  Annotated image written to %s\n", output)
	}
	return nil
}
