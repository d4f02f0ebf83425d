package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/snaptick/facematch/internal/config"
	"github.com/snaptick/facematch/internal/preprocess"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract an enrollment embedding from a single-face photo",
	Long: `Extract computes the embedding of the one face in an enrollment photo
and prints it as JSON, ready to paste into a roster file's descriptors.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("image", "", "Enrollment photo with exactly one face")
	extractCmd.MarkFlagRequired("image")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()
	detector := newDetector(cfg, log)

	img, err := preprocess.DecodeFile(mustGetString(cmd, "image"))
	if err != nil {
		return err
	}

	resized, scale := preprocess.ResizeToFit(img, preprocess.EnrollmentMaxDim)
	det, err := detector.ExtractFace(context.Background(), resized)
	if err != nil {
		return err
	}
	det.Area = det.Area.Scale(scale)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(det)
}
