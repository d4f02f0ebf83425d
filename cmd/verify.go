package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snaptick/facematch/internal/config"
	"github.com/snaptick/facematch/internal/facematch"
	"github.com/snaptick/facematch/internal/preprocess"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check whether two photos show the same person",
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("image1", "", "First single-face photo")
	verifyCmd.Flags().String("image2", "", "Second single-face photo")
	verifyCmd.MarkFlagRequired("image1")
	verifyCmd.MarkFlagRequired("image2")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()
	detector := newDetector(cfg, log)

	ctx := context.Background()
	embeddings := make([]facematch.Embedding, 2)
	for i, flag := range []string{"image1", "image2"} {
		img, err := preprocess.DecodeFile(mustGetString(cmd, flag))
		if err != nil {
			return err
		}
		resized, _ := preprocess.ResizeToFit(img, preprocess.EnrollmentMaxDim)
		det, err := detector.ExtractFace(ctx, resized)
		if err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
		embeddings[i] = det.Embedding
	}

	distance, comparable := facematch.CosineDistance(embeddings[0], embeddings[1])
	if !comparable {
		return fmt.Errorf("embeddings are not comparable")
	}

	verdict := "different people"
	if distance <= cfg.Calibration.Threshold {
		verdict = "same person"
	}
	fmt.Printf("distance %.3f (threshold %.2f): %s\n", distance, cfg.Calibration.Threshold, verdict)
	return nil
}
