package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snaptick/facematch/internal/config"
	"github.com/snaptick/facematch/internal/facematch"
	"github.com/snaptick/facematch/internal/preprocess"
	"github.com/snaptick/facematch/internal/roster"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Explain why faces in a photo do or do not match",
	Long: `Diagnose runs the same matching pipeline as match but reports the full
candidate ranking per face, the distance gaps and recommendations for
fixing enrollment data.`,
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().String("image", "", "Photo to analyze")
	diagnoseCmd.Flags().String("roster", "", "Roster file with enrolled identities (YAML or JSON)")
	diagnoseCmd.Flags().Bool("json", false, "Print results as JSON")
	diagnoseCmd.MarkFlagRequired("image")
	diagnoseCmd.MarkFlagRequired("roster")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	identities, err := roster.Load(mustGetString(cmd, "roster"))
	if err != nil {
		return err
	}

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

	prepared, scale := preprocess.PrepareForDetection(img)
	detections, err := detector.DetectFaces(context.Background(), prepared)
	if err != nil {
		return fmt.Errorf("detecting faces: %w", err)
	}
	facematch.ScaleAreas(detections, scale)

	analyses := facematch.Diagnose(detections, identities, cfg.Calibration)

	if mustGetBool(cmd, "json") {
		return json.NewEncoder(os.Stdout).Encode(analyses)
	}

	fmt.Printf("%d faces, threshold %.2f\n", len(analyses), cfg.Calibration.Threshold)
	for _, a := range analyses {
		fmt.Printf("\nface %d at (%d,%d) %dx%d\n", a.FaceIndex+1, a.Area.X, a.Area.Y, a.Area.W, a.Area.H)
		if a.IsMatch {
			fmt.Printf("  matched: %s\n", a.MatchedTo)
		} else {
			fmt.Printf("  unmatched: %s\n", a.Reason)
		}
		for _, c := range a.Candidates {
			fmt.Printf("  candidate %-20s distance %.3f (%d references)\n", c.Name, c.Distance, c.References)
		}
		for _, rec := range a.Recommendations {
			fmt.Printf("  hint: %s\n", rec)
		}
	}
	return nil
}
