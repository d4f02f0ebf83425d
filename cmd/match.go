package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/snaptick/facematch/internal/config"
	"github.com/snaptick/facematch/internal/embedder"
	"github.com/snaptick/facematch/internal/facematch"
	"github.com/snaptick/facematch/internal/preprocess"
	"github.com/snaptick/facematch/internal/roster"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match faces in photos against a roster of enrolled identities",
	Long: `Match detects every face in a photo and assigns each to at most one
enrolled identity from the roster file. With --dir, every image in the
directory is processed and a JSON report is written next to the images.`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("image", "", "Photo to match")
	matchCmd.Flags().String("roster", "", "Roster file with enrolled identities (YAML or JSON)")
	matchCmd.Flags().String("dir", "", "Directory of photos to match in batch")
	matchCmd.Flags().Int("concurrency", 4, "Parallel photos in batch mode")
	matchCmd.Flags().Bool("json", false, "Print results as JSON")
	matchCmd.MarkFlagRequired("roster")
}

// photoResult is one photo's outcome in a batch report.
type photoResult struct {
	Photo           string                `json:"photo"`
	Faces           []facematch.FaceMatch `json:"faces,omitempty"`
	FaceCount       int                   `json:"face_count"`
	RecognizedCount int                   `json:"recognized_count"`
	Error           string                `json:"error,omitempty"`
}

// batchReport is the JSON document written after a directory run.
type batchReport struct {
	RunID   string        `json:"run_id"`
	Roster  string        `json:"roster"`
	Results []photoResult `json:"results"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	imagePath := mustGetString(cmd, "image")
	dirPath := mustGetString(cmd, "dir")
	if (imagePath == "") == (dirPath == "") {
		return fmt.Errorf("provide exactly one of --image or --dir")
	}

	rosterPath := mustGetString(cmd, "roster")
	identities, err := roster.Load(rosterPath)
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

	ctx := context.Background()
	if imagePath != "" {
		result, err := matchPhoto(ctx, detector, cfg, imagePath, identities)
		if err != nil {
			return err
		}
		if mustGetBool(cmd, "json") {
			return json.NewEncoder(os.Stdout).Encode(result)
		}
		printMatchResult(imagePath, result)
		return nil
	}

	return runMatchDir(ctx, detector, cfg, dirPath, rosterPath, identities, mustGetInt(cmd, "concurrency"))
}

// matchPhoto runs the full pipeline for one photo.
func matchPhoto(ctx context.Context, detector *embedder.Service, cfg *config.Config, path string, identities []facematch.Identity) (photoResult, error) {
	img, err := preprocess.DecodeFile(path)
	if err != nil {
		return photoResult{}, err
	}

	prepared, scale := preprocess.PrepareForDetection(img)
	detections, err := detector.DetectFaces(ctx, prepared)
	if err != nil {
		return photoResult{}, fmt.Errorf("detecting faces in %s: %w", path, err)
	}
	facematch.ScaleAreas(detections, scale)

	result := facematch.MatchFaces(detections, identities, cfg.Calibration)
	return photoResult{
		Photo:           path,
		Faces:           result.Matches,
		FaceCount:       len(detections),
		RecognizedCount: result.Recognized,
	}, nil
}

func printMatchResult(path string, result photoResult) {
	fmt.Printf("%s: %d faces, %d recognized\n", path, result.FaceCount, result.RecognizedCount)
	for i, face := range result.Faces {
		label := face.Key
		distance := fmt.Sprintf("%.3f", face.Distance)
		if math.IsInf(float64(face.Distance), 1) {
			distance = "-"
		}
		fmt.Printf("  face %d at (%d,%d) %dx%d: %s (distance %s)\n",
			i+1, face.Area.X, face.Area.Y, face.Area.W, face.Area.H, label, distance)
	}
}

// runMatchDir matches every image in a directory with bounded concurrency
// and writes a JSON report identified by a fresh run ID.
func runMatchDir(ctx context.Context, detector *embedder.Service, cfg *config.Config, dir, rosterPath string, identities []facematch.Identity, concurrency int) error {
	photos, err := listImages(dir)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	runID := uuid.New().String()
	fmt.Printf("Matching %d photos (run %s)\n", len(photos), runID)

	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Matching faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	results := make([]photoResult, len(photos))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, photo := range photos {
		wg.Add(1)
		go func(i int, photo string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := matchPhoto(ctx, detector, cfg, photo, identities)
			if err != nil {
				result = photoResult{Photo: photo, Error: err.Error()}
			}
			results[i] = result
			bar.Add(1)
		}(i, photo)
	}
	wg.Wait()
	fmt.Println()

	var faces, recognized, failed int
	for _, r := range results {
		faces += r.FaceCount
		recognized += r.RecognizedCount
		if r.Error != "" {
			failed++
		}
	}
	fmt.Printf("Done: %d faces, %d recognized, %d photos failed\n", faces, recognized, failed)

	report := batchReport{RunID: runID, Roster: rosterPath, Results: results}
	reportPath := filepath.Join(dir, fmt.Sprintf("facematch-%s.json", runID))
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(reportPath, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Printf("Report written to %s\n", reportPath)
	return nil
}

// listImages returns the image files of a directory in name order.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var photos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif", ".bmp":
			photos = append(photos, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(photos)
	return photos, nil
}
