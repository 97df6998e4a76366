package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/bcdannyboy/dupire/config"
	"github.com/bcdannyboy/dupire/models"
	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"github.com/xhhuango/json"
	"gonum.org/v1/gonum/stat"
)

var (
	configPath string
	outputPath string
	workers    int

	smileTime float64

	numPaths int
	numSteps int
	horizon  float64
	seed     uint64
)

// Report is the file written by the run command.
type Report struct {
	Name     string             `json:"name"`
	Mode     string             `json:"mode"`
	Spot     float64            `json:"spot"`
	Step     float64            `json:"step"`
	Time     string             `json:"time"`
	Duration string             `json:"duration"`
	Points   []models.GridPoint `json:"points"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "dupire",
		Short: "local volatility surfaces from implied volatilities or call prices",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "run file (JSON or YAML), defaults to $"+config.EnvInput+" or "+config.DefaultConfigPath)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "evaluate the local volatility grid and write a report",
		RunE:  runGrid,
	}
	runCmd.Flags().StringVar(&outputPath, "output", "", "report path, overrides the run file")
	runCmd.Flags().IntVar(&workers, "workers", 0, "worker count, overrides the run file")

	smileCmd := &cobra.Command{
		Use:   "smile",
		Short: "plot the local volatility smile at one time",
		RunE:  plotSmile,
	}
	smileCmd.Flags().Float64Var(&smileTime, "time", 0.5, "year fraction")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Monte Carlo terminal spot distribution under local volatility",
		RunE:  simulate,
	}
	simulateCmd.Flags().IntVar(&numPaths, "paths", 10000, "number of paths")
	simulateCmd.Flags().IntVar(&numSteps, "steps", 100, "time steps per path")
	simulateCmd.Flags().Float64Var(&horizon, "horizon", 1.0, "horizon in years")
	simulateCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")

	rootCmd.AddCommand(runCmd, smileCmd, simulateCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	path := config.InputPath(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if outputPath != "" {
		cfg.Output.Path = outputPath
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fmt.Printf("Loaded %s (%s, %d nodes)\n", path, cfg.Mode, len(cfg.Surface.Values))
	return cfg, nil
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	localVol, err := cfg.LocalVolatility()
	if err != nil {
		return err
	}

	numWorkers := cfg.Workers
	if numWorkers == 0 {
		numWorkers = models.DefaultWorkers()
	}
	total := len(cfg.Output.Times) * len(cfg.Output.Strikes)
	fmt.Printf("Evaluating %d points with %d workers\n", total, numWorkers)

	start := time.Now()
	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Progress"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	points, err := models.EvaluateGrid(cmd.Context(), localVol, cfg.Output.Times, cfg.Output.Strikes, models.GridOptions{
		Workers:       numWorkers,
		Sensitivities: cfg.Output.Sensitivities,
		Bar:           bar,
	})
	if err != nil {
		bar.Abort(false)
		p.Wait()
		return err
	}
	p.Wait()

	report := Report{
		Name:     localVol.Metadata().Name,
		Mode:     cfg.Mode,
		Spot:     cfg.Spot,
		Step:     cfg.Step,
		Time:     start.Format(time.RFC3339),
		Duration: time.Since(start).String(),
		Points:   points,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling report: %w", err)
	}
	if err := os.WriteFile(cfg.Output.Path, data, 0644); err != nil {
		return fmt.Errorf("error writing to file %s: %w", cfg.Output.Path, err)
	}
	fmt.Printf("Wrote %d points to %s in %s\n", len(points), cfg.Output.Path, report.Duration)
	return nil
}

func plotSmile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	localVol, err := cfg.LocalVolatility()
	if err != nil {
		return err
	}

	points, err := models.EvaluateGrid(cmd.Context(), localVol, []float64{smileTime}, cfg.Output.Strikes, models.GridOptions{Workers: cfg.Workers})
	if err != nil {
		return err
	}
	data := make([]float64, len(points))
	for i, pt := range points {
		data[i] = pt.Value
		fmt.Printf("K=%10.4f  local vol=%.6f\n", pt.Strike, pt.Value)
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s at T=%.4f, strikes %.4g to %.4g", localVol.Metadata().Name, smileTime, cfg.Output.Strikes[0], cfg.Output.Strikes[len(cfg.Output.Strikes)-1])),
	)
	fmt.Println(graph)
	return nil
}

func simulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	localVol, err := cfg.LocalVolatility()
	if err != nil {
		return err
	}
	r, q, err := cfg.Rates()
	if err != nil {
		return err
	}

	start := time.Now()
	spots, err := models.SimulateTerminalSpots(cfg.Spot, r, q, localVol, horizon, numSteps, numPaths, seed, cfg.Workers)
	if err != nil {
		return err
	}
	mean, std := stat.MeanStdDev(spots, nil)
	forward := cfg.Spot * math.Exp((r(horizon)-q(horizon))*horizon)

	fmt.Printf("Simulated %d paths of %d steps in %s\n", numPaths, numSteps, time.Since(start))
	fmt.Printf("Mean terminal spot: %.6f (forward %.6f, standard error %.6f)\n", mean, forward, std/math.Sqrt(float64(len(spots))))
	for _, k := range cfg.Output.Strikes {
		payoff := 0.0
		for _, s := range spots {
			payoff += math.Max(s-k, 0)
		}
		price := math.Exp(-r(horizon)*horizon) * payoff / float64(len(spots))
		fmt.Printf("K=%10.4f  call=%.6f\n", k, price)
	}
	return nil
}
