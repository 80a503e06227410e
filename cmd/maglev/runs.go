package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/maglev/internal/analysis"
	"github.com/san-kum/maglev/internal/config"
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/export"
	"github.com/san-kum/maglev/internal/storage"
)

var (
	outPath     string
	imageFormat string
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tINTEG\tKP\tKI\tKD\tIAE")

	for _, run := range runs {
		name := run.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%g\t%g\t%g\t%.4f\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.PID.Kp,
			run.PID.Ki,
			run.PID.Kd,
			run.Metrics["iae"],
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("gains: kp=%g ki=%g kd=%g\n", meta.PID.Kp, meta.PID.Ki, meta.PID.Kd)
	fmt.Printf("samples: %d\n\n", len(samples))

	fmt.Println(export.ASCII(samples, 80, 12, "position (cyan) vs setpoint (red)"))
	fmt.Println()

	drive := make([]float64, len(samples))
	for i, s := range samples {
		drive[i] = s.Drive
	}
	graph := asciigraph.Plot(drive,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("actuator drive (N)"),
	)
	fmt.Println(graph)
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	prefix := outPath
	if prefix == "" {
		prefix = meta.ID
	}
	title := fmt.Sprintf("kp=%g ki=%g kd=%g", meta.PID.Kp, meta.PID.Ki, meta.PID.Kd)
	if meta.Preset != "" {
		title = meta.Preset + " " + title
	}

	files, err := export.SaveRun(samples, title, prefix, "."+imageFormat)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("wrote %s\n", f)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = meta.ID + ".json"
	}
	if err := export.ExportJSON(path, *meta, samples); err != nil {
		return err
	}
	fmt.Printf("exported %d samples to %s\n", len(samples), path)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	return writeOutput(func(w io.Writer) error {
		return storage.WriteSamples(w, samples)
	})
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := config.Save(outPath, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}
	return writeOutput(func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	})
}

// writeOutput sends write to --out, or stdout when it is unset.
func writeOutput(write func(io.Writer) error) error {
	if outPath == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)

	if resp, err := analysis.StepResponse(samples, analysis.DefaultSettleBand); err != nil {
		fmt.Printf("step response: %v\n", err)
	} else {
		fmt.Printf("step %.3f m -> %.3f m\n", resp.Initial, resp.Setpoint)
		fmt.Printf("  rise time:     %.3f s\n", resp.RiseTime)
		fmt.Printf("  overshoot:     %.1f%%\n", resp.Overshoot*100)
		if resp.Settled {
			fmt.Printf("  settling time: %.3f s\n", resp.SettlingTime)
		} else {
			fmt.Println("  settling time: not settled")
		}
	}
	fmt.Println()

	sp, err := analysis.ErrorSpectrum(samples, meta.Dt)
	if err != nil {
		return err
	}
	plotData := sp.Power[:max(2, len(sp.Power)/4)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("tracking error power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	if freq, _ := sp.Dominant(); freq > 0 {
		fmt.Printf("dominant frequency: %.3f hz\n", freq)
		fmt.Printf("period: %.3f s\n\n", 1.0/freq)
	}

	fmt.Println("phase portrait (position vs velocity):")
	fmt.Print(analysis.PhasePortrait(samples, 70, 20))
	return nil
}
