package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
	"github.com/danielpatrickdp/motion-scan/internal/replay"
)

// #region main

func main() {
	settings := config.LoadSettings()

	dir := flag.String("dir", "", "directory of sequences laid out as <prefix>/<test_type>/<file>.json")
	outPath := flag.String("out", "", "output fixture JSON path")
	configPath := flag.String("config", settings.ConfigPath, "scoring document; empty uses built-in defaults")
	description := flag.String("description", "", "fixture description")
	flag.Parse()

	if *dir == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --dir path/to/sequences --out path/to/fixture.json")
		os.Exit(2)
	}

	if err := run(*dir, *outPath, *configPath, *description, settings.Workers); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

// collect walks dir and builds one case per sequence file. The video key is
// the path relative to the parent of dir, so dir itself is the prefix.
func collect(dir, outDir string) ([]replay.FixtureCase, error) {
	root := filepath.Dir(filepath.Clean(dir))
	var cases []replay.FixtureCase
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		key, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key = filepath.ToSlash(key)
		tt, ok := orchestrator.TestTypeFromKey(key)
		if !ok {
			return nil
		}
		seq, err := landmark.LoadSequence(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return err
		}
		cases = append(cases, replay.FixtureCase{
			Name:         strings.TrimSuffix(filepath.Base(path), ".json"),
			TestType:     tt,
			VideoRef:     key,
			SequencePath: filepath.ToSlash(rel),
			Sequence:     seq,
		})
		return nil
	})
	return cases, err
}

// #endregion extract

// #region build

func run(dir, outPath, configPath, description string, workers int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	w, err := orchestrator.NewWorker(cfg)
	if err != nil {
		return err
	}

	outDir, err := filepath.Abs(filepath.Dir(outPath))
	if err != nil {
		return err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	cases, err := collect(absDir, outDir)
	if err != nil {
		return fmt.Errorf("collect sequences: %w", err)
	}
	if len(cases) == 0 {
		return fmt.Errorf("no sequences under %s", dir)
	}

	rc := replay.DefaultReplayConfig()
	if workers > 0 {
		rc.Workers = workers
	}
	results, err := replay.Replay(context.Background(), w, cases, rc)
	if err != nil {
		return err
	}

	// Record current outcomes as expectations; the sequences stay on disk.
	f := replay.Fixture{Description: description, Cases: make([]replay.FixtureCase, len(cases))}
	for i, c := range cases {
		c.Sequence = nil
		r := results[i]
		if r.Err != nil {
			c.ExpectedError = r.ErrorKind
		} else {
			score := r.Result.Score
			c.ExpectedScore = &score
			c.ExpectedStatus = string(r.Result.Status)
		}
		f.Cases[i] = c
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}

	fmt.Fprintf(os.Stderr, "exported %d cases to %s\n", len(f.Cases), outPath)
	return nil
}

// #endregion build
