package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/logging"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
	"github.com/danielpatrickdp/motion-scan/internal/rpc"
	"github.com/danielpatrickdp/motion-scan/internal/store"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // evaluation could not complete (store, transport)
	exitUsage  = 2 // bad flags, unreadable or invalid input, unknown test type
)

// #region main
func main() {
	settings := config.LoadSettings()

	configPath := flag.String("config", settings.ConfigPath, "scoring document (JSON); empty uses built-in defaults")
	testType := flag.String("test", "", "test type; derived from -video-id when it is a storage key")
	input := flag.String("input", "", "landmark sequence (JSON)")
	videoID := flag.String("video-id", "", "video reference; only its short hash is reported")
	save := flag.Bool("save", false, "persist the result in the SQLite store")
	dbPath := flag.String("db", settings.DBPath, "SQLite store path used with -save")
	remote := flag.String("remote", "", "evaluate through a gRPC server at this address instead of locally")
	asJSON := flag.Bool("json", false, "print the full result as JSON")
	warningsPath := flag.String("warnings", "", "write the warnings document to this path")
	list := flag.Bool("list", false, "list supported test types and exit")
	flag.Parse()

	os.Exit(run(options{
		configPath:   *configPath,
		testType:     *testType,
		input:        *input,
		videoID:      *videoID,
		save:         *save,
		dbPath:       *dbPath,
		remote:       *remote,
		asJSON:       *asJSON,
		warningsPath: *warningsPath,
		list:         *list,
	}))
}

// #endregion main

// #region run
type options struct {
	configPath, testType, input, videoID string
	save                                 bool
	dbPath, remote                       string
	asJSON                               bool
	warningsPath                         string
	list                                 bool
}

func run(o options) int {
	// 1. Scoring document
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitUsage
	}
	if o.list {
		for _, t := range cfg.TestTypes() {
			fmt.Printf("%-18s %s\n", t, cfg.Tests[t].Description)
		}
		return exitOK
	}

	// 2. Inputs
	if o.input == "" {
		fmt.Fprintln(os.Stderr, "usage: motionscan -input sequence.json [-test type] [-video-id ref]")
		return exitUsage
	}
	if o.testType == "" {
		tt, ok := orchestrator.TestTypeFromKey(o.videoID)
		if !ok {
			fmt.Fprintln(os.Stderr, "missing -test and -video-id is not a <prefix>/<test_type>/<file> key")
			return exitUsage
		}
		o.testType = tt
	}
	seq, err := landmark.LoadSequence(o.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "input: %v\n", err)
		return exitUsage
	}

	// 3. Evaluate
	var res orchestrator.Result
	var summary logging.ConfigSummary
	if o.remote != "" {
		res, summary, err = evaluateRemote(o, seq)
	} else {
		res, summary, err = evaluateLocal(o, cfg, seq)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluate: %v\n", err)
		return exitCode(err)
	}

	// 4. Outputs
	if o.warningsPath != "" {
		doc := logging.BuildDocument(summary, res.TestType, res.Warnings)
		if err := logging.WriteDocument(o.warningsPath, doc); err != nil {
			fmt.Fprintf(os.Stderr, "warnings: %v\n", err)
			return exitUsage
		}
	}
	if o.asJSON {
		data, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Print(orchestrator.Summary(res))
	}
	return exitOK
}

// exitCode maps an evaluation error to the process exit code. Caller
// mistakes (unknown test type, malformed sequence) exit with exitUsage
// whether they were detected locally or by a server.
func exitCode(err error) int {
	var ce *config.ConfigurationError
	var ie *landmark.InputError
	if errors.As(err, &ce) || errors.As(err, &ie) || status.Code(err) == codes.InvalidArgument {
		return exitUsage
	}
	return exitFailed
}

func evaluateLocal(o options, cfg *config.Config, seq *landmark.Sequence) (orchestrator.Result, logging.ConfigSummary, error) {
	w, err := orchestrator.NewWorker(cfg)
	if err != nil {
		return orchestrator.Result{}, logging.ConfigSummary{}, err
	}
	summary := logging.SummarizeConfig(w.Config())
	res, err := w.Process(orchestrator.Request{VideoRef: o.videoID, TestType: o.testType, Sequence: seq})
	if err != nil {
		return res, summary, err
	}

	if o.save {
		st, err := store.Open(context.Background(), o.dbPath)
		if err != nil {
			return res, summary, err
		}
		defer st.Close()
		rec, err := st.Save(res)
		if err != nil {
			return res, summary, err
		}
		log.Printf("[STORE] result id %s", rec.ID)
	}
	return res, summary, nil
}

// evaluateRemote returns the server's config summary, since the server's
// thresholds produced the warnings.
func evaluateRemote(o options, seq *landmark.Sequence) (orchestrator.Result, logging.ConfigSummary, error) {
	c, err := rpc.NewClient(o.remote)
	if err != nil {
		return orchestrator.Result{}, logging.ConfigSummary{}, err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	resp, err := c.Evaluate(ctx, o.videoID, o.testType, seq)
	if err != nil {
		return orchestrator.Result{}, logging.ConfigSummary{}, err
	}
	if resp.ID != "" {
		log.Printf("[RPC] result id %s", resp.ID)
	}
	return resp.Result, resp.Config, nil
}

// #endregion run
