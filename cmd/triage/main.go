package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ossf/content-triage/internal/digest"
	"github.com/ossf/content-triage/internal/featureflags"
	"github.com/ossf/content-triage/internal/log"
	"github.com/ossf/content-triage/internal/resultstore"
	"github.com/ossf/content-triage/internal/sample"
	"github.com/ossf/content-triage/internal/triage"
	"github.com/ossf/content-triage/internal/utils"
	"github.com/ossf/content-triage/internal/worker"
	api "github.com/ossf/content-triage/pkg/api/triage"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var (
	sampleSize      = flag.Int("sample-size", sample.DefaultSize, "number of leading bytes of each file to analyse")
	digestAlg       = flag.String("digest", string(digest.SHA256), "digest algorithm for whole files: sha256 or blake2b")
	topM            = flag.Int("top", 0, "number of n-grams to report per size (0 for the default)")
	declared        = flag.String("declared", "", "declared type of the files, e.g. a MIME type")
	declaredFromExt = flag.Bool("declared-from-ext", false, "derive the declared type of each file from its extension")
	format          = flag.String("format", formatJSON, "output format: json or text")
	upload          = flag.String("upload", "", "bucket path for uploading triage records")
	listTasks       = flag.Bool("list-tasks", false, "prints out a list of available triage tasks")
	features        = flag.String("features", "", "override features that are enabled/disabled by default")
	listFeatures    = flag.Bool("list-features", false, "list available features that can be toggled")
	help            = flag.Bool("help", false, "print help on available options")
	tasks           = utils.CommaSeparatedFlags("tasks", nil,
		"list of triage tasks to run, separated by commas. Use -list-tasks to see available options")
	ngrams = utils.CommaSeparatedFlags("ngrams", []string{"1", "2", "4"},
		"list of n-gram sizes to index, separated by commas")
)

func printTasks() {
	fmt.Println("Available triage tasks:")
	for _, t := range triage.AllTasks() {
		fmt.Println(t)
	}
	fmt.Println()
}

func printFeatureFlags() {
	fmt.Printf("Feature List\n\n")
	fmt.Printf("%-30s %s\n", "Name", "Default")
	fmt.Printf("----------------------------------------\n")

	// print features in sorted order
	state := featureflags.State()
	sortedFeatures := maps.Keys(state)
	slices.Sort(sortedFeatures)

	// print Off/On rather than 'false' and 'true'
	stateStrings := map[bool]string{false: "Off", true: "On"}
	for _, feature := range sortedFeatures {
		fmt.Printf("%-30s %s\n", feature, stateStrings[state[feature]])
	}

	fmt.Println()
}

func parseTasks(names []string) ([]triage.Task, error) {
	var parsed []triage.Task
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t, ok := triage.TaskFromString(strings.ToLower(name))
		if !ok {
			return nil, fmt.Errorf("unknown triage task %q", name)
		}
		parsed = append(parsed, t)
	}
	return parsed, nil
}

func parseNGramSizes(values []string) ([]int, error) {
	var sizes []int
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid n-gram size %q: %w", v, err)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func declaredTypeFor(path string) string {
	if *declared != "" {
		return *declared
	}
	if *declaredFromExt {
		return worker.DeclaredTypeFromName(path)
	}
	return ""
}

func writeRecord(w io.Writer, rec *api.Record, r *triage.Result) error {
	switch *format {
	case formatText:
		_, err := fmt.Fprintf(w, "%s: %s\n", rec.Path, r)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
}

func triageFile(ctx context.Context, t *worker.Triager, dest *resultstore.ResultStore, path string) error {
	ctx = log.ContextWithAttrs(ctx, slog.String("path", path))

	rec, r, err := t.TriageFile(ctx, path, declaredTypeFor(path))
	if err != nil {
		return err
	}
	if err := writeRecord(os.Stdout, rec, r); err != nil {
		return err
	}
	if err := worker.SaveRecord(ctx, dest, rec); err != nil {
		slog.ErrorContext(ctx, "Upload error", "error", err)
	}
	return nil
}

func main() {
	log.Initialize(os.Getenv("LOGGER_ENV"))

	tasks.InitFlag()
	ngrams.InitFlag()
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] FILE...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := featureflags.Update(*features); err != nil {
		slog.Error("Failed to parse flags", "error", err)
		os.Exit(1)
	}

	if *help {
		flag.Usage()
		return
	}

	if *listTasks {
		printTasks()
		return
	}

	if *listFeatures {
		printFeatureFlags()
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	if *format != formatJSON && *format != formatText {
		slog.Error("Unknown output format: " + *format)
		os.Exit(1)
	}

	alg, err := digest.ParseAlgorithm(*digestAlg)
	if err != nil {
		slog.Error("Invalid digest algorithm", "error", err)
		os.Exit(1)
	}

	runTasks, err := parseTasks(tasks.Values)
	if err != nil {
		slog.Error("Invalid task list", "error", err)
		printTasks()
		os.Exit(1)
	}

	sizes, err := parseNGramSizes(ngrams.Values)
	if err != nil {
		slog.Error("Invalid n-gram sizes", "error", err)
		os.Exit(1)
	}

	var dest *resultstore.ResultStore
	if *upload != "" {
		dest = resultstore.New(*upload, resultstore.ConstructPath())
	}

	t := worker.NewTriager(triage.Options{
		Tasks:      runTasks,
		NGramSizes: sizes,
		TopM:       *topM,
	}, alg, *sampleSize)

	ctx := context.Background()
	failed := 0
	for _, path := range flag.Args() {
		if err := triageFile(ctx, t, dest, path); err != nil {
			worker.LogTriageError(ctx, path, err)
			failed++
		}
	}

	hits, misses := t.CacheStats()
	slog.DebugContext(ctx, "Triage finished", "files", flag.NArg(), "failed", failed, "cache_hits", hits, "cache_misses", misses)
	if failed > 0 {
		os.Exit(1)
	}
}
