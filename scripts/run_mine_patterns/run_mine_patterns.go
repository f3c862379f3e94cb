package main

import (
	"context"
	"flag"
	"strings"

	C "github.com/wyciszone/fpgrowth-with-weight/config"
	PS "github.com/wyciszone/fpgrowth-with-weight/pattern_service"
	"github.com/wyciszone/fpgrowth-with-weight/source"

	log "github.com/sirupsen/logrus"
)

func main() {
	configFilePath := flag.String("config_filepath", "", "Optional: yaml config file, FPMINER_* env vars and flags override it")
	envFlag := flag.String("env", C.DEVELOPMENT, "")
	logLevelFlag := flag.String("log_level", "info", "")

	minSupportFlag := flag.Float64("min_support", 0, "Minimum weighted support of a pattern")
	minOccurrencesFlag := flag.Float64("min_occurrences", C.DefaultMinOccurrences, "Minimum weighted occurrences, compared against the same weighted support")
	excludedLabelsFlag := flag.String("excluded_labels", "", "Optional: comma separated labels removed from every transaction")
	topPatternsFlag := flag.Int("top_patterns", C.DefaultTopPatterns, "Max number of patterns in the report, 0 for all")
	iterativeFlag := flag.Bool("iterative", false, "Mine with an explicit work stack instead of recursion")
	dumpTreeFlag := flag.Bool("dump_tree", false, "Also store a snapshot of the top level tree")

	inputDirFlag := flag.String("input_dir", "", "Directory (disk) or object prefix (gcs, s3) of the transactions file")
	inputFileFlag := flag.String("input_file", "", "Transactions file, .csv or .jsonl")
	labelColumnFlag := flag.String("label_column", "tags", "")
	weightColumnFlag := flag.String("weight_column", "num_hits", "")
	labelSeparatorFlag := flag.String("label_separator", ",", "")
	reportFormatFlag := flag.String("report_format", C.FormatCSV, "csv or xlsx")

	storageFlag := flag.String("storage", C.StorageDisk, "disk, gcs or s3")
	baseDirFlag := flag.String("base_dir", "/usr/local/var/fpminer", "Base dir for disk storage")
	bucketNameFlag := flag.String("bucket_name", "", "Bucket for gcs or s3 storage")
	regionFlag := flag.String("region", "us-east-1", "Region for s3 storage")

	flag.Parse()

	config, err := C.Load(*configFilePath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	// only explicitly set flags override file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "env":
			config.Env = *envFlag
		case "log_level":
			config.LogLevel = *logLevelFlag
		case "min_support":
			config.MinSupport = *minSupportFlag
		case "min_occurrences":
			config.MinOccurrences = *minOccurrencesFlag
		case "excluded_labels":
			config.ExcludedLabels = splitList(*excludedLabelsFlag)
		case "top_patterns":
			config.TopPatterns = *topPatternsFlag
		case "iterative":
			config.Iterative = *iterativeFlag
		case "dump_tree":
			config.DumpTree = *dumpTreeFlag
		case "input_dir":
			config.InputDir = *inputDirFlag
		case "input_file":
			config.InputFile = *inputFileFlag
		case "label_column":
			config.LabelColumn = *labelColumnFlag
		case "weight_column":
			config.WeightColumn = *weightColumnFlag
		case "label_separator":
			config.LabelSeparator = *labelSeparatorFlag
		case "report_format":
			config.ReportFormat = *reportFormatFlag
		case "storage":
			config.Storage = *storageFlag
		case "base_dir":
			config.BaseDir = *baseDirFlag
		case "bucket_name":
			config.BucketName = *bucketNameFlag
		case "region":
			config.Region = *regionFlag
		}
	})
	config.AppName = "mine_patterns_job"

	if err := C.Init(config); err != nil {
		log.WithError(err).Fatal("Invalid config")
	}
	if config.InputFile == "" {
		log.Fatal("input_file is required")
	}

	fileManager, err := config.NewFileManager()
	if err != nil {
		log.WithError(err).Fatal("Failed to init file manager")
	}

	trns, err := source.Load(fileManager, config.InputDir, config.InputFile, source.CSVOptions{
		LabelColumn:    config.LabelColumn,
		WeightColumn:   config.WeightColumn,
		LabelSeparator: config.LabelSeparator,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to load transactions")
	}

	patternService, err := PS.New(1, fileManager, config.ReportFormat)
	if err != nil {
		log.WithError(err).Fatal("Failed to init pattern service")
	}
	run, err := patternService.Run(context.Background(), PS.Request{
		Transactions: trns,
		Config:       config.MineConfig(),
		Limit:        config.TopPatterns,
		Iterative:    config.Iterative,
		DumpTree:     config.DumpTree,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to mine patterns")
	}

	path, name := fileManager.GetReportFilePathAndName(run.ID, config.ReportFormat)
	log.WithFields(log.Fields{
		"run_id":       run.ID,
		"transactions": run.Transactions,
		"patterns":     run.PatternCount,
		"reported":     len(run.Rows),
		"report":       path + name,
	}).Info("Successfully mined patterns")
}

func splitList(s string) []string {
	res := make([]string, 0)
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}
