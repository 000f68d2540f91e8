package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/2926295173/never-jscore/internal/config"
	"github.com/2926295173/never-jscore/internal/disguise"
	"github.com/2926295173/never-jscore/internal/logging"
	"github.com/2926295173/never-jscore/internal/sandbox"
)

func main() {
	expr := flag.String("e", "", "Inline expression to evaluate")
	timeoutMS := flag.Int("timeout", 0, "Execution timeout in milliseconds (overrides SANDBOX_TIMEOUT_MS)")
	catalogPath := flag.String("catalog", "", "Protection catalog YAML path (overrides CATALOG_PATH)")
	noDisguise := flag.Bool("no-disguise", false, "Skip the disguise bootstrap")
	flag.Parse()

	cfg := config.LoadOrDefault()

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "njs: logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	script, err := loadScript(*expr, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "njs: %v\n", err)
		os.Exit(2)
	}

	sandboxCfg := sandbox.DefaultConfig()
	sandboxCfg.EnableConsole = cfg.Sandbox.EnableConsole
	sandboxCfg.EnableWebAPIs = cfg.Sandbox.EnableWebAPIs
	sandboxCfg.Disguise = cfg.Sandbox.Disguise && !*noDisguise
	if cfg.Sandbox.TimeoutMS > 0 {
		sandboxCfg.Timeout = time.Duration(cfg.Sandbox.TimeoutMS) * time.Millisecond
	}
	if *timeoutMS > 0 {
		sandboxCfg.Timeout = time.Duration(*timeoutMS) * time.Millisecond
	}

	path := cfg.Catalog.Path
	if *catalogPath != "" {
		path = *catalogPath
	}
	if path != "" {
		catalog, err := disguise.LoadCatalog(path)
		if err != nil {
			log.Error("catalog load failed", zap.String("path", path), zap.Error(err))
			os.Exit(1)
		}
		sandboxCfg.Catalog = &catalog
	}

	runtime, err := sandbox.New(sandboxCfg, log)
	if err != nil {
		log.Error("runtime creation failed", zap.Error(err))
		os.Exit(1)
	}
	defer runtime.Close()

	result, err := runtime.Execute(context.Background(), script)
	if result != nil {
		for _, entry := range result.Console {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", entry.Level, entry.Message)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "njs: %v\n", err)
		os.Exit(1)
	}

	if result.Value != nil {
		out, err := json.Marshal(result.Value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "njs: result not serializable: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	}
}

// loadScript resolves the script source from -e or a file argument.
func loadScript(expr string, args []string) (string, error) {
	if expr != "" {
		return expr, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("usage: njs [-e expr] [script.js]")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}
