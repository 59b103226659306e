package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/stock-signal-backtest/internal/logger"
	"github.com/ducminhle1904/stock-signal-backtest/internal/monitoring"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/config"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/orchestrator"
)

const (
	AppName    = "Signal Backtest"
	AppVersion = "1.0.0"
)

func main() {
	flags := NewFlags(flag.CommandLine)
	flag.Parse()
	flags.MarkSet(flag.CommandLine)

	if err := ValidateFlags(flags); err != nil {
		log.Fatalf("❌ Flag validation error: %v", err)
	}

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}
	if *flags.ShowHelp {
		printUsageHelp()
		return
	}

	printHeader()

	if err := config.LoadEnvFile(*flags.EnvFile); err != nil {
		log.Printf("⚠️  %v", err)
	}

	cfg, err := loadConfiguration(flags)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	printConfigSummary(cfg)

	session, err := logger.New(logger.Options{
		Symbol:  cfg.Data.Symbol,
		Level:   cfg.Output.LogLevel,
		Dir:     cfg.Output.LogDir,
		Console: true,
		File:    !cfg.Output.ConsoleOnly,
	})
	if err != nil {
		log.Fatalf("❌ Logger error: %v", err)
	}
	defer session.Close()

	metrics := monitoring.NewMetrics()
	health := monitoring.NewHealthChecker(1)
	if *flags.MetricsAddr != "" {
		srv := startMetricsServer(*flags.MetricsAddr, metrics, health, session.Logger)
		defer shutdown(srv)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := orchestrator.NewRunner(cfg, orchestrator.Options{
		Logger:  session,
		Metrics: metrics,
		Health:  health,
		Workers: *flags.Workers,
	})

	var workflow orchestrator.Workflow
	if *flags.Sweep {
		workflow = orchestrator.NewSweepWorkflow(runner, cfg.Backtest.Sweep)
	} else {
		workflow = orchestrator.NewSingleRunWorkflow(runner)
	}

	out, err := workflow.Execute(ctx)
	if err != nil {
		session.Close()
		log.Fatalf("❌ %s run failed: %v", workflow.GetWorkflowType(), err)
	}

	switch res := out.(type) {
	case *orchestrator.RunResult:
		printFiles(res.Files)
		fmt.Printf("⏱️  Completed in %s\n", res.Duration.Round(time.Millisecond))
	case *orchestrator.SweepResult:
		if res.File != "" {
			printFiles([]string{res.File})
		}
		if res.Best != nil {
			fmt.Printf("🏆 Best: stop loss %.1f%%, take profit %.1f%%, size %.4g (Sharpe %.2f)\n",
				res.Best.Config.StopLossPct*100, res.Best.Config.TakeProfitPct*100,
				res.Best.Config.OrderSize, res.Best.Results.SharpeRatio)
		}
		fmt.Printf("⏱️  Completed in %s\n", res.Duration.Round(time.Millisecond))
	}
	if path := session.Path(); path != "" {
		fmt.Printf("📝 Session log: %s\n", path)
	}
}

func printHeader() {
	fmt.Printf("🎯 %s v%s\n", strings.ToUpper(AppName), AppVersion)
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))
}

func printUsageHelp() {
	fmt.Printf("%s v%s - Indicator, divergence and signal analysis with a single-position backtest\n\n", AppName, AppVersion)
	fmt.Printf("USAGE:\n  %s [OPTIONS]\n\n", filepath.Base(os.Args[0]))

	PrintUsageExamples()
	PrintFlagGroups()
}

// loadConfiguration resolves defaults, file, environment and flags, in that order
func loadConfiguration(flags *Flags) (*config.Config, error) {
	manager := config.NewManager()
	cfg, err := manager.Load(ResolveConfigPath(*flags.ConfigFile))
	if err != nil {
		return nil, err
	}
	if err := flags.Apply(cfg); err != nil {
		return nil, err
	}
	if err := manager.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printConfigSummary(cfg *config.Config) {
	fmt.Printf("📊 Signal Backtest Configuration\n")
	if cfg.Data.File != "" {
		fmt.Printf("   Data: %s\n", cfg.Data.File)
	} else {
		fmt.Printf("   Data: %s/%s_data.csv\n", cfg.Data.Root, cfg.Data.Symbol)
	}
	fmt.Printf("   Symbol: %s\n", cfg.Data.Symbol)
	fmt.Printf("   Profile: %s", cfg.Backtest.Profile)
	if cfg.Backtest.Profile == config.ProfilePriceThreshold {
		fmt.Printf(" (close <= %.2f)", cfg.Backtest.EntryPrice)
	}
	fmt.Printf("\n")
	fmt.Printf("   Cash: $%.2f, Size: %.4g\n", cfg.Backtest.InitialCash, cfg.Backtest.OrderSize)
	fmt.Printf("   Stop Loss: %.2f%%, Take Profit: %.2f%%\n", cfg.Backtest.StopLossPct*100, cfg.Backtest.TakeProfitPct*100)
	fmt.Printf("   Trend Exit: SMA%d below SMA%d\n\n", cfg.Backtest.FastMA, cfg.Backtest.SlowMA)
}

func printFiles(files []string) {
	if len(files) == 0 {
		return
	}
	fmt.Printf("💾 Files written:\n")
	for _, f := range files {
		fmt.Printf("   %s\n", f)
	}
}

func startMetricsServer(addr string, metrics *monitoring.Metrics, health *monitoring.HealthChecker, lg *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           monitoring.NewMux(metrics, health),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("❌ metrics server failed", zap.Error(err))
		}
	}()
	lg.Info("📡 serving metrics", zap.String("addr", addr))
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
