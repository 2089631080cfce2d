package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/contactkeval/option-mc/internal/config"
	"github.com/contactkeval/option-mc/internal/logger"
	"github.com/contactkeval/option-mc/internal/marketdata"
	"github.com/contactkeval/option-mc/internal/montecarlo"
	"github.com/contactkeval/option-mc/internal/report"
	"github.com/contactkeval/option-mc/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults to the reference scenario)")
	seed := flag.Uint64("seed", 0, "override the configured random seed (0 keeps config)")
	outDir := flag.String("out", "", "report output directory (overrides config)")
	rest := flag.Bool("rest", false, "run as REST server")
	port := flag.String("port", "", "REST server listen port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *seed != 0 {
		cfg.Pricing.Seed = *seed
	}
	if *outDir != "" {
		cfg.Report.Dir = *outDir
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.SetVerbosity(int(level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := montecarlo.NewEngine(cfg.Options()...)

	if *rest {
		srv := &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           server.New(engine, cfg.Pricing.Seed).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Infof("starting REST server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
		return
	}

	params := cfg.Pricing.Params
	if cfg.MarketData.Underlying != "" {
		prov := marketdata.NewProvider(cfg.MarketData.APIKey)
		spot, vol, err := marketdata.Resolve(ctx, prov, cfg.MarketData.Underlying, cfg.MarketData.LookbackDays, time.Now().UTC())
		if err != nil {
			log.Fatalf("market data: %v", err)
		}
		params.Spot, params.Volatility = spot, vol
	}

	res, err := engine.Run(ctx, params, cfg.Pricing.Seed)
	if err != nil {
		log.Fatalf("pricing failed: %v", err)
	}

	fmt.Printf("call=%.4f (±%.4f)  put=%.4f (±%.4f)  closed-form call=%.4f put=%.4f\n",
		res.CallPrice, res.CallStdErr, res.PutPrice, res.PutStdErr,
		res.Reference.CallPrice, res.Reference.PutPrice)

	if err := os.MkdirAll(cfg.Report.Dir, 0755); err != nil {
		logger.Errorf("could not create output dir %s: %v", cfg.Report.Dir, err)
		os.Exit(1)
	}
	runID := uuid.New().String()
	if err := report.WriteJSON(res, runID, cfg.Report.Dir); err != nil {
		logger.Errorf("writing json report: %v", err)
		os.Exit(1)
	}
	if err := report.WriteCSV(res, cfg.Report.Dir); err != nil {
		logger.Errorf("writing csv report: %v", err)
		os.Exit(1)
	}
	logger.Infof("run %s finished in %v, wrote reports to %s", runID, time.Duration(res.Elapsed), cfg.Report.Dir)
}
