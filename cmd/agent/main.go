package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"parley/agent/internal/api"
	"parley/agent/internal/casedb"
	"parley/agent/internal/config"
	"parley/agent/internal/health"
	"parley/agent/internal/ledger"
	"parley/agent/internal/scenario/adventure"
	"parley/agent/internal/scenario/coffee"
	"parley/agent/internal/scenario/fraud"
	"parley/agent/internal/scenario/grocery"
	"parley/agent/internal/scenario/sales"
	"parley/agent/internal/scenario/shop"
	"parley/agent/internal/scenario/tutor"
	"parley/agent/internal/scenario/wellness"
	"parley/agent/internal/tools"
	"parley/agent/internal/uiws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "agent",
		Short: "Parley voice-assistant demo agents",
		Long:  "Runs one demo scenario: its tool surface over HTTP plus the UI websocket channel.",
	}

	// Flags shadow the corresponding environment variables.
	pf := root.PersistentFlags()
	pf.String("port", "", "listen port (overrides PORT)")
	pf.String("data-dir", "", "ledger directory (overrides DATA_DIR)")
	pf.String("fraud-db", "", "fraud case database path (overrides FRAUD_DB_PATH)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		for flag, env := range map[string]string{
			"port":     "PORT",
			"data-dir": "DATA_DIR",
			"fraud-db": "FRAUD_DB_PATH",
		} {
			if v, _ := pf.GetString(flag); v != "" {
				os.Setenv(env, v)
			}
		}
	}

	root.AddCommand(
		scenarioCommand("coffee", "Barista order-taking demo", buildCoffee),
		scenarioCommand("grocery", "Grocery list and ordering demo", buildGrocery),
		scenarioCommand("shop", "E-commerce cart and checkout demo", buildShop),
		scenarioCommand("wellness", "Daily check-in journal demo", buildWellness),
		scenarioCommand("sales", "Lead qualification demo", buildSales),
		scenarioCommand("tutor", "Quiz tutoring demo", buildTutor),
		scenarioCommand("fraud", "Fraud case verification demo", buildFraud),
		scenarioCommand("adventure", "Text-adventure game demo", buildAdventure),
		doctorCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// scenarioBundle is what a scenario contributes to the shared server: its
// tool set, and optionally a handler for inbound UI control messages.
type scenarioBundle struct {
	tools     []tools.Tool
	onControl func(uiws.ControlMessage) *uiws.Envelope
	closer    func() error
}

type buildFunc func(cfg config.Config, ui tools.Notifier) (scenarioBundle, error)

func scenarioCommand(name, short string, build buildFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveScenario(name, build)
		},
	}
}

func doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check local storage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			status := health.CheckAll(cmd.Context(), cfg)
			fmt.Print(status)
			if !status.OK {
				return fmt.Errorf("health checks failed")
			}
			return nil
		},
	}
}

func serveScenario(name string, build buildFunc) error {
	cfg := config.Load()

	reg := uiws.NewRegistry()
	bundle, err := build(cfg, reg)
	if err != nil {
		return err
	}
	if bundle.closer != nil {
		defer bundle.closer()
	}

	toolReg := tools.NewRegistry()
	if err := toolReg.RegisterAll(bundle.tools); err != nil {
		return err
	}

	wss := uiws.NewServer(reg)
	wss.OnControl = bundle.onControl

	h := api.NewHandlers(cfg, toolReg)
	mux := http.NewServeMux()
	mux.Handle("/", api.NewRouter(h))
	mux.HandleFunc("/ws/ui", wss.HandleUI)
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Printf("shutdown signal received; stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Printf("scenario %s starting on %s (%d tools)", name, addr, len(bundle.tools))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func buildCoffee(cfg config.Config, ui tools.Notifier) (scenarioBundle, error) {
	led, err := ledger.Open(cfg.LedgerPath("orders.json"))
	if err != nil {
		return scenarioBundle{}, err
	}
	return scenarioBundle{tools: coffee.New(led, ui).Tools()}, nil
}

func buildGrocery(cfg config.Config, ui tools.Notifier) (scenarioBundle, error) {
	led, err := ledger.Open(cfg.LedgerPath("grocery_orders.json"))
	if err != nil {
		return scenarioBundle{}, err
	}
	return scenarioBundle{tools: grocery.New(grocery.DefaultCatalog(), led, ui).Tools()}, nil
}

func buildShop(cfg config.Config, ui tools.Notifier) (scenarioBundle, error) {
	led, err := ledger.Open(cfg.LedgerPath("shop_orders.json"))
	if err != nil {
		return scenarioBundle{}, err
	}
	return scenarioBundle{tools: shop.New(shop.DefaultCatalog(), led, ui).Tools()}, nil
}

func buildWellness(cfg config.Config, ui tools.Notifier) (scenarioBundle, error) {
	led, err := ledger.Open(cfg.LedgerPath("checkins.json"))
	if err != nil {
		return scenarioBundle{}, err
	}
	return scenarioBundle{tools: wellness.New(led, ui).Tools()}, nil
}

func buildSales(cfg config.Config, ui tools.Notifier) (scenarioBundle, error) {
	led, err := ledger.Open(cfg.LedgerPath("leads.json"))
	if err != nil {
		return scenarioBundle{}, err
	}
	return scenarioBundle{tools: sales.New(led, ui).Tools()}, nil
}

func buildTutor(cfg config.Config, ui tools.Notifier) (scenarioBundle, error) {
	led, err := ledger.Open(cfg.LedgerPath("quiz_results.json"))
	if err != nil {
		return scenarioBundle{}, err
	}
	return scenarioBundle{tools: tutor.New(tutor.DefaultTopics(), led, ui).Tools()}, nil
}

func buildFraud(cfg config.Config, ui tools.Notifier) (scenarioBundle, error) {
	db, err := casedb.Open(cfg.Data.FraudDB)
	if err != nil {
		return scenarioBundle{}, err
	}
	return scenarioBundle{
		tools:  fraud.New(db, ui).Tools(),
		closer: db.Close,
	}, nil
}

func buildAdventure(cfg config.Config, ui tools.Notifier) (scenarioBundle, error) {
	f := adventure.New(ui)
	return scenarioBundle{
		tools:     f.Tools(),
		onControl: f.OnControl,
	}, nil
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
