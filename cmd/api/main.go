package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apiconfig "comprehensive_valuation/pkg/api/config"
	apivaluation "comprehensive_valuation/pkg/api/valuation"
	"comprehensive_valuation/pkg/core/agent"
	"comprehensive_valuation/pkg/core/benchmark"
	"comprehensive_valuation/pkg/core/narrative"
	"comprehensive_valuation/pkg/core/store"
	"comprehensive_valuation/pkg/core/valuation"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Agent routing config (provider selection for narrative commentary)
	agentCfg, err := agent.LoadConfig("config/models.yaml")
	if err != nil {
		fmt.Printf("[WARNING] Failed to load model config: %v\n", err)
	}
	agentMgr := agent.NewManager(agentCfg)

	// Benchmark table: built-in rows plus optional YAML overrides
	table, err := benchmark.LoadYAML("config/benchmarks.yaml")
	if err != nil {
		fmt.Printf("[WARNING] Failed to load benchmark overrides: %v\n", err)
		table = benchmark.DefaultTable()
	}

	// Narrative commentary is optional; without an API key the estimator
	// degrades to neutral confidence on its own.
	var provider valuation.NarrativeProvider
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("DEEPSEEK_API_KEY") != "" {
		provider = narrative.NewService(agentMgr)
	} else {
		fmt.Println("[WARNING] No LLM API key set; narrative commentary disabled")
	}

	engine := &valuation.Engine{
		Benchmarks: table,
		Narrative:  provider,
	}

	// Persistence is optional too: without DATABASE_URL runs are not stored.
	persist := false
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Database init failed, persistence disabled: %v\n", err)
		} else {
			persist = true
			defer store.Close()
		}
	}

	configHandler := apiconfig.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	apivaluation.InitHandler(engine, persist)
	http.HandleFunc("/api/valuation", apivaluation.HandleValuation)
	http.HandleFunc("/api/valuation/report", apivaluation.HandleReport)
	http.HandleFunc("/api/valuation/peers", apivaluation.HandlePeerComparison)
	http.HandleFunc("/api/valuation/history", apivaluation.HandleHistory)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - POST /api/valuation")
	fmt.Println("  - POST /api/valuation/report  (?format=html for HTML)")
	fmt.Println("  - POST /api/valuation/peers")
	fmt.Println("  - GET  /api/valuation/history")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
