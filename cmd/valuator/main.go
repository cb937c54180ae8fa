// Command valuator runs a single valuation from an input file and prints the
// report. The input may be JSON or Hjson (comments and unquoted keys are
// fine for hand-written files).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"comprehensive_valuation/pkg/core/agent"
	"comprehensive_valuation/pkg/core/benchmark"
	"comprehensive_valuation/pkg/core/narrative"
	"comprehensive_valuation/pkg/core/report"
	"comprehensive_valuation/pkg/core/utils"
	"comprehensive_valuation/pkg/core/valuation"
	"comprehensive_valuation/pkg/models"
)

func main() {
	inputPath := flag.String("input", "", "path to JSON or Hjson company input file")
	format := flag.String("format", "text", "output format: text, markdown, html")
	useNarrative := flag.Bool("narrative", false, "call the configured LLM for narrative commentary")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: valuator -input company.hjson [-format text|markdown|html] [-narrative]")
		os.Exit(2)
	}

	godotenv.Load()

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Failed to read input: %v\n", err)
		os.Exit(1)
	}

	var req models.ValuationRequest
	if err := utils.ParseHJSONToStruct(string(data), &req); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Failed to parse input: %v\n", err)
		os.Exit(1)
	}

	table, err := benchmark.LoadYAML("config/benchmarks.yaml")
	if err != nil {
		fmt.Printf("[WARNING] Failed to load benchmark overrides: %v\n", err)
		table = benchmark.DefaultTable()
	}

	var provider valuation.NarrativeProvider
	if *useNarrative {
		agentCfg, err := agent.LoadConfig("config/models.yaml")
		if err != nil {
			fmt.Printf("[WARNING] Failed to load model config: %v\n", err)
		}
		provider = narrative.NewService(agent.NewManager(agentCfg))
	}

	engine := &valuation.Engine{Benchmarks: table, Narrative: provider}

	in := req.ApplyDefaults()
	out, err := engine.Run(context.Background(), in, req.MissingFields())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Valuation failed: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "markdown":
		fmt.Print(report.Markdown(out))
	case "html":
		html, err := report.HTML(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[FATAL] Report rendering failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(html)
	default:
		fmt.Print(report.Text(out))
	}
}
