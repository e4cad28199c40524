package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/rfq-pilot/internal/ai"
	"github.com/david/rfq-pilot/internal/analyze"
	"github.com/david/rfq-pilot/internal/checklist"
	"github.com/david/rfq-pilot/internal/config"
	"github.com/david/rfq-pilot/internal/decision"
	"github.com/david/rfq-pilot/internal/extract"
)

func main() {
	jsonOut := flag.Bool("json", false, "emit the full analysis as JSON")
	withAdvisor := flag.Bool("advisor", false, "cross-check the decision with the advisory model")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <rfq-file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	text, err := extract.Text(filepath.Base(path), content)
	if err != nil {
		log.Fatalf("Text extraction failed: %v", err)
	}

	result := analyze.Analyze(text)
	engine := decision.FromAnalysis(result)

	var advisory *decision.Advisory
	if *withAdvisor {
		cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		client := ai.NewOllamaClient(cfg.Ollama.Host, cfg.Ollama.EmbedModel, cfg.Ollama.GenModel)
		advisor := ai.NewAdvisor(client, cfg.AdvisoryTimeout)

		advisory, err = advisor.Review(context.Background(), decision.BuildContext(engine))
		if err != nil {
			log.Printf("Advisory skipped: %v", err)
		}
	}

	fused := decision.Merge(engine, advisory)

	if *jsonOut {
		out := map[string]any{
			"analysis": result,
			"decision": fused,
		}
		if fused.FinalDecision == decision.Hold {
			out["hold_resolution_checklist"] = checklist.FromEngine(fused.FinalDecision, engine.Flags)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatal(err)
		}
		return
	}

	render(result, fused, engine)
}

func render(result analyze.AnalysisResult, fused decision.Fused, engine decision.EngineResult) {
	snap := result.Snapshot

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("RFQ Snapshot")
	t.AppendRows([]table.Row{
		{"RFQ Number", snap.RFQNumber + " (" + snap.RFQIDConfidence + ")"},
		{"NSN", snap.NSN},
		{"Quantity", snap.Quantity},
		{"Delivery", snap.DeliveryRequirement},
		{"Set-Aside", snap.SetAsideStatus},
		{"FOB", snap.FOB},
		{"Inspection", snap.InspectionAcceptance},
		{"Automated Award", snap.AutomatedAward},
		{"Buyer", strings.TrimSpace(snap.BuyerName + " " + snap.BuyerEmail)},
	})
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Price Intelligence")
	t.AppendRows([]table.Row{
		{"Historical Low", result.PriceIntel.HistoricalLow},
		{"Historical High", result.PriceIntel.HistoricalHigh},
		{"Most Recent Award", result.PriceIntel.MostRecentAward},
		{"Recommended Bid", result.PriceIntel.RecommendedBidPrice},
	})
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Decision")
	t.AppendRows([]table.Row{
		{"Score", result.WinProbability.Score},
		{"Recommendation", result.WinProbability.Recommendation},
		{"Final Decision", fused.FinalDecision},
		{"Reason", fused.Reason},
	})
	t.Render()

	fmt.Println()
	fmt.Println("Rationale:", result.WinProbability.Rationale)

	for _, risk := range result.Risks {
		fmt.Println("Risk:", risk)
	}

	if fused.FinalDecision == decision.Hold {
		items := checklist.FromEngine(fused.FinalDecision, engine.Flags)
		if len(items) > 0 {
			fmt.Println()
			fmt.Println("Hold resolution checklist:")
			for _, item := range items {
				marker := " "
				if item.Blocking {
					marker = "!"
				}
				line := fmt.Sprintf("  [%s] %s", marker, item.Question)
				if item.Clause != "" {
					line += " (" + item.Clause + ")"
				}
				fmt.Println(line)
			}
		}
	}
}
