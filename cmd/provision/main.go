// Command provision creates the SOW-to-Proposal orchestrator agent on the
// remote runtime and prints its id, for wiring into ORCHESTRATOR_AGENT_ID.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/mattalagalams/nsp-agent/config"
)

const orchestratorName = "SOW-to-Proposal Orchestrator"

const orchestratorInstructions = `You are the orchestrator for SOW-to-proposal analysis. For every submitted
Statement of Work document you coordinate the complete workflow:

1. Parse the document and extract project objectives, technology stack,
   timeline, budget, technical specifications and compliance requirements.
2. Identify Azure services matching the requirements, with cost optimization
   opportunities.
3. Develop the business case: cost savings versus current state, ROI
   projections, risk mitigation.
4. Generate an executive-ready proposal with sections: EXECUTIVE SUMMARY,
   AZURE SERVICE RECOMMENDATIONS, FINANCIAL ANALYSIS, IMPLEMENTATION
   ROADMAP, BUSINESS BENEFITS, NEXT STEPS.

Always quantify recommendations with realistic cost estimates and
implementation timelines.`

func main() {
	list := flag.Bool("list", false, "list existing agents instead of creating one")
	name := flag.String("name", orchestratorName, "agent name")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Agent.Endpoint == "" {
		slog.Error("agent endpoint not configured (set PROJECT_ENDPOINT)")
		os.Exit(1)
	}

	clientCfg := openai.DefaultConfig(cfg.Agent.APIKey)
	clientCfg.BaseURL = cfg.Agent.Endpoint
	client := openai.NewClientWithConfig(clientCfg)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if *list {
		assistants, err := client.ListAssistants(ctx, nil, nil, nil, nil)
		if err != nil {
			slog.Error("failed to list agents", "error", err)
			os.Exit(1)
		}
		for _, a := range assistants.Assistants {
			agentName := ""
			if a.Name != nil {
				agentName = *a.Name
			}
			fmt.Printf("%s\t%s\t%s\n", a.ID, a.Model, agentName)
		}
		return
	}

	instructions := orchestratorInstructions
	assistant, err := client.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        cfg.Agent.Model,
		Name:         name,
		Instructions: &instructions,
	})
	if err != nil {
		slog.Error("failed to create agent", "error", err)
		os.Exit(1)
	}

	slog.Info("agent created", "agent_id", assistant.ID, "model", assistant.Model)
	fmt.Printf("ORCHESTRATOR_AGENT_ID=%s\n", assistant.ID)
}
