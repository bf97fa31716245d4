package service

import (
	"fmt"
)

// additionalInstructions rides along with every run to steer the remote
// orchestrator's coordination behaviour.
const additionalInstructions = "Use your orchestration capabilities to coordinate with specialized agents " +
	"and provide comprehensive Azure service recommendations with specific cost estimates " +
	"and implementation details."

const analysisPromptTemplate = `I need you to analyze this SOW document and generate a comprehensive Azure upselling proposal.

DOCUMENT: %s
EXTRACTED CONTENT:
%s
%s
Please execute the complete workflow:

1. Document Analysis: extract and structure project objectives, current
   technology stack, timeline, budget and resource constraints, technical
   specifications, integration and compliance requirements.

2. Azure Opportunity Identification: identify specific Azure services that
   match the requirements (App Service, SQL Database/Cosmos DB, AI services,
   DevOps, Security Center, Monitor) and cost optimization opportunities.

3. Business Case Development: calculate potential cost savings versus the
   current state, ROI projections with realistic timelines, and risk
   mitigation through Azure enterprise features.

4. Executive Proposal: generate a complete proposal with these sections:
   EXECUTIVE SUMMARY, AZURE SERVICE RECOMMENDATIONS (with monthly/annual cost
   estimates and implementation timelines), FINANCIAL ANALYSIS (current state
   vs Azure, 12-24 month ROI, TCO comparison), IMPLEMENTATION ROADMAP
   (phased, with resource requirements), BUSINESS BENEFITS, and NEXT STEPS.

Provide thorough analysis with specific, quantified recommendations.
Generate a complete executive-ready proposal that demonstrates clear value
proposition for Azure adoption.`

// buildAnalysisPrompt assembles the instruction message sent with the
// extracted document content.
func buildAnalysisPrompt(filename, documentText string, truncated bool) string {
	note := ""
	if truncated {
		note = "\n(Note: the extracted content above was truncated to fit the request; ask for clarification on anything that appears cut off.)\n"
	}
	return fmt.Sprintf(analysisPromptTemplate, filename, documentText, note)
}
