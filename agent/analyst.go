package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/etnz/attribution"
	"github.com/etnz/attribution/docs"
	"github.com/etnz/attribution/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skills from the Tools and ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user just ran a performance analysis of his investment portfolio and wants to understand
			the numbers: how his returns compare to the benchmark, where the fees go, what the detected
			cashflows mean. The Analyst holds the full analysis; the Researcher can look up anything recent.

			Devise a plan of questions to ask each expert and come up with the best response to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher returns an expert grounded in web search, for questions
// the analysis itself cannot answer.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This is an expert researcher,
		very well aware of financial products and institutions,
		and of the latest news about funds, companies and markets.
		Ask the Researcher whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert financial researcher. You can search and find anything related to
			financial institutions, companies, markets and funds. You leverage Google Search to
			ground your assertions in a solid truth.
				`}}},
		},
	}
}

// NewAnalyst returns the expert holding one analysis result. The raw
// figures travel in its system instruction; the tools expose the
// rendered report and the methodology topics.
func NewAnalyst(result *attribution.Result) *Expert {
	lib := []Function{reportFunc(result), methodologyFunc()}

	figures, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		figures = []byte(fmt.Sprintf("unavailable: %v", err))
	}

	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. He holds the complete performance analysis of the user's
		portfolio: returns, benchmark comparison, fees, detected cashflows and month-end snapshots.
		Ask the Analyst for any figure about the user's portfolio.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: fmt.Sprintf(`
			You are an analyst in charge of one performance analysis of the user's portfolio.
			You are part of a team of experts; yours is everything in this analysis. Pardon their
			approximative language and figure out what they meant.

			Amounts in the cashflow section follow the investor convention: negative is money
			paid into the portfolio.

			The complete analysis:

			%s
			`, figures)}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function.
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// reportFunc exposes the rendered markdown report.
func reportFunc(result *attribution.Result) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Report",
			Description: `Report renders the full analysis as the same markdown report the user saw in his terminal.`,
			Parameters:  &genai.Schema{Type: genai.TypeObject},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The markdown-formatted analysis report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return &genai.FunctionResponse{
				ID:   id,
				Name: "Report",
				Response: map[string]any{
					"output": renderer.RenderReport(renderer.NewReport(result)),
				},
			}
		},
	}
}

// methodologyFunc exposes the documentation topics, so the analyst can
// explain how a figure was computed.
func methodologyFunc() *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Methodology",
			Description: `Methodology explains how the analysis computes its figures.

			Available topics:

			` + must(docs.GetTopic("readme")),
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"topic": {
						Type:        genai.TypeString,
						Description: `The topic name, or "*" for all of them.`,
					},
				},
				Required: []string{"topic"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The markdown documentation of the topic.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			fresp := &genai.FunctionResponse{
				ID:       id,
				Name:     "Methodology",
				Response: map[string]any{},
			}
			topic, ok := args["topic"].(string)
			if !ok {
				fresp.Response["error"] = fmt.Sprintf("argument 'topic' is not a string but %T", args["topic"])
				return fresp
			}
			content, err := docs.GetTopic(topic)
			if err != nil {
				fresp.Response["error"] = err.Error()
				return fresp
			}
			fresp.Response["output"] = content
			return fresp
		},
	}
}
