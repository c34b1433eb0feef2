// Command agentdemo wires a single agent end-to-end against a real
// provider and runs one Interact call on a prompt given by -prompt or read
// from stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"goa.design/clue/log"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/engine"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/providers/anthropic"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/providers/openai"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/telemetry"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

func loadDotenv() {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "agentdemo: loading %s: %v\n", file, err)
		}
	}
}

func buildResponder(provider, model string) (model.Client, error) {
	switch provider {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is not set")
		}
		return anthropic.NewFromAPIKey(apiKey, anthropic.Options{MaxTokens: 1024})
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY is not set")
		}
		return openai.NewFromAPIKey(apiKey, model)
	default:
		return nil, fmt.Errorf("unknown provider %q (want anthropic or openai)", provider)
	}
}

func clockTool() *tools.Tool {
	return &tools.Tool{
		Name:            "current_time",
		Description:     "Returns the current UTC time in RFC3339 format.",
		ParameterSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Decode: func(raw json.RawMessage) (any, error) {
			return nil, nil
		},
		Invoke: func(_ context.Context, meta tools.CallMeta, _ any) (tools.ToolCallOutput, error) {
			return tools.Success(meta.CallID, time.Now().UTC().Format(time.RFC3339)), nil
		},
	}
}

// telemetryStack is the set of observability collaborators engine.Options
// wants. buildTelemetryStack picks between the Clue/OTEL-backed
// implementations and the no-ops depending on -telemetry.
type telemetryStack struct {
	ctx      context.Context
	logger   telemetry.Logger
	metrics  telemetry.Metrics
	tracer   telemetry.Tracer
	registry *telemetry.ProcessorRegistry
}

// buildTelemetryStack wires goa.design/clue/log the way the teacher's own
// cmd/assistant does (log.Context with log.WithFormat, log.WithDebug when
// verbose), then layers the Clue/OTEL Logger/Metrics/Tracer and a
// LoggingProcessor on top so a run's failures are actually reported through
// them instead of discarded by the no-ops.
func buildTelemetryStack(ctx context.Context, enabled, debug bool) telemetryStack {
	if !enabled {
		return telemetryStack{
			ctx:     ctx,
			logger:  telemetry.NewNoopLogger(),
			metrics: telemetry.NewNoopMetrics(),
			tracer:  telemetry.NewNoopTracer(),
		}
	}

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx = log.Context(ctx, log.WithFormat(format))
	if debug {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}

	logger := telemetry.NewClueLogger()
	registry := telemetry.NewProcessorRegistry(telemetry.LoggingProcessor{Logger: logger})
	return telemetryStack{
		ctx:      ctx,
		logger:   logger,
		metrics:  telemetry.NewClueMetrics(),
		tracer:   telemetry.NewClueTracer(),
		registry: registry,
	}
}

func main() {
	provider := flag.String("provider", "anthropic", "model provider: anthropic or openai")
	modelID := flag.String("model", "claude-3-5-sonnet-20241022", "model identifier")
	prompt := flag.String("prompt", "", "prompt to send; reads stdin if empty")
	telemetryF := flag.Bool("telemetry", false, "emit structured logs/metrics/traces via goa.design/clue and OTEL instead of discarding them")
	debugF := flag.Bool("debug", false, "enable debug-level logs (only takes effect with -telemetry)")
	flag.Parse()

	loadDotenv()

	responder, err := buildResponder(*provider, *modelID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "agentdemo:", err)
		os.Exit(1)
	}

	registry := tools.NewRegistry()
	if err := registry.Register(clockTool()); err != nil {
		fmt.Fprintln(os.Stderr, "agentdemo:", err)
		os.Exit(1)
	}

	tel := buildTelemetryStack(context.Background(), *telemetryF, *debugF)

	agent, err := engine.New(engine.Options{
		Name:         "demo.assistant",
		Instructions: "You are a terse, helpful assistant. Use tools when they help answer accurately.",
		Model:        *modelID,
		Tools:        registry,
		Logger:       tel.logger,
		Metrics:      tel.metrics,
		Tracer:       tel.tracer,
		Telemetry:    tel.registry,
		Responder:    responder,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "agentdemo:", err)
		os.Exit(1)
	}

	userInput := *prompt
	if strings.TrimSpace(userInput) == "" {
		fmt.Print("> ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			userInput = scanner.Text()
		}
	}
	if strings.TrimSpace(userInput) == "" {
		fmt.Fprintln(os.Stderr, "agentdemo: no prompt given")
		os.Exit(1)
	}

	cctx := convctx.New()
	cctx.AddMessage(model.Message{
		Role:    model.RoleUser,
		Content: []model.Content{model.TextContent{Text: userInput}},
	})

	result := agent.Interact(tel.ctx, cctx)
	switch v := result.(type) {
	case engine.Success:
		fmt.Println(v.Output)
	case *engine.Error:
		fmt.Fprintf(os.Stderr, "agentdemo: agent failed: %s: %s\n", v.Kind, v.Message)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "agentdemo: unexpected result %T\n", v)
		os.Exit(1)
	}
}
