package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"thirdvoice.ai/third-voice/internal/config"
	"thirdvoice.ai/third-voice/internal/core"
	"thirdvoice.ai/third-voice/internal/logger"
	"thirdvoice.ai/third-voice/internal/utils"
)

const defaultTone = "calm and respectful"

type RewriteRequest struct {
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
	Tone    string `json:"tone,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type rewriter struct {
	completer   core.Completer
	temperature float64
	maxTokens   int
	log         *logger.Logger
}

func (rw *rewriter) handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req RewriteRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON in request body", err.Error()), nil
	}

	// {"text"} answers with "result", {"message","tone"} with "rewritten".
	field, input := "result", req.Text
	if strings.TrimSpace(req.Text) == "" {
		field, input = "rewritten", req.Message
	}
	input = utils.SanitizeInput(input)
	if input == "" {
		return createErrorResponse(http.StatusBadRequest, "VALIDATION_ERROR", "text or message is required", ""), nil
	}

	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = defaultTone
	}

	completion, err := rw.completer.Complete(ctx, core.CompletionRequest{
		System:      rewritePrompt(tone),
		User:        input,
		Temperature: rw.temperature,
		MaxTokens:   rw.maxTokens,
	})
	if err != nil {
		rw.log.Error("Rewrite failed", "request_id", request.RequestContext.RequestID, "error", err)
		switch {
		case errors.Is(err, core.ErrCompletionTimeout):
			return createErrorResponse(http.StatusGatewayTimeout, "LLM_TIMEOUT", "The model took too long to respond", ""), nil
		default:
			return createErrorResponse(http.StatusBadGateway, "LLM_ERROR", "The model could not rewrite this message", ""), nil
		}
	}

	body, err := json.Marshal(map[string]string{field: completion.Text})
	if err != nil {
		return createErrorResponse(http.StatusInternalServerError, "SERIALIZATION_ERROR", "Failed to serialize response", err.Error()), nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(body),
	}, nil
}

func rewritePrompt(tone string) string {
	return fmt.Sprintf("You are an emotionally intelligent communication coach. "+
		"Rewrite the user's message so it is clear, kind and %s. "+
		"Keep the original intent and reply with the rewritten message only.", tone)
}

func createErrorResponse(statusCode int, code, message, details string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(body),
	}
}

func main() {
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := &config.AppConfig

	appLog, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	completer, closeCompleter, err := core.NewCompleter(context.Background(), cfg)
	if err != nil {
		appLog.Fatal("Failed to initialize completion client", "provider", cfg.LLMProvider, "error", err)
	}
	defer closeCompleter()

	rw := &rewriter{
		completer:   completer,
		temperature: cfg.LLMTemperature,
		maxTokens:   cfg.LLMMaxTokens,
		log:         appLog.With("component", "rewrite-lambda"),
	}
	lambda.Start(rw.handler)
}
