package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
	"mibe/internal/services"
	"mibe/pkg/middleware"
	"mibe/pkg/utils"
)

// Handler adapts API Gateway HTTP events to the reconciliation engine with
// the same contract as the POST /asaas/webhook route.
type Handler struct {
	reconciler   services.ReconcileService
	webhookToken string
	logger       *zap.Logger
}

func NewHandler(reconciler services.ReconcileService, webhookToken string, logger *zap.Logger) *Handler {
	return &Handler{
		reconciler:   reconciler,
		webhookToken: webhookToken,
		logger:       logger,
	}
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.RequestContext.HTTP.Method != "" && req.RequestContext.HTTP.Method != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, map[string]interface{}{"error": "Method not allowed"}), nil
	}

	if !utils.WebhookTokenMatches(h.webhookToken, header(req.Headers, middleware.AsaasTokenHeader)) {
		h.logger.Warn("rejected webhook with invalid token")
		return jsonResponse(http.StatusUnauthorized, map[string]interface{}{"error": "invalid webhook token"}), nil
	}

	raw := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			err = fmt.Errorf("%w: body is not valid base64", utils.ErrInvalidPayload)
			return jsonResponse(utils.WebhookStatus(err), utils.WebhookBody(err)), nil
		}
		raw = decoded
	}

	err := h.reconciler.HandlePayload(ctx, raw)
	if err != nil {
		h.logger.Error("webhook not processed", zap.Error(err), zap.String("request_id", req.RequestContext.RequestID))
	}
	return jsonResponse(utils.WebhookStatus(err), utils.WebhookBody(err)), nil
}

// header looks a name up case-insensitively; API Gateway lowercases header
// names for HTTP APIs but not for every integration.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func jsonResponse(status int, body map[string]interface{}) events.APIGatewayV2HTTPResponse {
	raw, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}
}
