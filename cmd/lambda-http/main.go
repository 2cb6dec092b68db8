package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"smart-file-manager/internal/bootstrap"
	"smart-file-manager/internal/shared/config"
	"smart-file-manager/internal/shared/server/respond"
	"smart-file-manager/internal/shared/telemetry"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambda
)

func initApp() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	ginLambda = ginadapter.New(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": initErr.Error()})
		return internalErrorResponse(), nil
	}
	// The upload body is base64 text regardless of how API Gateway flags it.
	req.IsBase64Encoded = false
	return ginLambda.ProxyWithContext(ctx, req)
}

func internalErrorResponse() events.APIGatewayProxyResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.MsgInternal})
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
