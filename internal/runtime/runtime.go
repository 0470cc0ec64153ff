// Package runtime adapts the webhook handler to its hosting environments: a plain HTTP service and AWS Lambda.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/convai-webhook/internal/handler"
	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/isometry/convai-webhook/internal/models"
	"github.com/isometry/convai-webhook/internal/rawbody"
)

// Lambda payload types.
const (
	PayloadAPIGatewayV1 = "api-gateway-v1"
	PayloadAPIGatewayV2 = "api-gateway-v2"
	PayloadLambdaURL    = "lambda-url"
)

// Processor resolves a single webhook delivery.
type Processor interface {
	Process(ctx context.Context, req models.Request) *handler.Result
}

type Option func(*Runtime)

type Runtime struct {
	processor    Processor
	logger       *slog.Logger
	payloadType  string
	maxBodyBytes int64
	limiter      *rateLimiter
}

// NewRuntime creates a new runtime instance
func NewRuntime(processor Processor, opts ...Option) *Runtime {
	_inst := &Runtime{
		processor:    processor,
		logger:       helpers.NewNoopLogger(),
		payloadType:  PayloadAPIGatewayV2,
		maxBodyBytes: rawbody.DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	return _inst
}

// ServeHTTP is the HTTP handler for the runtime. The body is streamed into the handler unmodified.
func (r *Runtime) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if r.limiter != nil {
		client := clientKey(req)
		if err := r.limiter.Allow(client); err != nil {
			helpers.OnceAMinute.Do(func() {
				r.logger.Warn("rejecting HTTP request...", slog.String("requestor", client), slog.Any("error", err))
			})
			helpers.RespondHTTP(models.Response{StatusCode: http.StatusTooManyRequests, Error: "Too many requests"}, rw)
			return
		}
	}

	r.logger.Debug("received HTTP request...", slog.String("requestor", req.RemoteAddr), slog.String("method", req.Method), slog.String("path", req.URL.Path))
	headers := make(map[string]string, len(req.Header))
	for k, v := range req.Header {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}

	result := r.processor.Process(req.Context(), models.Request{
		Method:  req.Method,
		Headers: headers,
		Body:    rawbody.FromStream(req.Body, rawbody.WithMaxBytes(r.maxBodyBytes)),
	})
	helpers.RespondHTTP(result.Response, rw)
}

// Healthz reports liveness in service mode.
func (r *Runtime) Healthz(rw http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusMethodNotAllowed, Error: "Only GET requests allowed"}, rw)
		return
	}
	helpers.RespondHTTP(models.Response{Message: "ok"}, rw)
}

// Lambda is the Lambda handler for the runtime. Errors are always rendered as responses so that the
// invocation itself never fails.
func (r *Runtime) Lambda(ctx context.Context, payload json.RawMessage) (any, error) {
	r.logger.Debug("received lambda invocation...", slog.String("payloadType", r.payloadType))

	req, err := r.lambdaRequest(payload)
	if err != nil {
		r.logger.Error("failed to decode lambda payload", slog.Any("error", err))
		return r.lambdaResponse(models.Response{StatusCode: http.StatusBadRequest, Error: "Invalid event"})
	}

	result := r.processor.Process(ctx, *req)
	return r.lambdaResponse(result.Response)
}

func (r *Runtime) lambdaRequest(payload json.RawMessage) (*models.Request, error) {
	var (
		method, body string
		encoded      bool
		headers      map[string]string
	)
	switch r.payloadType {
	case PayloadAPIGatewayV1:
		var event events.APIGatewayProxyRequest
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		method, body, encoded, headers = event.HTTPMethod, event.Body, event.IsBase64Encoded, event.Headers
	case PayloadAPIGatewayV2:
		var event events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		method, body, encoded, headers = event.RequestContext.HTTP.Method, event.Body, event.IsBase64Encoded, event.Headers
	case PayloadLambdaURL:
		var event events.LambdaFunctionURLRequest
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		method, body, encoded, headers = event.RequestContext.HTTP.Method, event.Body, event.IsBase64Encoded, event.Headers
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}

	// Lower-case incoming headers for compatibility purposes
	lch := make(map[string]string, len(headers))
	for k, v := range headers {
		lch[strings.ToLower(k)] = v
	}
	return &models.Request{
		Method:  method,
		Headers: lch,
		Body:    rawbody.FromBuffer(body, encoded),
	}, nil
}

func (r *Runtime) lambdaResponse(response models.Response) (any, error) {
	body := string(helpers.EncodeResponse(response))
	headers := helpers.ResponseHeaders(response)
	status := helpers.StatusCode(response)

	switch r.payloadType {
	case PayloadAPIGatewayV1:
		return events.APIGatewayProxyResponse{Body: body, Headers: headers, StatusCode: status}, nil
	case PayloadLambdaURL:
		return events.LambdaFunctionURLResponse{Body: body, Headers: headers, StatusCode: status}, nil
	default:
		return events.APIGatewayV2HTTPResponse{Body: body, Headers: headers, StatusCode: status}, nil
	}
}
