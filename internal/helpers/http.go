package helpers

import (
	"encoding/json"
	"net/http"

	"github.com/isometry/convai-webhook/internal/models"
)

type httpResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// EncodeResponse renders the JSON body sent back to the webhook caller.
func EncodeResponse(response models.Response) []byte {
	respBody, _ := json.Marshal(httpResponse{
		Message: response.Message,
		Error:   response.Error,
	})
	return respBody
}

// ResponseHeaders returns the response headers, including the JSON content type.
func ResponseHeaders(response models.Response) map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range response.Headers {
		headers[k] = v
	}
	return headers
}

// StatusCode returns the response status, defaulting to 200.
func StatusCode(response models.Response) int {
	if response.StatusCode == 0 {
		return http.StatusOK
	}
	return response.StatusCode
}

func RespondHTTP(response models.Response, rw http.ResponseWriter) {
	for k, v := range ResponseHeaders(response) {
		rw.Header().Set(k, v)
	}
	rw.WriteHeader(StatusCode(response))
	_, _ = rw.Write(EncodeResponse(response))
}
