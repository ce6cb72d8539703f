package httpclient

import (
	"context"
	"net/http"
)

type BaseResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

type HTTPClient interface {
	Post(ctx context.Context, endpoint string, body interface{}, headers map[string]string, result interface{}) (*BaseResponse, error)
	PostForm(ctx context.Context, endpoint string, form map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error)
}
