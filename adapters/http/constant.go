package http

import (
	"net/http"
	"time"

	"github.com/abhissng/chargehub/utils/types"
)

// HTTP method constants
const (
	MethodPost = http.MethodPost
)

// ContentType constants
const (
	ContentTypeJSON types.ContentType = "application/json"
)

// Client implementations selectable through util.callback.client.
const (
	ClientStd      = "std"
	ClientFastHTTP = "fasthttp"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultBreakerName = "callback"
	// maxErrorBody bounds how much of a failed response body is kept in the error.
	maxErrorBody = 512
)
