package utils

// ResponseData is the envelope every REST handler returns.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on a non-nil error so the Recovery middleware can map it
// to an HTTP response. Handlers stay linear; the middleware owns the error shape.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
