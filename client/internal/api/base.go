package api

import (
	"io"
	"net/http"

	sdkerrors "github.com/teamoptimus/voicebot/client/internal/errors"
)

// readError drains the response body and builds a classified error for a
// non-success status. The body is capped so a misbehaving server cannot make
// the SDK buffer an arbitrary amount of error text.
const maxErrorBody = 64 << 10

func readError(resp *http.Response, operation string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return sdkerrors.NewHTTPError(resp.StatusCode, string(body), operation)
}
