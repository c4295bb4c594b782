package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxSearchBody = 16 << 10

var errInvalidBody = errors.New("invalid request body")

type searchRequest struct {
	SearchValue json.RawMessage `json:"searchValue"`
}

// parseSearchValue reads the optional {"searchValue": ...} body. An empty
// body, a missing field or null all mean "no filter". Numbers are accepted
// and searched by their literal text.
func parseSearchValue(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSearchBody))
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	var req searchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidBody, err)
	}

	raw := bytes.TrimSpace(req.SearchValue)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("%w: searchValue must be a string or number", errInvalidBody)
}
