package api

import (
	"encoding/json/v2"
	"io"
	"net/http"
)

// maxRequestBody caps request bodies at 1 MiB. Deadline payloads are tiny;
// the import endpoint sets its own limit.
const maxRequestBody = 1 << 20

// decodeJSON decodes a request body into dst using json/v2.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()
	return json.UnmarshalRead(body, dst)
}
