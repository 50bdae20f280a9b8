package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	dErrors "creditboard/pkg/domain-errors"
	"creditboard/pkg/requestcontext"
)

// maxBodyBytes bounds request bodies; BFF intents are tiny.
const maxBodyBytes = 64 << 10

// Request is a JSON body that can clean itself up and check its fields.
type Request[T any] interface {
	*T
	Normalize()
	Validate() error
}

// Bind decodes the body of r into a fresh T, normalizes and validates it.
// On failure it logs, writes a 400 and returns false. Unknown fields and
// trailing data are rejected.
//
//	req, ok := httputil.Bind[SelectRequest](w, r, h.logger)
//	if !ok {
//	    return
//	}
func Bind[T any, P Request[T]](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()
	req := P(new(T))

	if err := decodeStrict(r.Body, req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, dErrors.Classify(err, dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.Classify(err, dErrors.CodeValidation, err.Error())
		}
		WriteError(w, err)
		return nil, false
	}
	return req, true
}

func decodeStrict(body io.Reader, dst any) error {
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after JSON body")
	}
	return nil
}
