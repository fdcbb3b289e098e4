package oauth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/oauth/core"
	"github.com/oasislabs/baqend-connector/rw"
	"github.com/rs/cors"
)

const defaultCompletionLimit = 1 << 16

// CompletionHandlerProps configure the CompletionHandler
type CompletionHandlerProps struct {
	// AllowedOrigins are the origins of the pages that are allowed to
	// report completions. Empty allows every origin.
	AllowedOrigins []string

	// Limit is the maximum size of a completion body
	Limit int64
}

// CompletionHandlerServices are the services used by the CompletionHandler
type CompletionHandlerServices struct {
	Logger  log.Logger
	Channel core.Channel
}

// CompletionHandler receives the completion reported by the page the
// OAuth provider redirects to and broadcasts it to the transports
// waiting for it
type CompletionHandler struct {
	channel core.Channel
	cors    *cors.Cors
	limit   int64
	logger  log.Logger
}

// NewCompletionHandler creates a new CompletionHandler
func NewCompletionHandler(services *CompletionHandlerServices, props *CompletionHandlerProps) *CompletionHandler {
	limit := props.Limit
	if limit <= 0 {
		limit = defaultCompletionLimit
	}

	return &CompletionHandler{
		channel: services.Channel,
		cors: cors.New(cors.Options{
			AllowedOrigins:     props.AllowedOrigins,
			AllowedMethods:     []string{http.MethodPost},
			AllowedHeaders:     []string{"Content-Type"},
			OptionsPassthrough: false,
		}),
		limit:  limit,
		logger: services.Logger.ForClass("oauth", "CompletionHandler"),
	}
}

// ServeHTTP is the implementation of http.Handler for CompletionHandler
func (h *CompletionHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.cors.ServeHTTP(w, req, h.serve)
}

func (h *CompletionHandler) serve(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := req.Context()
	completion, err := h.decode(req)
	if err != nil {
		h.logger.Debug(ctx, "received invalid completion", log.MapFields{
			"call_type": "OAuthCompletionFailure",
		}, errors.New(errors.ErrInvalidResponse, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.channel.Publish(context.Background(), completion); err != nil {
		h.logger.Warn(ctx, "failed to publish completion", log.MapFields{
			"call_type": "OAuthCompletionFailure",
		}, errors.New(errors.ErrOAuthChannel, err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.logger.Debug(ctx, "completion published", log.MapFields{
		"call_type": "OAuthCompletionSuccess",
		"status":    completion.Status,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *CompletionHandler) decode(req *http.Request) (core.Completion, error) {
	var completion core.Completion

	p, err := rw.ReadAllWithLimit(req.Body, h.limit)
	if err != nil {
		return completion, err
	}

	if err := json.Unmarshal(p, &completion); err != nil {
		return completion, err
	}

	if completion.Status == 0 {
		return completion, errNoStatus
	}

	return completion, nil
}
