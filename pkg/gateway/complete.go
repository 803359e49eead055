package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rabbithole-ai/warren/pkg/api"
	"github.com/rabbithole-ai/warren/pkg/dispatch"
	"github.com/rabbithole-ai/warren/pkg/keyring"
	"github.com/rabbithole-ai/warren/pkg/observability"
	"github.com/rabbithole-ai/warren/pkg/storage"
)

// Completion request lifecycle states. A request moves forward only;
// a failure at any stage terminates it. No retries.
const (
	stateReceived         = "RECEIVED"
	stateProviderResolved = "PROVIDER_RESOLVED"
	stateTranslated       = "TRANSLATED"
	stateDispatched       = "DISPATCHED"
	stateCompleted        = "COMPLETED"
	stateFailed           = "FAILED"
)

// Complete resolves the provider, translates the request into its
// concrete dispatch form, and forwards it to the backend. The backend
// payload is returned unchanged.
func (g *Gateway) Complete(ctx context.Context, req *api.CompletionRequest) (json.RawMessage, error) {
	log := g.logger.With("provider_id", req.ProviderID, "model", req.Model)
	log.Debug("completion state", "state", stateReceived)

	if apiErr := api.ValidateCompletionRequest(req, g.validation); apiErr != nil {
		log.Debug("completion state", "state", stateFailed, "error", apiErr)
		return nil, apiErr
	}

	p, err := g.store.Get(ctx, req.ProviderID)
	if err != nil {
		log.Debug("completion state", "state", stateFailed, "error", err)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewProviderNotFoundError(req.ProviderID)
		}
		return nil, g.storeError("resolve provider", err)
	}
	log.Debug("completion state", "state", stateProviderResolved, "provider_name", p.ProviderName)

	concrete, err := dispatch.Translate(req, p)
	if err != nil {
		log.Debug("completion state", "state", stateFailed, "error", err)
		g.recordDispatch(p.ProviderSyntax, "rejected", 0)
		return nil, err
	}
	log.Debug("completion state", "state", stateTranslated, "concrete_model", concrete.Model)

	credentialKey := keyring.DeriveKey(p.ProviderName)
	if _, ok := g.ring.Lookup(credentialKey); !ok {
		// The record carries a credential the keyring has not seen yet,
		// e.g. after a store restore. One resync, then proceed either way.
		if err := g.SyncCredentials(ctx); err != nil {
			log.Warn("credential resync before dispatch failed", "error", err)
		}
	}

	start := time.Now()
	log.Debug("completion state", "state", stateDispatched)

	payload, err := g.backend.Complete(ctx, concrete, credentialKey)
	elapsed := time.Since(start)
	if err != nil {
		log.Info("completion state", "state", stateFailed, "error", err, "duration", elapsed)
		g.recordDispatch(p.ProviderSyntax, "error", elapsed)
		return nil, err
	}

	log.Info("completion state", "state", stateCompleted, "duration", elapsed)
	g.recordDispatch(p.ProviderSyntax, "ok", elapsed)
	return payload, nil
}

// CountTokens forwards the prompt to the backend tokenizer.
func (g *Gateway) CountTokens(ctx context.Context, req *api.TokenCountRequest) (*api.TokenCountResponse, error) {
	if apiErr := api.ValidateTokenCountRequest(req, g.validation); apiErr != nil {
		return nil, apiErr
	}

	count, err := g.backend.CountTokens(ctx, req.Model, req.Messages)
	if err != nil {
		return nil, err
	}

	return &api.TokenCountResponse{Model: req.Model, TotalTokens: count}, nil
}

func (g *Gateway) recordDispatch(dialect, status string, elapsed time.Duration) {
	observability.DispatchesTotal.WithLabelValues(dialect, status).Inc()
	if status != "rejected" {
		observability.DispatchLatency.WithLabelValues(dialect).Observe(elapsed.Seconds())
	}
}
