// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/nrchnnas/recsys/internal/catalog"
	"github.com/nrchnnas/recsys/internal/logging"
	"github.com/nrchnnas/recsys/internal/pipeline"
	"github.com/nrchnnas/recsys/internal/recommend"
	"github.com/nrchnnas/recsys/internal/validation"
)

// respondServiceError maps an engine or pipeline error to a response.
// action completes "Failed to ..." for unexpected errors.
func respondServiceError(rw *ResponseWriter, r *http.Request, err error, action string) {
	var reqErr *validation.RequestValidationError
	var pErr *paramError

	switch {
	case errors.As(err, &reqErr):
		apiErr := reqErr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
	case errors.As(err, &pErr):
		rw.ValidationError(pErr.Error(), map[string]interface{}{"field": pErr.name, "value": pErr.value})
	case errors.Is(err, recommend.ErrNotReady):
		rw.ServiceUnavailable("No catalog snapshot has been published yet")
	case errors.Is(err, catalog.ErrNoRecommendations):
		rw.Error(http.StatusNotFound, ErrCodeNoRecommendations, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		rw.NotFound(err.Error())
	case errors.Is(err, pipeline.ErrBuildInProgress):
		rw.Conflict("A snapshot build is already running or queued")
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "Query timed out")
	case errors.Is(err, context.Canceled):
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Request canceled")
		rw.ServiceUnavailable("Request canceled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("action", action).Msg("Request failed")
		rw.InternalError("Failed to " + action)
	}
}
