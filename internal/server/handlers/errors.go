package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/service/reporting"
	"github.com/mamadbah2/farmdash/internal/session"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi"
)

// StatusFor maps a service error onto the HTTP status returned to the browser.
func StatusFor(err error) int {
	var validation *models.ValidationError
	var httpErr *farmapi.HTTPError

	switch {
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, session.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrLoginInProgress):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &httpErr):
		return httpErr.StatusCode
	case farmapi.IsNetwork(err):
		return http.StatusBadGateway
	case errors.Is(err, reporting.ErrExportDisabled), errors.Is(err, reporting.ErrSnapshotsDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// optionalID reads a positive integer query parameter; absent means 0.
func optionalID(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, key+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// orderedParams keeps the query string order, which c.Request.URL.Query loses.
func orderedParams(rawQuery string) (farmapi.Params, error) {
	var params farmapi.Params
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, err
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, err
		}
		params = params.Add(k, v)
	}
	return params, nil
}
