package reward

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnavailable is returned when no collection service is configured.
var ErrUnavailable = errors.New("collection service unavailable")

// HTTPGranter posts grants to the collection service admin API.
type HTTPGranter struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPGranter(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPGranter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPGranter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (g *HTTPGranter) GrantItems(ctx context.Context, _ *gorm.DB, grant Grant) error {
	if g.baseURL == "" {
		return ErrUnavailable
	}
	body, err := json.Marshal(grant)
	if err != nil {
		return err
	}
	endpoint := g.baseURL + "/admin/collection/" + url.PathEscape(grant.PlayerID) + "/items"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("reward: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("reward: collection service returned %d", resp.StatusCode)
	}
	g.logger.Debug("reward granted",
		zap.String("player_id", grant.PlayerID),
		zap.String("item_definition_id", grant.ItemDefinitionID),
		zap.Int("count", grant.Count))
	return nil
}
