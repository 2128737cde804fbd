package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	eskizapi "github.com/iota-uz/eskiz"
	"github.com/sirupsen/logrus"
)

// Config configures the Eskiz SMS gateway.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	From     string
}

// EskizGateway delivers messages through the Eskiz SMS API. The generated
// client handles authentication; the send endpoint is called directly
// with the bearer token.
type EskizGateway struct {
	refresher *tokenRefresher
	http      *http.Client
	baseURL   string
	log       logrus.FieldLogger
}

func NewEskizGateway(cfg Config, log logrus.FieldLogger) *EskizGateway {
	apiCfg := eskizapi.NewConfiguration()
	client := eskizapi.NewAPIClient(apiCfg)
	return &EskizGateway{
		refresher: &tokenRefresher{client: client, cfg: cfg},
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		log:       log,
	}
}

func (g *EskizGateway) Queue(ctx context.Context, msg Message) (bool, error) {
	if msg.To == "" {
		g.log.WithField("partner_id", msg.PartnerID).Warn("sms: no destination number, not queued")
		return false, nil
	}

	token := g.refresher.CurrentToken()
	if token == "" {
		var err error
		token, err = g.refresher.RefreshToken(ctx)
		if err != nil {
			return false, errors.Wrap(err, "eskiz auth")
		}
	}

	status, err := g.send(ctx, token, msg)
	if err != nil {
		return false, err
	}
	if status == http.StatusUnauthorized {
		token, err = g.refresher.RefreshToken(ctx)
		if err != nil {
			return false, errors.Wrap(err, "eskiz re-auth")
		}
		status, err = g.send(ctx, token, msg)
		if err != nil {
			return false, err
		}
	}
	if status < 200 || status > 299 {
		return false, fmt.Errorf("eskiz send: unexpected status %d", status)
	}
	return true, nil
}

func (g *EskizGateway) send(ctx context.Context, token string, msg Message) (int, error) {
	form := url.Values{}
	form.Set("mobile_phone", strings.TrimPrefix(msg.To, "+"))
	form.Set("message", msg.Text)
	form.Set("from", msg.From)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, g.baseURL+"/message/sms/send", strings.NewReader(form.Encode()),
	)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "eskiz send")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		var body struct {
			ID     json.RawMessage `json:"id"`
			Status string          `json:"status"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Status != "" {
			g.log.WithFields(logrus.Fields{
				"partner_id": strconv.FormatInt(msg.PartnerID, 10),
				"status":     body.Status,
			}).Debug("sms: queued")
		}
	}
	return resp.StatusCode, nil
}
