// Package classifier talks to the external NLP service that predicts a category and
// an answer for a free-text question.
//
// FAIL-SOFT CONTRACT:
// Classify always returns a displayable string. Transport errors, timeouts, bad
// status codes and malformed bodies are converted into an error sentence for the
// end user instead of being returned as Go errors. Exactly one attempt is made.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/xid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sakif/faq-chatbot/internal/apperror"
)

const (
	// PredictPath is appended to the configured base URL.
	PredictPath = "/predict-category"

	// DefaultTimeout bounds every call when Config.Timeout is zero.
	DefaultTimeout = 5 * time.Second

	// NoAnswerMessage is returned when the service answers with success=false.
	NoAnswerMessage = "Aucune réponse NLP disponible."

	// ErrorPrefix starts every message produced from a transport failure.
	ErrorPrefix = "Erreur de communication avec le service NLP : "

	maxResponseBytes = 1 << 20
)

// ErrNoAnswer is returned by Predict when the service replied success=false.
var ErrNoAnswer = errors.New("classifier: no answer available")

// Config configures the outbound client.
//
// When TokenURL is set, requests carry an OAuth2 access token obtained with the
// client-credentials grant. Token fetch failures count as transport failures.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Prediction is the decoded success response.
type Prediction struct {
	Answer     string
	Category   string
	Confidence float64
}

// predictRequest is the body we send: {"question": "..."}.
type predictRequest struct {
	Question string `json:"question"`
}

// predictResponse uses pointers so a missing field can be told apart from a zero
// value. The service also sends probabilities, similarity, alternatives... which
// we ignore.
type predictResponse struct {
	Success    *bool    `json:"success"`
	Answer     *string  `json:"answer"`
	Category   *string  `json:"category"`
	Confidence *float64 `json:"confidence"`
	Error      string   `json:"error"`
}

// Client is safe for concurrent use; it holds no per-request state.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// New builds a Client. It never dials; the first network traffic happens on
// the first Classify call.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}

	if cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		// The token endpoint is called through the same bounded client.
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = cc.Client(tokenCtx)
		httpClient.Timeout = timeout
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + PredictPath,
		http:     httpClient,
		logger:   logger,
	}
}

// Classify forwards question to the NLP service and formats the outcome as a
// three-line string. It never returns an empty string and never panics on bad input
// from the remote side.
func (c *Client) Classify(ctx context.Context, question string) string {
	p, err := c.Predict(ctx, question)
	switch {
	case err == nil:
		return Format(p)
	case errors.Is(err, ErrNoAnswer):
		return NoAnswerMessage
	default:
		c.logger.Warn("classifier call failed",
			slog.String("endpoint", c.endpoint),
			slog.String("error", err.Error()),
		)
		return ErrorPrefix + err.Error()
	}
}

// Format renders a prediction the way the chatbot displays it.
func Format(p *Prediction) string {
	return fmt.Sprintf("Catégorie : %s\nRéponse : %s\nConfiance : %.2f", p.Category, p.Answer, p.Confidence)
}

// Predict performs the call and returns either a complete Prediction, ErrNoAnswer,
// or an apperror.ErrTransport error. Classify is the fail-soft wrapper.
func (c *Client) Predict(ctx context.Context, question string) (*Prediction, error) {
	body, err := json.Marshal(predictRequest{Question: question})
	if err != nil {
		return nil, apperror.Transport("encoding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperror.Transport("building request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(chimiddleware.RequestIDHeader, requestID(ctx))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.Transport("calling classifier", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperror.Transport("reading classifier response", err)
	}

	c.logger.Debug("classifier responded",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	var out predictResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("classifier returned status %d", resp.StatusCode)
		if decodeErr == nil && out.Error != "" {
			msg += " (" + out.Error + ")"
		}
		return nil, apperror.Transport(msg, nil)
	}

	if decodeErr != nil {
		return nil, apperror.Transport("malformed classifier response", decodeErr)
	}
	if out.Success == nil {
		return nil, apperror.Transport("malformed classifier response: missing success flag", nil)
	}
	if !*out.Success {
		return nil, ErrNoAnswer
	}
	if out.Answer == nil || out.Category == nil || out.Confidence == nil {
		return nil, apperror.Transport("malformed classifier response: missing answer, category or confidence", nil)
	}

	return &Prediction{
		Answer:     *out.Answer,
		Category:   *out.Category,
		Confidence: *out.Confidence,
	}, nil
}

// requestID reuses the inbound request ID set by chi's RequestID middleware so
// both services log the same value. Outside an HTTP request a fresh xid is used.
func requestID(ctx context.Context) string {
	if id := chimiddleware.GetReqID(ctx); id != "" {
		return id
	}
	return xid.New().String()
}
