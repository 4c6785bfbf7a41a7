package vision

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

	"tire-backend/internal/tires"
)

const analyzePath = "/vision/v3.2/analyze"

// AzureClient calls an Azure-style image analysis endpoint for tags and a description.
type AzureClient struct {
	endpoint      string
	key           string
	minConfidence float64
	httpClient    *http.Client
}

func NewAzureClient(endpoint, key string, minConfidence float64) (*AzureClient, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("VISION_ENDPOINT is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("VISION_KEY is required")
	}
	return &AzureClient{
		endpoint:      endpoint,
		key:           key,
		minConfidence: minConfidence,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type analyzeResponse struct {
	Tags []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"tags"`
	Description struct {
		Captions []struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"captions"`
	} `json:"description"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Analyze sends img to the service and returns the filtered signal.
func (c *AzureClient) Analyze(ctx context.Context, img Image) (tires.VisionSignal, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case len(img.Data) > 0:
		body = bytes.NewReader(img.Data)
		contentType = "application/octet-stream"
	case img.URL != "":
		payload, err := json.Marshal(map[string]string{"url": img.URL})
		if err != nil {
			return tires.VisionSignal{}, err
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	default:
		return tires.VisionSignal{}, ErrInvalidImage
	}

	q := url.Values{}
	q.Set("visualFeatures", "Tags,Description")
	q.Set("language", "en")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+analyzePath+"?"+q.Encode(), body)
	if err != nil {
		return tires.VisionSignal{}, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return tires.VisionSignal{}, fmt.Errorf("vision request timeout: %w", err)
		}
		return tires.VisionSignal{}, fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return tires.VisionSignal{}, err
	}
	var parsed analyzeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return tires.VisionSignal{}, fmt.Errorf("vision http status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return tires.VisionSignal{}, fmt.Errorf("vision response parse: %w", err)
	}
	if parsed.Error != nil {
		return tires.VisionSignal{}, fmt.Errorf("vision http status %d: %s (%s)", resp.StatusCode, parsed.Error.Message, parsed.Error.Code)
	}
	if resp.StatusCode >= 400 {
		return tires.VisionSignal{}, fmt.Errorf("vision http status %d", resp.StatusCode)
	}

	sig := tires.VisionSignal{}
	for _, t := range parsed.Tags {
		sig.Tags = append(sig.Tags, tires.Tag{Name: t.Name, Confidence: t.Confidence})
	}
	for _, c := range parsed.Description.Captions {
		if sig.Caption == nil || c.Confidence > sig.Caption.Confidence {
			sig.Caption = &tires.Caption{Text: c.Text, Confidence: c.Confidence}
		}
	}
	return Filter(sig, c.minConfidence), nil
}
