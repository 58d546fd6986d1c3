package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"smart-spray/internal/domain/apperr"
	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// DefaultClasses метки модели по порядку выходов
var DefaultClasses = []string{
	"Tomato_Bacterial_spot",
	"Tomato_Early_blight",
	"Tomato_Late_blight",
	"Tomato_Leaf_Mold",
	"Tomato_Septoria_leaf_spot",
	"Tomato_Yellow_Leaf_Curl_Virus",
}

// TFServingConfig параметры удалённого классификатора
type TFServingConfig struct {
	URL       string        // полный адрес :predict
	Classes   []string      // метки по порядку выходов модели
	InputSize int           // сторона входа модели
	Timeout   time.Duration // ограничение на один запрос
}

type predictRequest struct {
	Instances [][][][]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

// TFServingClassifier классификатор поверх REST API TensorFlow Serving.
// Повторов нет: ошибка сразу уходит вызывающему.
type TFServingClassifier struct {
	url     string
	classes []string
	size    int
	timeout time.Duration
	h       *http.Client
}

// NewTFServingClassifier создаёт клиент классификатора
func NewTFServingClassifier(cfg TFServingConfig, httpClient *http.Client) *TFServingClassifier {
	if cfg.InputSize <= 0 {
		cfg.InputSize = DefaultInputSize
	}
	if len(cfg.Classes) == 0 {
		cfg.Classes = DefaultClasses
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &TFServingClassifier{
		url:     cfg.URL,
		classes: append([]string(nil), cfg.Classes...),
		size:    cfg.InputSize,
		timeout: cfg.Timeout,
		h:       httpClient,
	}
}

// Classify готовит тензор и запрашивает предсказание у модели
func (c *TFServingClassifier) Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
	pixels, err := Preprocess(imageData, c.size)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidImage, "failed to decode image", err)
	}

	probs, err := c.predict(ctx, pixels)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindClassifierUnavailable, "classifier request failed", err)
	}

	idx, confidence := argmax(probs)
	return &entity.ClassificationResult{
		Label:      c.classes[idx],
		Confidence: confidence,
	}, nil
}

func (c *TFServingClassifier) predict(ctx context.Context, pixels []float32) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(predictRequest{Instances: [][][][]float32{instance(pixels, c.size)}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.h.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classifier %s returned %d: %s", c.url, resp.StatusCode, string(b))
	}

	var payload predictResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	if payload.Error != "" {
		return nil, errors.New(payload.Error)
	}
	if len(payload.Predictions) == 0 {
		return nil, errors.New("classifier returned no predictions")
	}
	probs := payload.Predictions[0]
	if len(probs) != len(c.classes) {
		return nil, fmt.Errorf("classifier returned %d scores for %d classes", len(probs), len(c.classes))
	}
	return probs, nil
}

// argmax возвращает индекс и значение максимума; при равенстве побеждает первый
func argmax(probs []float64) (int, float64) {
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best, probs[best]
}

var _ port.Classifier = (*TFServingClassifier)(nil)
