// Package device отправляет команды на контроллер опрыскивателя.
package device

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// maxResponseBytes ограничение на тело ответа контроллера
const maxResponseBytes = 1024

// HTTPServo push команды на HTTP-эндпоинт контроллера: GET /servo?duration=&servoindex=
type HTTPServo struct {
	base string
	h    *http.Client
}

// NewHTTPServo создаёт клиент контроллера с ограничением по времени
func NewHTTPServo(baseURL string, timeout time.Duration) *HTTPServo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPServo{
		base: strings.TrimRight(baseURL, "/"),
		h:    &http.Client{Timeout: timeout},
	}
}

// Notify отправляет длительность и канал привода, возвращает текст ответа контроллера
func (s *HTTPServo) Notify(ctx context.Context, cmd entity.Command) (string, error) {
	u, err := url.Parse(s.base + "/servo")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("duration", strconv.Itoa(cmd.SprayTime))
	if cmd.ServoIndex != nil {
		q.Set("servoindex", strconv.Itoa(*cmd.ServoIndex))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.h.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	text := strings.TrimSpace(string(b))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("controller returned %d: %s", resp.StatusCode, text)
	}
	return text, nil
}

var _ port.DeviceNotifier = (*HTTPServo)(nil)
