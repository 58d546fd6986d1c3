//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
)

// Webcam камера-заглушка (без OpenCV).
type Webcam struct {
	device int
}

// NewWebcam создаёт камеру-заглушку.
func NewWebcam(device int) *Webcam {
	return &Webcam{device: device}
}

// Capture возвращает ошибку, если сборка без тега gocv.
func (w *Webcam) Capture(ctx context.Context) ([]byte, error) {
	_ = ctx
	return nil, errors.New("gocv build tag is not enabled")
}
