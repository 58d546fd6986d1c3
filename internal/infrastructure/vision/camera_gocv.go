//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam снимает кадры с локальной камеры через OpenCV.
type Webcam struct {
	device int
	mu     sync.Mutex
}

// NewWebcam создаёт камеру для устройства с указанным индексом.
func NewWebcam(device int) *Webcam {
	return &Webcam{device: device}
}

// Capture открывает камеру, читает один кадр и возвращает его в JPEG.
func (w *Webcam) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Камера одна, параллельные захваты по очереди
	w.mu.Lock()
	defer w.mu.Unlock()

	cam, err := gocv.OpenVideoCapture(w.device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", w.device, err)
	}
	defer cam.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	if ok := cam.Read(&frame); !ok || frame.Empty() {
		return nil, errors.New("failed to capture image")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
