//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Preprocess декодирует изображение в оттенки серого, приводит к size×size и нормирует в [0,1].
func Preprocess(imageData []byte, size int) ([]float32, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid input size %d", size)
	}

	mat, err := decodeGray(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)

	raw := resized.ToBytes()
	if len(raw) != size*size {
		return nil, fmt.Errorf("unexpected tensor size %d", len(raw))
	}

	pixels := make([]float32, len(raw))
	for i, v := range raw {
		pixels[i] = float32(v) / 255.0
	}
	return pixels, nil
}

// decodeGray превращает байты изображения в одноканальный gocv.Mat.
func decodeGray(imageData []byte) (gocv.Mat, error) {
	if len(imageData) == 0 {
		return gocv.NewMat(), ErrUndecodable
	}
	mat, err := gocv.IMDecode(imageData, gocv.IMReadGrayScale)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), ErrUndecodable
}
