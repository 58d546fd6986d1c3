//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Preprocess декодирует изображение в оттенки серого, приводит к size×size и нормирует в [0,1].
// Сборка без OpenCV: декодирование стандартными кодеками, билинейное масштабирование.
func Preprocess(imageData []byte, size int) ([]float32, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid input size %d", size)
	}
	if len(imageData) == 0 {
		return nil, ErrUndecodable
	}

	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if src.Bounds().Empty() {
		return nil, ErrUndecodable
	}

	// Запись в image.Gray сразу переводит цвет в яркость
	dst := image.NewGray(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	pixels := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			pixels[y*size+x] = float32(dst.GrayAt(x, y).Y) / 255.0
		}
	}
	return pixels, nil
}
