package vision

import "errors"

// ErrUndecodable байты не удалось декодировать как изображение
var ErrUndecodable = errors.New("failed to decode image")

// DefaultInputSize сторона входа модели
const DefaultInputSize = 70

// instance раскладывает пиксели в тензор [size][size][1] для TF Serving
func instance(pixels []float32, size int) [][][]float32 {
	rows := make([][][]float32, size)
	for y := 0; y < size; y++ {
		row := make([][]float32, size)
		for x := 0; x < size; x++ {
			row[x] = []float32{pixels[y*size+x]}
		}
		rows[y] = row
	}
	return rows
}
