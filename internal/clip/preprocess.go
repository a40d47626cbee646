package clip

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const imageSize = 224

var (
	mean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	std  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

// PreprocessFile loads an image and converts it with Preprocess.
func PreprocessFile(path string) ([]float32, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open image: %w", err)
	}
	return Preprocess(img), nil
}

// Preprocess centre-crops img to a square, scales it to 224×224 and returns
// a normalised [3, 224, 224] CHW tensor.
func Preprocess(img image.Image) []float32 {
	sq := imaging.Fill(img, imageSize, imageSize, imaging.Center, imaging.Linear)

	const plane = imageSize * imageSize
	tensor := make([]float32, 3*plane)
	for y := 0; y < imageSize; y++ {
		for x := 0; x < imageSize; x++ {
			off := sq.PixOffset(x, y)
			i := y*imageSize + x
			for c := 0; c < 3; c++ {
				v := float32(sq.Pix[off+c]) / 255
				tensor[c*plane+i] = (v - mean[c]) / std[c]
			}
		}
	}
	return tensor
}
