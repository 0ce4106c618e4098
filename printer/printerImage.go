package printer

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	imgInternal "github.com/AlexStarov/inkshield-GoLang-lib/image"
	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
)

// LoadImage decodes the image at imgPath.
func LoadImage(imgPath string) (image.Image, error) {
	imgFile, err := os.Open(imgPath)
	if err != nil {
		return nil, err
	}
	defer imgFile.Close()

	img, imgFormat, err := image.Decode(imgFile)
	if err != nil {
		return nil, fmt.Errorf("printer: decode %s: %w", imgPath, err)
	}
	sz := img.Bounds().Size()
	logInternal.LogMessage(logInternal.INFO, fmt.Sprintf("Loaded image %s, format: %s, %dx%d", imgPath, imgFormat, sz.X, sz.Y))
	return img, nil
}

// PrintImage sweeps the image at imgPath across the canvas described by conv.
func (p *Printer) PrintImage(imgPath string, conv *imgInternal.Converter) error {
	if conv == nil {
		return fmt.Errorf("printer: no canvas for %s", imgPath)
	}
	img, err := LoadImage(imgPath)
	if err != nil {
		return err
	}
	return conv.Print(img, p)
}
