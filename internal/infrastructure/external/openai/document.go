package openai

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

// pageImage is one renderable page of an uploaded document.
type pageImage struct {
	mimeType string
	data     []byte
}

// documentPages turns an uploaded document into images the vision model can
// read. Images pass through unchanged; PDF pages are rendered to JPEG with
// mupdf.
func documentPages(file *entity.LiveFile) ([]pageImage, error) {
	switch file.ContentType {
	case "image/jpeg", "image/png":
		return []pageImage{{mimeType: file.ContentType, data: file.Data}}, nil
	case "application/pdf":
		return renderPDF(file.Data)
	default:
		return nil, fmt.Errorf("unsupported media type: %s", file.ContentType)
	}
}

func renderPDF(data []byte) ([]pageImage, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var pages []pageImage
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			continue
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			continue
		}
		pages = append(pages, pageImage{mimeType: "image/jpeg", data: buf.Bytes()})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages rendered from pdf")
	}
	return pages, nil
}
