package pdf

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info is the structural summary of a PDF file.
type Info struct {
	Pages     int       `json:"pages"`
	Version   string    `json:"version,omitempty"`
	Encrypted bool      `json:"encrypted"`
	PageSizes []PageDim `json:"page_sizes,omitempty"`
}

// PageDim is a page size in points.
type PageDim struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Inspect reads the cross-reference structure of a PDF with pdfcpu in relaxed
// validation mode. It does not decode content streams.
func Inspect(path string) (*Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	info := &Info{
		Pages:     ctx.PageCount,
		Version:   ctx.VersionString(),
		Encrypted: ctx.Encrypt != nil,
	}

	dims, err := ctx.PageDims()
	if err == nil {
		info.PageSizes = make([]PageDim, 0, len(dims))
		for _, d := range dims {
			info.PageSizes = append(info.PageSizes, PageDim{Width: d.Width, Height: d.Height})
		}
	}

	return info, nil
}
