package atlas

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"

	// Decoders for the scan photograph formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
)

// Fetch loads and decodes one scan image from an http(s) URL or a local
// file path.
func Fetch(ctx context.Context, client *http.Client, source string) (image.Image, error) {
	var data []byte

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return nil, err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, err
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", source, err)
	}
	return img, nil
}

// drawCell scales the image into grid cell i with bilinear filtering.
func drawCell(sheet *image.RGBA, i int, img image.Image) {
	xdraw.ApproxBiLinear.Scale(sheet, CellRect(i), img, img.Bounds(), xdraw.Src, nil)
}
