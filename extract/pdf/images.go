// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pdf

import (
	"bytes"
	"image"
	"image/png"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// embeddedImage is a decodable raster XObject from a page.
type embeddedImage struct {
	Width   int
	Height  int
	Payload []byte
}

// imageObjectCount reports raster XObjects referenced by the page,
// including ones whose pixel data cannot be decoded. Feeds the infographic
// heuristic.
func imageObjectCount(ctx *model.Context, pageNr int) int {
	if ctx.Optimize == nil {
		return 0
	}
	return len(pdfcpu.ImageObjNrs(ctx, pageNr))
}

// pageImages extracts the page's raster XObjects whose decoded dimensions
// both exceed minDim. JPEG streams pass through unchanged; flate-compressed
// RGB and grayscale samples are re-encoded as PNG. Other encodings are
// skipped.
func pageImages(ctx *model.Context, pageNr, minDim int) []embeddedImage {
	if ctx.Optimize == nil {
		return nil
	}

	var images []embeddedImage
	for _, objNr := range pdfcpu.ImageObjNrs(ctx, pageNr) {
		entry := ctx.Table[objNr]
		if entry == nil || entry.Free {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}

		width := intEntry(sd.Dict, "Width")
		height := intEntry(sd.Dict, "Height")
		if width <= minDim || height <= minDim {
			continue
		}

		payload := imagePayload(&sd, width, height)
		if payload == nil {
			continue
		}
		images = append(images, embeddedImage{Width: width, Height: height, Payload: payload})
	}
	return images
}

func intEntry(d types.Dict, key string) int {
	if v := d.IntEntry(key); v != nil {
		return *v
	}
	return 0
}

func imagePayload(sd *types.StreamDict, width, height int) []byte {
	if hasFilter(sd.Dict, "DCTDecode") {
		// The stream body already is a JPEG.
		return sd.Raw
	}
	if !hasFilter(sd.Dict, "FlateDecode") {
		return nil
	}
	if err := sd.Decode(); err != nil {
		return nil
	}
	return encodeSamples(sd, width, height)
}

func hasFilter(d types.Dict, name string) bool {
	filter, found := d.Find("Filter")
	if !found {
		return false
	}
	switch f := filter.(type) {
	case types.Name:
		return f.Value() == name
	case types.Array:
		for _, item := range f {
			if n, ok := item.(types.Name); ok && n.Value() == name {
				return true
			}
		}
	}
	return false
}

// encodeSamples turns decoded 8-bit RGB or grayscale samples into a PNG.
func encodeSamples(sd *types.StreamDict, width, height int) []byte {
	if v := sd.Dict.IntEntry("BitsPerComponent"); v == nil || *v != 8 {
		return nil
	}
	cs, _ := sd.Dict.Find("ColorSpace")
	name, ok := cs.(types.Name)
	if !ok {
		return nil
	}

	data := sd.Content
	var img image.Image
	switch name.Value() {
	case "DeviceRGB":
		if len(data) < width*height*3 {
			return nil
		}
		rgba := image.NewNRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				src := (y*width + x) * 3
				dst := rgba.PixOffset(x, y)
				rgba.Pix[dst] = data[src]
				rgba.Pix[dst+1] = data[src+1]
				rgba.Pix[dst+2] = data[src+2]
				rgba.Pix[dst+3] = 0xFF
			}
		}
		img = rgba
	case "DeviceGray":
		if len(data) < width*height {
			return nil
		}
		gray := image.NewGray(image.Rect(0, 0, width, height))
		copy(gray.Pix, data[:width*height])
		img = gray
	default:
		return nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
