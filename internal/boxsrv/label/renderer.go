// Package label composes asset records into raster label images: a QR
// symbol of the record's code plus the code, name and namecode as text
// overlays. Rendering is deterministic — the same record content always
// produces byte-identical PNG output, since the fonts are embedded and the
// scaler is nearest-neighbour.
package label

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"strings"
	"sync"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/stargods/boxcode/internal/boxsrv/registry"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

var (
	ErrLabel            apperrors.Error = apperrors.New("label error").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidLabelCode apperrors.Error = ErrLabel.New("empty or invalid code for label").SetStatusCode(http.StatusBadRequest)
	ErrRenderFailed     apperrors.Error = ErrLabel.New("label rendering failed")
)

// Label geometry. The canvas is sized for 600x300 thermal label stock; the
// QR symbol is rendered at its native module grid, inverted, cropped by the
// quiet-zone margin and scaled into a fixed box on the left half.
const (
	canvasWidth  = 600
	canvasHeight = 300

	qrNativeSize = 256
	qrCropMargin = 16
	qrBoxSize    = 240
	qrOffsetX    = 20
	qrOffsetY    = 30

	codeTextX = 290
	codeTextY = 80
	nameTextX = 290
	nameTextY = 140
	nameCodeX = 290
	nameCodeY = 250

	textSize     = 26
	nameCodeSize = 64
)

var (
	faceOnce     sync.Once
	faceErr      error
	textFace     font.Face
	nameCodeFace font.Face

	// opentype faces keep internal rasterization state and are not safe
	// for concurrent use
	renderMu sync.Mutex
)

func loadFaces() {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		faceErr = err
		return
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		faceErr = err
		return
	}
	textFace, err = opentype.NewFace(regular, &opentype.FaceOptions{
		Size:    textSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		faceErr = err
		return
	}
	nameCodeFace, err = opentype.NewFace(bold, &opentype.FaceOptions{
		Size:    nameCodeSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		faceErr = err
	}
}

// Compose renders the label for one record and returns it as PNG bytes.
// A record with an empty code fails before any barcode generation.
func Compose(box *registry.Box) ([]byte, apperrors.Error) {
	if box == nil || strings.TrimSpace(box.Code) == "" {
		return nil, ErrInvalidLabelCode
	}
	faceOnce.Do(loadFaces)
	if faceErr != nil {
		return nil, ErrRenderFailed.Err(faceErr)
	}

	qr, err := qrcode.New(box.Code, qrcode.Medium)
	if err != nil {
		return nil, ErrRenderFailed.MsgErr("unable to encode code "+box.Code, err)
	}
	symbol := qr.Image(qrNativeSize)

	inverted := invert(symbol)
	cropped := cropMargin(inverted, qrCropMargin)
	scaled := image.NewRGBA(image.Rect(0, 0, qrBoxSize, qrBoxSize))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), cropped, cropped.Bounds(), xdraw.Over, nil)

	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	pasteAt := image.Rect(qrOffsetX, qrOffsetY, qrOffsetX+qrBoxSize, qrOffsetY+qrBoxSize)
	draw.Draw(canvas, pasteAt, scaled, image.Point{}, draw.Over)

	renderMu.Lock()
	drawText(canvas, textFace, codeTextX, codeTextY, box.Code)
	drawText(canvas, textFace, nameTextX, nameTextY, box.Name)
	drawText(canvas, nameCodeFace, nameCodeX, nameCodeY, box.NameCode)
	renderMu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, ErrRenderFailed.Err(err)
	}
	return buf.Bytes(), nil
}

// invert flips every pixel's color, preserving alpha.
func invert(src image.Image) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			out.Set(x, y, color.RGBA{
				R: uint8(255 - r>>8),
				G: uint8(255 - g>>8),
				B: uint8(255 - bl>>8),
				A: uint8(a >> 8),
			})
		}
	}
	return out
}

// cropMargin trims margin pixels from each edge.
func cropMargin(src *image.RGBA, margin int) image.Image {
	b := src.Bounds()
	inner := image.Rect(b.Min.X+margin, b.Min.Y+margin, b.Max.X-margin, b.Max.Y-margin)
	return src.SubImage(inner)
}

func drawText(dst *image.RGBA, face font.Face, x, y int, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
