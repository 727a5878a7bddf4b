// Package label renders printable equipment labels: a QR code pointing at
// the equipment plus its identifying numbers.
package label

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/erazemk/inventar/internal/model"
)

// Label geometry in pixels.
const (
	QRSize    = 240
	Width     = 640
	Height    = QRSize
	textScale = 2
	margin    = 12
)

// ContentType is the MIME type Render produces.
const ContentType = "image/png"

// maxLineRunes is how many 7px glyphs fit right of the QR code at textScale.
const maxLineRunes = (Width - QRSize - 2*margin) / (7 * textScale)

// Label holds what gets printed.
type Label struct {
	URL   string
	Lines []string
}

// URL returns the address a label's QR code points to.
func URL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/api/qr/" + token
}

// ForEquipment builds the label of an equipment item.
func ForEquipment(baseURL string, e *model.Equipment) Label {
	lines := []string{e.Name}
	if e.InventoryNumber != "" {
		lines = append(lines, "INV "+e.InventoryNumber)
	}
	if e.PCNumber != "" {
		lines = append(lines, "PC  "+e.PCNumber)
	}
	if e.OrganizationCode != "" {
		lines = append(lines, e.OrganizationCode)
	}
	return Label{URL: URL(baseURL, e.QRToken), Lines: lines}
}

// Render draws l and writes it to w as PNG.
func Render(w io.Writer, l Label) error {
	img, err := Draw(l)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding label: %w", err)
	}
	return nil
}

// Draw composes the label image.
func Draw(l Label) (*image.RGBA, error) {
	if l.URL == "" {
		return nil, fmt.Errorf("label has no url")
	}

	qr, err := qrcode.New(l.URL, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, QRSize, QRSize), qr.Image(QRSize), image.Point{}, draw.Src)

	text := textBlock(l.Lines)
	tb := text.Bounds()
	dst := image.Rect(QRSize+margin, margin, QRSize+margin+tb.Dx()*textScale, margin+tb.Dy()*textScale)
	// Nearest neighbour keeps the bitmap font crisp when scaled up.
	draw.NearestNeighbor.Scale(canvas, dst, text, tb, draw.Over, nil)

	return canvas, nil
}

// textBlock renders lines at the font's native size on a transparent image.
func textBlock(lines []string) *image.RGBA {
	face := basicfont.Face7x13
	lineHeight := face.Height + 4
	maxLines := (Height - 2*margin) / (lineHeight * textScale)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	w := maxLineRunes * face.Advance
	h := len(lines) * lineHeight
	if h == 0 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	d := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: face}
	for i, line := range lines {
		d.Dot = fixed.P(0, i*lineHeight+face.Ascent)
		d.DrawString(truncate(line, maxLineRunes))
	}
	return img
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
