package folio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/vmarins/folio/metadata"
)

const (
	uploadMaxBytes = 10 << 20
	uploadSubdir   = "uploads"
	targetWidth    = 800
	targetQuality  = 80
)

func (a *App) uploadDir() string {
	return filepath.Join(a.staticDir, uploadSubdir)
}

// normalizeUpload decodes src (JPEG, PNG, or GIF), scales it down to
// targetWidth if wider, and re-encodes as JPEG.
func normalizeUpload(src io.Reader, originalName string) (metadata.Image, []byte, error) {
	decoded, _, err := image.Decode(src)
	if err != nil {
		return metadata.Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	decoded = scaleDown(decoded, targetWidth)
	w := decoded.Bounds().Dx()
	h := decoded.Bounds().Dy()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: targetQuality}); err != nil {
		return metadata.Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	stem := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	return metadata.Image{
		Filename:     Slugify(stem) + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// scaleDown resizes img to maxWidth preserving aspect ratio. Images at or
// under maxWidth pass through untouched.
func scaleDown(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}
	scaled := image.NewRGBA(image.Rect(0, 0, maxWidth, b.Dy()*maxWidth/b.Dx()))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)
	return scaled
}

// uniqueFilename picks the first name of the form stem.jpg, stem-2.jpg, ...
// that collides with neither the uploads directory nor the image table.
func (a *App) uniqueFilename(filename string) (string, error) {
	existing, err := a.Meta.ListImages()
	if err != nil {
		return "", err
	}
	inDB := make(map[string]bool, len(existing))
	for _, img := range existing {
		inDB[img.Filename] = true
	}

	stem := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	for n := 2; ; n++ {
		_, statErr := os.Stat(filepath.Join(a.uploadDir(), candidate))
		if os.IsNotExist(statErr) && !inDB[candidate] {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d.jpg", stem, n)
	}
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > uploadMaxBytes {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := normalizeUpload(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	img.Filename, err = a.uniqueFilename(img.Filename)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.uploadDir(), 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.uploadDir(), img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Meta.SaveImage(img); err != nil {
		return err
	}

	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	filename := c.Param("filename")
	if filename == "" {
		return c.String(http.StatusBadRequest, "Filename required")
	}

	// A file already gone from disk should not block removing the record.
	_ = os.Remove(filepath.Join(a.uploadDir(), filepath.Base(filename)))

	if err := a.Meta.DeleteImage(filename); err != nil {
		return err
	}
	return a.renderImageList(c)
}

func (a *App) handleImageList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageList(c)
}

func (a *App) renderImageList(c echo.Context) error {
	images, err := a.Meta.ListImages()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminImages(images, CsrfToken(c)))
}
