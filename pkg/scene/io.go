package scene

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path"

	"golang.org/x/image/tiff"

	"github.com/project-spencer/msscvm/pkg/raster"
)

// sceneFile is the on-disk metadata.json layout.
type sceneFile struct {
	Grid raster.GridDef `json:"grid"`
	Metadata
}

const metadataName = "metadata.json"

// LoadDir reads a scene from a directory holding metadata.json and one
// <band>.tiff per band.
func LoadDir(dir string) (*Scene, error) {
	mf, err := os.Open(path.Join(dir, metadataName))
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	defer mf.Close()

	def, meta, err := decodeMetadata(mf)
	if err != nil {
		return nil, err
	}

	bands := make(map[Band]*raster.Grid)
	for _, b := range allBands() {
		f, err := os.Open(path.Join(dir, fmt.Sprintf("%s.tiff", b)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		g, err := DecodeBandTIFF(f, def)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("scene: band %s: %w", b, err)
		}
		bands[b] = g
	}

	return newLoaded(def, meta, bands)
}

// LoadZip reads a scene from a zip archive with the same layout as LoadDir.
// Downlinked band stacks arrive this way, one archive per acquisition.
func LoadZip(fp string) (*Scene, error) {
	zr, err := zip.OpenReader(fp)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	defer zr.Close()

	var def raster.GridDef
	var meta Metadata
	bands := make(map[Band]*raster.Grid)
	var rawBands []*zip.File

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if path.Base(f.Name) == metadataName {
			r, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("scene: %w", err)
			}
			def, meta, err = decodeMetadata(r)
			r.Close()
			if err != nil {
				return nil, err
			}
			continue
		}
		rawBands = append(rawBands, f)
	}

	if def.Width == 0 {
		return nil, fmt.Errorf("scene: archive has no %s", metadataName)
	}

	// bands decode after metadata so the grid layout is known
	for _, f := range rawBands {
		name := path.Base(f.Name)
		ext := path.Ext(name)
		if ext != ".tiff" && ext != ".tif" {
			continue
		}
		b := Band(name[:len(name)-len(ext)])
		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		g, err := DecodeBandTIFF(r, def)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("scene: band %s: %w", b, err)
		}
		bands[b] = g
	}

	return newLoaded(def, meta, bands)
}

func decodeMetadata(r io.Reader) (raster.GridDef, Metadata, error) {
	var sf sceneFile
	if err := json.NewDecoder(r).Decode(&sf); err != nil {
		return raster.GridDef{}, Metadata{}, fmt.Errorf("scene: bad %s: %w", metadataName, err)
	}
	if sf.Grid.Width <= 0 || sf.Grid.Height <= 0 || sf.Grid.CellSize <= 0 {
		return raster.GridDef{}, Metadata{}, fmt.Errorf("scene: bad %s: incomplete grid definition", metadataName)
	}
	return sf.Grid, sf.Metadata, nil
}

func newLoaded(def raster.GridDef, meta Metadata, bands map[Band]*raster.Grid) (*Scene, error) {
	for _, b := range SpectralBands {
		if _, ok := bands[b]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingBand, b)
		}
	}
	return &Scene{Def: def, Bands: bands, Meta: meta}, nil
}

func allBands() []Band {
	return []Band{Green, Red, RedEdge, NIR, QA}
}

// DecodeBandTIFF decodes one grayscale band image into a grid on the given
// layout. 8- and 16-bit grayscale are supported; values are kept as raw DNs.
func DecodeBandTIFF(r io.Reader, def raster.GridDef) (*raster.Grid, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() != def.Width || b.Dy() != def.Height {
		return nil, fmt.Errorf("band is %dx%d, grid is %dx%d", b.Dx(), b.Dy(), def.Width, def.Height)
	}

	g := raster.NewGrid(def, 0)
	switch im := img.(type) {
	case *image.Gray:
		for i, v := range im.Pix {
			g.Data[i] = float64(v)
		}
	case *image.Gray16:
		for row := 0; row < def.Height; row++ {
			for col := 0; col < def.Width; col++ {
				g.Set(col, row, float64(im.Gray16At(b.Min.X+col, b.Min.Y+row).Y))
			}
		}
	default:
		return nil, fmt.Errorf("band image is not grayscale")
	}
	return g, nil
}

// EncodeGrayTIFF writes a grid as an 8-bit grayscale tiff. Values are
// truncated into [0, 255]; NaN becomes 0. Meant for categorical bands.
func EncodeGrayTIFF(w io.Writer, g *raster.Grid) error {
	img := image.NewGray(image.Rect(0, 0, g.Def.Width, g.Def.Height))
	for i, v := range g.Data {
		img.Pix[i] = quantize(v, 255)
	}
	return tiff.Encode(w, img, nil)
}

// EncodeGray16TIFF writes a grid as a 16-bit grayscale tiff after scaling.
// NaN cells become 0, the conventional nodata for unsigned band files.
func EncodeGray16TIFF(w io.Writer, g *raster.Grid, scale float64) error {
	img := image.NewGray16(image.Rect(0, 0, g.Def.Width, g.Def.Height))
	for row := 0; row < g.Def.Height; row++ {
		for col := 0; col < g.Def.Width; col++ {
			img.SetGray16(col, row, color.Gray16{Y: quantize16(g.At(col, row)*scale, 65535)})
		}
	}
	return tiff.Encode(w, img, nil)
}

func quantize(v float64, max float64) uint8 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > max {
		v = max
	}
	return uint8(v)
}

func quantize16(v float64, max float64) uint16 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > max {
		v = max
	}
	return uint16(v)
}
