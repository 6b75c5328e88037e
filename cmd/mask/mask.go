package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/project-spencer/msscvm/pkg/auxdata"
	"github.com/project-spencer/msscvm/pkg/msscvm"
	"github.com/project-spencer/msscvm/pkg/raster"
	"github.com/project-spencer/msscvm/pkg/scene"
)

func loadScene(fp string) (*scene.Scene, error) {
	if strings.HasSuffix(fp, ".zip") {
		return scene.LoadZip(fp)
	}
	return scene.LoadDir(fp)
}

func loadAux(fp string) (*auxdata.Store, error) {
	b, err := os.ReadFile(fp)
	if err != nil {
		return nil, err
	}
	var cfg auxdata.Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return auxdata.Open(cfg)
}

func main() {
	log.SetPrefix("[mask] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)

	var scenePath string
	var auxPath string
	var mode string
	var outputDir string

	flag.StringVar(&scenePath, "scene", "", "scene directory or zip archive")
	flag.StringVar(&auxPath, "aux", "", "yaml file naming the auxiliary datasets")
	flag.StringVar(&mode, "mode", "add", "add (attach classification band) or apply (null masked cells)")
	flag.StringVar(&outputDir, "output-dir", "", "output directory")

	flag.Parse()

	sc, err := loadScene(scenePath)
	if err != nil {
		log.Fatalf("could not load scene: %s", err.Error())
	}

	log.Printf("loaded scene %dx%d, path=%d row=%d, bands=%d",
		sc.Def.Width, sc.Def.Height, sc.Meta.Path, sc.Meta.Row, len(sc.Bands))

	aux, err := loadAux(auxPath)
	if err != nil {
		log.Fatalf("could not load auxiliary datasets: %s", err.Error())
	}

	t1 := time.Now()

	toa, err := msscvm.ToReflectance(sc)
	if err != nil {
		log.Fatalf("could not convert to reflectance: %s", err.Error())
	}

	p := msscvm.New(aux)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("could not create output directory: %s", err.Error())
	}

	switch mode {
	case "add":
		masked, err := p.AddMask(toa)
		if err != nil {
			log.Fatalf("could not classify scene: %s", err.Error())
		}

		class := masked.Bands[msscvm.MaskBand]
		log.Printf("classification took %s", time.Since(t1))
		logCoverage(class)

		f, err := os.Create(path.Join(outputDir, fmt.Sprintf("%s.tiff", msscvm.MaskBand)))
		if err != nil {
			log.Fatalf("could not create output file: %s", err.Error())
		}
		if err := scene.EncodeGrayTIFF(f, class); err != nil {
			log.Fatalf("could not write classification band: %s", err.Error())
		}
		f.Close()

	case "apply":
		masked, err := p.ApplyMask(toa)
		if err != nil {
			log.Fatalf("could not classify scene: %s", err.Error())
		}

		log.Printf("masking took %s", time.Since(t1))

		for _, b := range scene.SpectralBands {
			f, err := os.Create(path.Join(outputDir, fmt.Sprintf("%s.tiff", b)))
			if err != nil {
				log.Fatalf("could not create output file: %s", err.Error())
			}
			// reflectance scaled to the usual 1e4 integer convention
			if err := scene.EncodeGray16TIFF(f, masked.Bands[b], 1e4); err != nil {
				log.Fatalf("could not write band %s: %s", b, err.Error())
			}
			f.Close()
		}

	default:
		log.Fatalf("no mode named '%s'", mode)
	}

	log.Printf("wrote outputs to %s", outputDir)
}

func logCoverage(class *raster.Grid) {
	var cloud, shadow int
	for _, v := range class.Data {
		switch v {
		case msscvm.Cloud:
			cloud++
		case msscvm.Shadow:
			shadow++
		}
	}
	n := float64(len(class.Data))
	log.Printf("cloud cover: %.4f, shadow cover: %.4f", float64(cloud)/n, float64(shadow)/n)
}
