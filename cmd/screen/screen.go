package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/project-spencer/msscvm/pkg/auxdata"
	"github.com/project-spencer/msscvm/pkg/clouds"
	"github.com/project-spencer/msscvm/pkg/msscvm"
	"github.com/project-spencer/msscvm/pkg/scene"
)

// screen walks a directory of scenes, computes cloud cover for each, skips
// the ones too cloudy to be useful and writes masked bands for the rest.
// Scenes are independent, so they are processed in parallel.

func loadScene(fp string) (*scene.Scene, error) {
	if strings.HasSuffix(fp, ".zip") {
		return scene.LoadZip(fp)
	}
	return scene.LoadDir(fp)
}

func screenScene(name string, sc *scene.Scene, p *msscvm.Pipeline, maxCC float64, outputDir string) (float64, error) {
	t1 := time.Now()

	toa, err := msscvm.ToReflectance(sc)
	if err != nil {
		return 0, err
	}

	green, err := toa.SpectralBand(scene.Green)
	if err != nil {
		return 0, err
	}
	red, err := toa.SpectralBand(scene.Red)
	if err != nil {
		return 0, err
	}

	cloudCover := clouds.Coverage(green, red)
	log.Printf("%s: cloud cover %.2f", name, cloudCover)

	if cloudCover >= maxCC {
		log.Printf("%s: cloud cover above %.2f, skipping", name, maxCC)
		return cloudCover, nil
	}

	masked, err := p.ApplyMask(toa)
	if err != nil {
		return cloudCover, err
	}

	dir := path.Join(outputDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return cloudCover, err
	}
	for _, b := range scene.SpectralBands {
		f, err := os.Create(path.Join(dir, fmt.Sprintf("%s.tiff", b)))
		if err != nil {
			return cloudCover, err
		}
		if err := scene.EncodeGray16TIFF(f, masked.Bands[b], 1e4); err != nil {
			f.Close()
			return cloudCover, err
		}
		f.Close()
	}

	log.Printf("%s: masking took %s", name, time.Since(t1))
	return cloudCover, nil
}

func main() {
	log.SetPrefix("[screen] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)

	var scenesDir string
	var auxPath string
	var maxCC float64
	var outputDir string
	var workers int

	flag.StringVar(&scenesDir, "scenes", "", "directory holding one scene (dir or zip) per entry")
	flag.StringVar(&auxPath, "aux", "", "yaml file naming the auxiliary datasets")
	flag.Float64Var(&maxCC, "max-cloud-cover", 0.3, "maximum cloud cover")
	flag.StringVar(&outputDir, "output-dir", "", "output directory")
	flag.IntVar(&workers, "workers", 4, "scenes processed in parallel")

	flag.Parse()

	b, err := os.ReadFile(auxPath)
	if err != nil {
		log.Fatalf("could not read aux config: %s", err.Error())
	}
	var cfg auxdata.Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		log.Fatalf("could not parse aux config: %s", err.Error())
	}
	aux, err := auxdata.Open(cfg)
	if err != nil {
		log.Fatalf("could not load auxiliary datasets: %s", err.Error())
	}

	entries, err := os.ReadDir(scenesDir)
	if err != nil {
		log.Fatalf("could not list scenes: %s", err.Error())
	}

	p := msscvm.New(aux)

	var mu sync.Mutex
	var covers []float64

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && !strings.HasSuffix(name, ".zip") {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			sc, err := loadScene(path.Join(scenesDir, name))
			if err != nil {
				log.Printf("%s: could not load scene: %s", name, err.Error())
				return
			}

			cc, err := screenScene(strings.TrimSuffix(name, ".zip"), sc, p, maxCC, outputDir)
			if err != nil {
				log.Printf("%s: %s", name, err.Error())
				return
			}

			mu.Lock()
			covers = append(covers, cc)
			mu.Unlock()
		}()
	}

	wg.Wait()

	if len(covers) == 0 {
		log.Fatalf("no scenes processed")
	}

	mean, std := stat.MeanStdDev(covers, nil)
	log.Printf("screened %d scenes: mean cloud cover %.3f, stddev %.3f", len(covers), mean, std)
}
