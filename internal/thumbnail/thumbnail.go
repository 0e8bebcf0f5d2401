// Package thumbnail pregenerates the scaled featured-image renditions the
// site serves, so the first visitor of a page never pays the resize cost.
package thumbnail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"

	"go-newsblog-app/internal/data"
	"go-newsblog-app/internal/logger"
)

// Rendition size of a featured image in article listings and detail pages.
const (
	thumbWidth  = 800
	thumbHeight = 450
)

// Generator produces every rendition of one source image. Implementations
// must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, sourcePath string) error
}

// Result is the outcome of generating renditions for one article's image.
type Result struct {
	ArticleID int64
	Image     string
	OK        bool
	Message   string
}

// Report aggregates a pregeneration run.
type Report struct {
	Total   int
	Failed  int
	Results []Result
}

// Lister is the slice of the article store the pregenerator reads.
type Lister interface {
	PublishedWithImages(ctx context.Context) ([]*data.Article, error)
}

// Pregenerator walks every published article with a featured image and
// generates its renditions on a worker pool.
type Pregenerator struct {
	repo    Lister
	gen     Generator
	workers int
	log     logger.Logger
}

// NewPregenerator creates a Pregenerator. workers <= 0 selects one worker per
// CPU.
func NewPregenerator(repo Lister, gen Generator, workers int, log logger.Logger) *Pregenerator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pregenerator{repo: repo, gen: gen, workers: workers, log: log}
}

// Run generates renditions for all published featured images. A failed image
// is recorded in the report and does not stop the other workers.
func (p *Pregenerator) Run(ctx context.Context) (*Report, error) {
	articles, err := p.repo.PublishedWithImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles for thumbnail generation: %w", err)
	}

	jobs := make(chan *data.Article)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				results <- p.generateOne(ctx, a)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, a := range articles {
			select {
			case jobs <- a:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	report := &Report{Total: len(articles)}
	for res := range results {
		if res.OK {
			p.log.Info(fmt.Sprintf("Generated thumbnails for article %d (%s)", res.ArticleID, res.Image))
		} else {
			report.Failed++
			p.log.Warn(fmt.Sprintf("Failed thumbnails for article %d (%s): %s", res.ArticleID, res.Image, res.Message))
		}
		report.Results = append(report.Results, res)
	}
	return report, ctx.Err()
}

func (p *Pregenerator) generateOne(ctx context.Context, a *data.Article) Result {
	res := Result{ArticleID: a.ID}
	if a.FeaturedImage == nil || *a.FeaturedImage == "" {
		// Nothing to resize. Matches the behavior of articles that never had
		// an image: skipped, not failed.
		res.OK = true
		res.Message = "article has no featured image, skipping"
		return res
	}
	res.Image = *a.FeaturedImage
	if err := p.gen.Generate(ctx, res.Image); err != nil {
		res.Message = err.Error()
		return res
	}
	res.OK = true
	res.Message = "success"
	return res
}

// FileGenerator resizes source images from a media directory into a thumbs
// subdirectory next to them.
type FileGenerator struct {
	MediaDir string
}

// Generate loads the source image, center-crops it to the listing aspect
// ratio and writes the rendition under MediaDir/thumbs, keeping the file
// name.
func (g *FileGenerator) Generate(ctx context.Context, sourcePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := imaging.Open(filepath.Join(g.MediaDir, sourcePath))
	if err != nil {
		return fmt.Errorf("failed to open source image %s: %w", sourcePath, err)
	}

	thumb := imaging.Fill(src, thumbWidth, thumbHeight, imaging.Center, imaging.Lanczos)

	outPath := filepath.Join(g.MediaDir, "thumbs", filepath.Base(sourcePath))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}
	if err := imaging.Save(thumb, outPath); err != nil {
		return fmt.Errorf("failed to save thumbnail %s: %w", outPath, err)
	}
	return nil
}
