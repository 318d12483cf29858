// Package engine runs the full card analysis pipeline on one table image.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ivlev/cardvision/internal/analyzer"
	"github.com/ivlev/cardvision/internal/classifier"
	"github.com/ivlev/cardvision/internal/config"
	"github.com/ivlev/cardvision/internal/matcher"
	"github.com/ivlev/cardvision/internal/preprocess"
	"github.com/ivlev/cardvision/internal/rectify"
	"github.com/ivlev/cardvision/internal/source"
	"github.com/ivlev/cardvision/internal/system"
)

var (
	ErrDecode         = errors.New("could not decode image")
	ErrInvalidPlayers = errors.New("players must be 1 or 2")
)

// Analyzer owns the pipeline stages. It holds no per-request state and is
// safe for concurrent use.
type Analyzer struct {
	Config    *config.Config
	Segmenter analyzer.Segmenter
	Gallery   *matcher.Gallery
	Matcher   *matcher.Matcher
}

func New(cfg *config.Config, gallery *matcher.Gallery) (*Analyzer, error) {
	seg, err := analyzer.NewSegmenter(cfg.Segmenter, cfg.Segment)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		Config:    cfg,
		Segmenter: seg,
		Gallery:   gallery,
		Matcher:   matcher.New(gallery),
	}, nil
}

// Load builds an Analyzer from the template gallery in cfg.TemplatesDir.
func Load(cfg *config.Config) (*Analyzer, error) {
	templates, err := source.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}
	gallery, err := matcher.NewGallery(templates, cfg.MatchBlurSize)
	if err != nil {
		return nil, err
	}
	log.Printf("[*] Loaded %d templates for %d ranks from %s", gallery.Len(), len(gallery.Labels()), cfg.TemplatesDir)
	return New(cfg, gallery)
}

// AnalyzeBytes decodes an uploaded image or PDF and analyzes it.
func (a *Analyzer) AnalyzeBytes(ctx context.Context, data []byte, players int) (*Result, error) {
	if err := checkPlayers(players); err != nil {
		return nil, err
	}
	img, err := source.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return a.Analyze(ctx, img, players)
}

// Analyze finds, identifies and scores every card in img. Cards that cannot be
// rectified or matched are left out of their hand; only an invalid player
// count, an empty image or cancellation fail the whole request.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image, players int) (*Result, error) {
	startTime := time.Now()

	if err := checkPlayers(players); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	// 1. Normalize resolution
	norm := preprocess.Normalize(img, a.Config.Preprocess)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Segment
	regions, err := a.Segmenter.Segment(norm)
	if err != nil {
		return nil, fmt.Errorf("segmentation: %w", err)
	}
	if len(regions) == 0 {
		log.Printf("[!] No card regions found in %dx%d image", norm.Bounds().Dx(), norm.Bounds().Dy())
	}

	// 3. Assign to hands
	hands, err := classifier.Classify(regions, norm.Bounds(), players)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 4. Rectify and match, one outcome slot per region
	var cards []CardOutcome
	for _, id := range classifier.HandIDs(players) {
		for i, r := range hands[id] {
			cards = append(cards, CardOutcome{Hand: id, Index: i, Region: r})
		}
	}
	a.processCards(ctx, norm, cards)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 5. Fold into hands and score
	res := newResult(players, cards)
	res.Regions = len(regions)
	res.Elapsed = time.Since(startTime)

	log.Printf("[*] Analyzed %d regions (%d resolved) in %s", len(regions), res.Resolved(), res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func checkPlayers(players int) error {
	if players != 1 && players != 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidPlayers, players)
	}
	return nil
}

// processCards runs rectification and matching on a worker pool. Each worker
// writes only the slots it takes from the jobs channel.
func (a *Analyzer) processCards(ctx context.Context, img image.Image, cards []CardOutcome) {
	if len(cards) == 0 {
		return
	}

	jobs := make(chan int, len(cards))
	numWorkers := max(1, min(a.Config.Workers, len(cards)))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				a.processCard(img, &cards[i])
			}
		}()
	}

	for i := range cards {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (a *Analyzer) processCard(img image.Image, c *CardOutcome) {
	buf := system.GetImage(image.Rect(0, 0, rectify.Width, rectify.Height))
	defer system.PutImage(buf)

	if _, err := rectify.Rectify(buf, img, c.Region.Polygon); err != nil {
		c.Status, c.Err = RectifyFailed, err
		log.Printf("[!] %s card %d: %v", c.Hand, c.Index, err)
		return
	}
	if a.Config.DebugDir != "" {
		a.dumpCard(buf, c)
	}

	m, err := a.Matcher.Match(buf)
	c.Rank, c.Score = m.Rank, m.Score
	if err != nil {
		c.Status, c.Err = Unresolved, err
		log.Printf("[!] %s card %d: %v", c.Hand, c.Index, err)
		return
	}
	c.Status = Resolved
}

// dumpCard saves a rectified card for inspection. Failures are only logged.
func (a *Analyzer) dumpCard(card *image.RGBA, c *CardOutcome) {
	if err := os.MkdirAll(a.Config.DebugDir, 0755); err != nil {
		log.Printf("[!] Debug dir: %v", err)
		return
	}
	name := fmt.Sprintf("card_%s_%d_%d.png", c.Hand, c.Index, time.Now().UnixNano())
	if err := imaging.Save(card, filepath.Join(a.Config.DebugDir, name)); err != nil {
		log.Printf("[!] Debug dump %s: %v", name, err)
	}
}
