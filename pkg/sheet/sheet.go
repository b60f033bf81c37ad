// Package sheet lays out decoded frames on a labelled contact sheet.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/user/framestitch/pkg/ports"
)

// ErrNoFrames is returned when there is nothing to lay out.
var ErrNoFrames = errors.New("sheet: no frames")

// Options controls the sheet geometry and colors.
type Options struct {
	Columns     int
	ThumbWidth  int
	Gap         int
	Padding     int
	LabelHeight int // zero disables labels
	Background  color.Color
	LabelColor  color.Color
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Columns:     4,
		ThumbWidth:  240,
		Gap:         8,
		Padding:     16,
		LabelHeight: 18,
		Background:  color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff},
		LabelColor:  color.White,
	}
}

// Cell is the placement of one frame.
type Cell struct {
	Thumb image.Rectangle
	Label image.Point // center of the label
}

// Layout is the computed sheet geometry.
type Layout struct {
	Width  int
	Height int
	Thumb  image.Point // thumbnail size
	Cells  []Cell
}

// ComputeLayout places count thumbnails of a frameW x frameH source in a grid.
// Width and height are rounded up to even numbers for video encoders.
func ComputeLayout(count, frameW, frameH int, opts Options) Layout {
	if count <= 0 || frameW <= 0 || frameH <= 0 {
		return Layout{}
	}
	cols := max(1, min(opts.Columns, count))
	rows := (count + cols - 1) / cols

	thumbW := opts.ThumbWidth
	if thumbW <= 0 {
		thumbW = frameW
	}
	thumbH := max(1, frameH*thumbW/frameW)
	rowH := thumbH + opts.LabelHeight

	width := opts.Padding*2 + cols*thumbW + (cols-1)*opts.Gap
	height := opts.Padding*2 + rows*rowH + (rows-1)*opts.Gap

	cells := make([]Cell, count)
	for i := range cells {
		x := opts.Padding + (i%cols)*(thumbW+opts.Gap)
		y := opts.Padding + (i/cols)*(rowH+opts.Gap)
		cells[i] = Cell{
			Thumb: image.Rect(x, y, x+thumbW, y+thumbH),
			Label: image.Pt(x+thumbW/2, y+thumbH+opts.LabelHeight/2),
		}
	}

	return Layout{
		Width:  (width + 1) / 2 * 2,
		Height: (height + 1) / 2 * 2,
		Thumb:  image.Pt(thumbW, thumbH),
		Cells:  cells,
	}
}

// Composer renders contact sheets.
type Composer struct {
	renderer   ports.Renderer
	logger     ports.Logger
	opts       Options
	numWorkers int
}

// NewComposer creates a Composer. numWorkers <= 0 uses one worker per CPU.
func NewComposer(renderer ports.Renderer, logger ports.Logger, opts Options, numWorkers int) *Composer {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Composer{
		renderer:   renderer,
		logger:     logger.WithComponent("sheet"),
		opts:       opts,
		numWorkers: numWorkers,
	}
}

// indexedThumb holds a thumbnail with its position for sorting.
type indexedThumb struct {
	index int
	img   image.Image
}

// Compose draws frames in order, each labelled with its frame index.
// The geometry of the first frame sets the thumbnail size.
func (c *Composer) Compose(ctx context.Context, frames []ports.Frame) (image.Image, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	layout := ComputeLayout(len(frames), frames[0].Width, frames[0].Height, c.opts)
	if len(layout.Cells) == 0 {
		return nil, fmt.Errorf("sheet: invalid frame size %dx%d", frames[0].Width, frames[0].Height)
	}

	thumbs, err := c.thumbnails(ctx, frames, layout.Thumb)
	if err != nil {
		return nil, err
	}

	canvas := c.renderer.CreateCanvas(layout.Width, layout.Height, c.opts.Background)
	for i, cell := range layout.Cells {
		canvas.DrawImage(thumbs[i], cell.Thumb.Min.X, cell.Thumb.Min.Y)
		if c.opts.LabelHeight > 0 {
			canvas.DrawText("#"+strconv.Itoa(frames[i].Index), cell.Label.X, cell.Label.Y, c.opts.LabelColor)
		}
	}
	return canvas.ToImage(), nil
}

// thumbnails resizes all frames with a worker pool and returns them in order.
func (c *Composer) thumbnails(ctx context.Context, frames []ports.Frame, size image.Point) ([]image.Image, error) {
	jobs := make(chan int, len(frames))
	results := make(chan indexedThumb, len(frames))

	var wg sync.WaitGroup
	for w := 0; w < c.numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				img := c.renderer.ResizeImage(frames[idx].Image(), size.X, size.Y)
				results <- indexedThumb{index: idx, img: img}
			}
		}()
	}

	for i := range frames {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]indexedThumb, 0, len(frames))
	for r := range results {
		collected = append(collected, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].index < collected[j].index
	})

	thumbs := make([]image.Image, len(collected))
	for i, t := range collected {
		thumbs[i] = t.img
	}
	c.logger.Debug("Resized %d thumbnails", len(thumbs))
	return thumbs, nil
}
