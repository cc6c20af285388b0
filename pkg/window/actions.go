package window

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	sdialog "github.com/sqweek/dialog"
	"golang.design/x/clipboard"

	"github.com/roffe/plotcanvas/pkg/headless"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

func initClipboard() error {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	return clipboardErr
}

// CopyFigure puts the last image of the named figure on the clipboard as PNG.
func (d *Driver) CopyFigure(name string) error {
	img, ok := d.Snapshot(name)
	if !ok {
		return fmt.Errorf("no image for figure %q", name)
	}
	if err := initClipboard(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	return nil
}

// SaveFigure writes the last image of the named figure to filename as PNG.
func (d *Driver) SaveFigure(name, filename string) error {
	img, ok := d.Snapshot(name)
	if !ok {
		return fmt.Errorf("no image for figure %q", name)
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d *Driver) copyFigure(name string) {
	if err := d.CopyFigure(name); err != nil {
		log.WithField("figure", name).Error(err)
		return
	}
	log.WithField("figure", name).Info("copied to clipboard")
}

func (d *Driver) saveFigure(name string) {
	filename, err := sdialog.File().Filter("PNG image", "png").Title("Save " + name).Save()
	if err != nil {
		if errors.Is(err, sdialog.ErrCancelled) {
			return
		}
		log.Error(err)
		return
	}
	if !strings.HasSuffix(filename, ".png") {
		filename += ".png"
	}
	if err := d.SaveFigure(name, filename); err != nil {
		log.WithField("figure", name).Error(err)
	}
}

func (d *Driver) saveAll() {
	dir, err := sdialog.Directory().Title("Select output folder").Browse()
	if err != nil {
		if errors.Is(err, sdialog.ErrCancelled) {
			return
		}
		log.Error(err)
		return
	}
	for _, name := range d.Names() {
		path := filepath.Join(dir, headless.FileName(name))
		if err := d.SaveFigure(name, path); err != nil {
			log.WithField("figure", name).Error(err)
			continue
		}
		log.WithField("path", path).Info("saved figure")
	}
}
