package source

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateLabel derives the rank label from a template file name:
// "ace_of_spades.png" is "Ace", "10_of_hearts.png" is "10",
// "king_of_clubs2.png" is "King".
func TemplateLabel(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := cases.Title(language.English).String(strings.Replace(name, "_of_", " ", 1))
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// LoadTemplates reads every PNG in dir and groups the images by label. Within
// a label, variants keep file name order.
func LoadTemplates(dir string) (map[string][]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	templates := make(map[string][]image.Image)
	for _, path := range paths {
		label := TemplateLabel(path)
		if label == "" {
			continue
		}
		img, err := imaging.Open(path)
		if err != nil {
			log.Printf("[!] Skipping template %s: %v", path, err)
			continue
		}
		templates[label] = append(templates[label], img)
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("no card templates found in %s", dir)
	}
	return templates, nil
}
