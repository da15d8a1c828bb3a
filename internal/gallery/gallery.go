package gallery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrUnknownImage = errors.New("unknown gallery image")

type Image struct {
	Name    string
	Caption string
}

// Images is the fixed example gallery shown on every page.
var Images = []Image{
	{Name: "logo112.png", Caption: "示例1"},
	{Name: "logo117.png", Caption: "示例2"},
	{Name: "logo121.png", Caption: "示例3"},
	{Name: "logo128.png", Caption: "示例4"},
	{Name: "logo139.png", Caption: "示例5"},
}

type FrameworkPart struct {
	Letter      string
	Name        string
	Description string
}

// Framework is the OSED prompt-writing guide rendered above the gallery.
var Framework = []FrameworkPart{
	{Letter: "O", Name: "Object，对象", Description: "说明想要绘制的是什么。例如图表、海报、插画"},
	{Letter: "S", Name: "Style，风格", Description: "描述期望的绘画风格"},
	{Letter: "E", Name: "Element，元素", Description: "描述图像中需要的元素"},
	{Letter: "D", Name: "Detail，细节", Description: "详细描述元素之间的关系以及元素的细节"},
}

var ExamplePrompts = []string{
	"Flat designed logo with white background featuring a stylized [dragon] with an aggressive expression, vibrant and dynamic, with light colors and sharp geometric shapes. [dragon] appears fierce and formidable, embodying the spirit of competitive gaming.",
	`detailed logo design on a white background with the word ["Class 3"] written in a colorful bold font decorated by Olympic decorations with light color`,
	`sport logo, eagle, Isometric illustration, synthwave palette, dark plain background, with the large text "CLASS 3" incorporated.`,
	`a sports team logo of a [tiger] with white background, the text ["Class 3"] written in a bold colorful font under the logo`,
	`a gold/blue metal texture geometric [eagle], sports brand logo opening its wings like a phoenix with feathers around, white background, and the word ["Class3"] in a bold colorful font, cinematic, poster, vibrant.`,
}

// Gallery serves the example images from a directory on disk. Files are read
// on every request and never written.
type Gallery struct {
	dir string
}

func New(dir string) *Gallery {
	return &Gallery{dir: dir}
}

func (g *Gallery) Images() []Image {
	return Images
}

func (g *Gallery) Read(name string) ([]byte, error) {
	known := false
	for _, img := range Images {
		if img.Name == name {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImage, name)
	}

	data, err := os.ReadFile(filepath.Join(g.dir, name))
	if err != nil {
		return nil, fmt.Errorf("error reading gallery image %s: %w", name, err)
	}
	return data, nil
}
