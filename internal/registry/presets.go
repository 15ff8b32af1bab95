package registry

import (
	"fmt"
	"sort"
)

// Preset names understood by FromPreset.
const (
	PresetPicsum   = "picsum"
	PresetUnsplash = "unsplash"
)

var (
	defaultSlugs     = []string{"quickprofits", "digitaldollars", "bellyburner", "wealthwizard", "moneymaker"}
	defaultUsernames = []string{"novelnet", "bchbhsba", "profitpro", "cashking", "wealthgen"}
)

var presetImages = map[string][]string{
	PresetPicsum: {
		"https://picsum.photos/1200/630?random=1",
		"https://picsum.photos/1200/630?random=2",
		"https://picsum.photos/1200/630?random=3",
		"https://picsum.photos/1200/630?random=4",
		"https://picsum.photos/1200/630?random=5",
	},
	PresetUnsplash: {
		"https://images.unsplash.com/photo-1611974789855-9c2a0a7236a3?w=1200&h=630&fit=crop&crop=center",
		"https://images.unsplash.com/photo-1579621970563-ebec7560ff3e?w=1200&h=630&fit=crop&crop=center",
		"https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=1200&h=630&fit=crop&crop=center",
		"https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=1200&h=630&fit=crop&crop=center",
		"https://images.unsplash.com/photo-1559136555-9303baea8ebd?w=1200&h=630&fit=crop&crop=center",
	},
}

// FromPreset builds one of the built-in registries. The presets share slugs
// and usernames and differ only in their images.
func FromPreset(name string) (*Registry, error) {
	images, ok := presetImages[name]
	if !ok {
		return nil, fmt.Errorf("unknown registry preset %q (known: %v)", name, PresetNames())
	}
	return New(defaultSlugs, defaultUsernames, images)
}

// PresetNames lists the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presetImages))
	for name := range presetImages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the picsum preset.
func Default() *Registry {
	reg, err := FromPreset(PresetPicsum)
	if err != nil {
		panic(err)
	}
	return reg
}
