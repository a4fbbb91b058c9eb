package client

import (
	"github.com/famomatic/waisitv/internal/catalog"
	"github.com/famomatic/waisitv/internal/playback"
	"github.com/famomatic/waisitv/internal/resolver"
)

// Item is a playable catalog entry.
type Item = catalog.Item

// SliderItem is a home-screen slider entry.
type SliderItem = catalog.SliderItem

// HomeSections is the home-screen slider plus raw category chunks.
type HomeSections = catalog.HomeSections

// Catalog is the fully bucketed home catalog.
type Catalog = catalog.Catalog

// Descriptor selects what to play: a direct URL or a slug and kind.
type Descriptor = resolver.Descriptor

// PlayerState is a snapshot of a player's observable state.
type PlayerState = playback.State

// Catalog entry kinds.
const (
	KindChannel = catalog.KindChannel
	KindVOD     = catalog.KindVOD
)
