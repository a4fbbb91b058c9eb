package catalog

import (
	"github.com/famomatic/waisitv/internal/payload"
)

const (
	defaultSectionTitle = "Featured"
	untitledProgram     = "Untitled Program"
)

func (s *Service) id(prefix, raw string) string {
	if raw == "" {
		raw = s.newID()
	}
	return prefix + raw
}

func (s *Service) sliderItem(doc []byte) SliderItem {
	return SliderItem{
		ID:        s.id(prefixSlider, payload.SliderID.String(doc)),
		Title:     payload.SliderTitle.String(doc),
		Thumbnail: payload.SliderImage.String(doc),
		Slug:      payload.SliderSlug.String(doc),
		Kind:      orDefault(payload.ItemKind.String(doc), KindChannel),
	}
}

func (s *Service) channelItem(doc []byte) Item {
	return Item{
		ID:   s.id(prefixChannel, payload.ChannelID.String(doc)),
		Name: payload.ChannelName.String(doc),
		Logo: payload.ChannelLogo.String(doc),
		Slug: payload.ChannelSlug.String(doc),
		Kind: KindChannel,
	}
}

func (s *Service) genreItem(doc []byte) Item {
	return Item{
		ID:   s.id(prefixGenre, payload.ProgramID.String(doc)),
		Name: payload.ProgramName.String(doc),
		Logo: payload.ProgramLogo.String(doc),
		Slug: payload.ProgramSlug.String(doc),
		Kind: orDefault(payload.ItemKind.String(doc), KindVOD),
	}
}

func (s *Service) chunkItem(doc []byte) Item {
	return Item{
		ID:   s.id(prefixProgram, payload.ChunkProgramID.String(doc)),
		Name: orDefault(payload.ChunkProgramName.String(doc), untitledProgram),
		Logo: payload.ProgramLogo.String(doc),
		Slug: payload.ProgramSlug.String(doc),
		Kind: orDefault(payload.ItemKind.String(doc), KindVOD),
	}
}

func (s *Service) section(chunk []byte) Section {
	docs := payload.ChunkItems.Objects(chunk)
	items := make([]Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, s.chunkItem(d))
	}
	return Section{
		Title: orDefault(payload.ChunkTitle.String(chunk), defaultSectionTitle),
		Items: items,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
