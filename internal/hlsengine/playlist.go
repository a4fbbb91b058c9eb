package hlsengine

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/grafov/m3u8"
)

// ErrNotPlaylist is returned for bodies without the #EXTM3U header.
var ErrNotPlaylist = errors.New("hlsengine: not an m3u8 playlist")

// Variant is one rendition listed in a master playlist.
type Variant struct {
	URI       string
	Bandwidth int
	Width     int
	Height    int
	Codecs    string
	Name      string
}

// Playlist is a parsed master or media playlist. Variants is non-empty
// only for master playlists.
type Playlist struct {
	Variants       []Variant
	TargetDuration float64
	MediaSequence  int
	Segments       int
	EndList        bool
}

// IsMaster reports whether the playlist lists variants.
func (p *Playlist) IsMaster() bool {
	return len(p.Variants) > 0
}

// ParsePlaylist parses an m3u8 body. Relative URIs resolve against base.
func ParsePlaylist(body []byte, base string) (*Playlist, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("#EXTM3U")) {
		return nil, ErrNotPlaylist
	}
	decoded, kind, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPlaylist, err)
	}

	pl := &Playlist{}
	switch kind {
	case m3u8.MASTER:
		master := decoded.(*m3u8.MasterPlaylist)
		for _, v := range master.Variants {
			if v == nil || v.Iframe {
				continue
			}
			pl.Variants = append(pl.Variants, variantFrom(v, base))
		}
	case m3u8.MEDIA:
		media := decoded.(*m3u8.MediaPlaylist)
		pl.TargetDuration = float64(media.TargetDuration)
		pl.MediaSequence = int(media.SeqNo)
		pl.EndList = media.Closed
		for _, seg := range media.Segments {
			if seg != nil {
				pl.Segments++
			}
		}
	}
	return pl, nil
}

func variantFrom(v *m3u8.Variant, base string) Variant {
	out := Variant{
		URI:       resolveURL(base, v.URI),
		Bandwidth: int(v.Bandwidth),
		Codecs:    v.Codecs,
		Name:      v.Name,
	}
	if w, h, found := strings.Cut(strings.ToLower(v.Resolution), "x"); found {
		out.Width, _ = strconv.Atoi(w)
		out.Height, _ = strconv.Atoi(h)
	}
	return out
}

// sortByBandwidth orders variants from lowest to highest bandwidth,
// keeping playlist order among equals.
func sortByBandwidth(vs []Variant) {
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Bandwidth < vs[j].Bandwidth })
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
