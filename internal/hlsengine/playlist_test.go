package hlsengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-STREAM-INF:BANDWIDTH=2560000,RESOLUTION=1280x720,CODECS="avc1.4d401f,mp4a.40.2"
hd/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=640000,RESOLUTION=640x360,NAME="low"
https://cdn.example/sd/index.m3u8

#EXT-X-STREAM-INF:BANDWIDTH=96000,CODECS="mp4a.40.2"
audio.m3u8
`

const livePlaylist = `#EXTM3U
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:1042
#EXTINF:6.0,
seg1042.ts
#EXTINF:6.0,
seg1043.ts
`

func TestParsePlaylist_Master(t *testing.T) {
	pl, err := ParsePlaylist([]byte(masterPlaylist), "https://origin.example/live/master.m3u8?token=abc")
	require.NoError(t, err)
	require.True(t, pl.IsMaster())
	require.Len(t, pl.Variants, 3)

	assert.Equal(t, Variant{
		URI:       "https://origin.example/live/hd/index.m3u8",
		Bandwidth: 2560000,
		Width:     1280,
		Height:    720,
		Codecs:    "avc1.4d401f,mp4a.40.2",
	}, pl.Variants[0])
	assert.Equal(t, "https://cdn.example/sd/index.m3u8", pl.Variants[1].URI)
	assert.Equal(t, "low", pl.Variants[1].Name)
	assert.Equal(t, 360, pl.Variants[1].Height)
	assert.Zero(t, pl.Variants[2].Height)

	sortByBandwidth(pl.Variants)
	assert.Equal(t, []int{96000, 640000, 2560000}, []int{pl.Variants[0].Bandwidth, pl.Variants[1].Bandwidth, pl.Variants[2].Bandwidth})
}

func TestParsePlaylist_Media(t *testing.T) {
	pl, err := ParsePlaylist([]byte(livePlaylist), "https://origin.example/live/index.m3u8")
	require.NoError(t, err)
	assert.False(t, pl.IsMaster())
	assert.Equal(t, 6.0, pl.TargetDuration)
	assert.Equal(t, 1042, pl.MediaSequence)
	assert.Equal(t, 2, pl.Segments)
	assert.False(t, pl.EndList)

	pl, err = ParsePlaylist([]byte(livePlaylist+"#EXT-X-ENDLIST\n"), "")
	require.NoError(t, err)
	assert.True(t, pl.EndList)
}

func TestParsePlaylist_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"empty": "",
		"html":  "<html><body>forbidden</body></html>",
		"json":  `{"error":"expired"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlaylist([]byte(body), "")
			assert.ErrorIs(t, err, ErrNotPlaylist)
		})
	}
}

func TestParsePlaylist_SkipsIFrameVariants(t *testing.T) {
	body := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=854x480
480.m3u8
#EXT-X-I-FRAME-STREAM-INF:BANDWIDTH=86000,URI="iframe.m3u8"
`
	pl, err := ParsePlaylist([]byte(body), "https://origin.example/master.m3u8")
	require.NoError(t, err)
	require.Len(t, pl.Variants, 1)
	assert.Equal(t, "https://origin.example/480.m3u8", pl.Variants[0].URI)
	assert.Equal(t, 854, pl.Variants[0].Width)
}
