package payload

var data = Path{"data"}

// Registration.
var AccessToken = Keys(nil, "access_token").Then(Keys(data, "access_token"))

// Stream resolution.
var StreamURL = Keys(data, "ChannelStreamingUrls", "HlsUrl").Then(Keys(nil, "ChannelStreamingUrls", "HlsUrl"))

// Home sections.
var (
	Slider      = Keys(data, "slider")
	Chunks      = Keys(data, "chunks")
	ChunkTitle  = Keys(nil, "categoryName")
	ChunkItems  = Keys(nil, "programs", "programData")
	SliderID    = Keys(nil, "id", "programId")
	SliderTitle = Keys(nil, "channelName", "name", "title")
	SliderImage = Keys(nil, "image", "thumbnail", "poster", "portrait_poster")
	SliderSlug  = Keys(nil, "channelSlug", "slug")
	ItemKind    = Keys(nil, "type")
)

// Live channels.
var (
	Channels    = Keys(data, "channels")
	ChannelID   = Keys(nil, "id", "channelId", "programId")
	ChannelName = Keys(nil, "channelName", "name", "title")
	ChannelLogo = Keys(nil, "logo", "image", "portrait_poster", "landscape_poster")
	ChannelSlug = Keys(nil, "channelSlug", "slug")
)

// Genre programs.
var (
	Programs    = Keys(data, "programData", "programs")
	ProgramID   = Keys(nil, "slug", "id")
	ProgramName = Keys(nil, "name", "title", "programName")
	ProgramLogo = Keys(nil, "portrait_poster", "image", "poster", "landscape_poster")
	ProgramSlug = Keys(nil, "slug")
)

// Home chunk programs use a wider set of names than genre programs.
var (
	ChunkProgramID   = Keys(nil, "slug", "programId", "id")
	ChunkProgramName = Keys(nil, "programName", "program_name", "name", "title")
)
