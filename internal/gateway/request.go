package gateway

// GuestLoginRequest registers an anonymous device.
type GuestLoginRequest struct {
	DeviceID string `json:"device_id"`
	Platform string `json:"platform"`
}

// HomeSectionsRequest fetches the slider and category chunks.
type HomeSectionsRequest struct {
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
	Platform  string `json:"platform"`
}

// LiveChannelsRequest fetches the primary channel catalog.
type LiveChannelsRequest struct {
	ProjectID string `json:"project_id"`
	Platform  string `json:"platform"`
}

// GenreProgramsRequest fetches the programs of one genre.
type GenreProgramsRequest struct {
	GenreSlug string `json:"genre_slug"`
	ProjectID string `json:"project_id"`
	Platform  string `json:"platform"`
}

// ChannelURLRequest resolves a slug to a playable URL. The gateway expects
// guest identity fields on every call.
type ChannelURLRequest struct {
	Slug         string `json:"slug"`
	PhoneDetails string `json:"phone_details"`
	IP           string `json:"ip"`
	Type         string `json:"type"`
	UserID       string `json:"user_id"`
	Mobile       string `json:"mobile"`
}

// GuestUserID is the user id the gateway associates with anonymous callers.
const GuestUserID = "0"

// NewHomeSectionsRequest builds a home request for the guest user.
func (c *Client) NewHomeSectionsRequest() HomeSectionsRequest {
	return HomeSectionsRequest{UserID: GuestUserID, ProjectID: c.config.ProjectID, Platform: c.config.Platform}
}

// NewLiveChannelsRequest builds a live channel list request.
func (c *Client) NewLiveChannelsRequest() LiveChannelsRequest {
	return LiveChannelsRequest{ProjectID: c.config.ProjectID, Platform: c.config.Platform}
}

// NewGenreProgramsRequest builds a genre programs request.
func (c *Client) NewGenreProgramsRequest(genre string) GenreProgramsRequest {
	return GenreProgramsRequest{GenreSlug: genre, ProjectID: c.config.ProjectID, Platform: c.config.Platform}
}

// NewChannelURLRequest builds a resolution request for the guest user.
func (c *Client) NewChannelURLRequest(slug, kind string) ChannelURLRequest {
	return ChannelURLRequest{
		Slug:         slug,
		PhoneDetails: c.config.UserAgent,
		Type:         kind,
		UserID:       GuestUserID,
		Mobile:       "0",
	}
}
