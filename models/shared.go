package models

// DisplayInfo is the presentation data the external identity/directory
// service resolves for a party. It never participates in state logic.
type DisplayInfo struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
