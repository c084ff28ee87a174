package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// Requester is how the member who requested a track is shown in notifications.
type Requester struct {
	DisplayName string
	AvatarURL   string
}

// RequesterProvider looks up guild members that requested tracks.
type RequesterProvider interface {
	// GetRequester returns display info for the member in the guild.
	GetRequester(guildID, userID snowflake.ID) (Requester, error)
}
