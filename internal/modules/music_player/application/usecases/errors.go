package usecases

import (
	"errors"

	"github.com/sglre6355/sumire/internal/modules/music_player/application/session"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// Errors returned by the music player use cases.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrDifferentVoiceChannel is returned when the user is not in the bot's voice channel.
	ErrDifferentVoiceChannel = errors.New("you must be in the same voice channel as the bot")

	// ErrNoResults is returned when a query matched nothing on any provider.
	ErrNoResults = errors.New("no results found")

	// ErrCrossResolutionFailed is returned when catalog metadata was found but no
	// playable provider had a matching track.
	ErrCrossResolutionFailed = errors.New("no playable match found for the linked track")

	// ErrInvalidVolume is returned when a requested volume is out of range.
	ErrInvalidVolume = errors.New("volume must be between 0 and 200")
)

// Errors surfaced from the layers below, re-exported for the presentation layer.
var (
	ErrInvalidQuery          = domain.ErrInvalidQuery
	ErrNotPlaying            = session.ErrNotPlaying
	ErrSessionClosed         = session.ErrSessionClosed
	ErrVoiceConnectionFailed = session.ErrVoiceConnectionFailed
)
