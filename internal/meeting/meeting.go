package meeting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Issuer provisions video meeting rooms for confirmed sessions.
type Issuer interface {
	CreateMeeting(ctx context.Context, bookingID, sessionID string) (string, error)
}

// StubIssuer mints deterministic-shaped meeting URLs without calling a video
// provider. Links are stable per session so re-issuing is idempotent.
type StubIssuer struct {
	baseURL string
}

// NewStubIssuer builds an issuer rooted at baseURL.
func NewStubIssuer(baseURL string) *StubIssuer {
	if baseURL == "" {
		baseURL = "https://meet.tutorhive.dev"
	}
	return &StubIssuer{baseURL: baseURL}
}

// CreateMeeting returns a room URL namespaced by booking and session.
func (i *StubIssuer) CreateMeeting(ctx context.Context, bookingID, sessionID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	room := uuid.NewSHA1(uuid.NameSpaceURL, []byte(bookingID+"/"+sessionID))
	return fmt.Sprintf("%s/r/%s", i.baseURL, room.String()), nil
}
