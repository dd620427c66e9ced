package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/soylemapp/soylem-client/internal/client/api"
	"github.com/soylemapp/soylem-client/internal/client/models"
	"github.com/soylemapp/soylem-client/internal/client/netx"
	"github.com/soylemapp/soylem-client/internal/client/repositories/queue"
	"github.com/soylemapp/soylem-client/internal/logging"
)

// CardAPI is the slice of the API client the card service needs.
type CardAPI interface {
	PersonalCards(ctx context.Context, section string, page int) ([]models.PersonalCard, error)
	CreateCard(ctx context.Context, upload api.CardUpload) (*models.PersonalCard, error)
	UpdateCard(ctx context.Context, id string, upload api.CardUpload) (*models.PersonalCard, error)
	DeleteCard(ctx context.Context, id string) error
	BaseURL() string
}

// CardService performs personal card operations. Mutations attempted while
// offline are queued and replayed by Replay once connectivity returns.
type CardService struct {
	api     CardAPI
	queue   queue.Repository
	checker netx.Checker
	log     logging.Logger
}

func NewCardService(api CardAPI, queue queue.Repository, checker netx.Checker, log logging.Logger) *CardService {
	return &CardService{api: api, queue: queue, checker: checker, log: log}
}

// AddCardInput are the fields of a new personal card. ImagePath may be a
// device-local path (uploaded as a file part) or a remote URI.
type AddCardInput struct {
	Title   string
	Section string
	Line    int
	Page    int
	Image   string
}

// List returns the user's cards for a section/page with all URIs made
// absolute and the thumbnail falling back to the image.
func (s *CardService) List(ctx context.Context, section string, page int) ([]models.PersonalCard, error) {
	cards, err := s.api.PersonalCards(ctx, section, page)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		s.absolutize(&cards[i])
	}
	return cards, nil
}

// Add creates a card. While offline the mutation is queued and a locally
// shaped card with a synthetic id is returned; offline reports which case
// happened.
func (s *CardService) Add(ctx context.Context, in AddCardInput) (card *models.PersonalCard, offline bool, err error) {
	if !s.checker.Online(ctx) {
		id := "offline-" + uuid.NewString()
		err := s.queue.Enqueue(ctx, models.PendingMutation{
			Action: models.MutationAdd,
			Payload: models.MutationPayload{
				ID:       id,
				Title:    in.Title,
				ImageURI: in.Image,
				Section:  in.Section,
				Line:     in.Line,
				Page:     in.Page,
			},
		})
		if err != nil {
			return nil, false, err
		}
		return &models.PersonalCard{
			ID:           id,
			Title:        in.Title,
			Section:      in.Section,
			Line:         in.Line,
			Page:         in.Page,
			ImageURI:     in.Image,
			ThumbnailURI: in.Image,
		}, true, nil
	}

	created, err := s.api.CreateCard(ctx, api.CardUpload{
		Title:     in.Title,
		Section:   in.Section,
		Line:      in.Line,
		Page:      in.Page,
		ImagePath: in.Image,
	})
	if err != nil {
		return nil, false, err
	}
	s.absolutize(created)
	return created, false, nil
}

// Update edits a card's title and optionally replaces its image and audio.
// While offline the mutation is queued.
func (s *CardService) Update(ctx context.Context, id, title, imagePath, audioPath string) (card *models.PersonalCard, offline bool, err error) {
	if !s.checker.Online(ctx) {
		err := s.queue.Enqueue(ctx, models.PendingMutation{
			Action: models.MutationUpdate,
			Payload: models.MutationPayload{
				ID:       id,
				Title:    title,
				ImageURI: imagePath,
				AudioURI: audioPath,
			},
		})
		if err != nil {
			return nil, false, err
		}
		return &models.PersonalCard{
			ID:           id,
			Title:        title,
			ImageURI:     imagePath,
			ThumbnailURI: imagePath,
			AudioKK:      audioPath,
		}, true, nil
	}

	updated, err := s.api.UpdateCard(ctx, id, api.CardUpload{
		Title:     title,
		ImagePath: imagePath,
		AudioPath: audioPath,
	})
	if err != nil {
		return nil, false, err
	}
	s.absolutize(updated)
	return updated, false, nil
}

// Delete removes a card. Deletes are online-only.
func (s *CardService) Delete(ctx context.Context, id string) error {
	return s.api.DeleteCard(ctx, id)
}

// Replay dispatches every queued mutation in enqueue order, then clears
// the queue. Individual failures are logged and skipped: the batch always
// runs to the end and the queue is cleared regardless of outcomes.
func (s *CardService) Replay(ctx context.Context) error {
	pending, err := s.queue.Drain(ctx)
	if err != nil {
		return fmt.Errorf("failed to drain queue: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	s.log.Info(ctx, "replaying queued mutations", "count", len(pending))

	for _, m := range pending {
		var err error
		switch m.Action {
		case models.MutationAdd:
			// the synthetic offline id is dropped: the server assigns one
			_, err = s.api.CreateCard(ctx, api.CardUpload{
				Title:     m.Payload.Title,
				Section:   m.Payload.Section,
				Line:      m.Payload.Line,
				Page:      m.Payload.Page,
				ImagePath: m.Payload.ImageURI,
			})
		case models.MutationUpdate:
			_, err = s.api.UpdateCard(ctx, m.Payload.ID, api.CardUpload{
				Title:     m.Payload.Title,
				ImagePath: m.Payload.ImageURI,
				AudioPath: m.Payload.AudioURI,
			})
		default:
			err = fmt.Errorf("unknown mutation action %q", m.Action)
		}
		if err != nil {
			s.log.Warn(ctx, "replay failed for queued mutation",
				"action", m.Action, "id", m.Payload.ID, "error", err)
		}
	}

	return s.queue.Clear(ctx)
}

// absolutize rewrites server-relative asset URIs against the base URL and
// fills the thumbnail from the image when the server sent none.
func (s *CardService) absolutize(c *models.PersonalCard) {
	base := s.api.BaseURL()
	abs := func(uri string) string {
		if uri == "" || models.IsRemote(uri) {
			return uri
		}
		return base + uri
	}
	c.ImageURI = abs(c.ImageURI)
	if c.ThumbnailURI != "" {
		c.ThumbnailURI = abs(c.ThumbnailURI)
	} else {
		c.ThumbnailURI = c.ImageURI
	}
	c.AudioKK = abs(c.AudioKK)
}
