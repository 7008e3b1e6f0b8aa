package participants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/platform/logger"
	"manage-breast-screening/internal/ports/tx"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("participant not found")

	ErrEthnicBackgroundRequired = fmt.Errorf("%w: Select an ethnic background", ErrInvalidInput)
)

type Service struct {
	repo   Repository
	tx     tx.Runner
	audits *audit.Factory
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, txr tx.Runner, audits *audit.Factory, log logger.Logger) *Service {
	if txr == nil {
		txr = tx.Passthrough
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		tx:     txr,
		audits: audits,
		log:    log,
		now:    time.Now,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (Participant, error) {
	pid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return Participant{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, pid)
}

// Now is the service clock, shared with presenters.
func (s *Service) Now() time.Time {
	return s.now()
}

type EthnicityInput struct {
	EthnicBackgroundID string
	Details            string
}

// UpdateEthnicity records the chosen background. Details are kept only for
// "any other" backgrounds.
func (s *Service) UpdateEthnicity(ctx context.Context, src audit.Source, id string, in EthnicityInput) (Participant, error) {
	bgID := strings.TrimSpace(in.EthnicBackgroundID)
	if bgID == "" {
		return Participant{}, ErrEthnicBackgroundRequired
	}
	bg, ok := LookupEthnicBackground(bgID)
	if !ok {
		return Participant{}, ErrEthnicBackgroundRequired
	}

	auditor, err := s.audits.For(src)
	if err != nil {
		return Participant{}, err
	}

	var out Participant
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}

		p.EthnicBackgroundID = bg.ID
		p.EthnicBackgroundDetails = ""
		if bg.NonSpecific {
			p.EthnicBackgroundDetails = strings.TrimSpace(in.Details)
		}
		p.UpdatedAt = s.now()

		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		if _, err := auditor.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return Participant{}, err
	}

	s.log.Info("participant ethnicity updated", map[string]any{
		"participant_id":       out.ID.String(),
		"ethnic_background_id": out.EthnicBackgroundID,
	})
	return out, nil
}

type AddressInput struct {
	Lines    []string
	Postcode string
}

// SetAddress creates the participant's address or replaces its contents.
func (s *Service) SetAddress(ctx context.Context, src audit.Source, id string, in AddressInput) (Participant, error) {
	lines := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 || len(lines) > MaxAddressLines {
		return Participant{}, fmt.Errorf("%w: an address needs between 1 and %d lines", ErrInvalidInput, MaxAddressLines)
	}

	auditor, err := s.audits.For(src)
	if err != nil {
		return Participant{}, err
	}

	var out Participant
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}

		created := p.Address == nil
		addr := Address{ID: uuid.New(), ParticipantID: p.ID}
		if !created {
			addr = *p.Address
		}
		addr.Lines = lines
		addr.Postcode = in.Postcode

		if err := s.repo.SaveAddress(ctx, addr); err != nil {
			return err
		}
		if created {
			_, err = auditor.Create(ctx, addr)
		} else {
			_, err = auditor.Update(ctx, addr)
		}
		if err != nil {
			return err
		}

		p.Address = &addr
		out = p
		return nil
	})
	if err != nil {
		return Participant{}, err
	}
	return out, nil
}

// RemoveAddress audits the delete while the row still exists, then deletes it.
func (s *Service) RemoveAddress(ctx context.Context, src audit.Source, id string) error {
	auditor, err := s.audits.For(src)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Address == nil {
			return ErrNotFound
		}

		if _, err := auditor.Delete(ctx, *p.Address); err != nil {
			return err
		}
		return s.repo.DeleteAddress(ctx, p.Address.ID)
	})
}

// PreviousEpisode finds the last known screening episode before episodeID.
func (s *Service) PreviousEpisode(ctx context.Context, episodeID uuid.UUID) (ScreeningEpisode, bool, error) {
	self, err := s.repo.GetEpisode(ctx, episodeID)
	if err != nil {
		return ScreeningEpisode{}, false, err
	}
	history, err := s.repo.ListEpisodes(ctx, self.ParticipantID)
	if err != nil {
		return ScreeningEpisode{}, false, err
	}
	prev, ok := Previous(history, self)
	return prev, ok, nil
}
